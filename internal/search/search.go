// Package search implements weighted fuzzy search over items joined with
// their container and place.
package search

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vbonduro/stowaway/internal/domain"
	"github.com/vbonduro/stowaway/internal/metrics"
	"github.com/vbonduro/stowaway/internal/state"
)

const (
	DefaultLimit     = 10
	DefaultThreshold = 0.4
)

// Field weights, relative to the item name.
const (
	weightItemName        = 1.0
	weightItemDescription = 0.8
	weightItemTags        = 0.8
	weightContainerName   = 0.6
	weightPlaceName       = 0.4
)

// Options tunes a search. A zero Limit or Threshold selects the default; a
// negative Threshold means only perfect matches.
type Options struct {
	Limit     int
	Threshold float64
}

func (o Options) normalize() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	switch {
	case o.Threshold == 0:
		o.Threshold = DefaultThreshold
	case o.Threshold < 0:
		o.Threshold = 0
	}
	return o
}

type cacheKey struct {
	version   uint64
	query     string
	limit     int
	threshold float64
}

// Engine searches the items of a state.Store. It is safe for concurrent use.
type Engine struct {
	store  *state.Store
	scorer Scorer
	cache  *lru.Cache[cacheKey, []domain.SearchResult]
	logger *slog.Logger

	mu           sync.Mutex
	indexVersion uint64
	index        []domain.SearchResult
	indexBuilt   bool
}

// NewEngine returns an Engine over store. A nil scorer selects
// LevenshteinScorer; cacheSize <= 0 disables result caching.
func NewEngine(store *state.Store, scorer Scorer, cacheSize int, logger *slog.Logger) *Engine {
	if scorer == nil {
		scorer = LevenshteinScorer{}
	}
	e := &Engine{store: store, scorer: scorer, logger: logger}
	if cacheSize > 0 {
		c, err := lru.New[cacheKey, []domain.SearchResult](cacheSize)
		if err != nil {
			logger.Warn("search cache disabled", "size", cacheSize, "error", err)
		} else {
			e.cache = c
		}
	}
	return e
}

// Search returns at most opts.Limit items ranked by relevance to query, best
// first. A blank query returns an empty slice.
func (e *Engine) Search(query string, opts Options) []*domain.Item {
	results := e.SearchResults(query, opts)
	items := make([]*domain.Item, len(results))
	for i, r := range results {
		items[i] = r.Item
	}
	return items
}

// SearchResults is Search returning each item joined with its container and
// place. Every result comes from the same snapshot.
func (e *Engine) SearchResults(query string, opts Options) []domain.SearchResult {
	if strings.TrimSpace(query) == "" {
		return []domain.SearchResult{}
	}
	opts = opts.normalize()

	snap := e.store.Snapshot()
	key := cacheKey{version: snap.Version, query: query, limit: opts.Limit, threshold: opts.Threshold}
	if e.cache != nil {
		if results, ok := e.cache.Get(key); ok {
			metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
			return slices.Clone(results)
		}
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
	}

	results := rank(e.scorer, query, e.records(snap), opts)

	metrics.SearchQueriesTotal.Inc()
	e.logger.Debug("search", "query", query, "results", len(results), "store_version", snap.Version)

	if e.cache != nil {
		e.cache.Add(key, results)
		return slices.Clone(results)
	}
	return results
}

// records returns the composite index for snap, rebuilding it when the
// store has changed since it was last built.
func (e *Engine) records(snap *state.Snapshot) []domain.SearchResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.indexBuilt && e.indexVersion == snap.Version {
		return e.index
	}
	e.index = BuildRecords(snap)
	e.indexVersion = snap.Version
	e.indexBuilt = true
	return e.index
}

// BuildRecords joins every item in snap with its container and that
// container's place. Unresolvable relations are left nil.
func BuildRecords(snap *state.Snapshot) []domain.SearchResult {
	containers := make(map[string]*domain.Container, len(snap.Containers))
	for _, c := range snap.Containers {
		containers[c.ID] = c
	}
	places := make(map[string]*domain.Place, len(snap.Places))
	for _, p := range snap.Places {
		places[p.ID] = p
	}

	records := make([]domain.SearchResult, len(snap.Items))
	for i, item := range snap.Items {
		r := domain.SearchResult{Item: item}
		if c, ok := containers[item.ContainerID]; ok {
			r.Container = c
			r.Place = places[c.PlaceID]
		}
		records[i] = r
	}
	return records
}

type scored struct {
	record    domain.SearchResult
	relevance float64
}

// rank scores each record and returns the best opts.Limit of them. Ties keep
// their input order.
func rank(scorer Scorer, query string, records []domain.SearchResult, opts Options) []domain.SearchResult {
	matches := make([]scored, 0, len(records))
	for _, r := range records {
		if rel, ok := relevance(scorer, query, r, opts.Threshold); ok {
			matches = append(matches, scored{record: r, relevance: rel})
		}
	}

	slices.SortStableFunc(matches, func(a, b scored) int {
		switch {
		case a.relevance > b.relevance:
			return -1
		case a.relevance < b.relevance:
			return 1
		default:
			return 0
		}
	})

	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	out := make([]domain.SearchResult, len(matches))
	for i, m := range matches {
		out[i] = m.record
	}
	return out
}

// relevance is the best weight*(1-score) over the record's fields whose score
// is within threshold.
func relevance(scorer Scorer, query string, r domain.SearchResult, threshold float64) (float64, bool) {
	best, found := 0.0, false
	consider := func(text string, weight float64) {
		if text == "" {
			return
		}
		s := scorer.Score(query, text)
		if s > threshold {
			return
		}
		if rel := weight * (1 - s); !found || rel > best {
			best, found = rel, true
		}
	}

	consider(r.Item.Name, weightItemName)
	consider(r.Item.Description, weightItemDescription)
	for _, tag := range r.Item.Tags {
		consider(tag, weightItemTags)
	}
	if r.Container != nil {
		consider(r.Container.Name, weightContainerName)
	}
	if r.Place != nil {
		consider(r.Place.Name, weightPlaceName)
	}
	return best, found
}
