// Package loader pulls a user's inventory from a Source and publishes it to
// a state.Store in one step.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/vbonduro/stowaway/internal/domain"
	"github.com/vbonduro/stowaway/internal/metrics"
	"github.com/vbonduro/stowaway/internal/state"
)

const DefaultMaxConcurrency = 8

// ErrMissingUser is returned when Load is called without a user id.
var ErrMissingUser = errors.New("loader: user id is required")

// Source is the remote data service the loader reads from.
type Source interface {
	FetchPlaces(ctx context.Context, userID string) ([]*domain.Place, error)
	FetchContainersByPlace(ctx context.Context, placeID string) ([]*domain.Container, error)
	FetchItemsByContainer(ctx context.Context, containerID string) ([]*domain.Item, error)
	FetchGroups(ctx context.Context, userID string) ([]*domain.Group, error)
}

type Options struct {
	// MaxConcurrency bounds the per-level fan-out. Zero selects
	// DefaultMaxConcurrency.
	MaxConcurrency int
}

type Loader struct {
	source Source
	store  *state.Store
	opts   Options
	logger *slog.Logger
	flight singleflight.Group

	mu        sync.Mutex
	started   uint64 // generation of the newest load
	published uint64 // generation of the load the store holds
	inflight  int
}

func New(source Source, store *state.Store, opts Options, logger *slog.Logger) *Loader {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	return &Loader{source: source, store: store, opts: opts, logger: logger}
}

type inventory struct {
	places     []*domain.Place
	containers []*domain.Container
	items      []*domain.Item
	groups     []*domain.Group
}

// Load fetches everything visible to userID and replaces the store contents
// with it. On failure the store keeps its previous contents.
//
// Until the store has been loaded once, concurrent calls for the same user
// share a single fetch. A caller whose ctx ends stops waiting without
// cancelling the fetch for the others. Once the store is loaded every call
// fetches afresh, like Reload.
func (l *Loader) Load(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	if l.store.Loaded() {
		return l.load(ctx, userID)
	}
	ch := l.flight.DoChan(userID, func() (any, error) {
		return nil, l.load(context.WithoutCancel(ctx), userID)
	})
	select {
	case res := <-ch:
		if res.Shared {
			l.logger.Debug("joined in-flight load", "user_id", userID)
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload always starts a new fetch, so data written before the call is
// visible once it returns.
func (l *Loader) Reload(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	return l.load(ctx, userID)
}

func (l *Loader) load(ctx context.Context, userID string) error {
	gen := l.begin()
	defer l.end()

	start := time.Now()
	inv, err := l.fetch(ctx, userID)
	metrics.LoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		l.logger.Error("inventory load failed", "user_id", userID, "error", err)
		return fmt.Errorf("failed to load inventory: %w", err)
	}

	if !l.publish(gen, inv) {
		l.logger.Debug("discarding superseded load", "user_id", userID, "generation", gen)
		return nil
	}
	metrics.LoadsTotal.WithLabelValues("ok").Inc()
	metrics.StoreEntities.WithLabelValues("places").Set(float64(len(inv.places)))
	metrics.StoreEntities.WithLabelValues("containers").Set(float64(len(inv.containers)))
	metrics.StoreEntities.WithLabelValues("items").Set(float64(len(inv.items)))
	metrics.StoreEntities.WithLabelValues("groups").Set(float64(len(inv.groups)))
	l.logger.Info("inventory loaded",
		"user_id", userID,
		"places", len(inv.places),
		"containers", len(inv.containers),
		"items", len(inv.items),
		"groups", len(inv.groups),
		"duration", time.Since(start),
	)
	return nil
}

// begin numbers a new load and raises the store's loading flag for the
// first one in flight.
func (l *Loader) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started++
	l.inflight++
	if l.inflight == 1 {
		l.store.SetLoading(true)
	}
	return l.started
}

func (l *Loader) end() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inflight--
	if l.inflight == 0 {
		l.store.SetLoading(false)
	}
}

// publish replaces the store contents with inv unless a load started after
// gen has already done so.
func (l *Loader) publish(gen uint64, inv inventory) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen < l.published {
		return false
	}
	l.store.Replace(inv.places, inv.containers, inv.items, inv.groups)
	l.published = gen
	return true
}

func (l *Loader) fetch(ctx context.Context, userID string) (inventory, error) {
	var inv inventory
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		groups, err := l.source.FetchGroups(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to fetch groups: %w", err)
		}
		inv.groups = groups
		return nil
	})

	g.Go(func() error {
		places, err := l.source.FetchPlaces(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to fetch places: %w", err)
		}
		inv.places = places
		if len(places) == 0 {
			return nil
		}

		containers, err := fanOut(ctx, l.opts.MaxConcurrency, places,
			func(ctx context.Context, p *domain.Place) ([]*domain.Container, error) {
				cs, err := l.source.FetchContainersByPlace(ctx, p.ID)
				if err != nil {
					return nil, fmt.Errorf("failed to fetch containers for place %s: %w", p.ID, err)
				}
				return cs, nil
			})
		if err != nil {
			return err
		}
		inv.containers = containers
		if len(containers) == 0 {
			return nil
		}

		items, err := fanOut(ctx, l.opts.MaxConcurrency, containers,
			func(ctx context.Context, c *domain.Container) ([]*domain.Item, error) {
				is, err := l.source.FetchItemsByContainer(ctx, c.ID)
				if err != nil {
					return nil, fmt.Errorf("failed to fetch items for container %s: %w", c.ID, err)
				}
				return is, nil
			})
		if err != nil {
			return err
		}
		inv.items = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return inventory{}, err
	}
	return inv, nil
}

// fanOut calls fetch once per parent with at most limit calls in flight and
// concatenates the results in parent order.
func fanOut[P, C any](ctx context.Context, limit int, parents []P, fetch func(context.Context, P) ([]C, error)) ([]C, error) {
	slots := make([][]C, len(parents))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range parents {
		g.Go(func() error {
			children, err := fetch(ctx, p)
			if err != nil {
				return err
			}
			slots[i] = children
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := 0
	for _, s := range slots {
		n += len(s)
	}
	out := make([]C, 0, n)
	for _, s := range slots {
		out = append(out, s...)
	}
	return out, nil
}
