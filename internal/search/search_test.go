package search

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/stowaway/internal/domain"
	"github.com/vbonduro/stowaway/internal/state"
)

func newStore(places []*domain.Place, containers []*domain.Container, items []*domain.Item) *state.Store {
	s := state.NewStore()
	s.Replace(places, containers, items, nil)
	return s
}

func itemNames(items []*domain.Item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Name)
	}
	return out
}

// countingScorer records how often it is called.
type countingScorer struct {
	calls int
	inner Scorer
}

func (c *countingScorer) Score(q, t string) float64 {
	c.calls++
	return c.inner.Score(q, t)
}

func TestSearchBlankQueryReturnsEmpty(t *testing.T) {
	st := newStore(nil, nil, []*domain.Item{{ID: "i1", Name: "Drill"}})
	scorer := &countingScorer{inner: LevenshteinScorer{}}
	e := NewEngine(st, scorer, 0, slog.Default())

	for _, q := range []string{"", "  ", "\n"} {
		got := e.Search(q, Options{})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Zero(t, scorer.calls)
}

func TestSearchRanksExactAbovePartialAboveWeak(t *testing.T) {
	st := newStore(nil, nil, []*domain.Item{
		{ID: "1", Name: "Summer Coat"},
		{ID: "2", Name: "Winter Boots"},
		{ID: "3", Name: "Winter Coat"},
	})
	e := NewEngine(st, nil, 0, slog.Default())

	got := e.Search("winter coat", Options{})

	assert.Equal(t, []string{"Winter Coat", "Winter Boots", "Summer Coat"}, itemNames(got))
}

func TestSearchToleratesTypos(t *testing.T) {
	st := newStore(
		[]*domain.Place{{ID: "p1", Name: "Garage"}},
		[]*domain.Container{{ID: "c1", PlaceID: "p1", Name: "Shelf A"}},
		[]*domain.Item{{ID: "i1", ContainerID: "c1", Name: "Drill", Tags: []string{"tools"}}},
	)
	e := NewEngine(st, nil, 0, slog.Default())

	got := e.Search("dril", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].ID)

	got = e.Search("drll", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].ID)
}

func TestSearchMatchesThroughContainerAndPlace(t *testing.T) {
	st := newStore(
		[]*domain.Place{{ID: "p1", Name: "Garage"}, {ID: "p2", Name: "Kitchen"}},
		[]*domain.Container{
			{ID: "c1", PlaceID: "p1", Name: "Red toolbox"},
			{ID: "c2", PlaceID: "p2", Name: "Drawer"},
		},
		[]*domain.Item{
			{ID: "i1", ContainerID: "c1", Name: "Spanner"},
			{ID: "i2", ContainerID: "c2", Name: "Whisk"},
			{ID: "i3", ContainerID: "missing", Name: "Orphan"},
		},
	)
	e := NewEngine(st, nil, 0, slog.Default())

	assert.Equal(t, []string{"Spanner"}, itemNames(e.Search("toolbox", Options{})))
	assert.Equal(t, []string{"Whisk"}, itemNames(e.Search("kitchen", Options{})))
	assert.Equal(t, []string{"Orphan"}, itemNames(e.Search("orphan", Options{})))
}

func TestSearchHigherWeightedFieldWins(t *testing.T) {
	st := newStore(
		[]*domain.Place{{ID: "p1", Name: "Lamp"}},
		[]*domain.Container{
			{ID: "c1", PlaceID: "p1", Name: "Lamp"},
			{ID: "c2", PlaceID: "none", Name: "Box"},
			{ID: "c3", PlaceID: "p1", Name: "Box"},
		},
		[]*domain.Item{
			{ID: "place-hit", ContainerID: "c3", Name: "Bulb"},
			{ID: "container-hit", ContainerID: "c1", Name: "Cable"},
			{ID: "tag-hit", ContainerID: "c2", Name: "Shade", Tags: []string{"lamp"}},
			{ID: "name-hit", ContainerID: "c2", Name: "Lamp"},
		},
	)
	e := NewEngine(st, nil, 0, slog.Default())

	got := e.Search("lamp", Options{})

	ids := make([]string, 0, len(got))
	for _, i := range got {
		ids = append(ids, i.ID)
	}
	assert.Equal(t, []string{"name-hit", "tag-hit", "container-hit", "place-hit"}, ids)
}

func TestSearchRespectsLimitAndMembership(t *testing.T) {
	items := make([]*domain.Item, 0, 25)
	for i := 0; i < 25; i++ {
		items = append(items, &domain.Item{ID: fmt.Sprintf("i%d", i), Name: fmt.Sprintf("Cable %d", i)})
	}
	st := newStore(nil, nil, items)
	e := NewEngine(st, nil, 0, slog.Default())

	got := e.Search("cable", Options{})
	assert.Len(t, got, DefaultLimit)

	got = e.Search("cable", Options{Limit: 3})
	require.Len(t, got, 3)
	// Equal relevance keeps input order.
	assert.Equal(t, []string{"i0", "i1", "i2"}, []string{got[0].ID, got[1].ID, got[2].ID})

	source := map[*domain.Item]bool{}
	for _, it := range items {
		source[it] = true
	}
	for _, it := range e.Search("cabel", Options{Limit: 50}) {
		assert.True(t, source[it])
	}
}

func TestSearchThreshold(t *testing.T) {
	st := newStore(nil, nil, []*domain.Item{{ID: "i1", Name: "Drill"}, {ID: "i2", Name: "Grill"}})
	e := NewEngine(st, nil, 0, slog.Default())

	assert.Len(t, e.Search("drill", Options{}), 2)
	assert.Equal(t, []string{"Drill"}, itemNames(e.Search("drill", Options{Threshold: -1})))
	assert.Empty(t, e.Search("zzzzz", Options{}))
}

func TestSearchSeesStoreUpdates(t *testing.T) {
	st := newStore(nil, nil, []*domain.Item{{ID: "i1", Name: "Drill"}})
	e := NewEngine(st, nil, 16, slog.Default())

	require.Len(t, e.Search("saw", Options{}), 0)

	st.SetItems([]*domain.Item{{ID: "i1", Name: "Drill"}, {ID: "i2", Name: "Saw"}})

	got := e.Search("saw", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, "i2", got[0].ID)
}

func TestSearchCachedResultsAreIsolated(t *testing.T) {
	st := newStore(nil, nil, []*domain.Item{{ID: "i1", Name: "Drill"}})
	e := NewEngine(st, nil, 16, slog.Default())

	first := e.Search("drill", Options{})
	require.Len(t, first, 1)
	first[0] = nil

	second := e.Search("drill", Options{})
	require.Len(t, second, 1)
	assert.NotNil(t, second[0])
}

func TestSearchResultsIncludeLocation(t *testing.T) {
	st := newStore(
		[]*domain.Place{{ID: "p1", Name: "Garage"}},
		[]*domain.Container{{ID: "c1", PlaceID: "p1", Name: "Shelf A"}},
		[]*domain.Item{{ID: "i1", ContainerID: "c1", Name: "Drill"}},
	)
	e := NewEngine(st, nil, 0, slog.Default())

	got := e.SearchResults("drill", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, "Shelf A", got[0].Container.Name)
	assert.Equal(t, "Garage", got[0].Place.Name)
	assert.Empty(t, e.SearchResults("", Options{}))
}

// swappingScorer empties the store the first time it scores.
type swappingScorer struct {
	once  sync.Once
	store *state.Store
}

func (s *swappingScorer) Score(q, t string) float64 {
	s.once.Do(func() { s.store.Replace(nil, nil, nil, nil) })
	return LevenshteinScorer{}.Score(q, t)
}

func TestSearchResultsJoinAgainstRankedSnapshot(t *testing.T) {
	st := newStore(
		[]*domain.Place{{ID: "p1", Name: "Garage"}},
		[]*domain.Container{{ID: "c1", PlaceID: "p1", Name: "Shelf A"}},
		[]*domain.Item{{ID: "i1", ContainerID: "c1", Name: "Drill"}},
	)
	e := NewEngine(st, &swappingScorer{store: st}, 0, slog.Default())

	got := e.SearchResults("drill", Options{})

	require.Len(t, got, 1)
	assert.Empty(t, st.Snapshot().Items)
	require.NotNil(t, got[0].Container)
	require.NotNil(t, got[0].Place)
	assert.Equal(t, "Shelf A", got[0].Container.Name)
	assert.Equal(t, "Garage", got[0].Place.Name)
}

func TestLevenshteinScorer(t *testing.T) {
	s := LevenshteinScorer{}

	assert.Zero(t, s.Score("Drill", "drill"))
	assert.InDelta(t, 0.05, s.Score("dril", "Drill"), 1e-9)
	assert.Less(t, s.Score("dril", "Drill"), s.Score("drll", "Drill"))
	assert.Equal(t, 1.0, s.Score("", "Drill"))
	assert.Equal(t, 1.0, s.Score("drill", ""))
	assert.Greater(t, s.Score("winter coat", "Summer Coat"), s.Score("winter coat", "Winter Boots"))
	assert.LessOrEqual(t, s.Score("zzzz", "Drill"), 1.0)
}
