// Package sorting orders entity collections by one of a fixed set of named
// strategies.
package sorting

import (
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vbonduro/stowaway/internal/timestamp"
)

type Strategy string

const (
	RecentlyAdded    Strategy = "recently-added"
	RecentlyModified Strategy = "recently-modified"
	OldestFirst      Strategy = "oldest-first"
	AToZ             Strategy = "a-z"
	ZToA             Strategy = "z-a"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{RecentlyAdded, RecentlyModified, OldestFirst, AToZ, ZToA}

// ParseStrategy reports whether s names a supported strategy.
func ParseStrategy(s string) (Strategy, bool) {
	st := Strategy(s)
	if slices.Contains(Strategies, st) {
		return st, true
	}
	return st, false
}

// Sortable exposes the keys strategies compare on. Timestamps may be any
// shape timestamp.Normalize accepts; SortModified returns nil when the
// entity does not track access time.
type Sortable interface {
	SortName() string
	SortCreated() any
	SortModified() any
}

type keyed[T any] struct {
	entity   T
	name     string
	created  time.Time
	modified time.Time
}

// Sort returns a new slice ordered by strategy; collection is not modified.
// Equal keys keep their input order. An unknown strategy yields a copy in
// input order.
func Sort[T Sortable](collection []T, strategy Strategy) []T {
	out := make([]T, len(collection))
	if _, ok := ParseStrategy(string(strategy)); !ok || len(collection) < 2 {
		copy(out, collection)
		return out
	}

	keys := make([]keyed[T], len(collection))
	for i, e := range collection {
		k := keyed[T]{entity: e, created: timestamp.Normalize(e.SortCreated())}
		if strategy == RecentlyModified {
			k.modified = k.created
			if m := e.SortModified(); m != nil {
				k.modified = timestamp.Normalize(m)
			}
		}
		if strategy == AToZ || strategy == ZToA {
			k.name = e.SortName()
		}
		keys[i] = k
	}

	slices.SortStableFunc(keys, comparator[T](strategy))

	for i, k := range keys {
		out[i] = k.entity
	}
	return out
}

func comparator[T any](strategy Strategy) func(a, b keyed[T]) int {
	switch strategy {
	case RecentlyAdded:
		return func(a, b keyed[T]) int { return b.created.Compare(a.created) }
	case RecentlyModified:
		return func(a, b keyed[T]) int { return b.modified.Compare(a.modified) }
	case OldestFirst:
		return func(a, b keyed[T]) int { return a.created.Compare(b.created) }
	case AToZ:
		c := collate.New(language.English)
		return func(a, b keyed[T]) int { return c.CompareString(a.name, b.name) }
	default:
		c := collate.New(language.English)
		return func(a, b keyed[T]) int { return c.CompareString(b.name, a.name) }
	}
}
