// Package filter narrows homogeneous entity collections by a text query over
// a chosen set of fields, optionally combined with a predicate.
package filter

import "strings"

// Field is a named, typed accessor for one searchable field of T. Exactly one
// of Text or List is set.
type Field[T any] struct {
	Key  string
	Text func(T) string
	List func(T) []string
}

func (f Field[T]) matches(entity T, query string) bool {
	switch {
	case f.Text != nil:
		return strings.Contains(strings.ToLower(f.Text(entity)), query)
	case f.List != nil:
		for _, v := range f.List(entity) {
			if strings.Contains(strings.ToLower(v), query) {
				return true
			}
		}
	}
	return false
}

// Filter returns the entities of collection whose fields contain query,
// case-insensitively, and that satisfy predicate when it is non-nil. A blank
// query returns collection as is. Relative order is preserved.
func Filter[T any](collection []T, query string, fields []Field[T], predicate func(T) bool) []T {
	if strings.TrimSpace(query) == "" {
		return collection
	}
	q := strings.ToLower(query)

	out := make([]T, 0, len(collection))
	for _, entity := range collection {
		if !matchesAny(entity, q, fields) {
			continue
		}
		if predicate != nil && !predicate(entity) {
			continue
		}
		out = append(out, entity)
	}
	return out
}

func matchesAny[T any](entity T, q string, fields []Field[T]) bool {
	for _, f := range fields {
		if f.matches(entity, q) {
			return true
		}
	}
	return false
}

// Where applies predicate alone. A nil predicate returns collection as is.
func Where[T any](collection []T, predicate func(T) bool) []T {
	if predicate == nil {
		return collection
	}
	out := make([]T, 0, len(collection))
	for _, entity := range collection {
		if predicate(entity) {
			out = append(out, entity)
		}
	}
	return out
}

// All combines predicates with logical AND, ignoring nil entries. It returns
// nil when no predicate remains.
func All[T any](predicates ...func(T) bool) func(T) bool {
	var active []func(T) bool
	for _, p := range predicates {
		if p != nil {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(entity T) bool {
		for _, p := range active {
			if !p(entity) {
				return false
			}
		}
		return true
	}
}
