package sequence

import (
	"iter"
	"slices"
)

// Iterator is a generic, immutable, chainable iterator for any type T.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From creates a new Iterator from a slice of T.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, v := range data {
				if !yield(v) {
					return
				}
			}
		},
	}
}

// Seq returns the underlying sequence function for range-over-func loops.
func (i *Iterator[T]) Seq() iter.Seq[T] {
	return i.seq
}

// Collect exhausts the iterator and returns a slice of all elements.
func (i *Iterator[T]) Collect() []T {
	var out []T
	for v := range i.seq {
		out = append(out, v)
	}
	return out
}

// Sort returns a new Iterator with elements stably sorted by cmp.
// Example: it.Sort(func(a, b Entry) int { return strings.Compare(a.ID, b.ID) })
func (i *Iterator[T]) Sort(cmp func(a, b T) int) *Iterator[T] {
	data := i.Collect()
	slices.SortStableFunc(data, cmp)
	return From(data)
}

// Filter returns a new Iterator containing only elements that satisfy the predicate.
func (i *Iterator[T]) Filter(pred func(T) bool) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for v := range i.seq {
				if pred(v) && !yield(v) {
					return
				}
			}
		},
	}
}

// Find returns the first element matching the predicate, or false if not found.
func (i *Iterator[T]) Find(pred func(T) bool) (T, bool) {
	for v := range i.seq {
		if pred(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Any reports whether at least one element satisfies pred.
func (i *Iterator[T]) Any(pred func(T) bool) bool {
	_, ok := i.Find(pred)
	return ok
}

// Chain concatenates multiple iterators into one.
func Chain[T any](iters ...*Iterator[T]) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, it := range iters {
				for v := range it.seq {
					if !yield(v) {
						return
					}
				}
			}
		},
	}
}

// Distinct drops repeated elements, keeping the first occurrence.
func Distinct[T comparable](it *Iterator[T]) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			seen := make(map[T]struct{})
			for v := range it.seq {
				if _, dup := seen[v]; dup {
					continue
				}
				seen[v] = struct{}{}
				if !yield(v) {
					return
				}
			}
		},
	}
}

// FlatMap expands every element into zero or more results.
func FlatMap[T any, S any](it *Iterator[T], fn func(T) []S) *Iterator[S] {
	return &Iterator[S]{
		seq: func(yield func(S) bool) {
			for v := range it.seq {
				for _, s := range fn(v) {
					if !yield(s) {
						return
					}
				}
			}
		},
	}
}
