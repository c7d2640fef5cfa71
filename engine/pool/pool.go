// Package pool provides generic multiset operations over ordered collections
// of named entities (items or locations).
//
// Finding candidates is pure and separated from choosing one, which is the
// only place randomness enters. Pools are passed as slice pointers so that
// removals persist in the caller's collections.
package pool

import "fmt"

// Chooser supplies the randomness for choose steps.
type Chooser interface {
	Intn(n int) int
}

// PullError reports a removal that could not be satisfied. Found == 0 means
// the pattern matched nothing at all; otherwise it matched, but not enough
// copies remained.
type PullError struct {
	Pattern string
	Want    int
	Found   int
}

func (e *PullError) Error() string {
	if e.NotFound() {
		return fmt.Sprintf("no items matching %q", e.Pattern)
	}
	return fmt.Sprintf("not enough items matching %q: want %d, found %d", e.Pattern, e.Want, e.Found)
}

// NotFound reports whether the pattern matched nothing, as opposed to
// matching something in insufficient quantity.
func (e *PullError) NotFound() bool {
	return e.Found == 0
}

type ref struct {
	pool  int
	index int
}

// find returns the position of every element matching pred, in pool order.
func find[T any](pools []*[]T, pred func(T) bool) []ref {
	var refs []ref
	for pi, pool := range pools {
		for i, element := range *pool {
			if pred(element) {
				refs = append(refs, ref{pool: pi, index: i})
			}
		}
	}
	return refs
}

func remove[T any](pools []*[]T, r ref) T {
	pool := *pools[r.pool]
	element := pool[r.index]
	*pools[r.pool] = append(pool[:r.index], pool[r.index+1:]...)
	return element
}

// Count returns how many elements across all pools match pred.
func Count[T any](pools []*[]T, pred func(T) bool) int {
	return len(find(pools, pred))
}

// PullRandom removes and returns one element chosen uniformly at random among
// all matches across all pools combined. The uniformity is load-bearing:
// first-match order would bias which duplicate copy gets consumed.
func PullRandom[T any](pools []*[]T, pred func(T) bool, rng Chooser) (T, bool) {
	refs := find(pools, pred)
	if len(refs) == 0 {
		var zero T
		return zero, false
	}
	return remove(pools, refs[rng.Intn(len(refs))]), true
}

// FindRandom returns a random matching element without removing it.
func FindRandom[T any](pools []*[]T, pred func(T) bool, rng Chooser) (T, bool) {
	refs := find(pools, pred)
	if len(refs) == 0 {
		var zero T
		return zero, false
	}
	r := refs[rng.Intn(len(refs))]
	return (*pools[r.pool])[r.index], true
}

// PullFirst removes and returns the first matching element in pool order.
func PullFirst[T any](pools []*[]T, pred func(T) bool) (T, bool) {
	refs := find(pools, pred)
	if len(refs) == 0 {
		var zero T
		return zero, false
	}
	return remove(pools, refs[0]), true
}

// FindFirst returns the first matching element without removing it.
func FindFirst[T any](pools []*[]T, pred func(T) bool) (T, bool) {
	refs := find(pools, pred)
	if len(refs) == 0 {
		var zero T
		return zero, false
	}
	return (*pools[refs[0].pool])[refs[0].index], true
}

// PullAll removes and returns every matching element, in pool order.
func PullAll[T any](pools []*[]T, pred func(T) bool) []T {
	var elements []T
	for _, pool := range pools {
		kept := (*pool)[:0]
		for _, element := range *pool {
			if pred(element) {
				elements = append(elements, element)
			} else {
				kept = append(kept, element)
			}
		}
		*pool = kept
	}
	return elements
}
