// Package weighted provides an ordered collection of weighted items with
// draw-proportional selection and sum-capped weight rebalancing.
package weighted

import (
	"errors"
	"fmt"
	"math/rand"
)

// minWeight is the floor below which a rebalanced weight collapses to zero.
const minWeight = 1e-5

// ErrEmptyInventory is returned when a draw is requested from a selector
// that holds no items.
var ErrEmptyInventory = errors.New("weighted: selector has no items")

// IndexError reports an indexed access outside [0, Len()).
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("weighted: index %d out of range [0,%d)", e.Index, e.Count)
}

// Item pairs a value with a selection weight in [0,1].
type Item[T any] struct {
	Value  T
	Weight float64
}

// Selector holds an ordered sequence of weighted items. Insertion order is
// meaningful: draws scan cumulative weights in that order. Rebalance keeps
// the weight sum at or below 1. Not safe for concurrent use; callers that
// share a selector must serialize access.
type Selector[T any] struct {
	items []Item[T]
	prev  []float64 // weights snapshotted by the last Rebalance
}

// New returns an empty selector.
func New[T any]() *Selector[T] {
	return &Selector[T]{}
}

// Add appends an item with the given weight, clamped to [0,1]. Add never
// rebalances; callers invoke Rebalance once editing is done.
func (s *Selector[T]) Add(value T, weight float64) {
	s.items = append(s.items, Item[T]{Value: value, Weight: clamp01(weight)})
}

// Len returns the number of items.
func (s *Selector[T]) Len() int { return len(s.items) }

// Value returns the value stored at index i.
func (s *Selector[T]) Value(i int) (T, error) {
	if i < 0 || i >= len(s.items) {
		var zero T
		return zero, &IndexError{Index: i, Count: len(s.items)}
	}
	return s.items[i].Value, nil
}

// Weight returns the weight stored at index i.
func (s *Selector[T]) Weight(i int) (float64, error) {
	if i < 0 || i >= len(s.items) {
		return 0, &IndexError{Index: i, Count: len(s.items)}
	}
	return s.items[i].Weight, nil
}

// SetWeight replaces the weight at index i, clamped to [0,1].
func (s *Selector[T]) SetWeight(i int, weight float64) error {
	if i < 0 || i >= len(s.items) {
		return &IndexError{Index: i, Count: len(s.items)}
	}
	s.items[i].Weight = clamp01(weight)
	return nil
}

// Values returns the item values in insertion order.
func (s *Selector[T]) Values() []T {
	out := make([]T, len(s.items))
	for i, it := range s.items {
		out[i] = it.Value
	}
	return out
}

// Sum returns the current weight total.
func (s *Selector[T]) Sum() float64 {
	sum := 0.0
	for _, it := range s.items {
		sum += it.Weight
	}
	return sum
}

// Rebalance caps the weight sum at 1 after an edit. It compares current
// weights against the snapshot taken by the previous Rebalance and assumes at
// most one entry changed; when several changed, the last one wins. If the sum
// exceeds 1, the changed entry keeps its new weight and (new - previous) is
// subtracted from every other entry, flooring results below 1e-5 to exactly
// zero. Entries appended since the last snapshot count as changed from zero.
// No-op on an empty selector.
func (s *Selector[T]) Rebalance() {
	if len(s.items) == 0 {
		return
	}

	changed := -1
	prevWeight := 0.0
	for i, it := range s.items {
		old := 0.0
		if i < len(s.prev) {
			old = s.prev[i]
		}
		if it.Weight != old {
			changed = i
			prevWeight = old
		}
	}

	if changed >= 0 && s.Sum() > 1 {
		delta := s.items[changed].Weight - prevWeight
		for i := range s.items {
			if i == changed {
				continue
			}
			w := s.items[i].Weight - delta
			if w < minWeight {
				w = 0
			}
			s.items[i].Weight = w
		}
	}

	s.snapshot()
}

func (s *Selector[T]) snapshot() {
	s.prev = s.prev[:0]
	for _, it := range s.items {
		s.prev = append(s.prev, it.Weight)
	}
}

// Draw picks an item with probability proportional to its weight: a uniform
// value in [0, sum) selects the first item whose cumulative weight reaches
// it. A zero sum falls back to the first item.
func (s *Selector[T]) Draw(rng *rand.Rand) (T, error) {
	var zero T
	if len(s.items) == 0 {
		return zero, ErrEmptyInventory
	}

	sum := s.Sum()
	if sum == 0 {
		return s.items[0].Value, nil
	}

	draw := rng.Float64() * sum
	cum := 0.0
	for _, it := range s.items {
		cum += it.Weight
		if cum >= draw {
			return it.Value, nil
		}
	}
	// Rounding can leave the final cumulative a hair under the draw.
	return s.items[len(s.items)-1].Value, nil
}

// DrawOrDefault draws from [0,1) regardless of the weight sum. When the sum
// is below 1 there is a 1-sum chance that no cumulative weight reaches the
// draw; the zero value and ok=false are returned in that case.
func (s *Selector[T]) DrawOrDefault(rng *rand.Rand) (value T, ok bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}

	draw := rng.Float64()
	cum := 0.0
	for _, it := range s.items {
		cum += it.Weight
		if cum >= draw {
			return it.Value, true
		}
	}
	return zero, false
}

func clamp01(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
