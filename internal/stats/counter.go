// Package stats contains the trip aggregations and their text reports.
package stats

import (
	"cmp"
	"errors"
	"sort"
)

// ErrNoData is returned when an aggregation runs over an empty table.
var ErrNoData = errors.New("no data")

// Count pairs a value with its frequency.
type Count[T comparable] struct {
	Value T
	Count int
}

// Counter tallies values and remembers the order in which they first appeared.
type Counter[T comparable] struct {
	counts  map[T]int
	order   []T
	compare func(a, b T) int
}

// NewCounter returns an empty Counter for an ordered type.
func NewCounter[T cmp.Ordered]() *Counter[T] {
	return NewCounterFunc(cmp.Compare[T])
}

// NewCounterFunc returns an empty Counter whose Mode breaks ties with compare.
func NewCounterFunc[T comparable](compare func(a, b T) int) *Counter[T] {
	return &Counter[T]{counts: map[T]int{}, compare: compare}
}

// Add records one occurrence of v.
func (c *Counter[T]) Add(v T) {
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v]++
}

// Len returns the number of distinct values.
func (c *Counter[T]) Len() int {
	return len(c.order)
}

// Total returns the number of recorded occurrences.
func (c *Counter[T]) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Get returns the count for v.
func (c *Counter[T]) Get(v T) int {
	return c.counts[v]
}

// Mode returns the most frequent value. Ties go to the smallest value
// under the counter's ordering.
func (c *Counter[T]) Mode() (T, int, bool) {
	var best T
	bestCount := 0
	for _, v := range c.order {
		n := c.counts[v]
		if n > bestCount || (n == bestCount && n > 0 && c.compare(v, best) < 0) {
			best = v
			bestCount = n
		}
	}
	return best, bestCount, bestCount > 0
}

// Sorted returns all values by descending count, ties in first-seen order.
func (c *Counter[T]) Sorted() []Count[T] {
	out := make([]Count[T], len(c.order))
	for i, v := range c.order {
		out[i] = Count[T]{Value: v, Count: c.counts[v]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
