package storage

import (
	"fmt"
	"sort"
)

// FlatIndex is an exact nearest-neighbor index over dense float32 vectors
// using squared Euclidean distance. It is rebuilt wholesale on every
// ingest; there is no incremental insertion.
type FlatIndex struct {
	dim     int
	vectors [][]float32
}

// NewFlatIndex returns an empty index.
func NewFlatIndex() *FlatIndex {
	return &FlatIndex{}
}

// Build replaces the index content with the given vectors. All vectors
// must share one dimensionality; an empty slice yields a valid empty
// index.
func (ix *FlatIndex) Build(vectors [][]float32) error {
	if len(vectors) == 0 {
		ix.dim = 0
		ix.vectors = nil
		return nil
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(v), dim)
		}
	}

	copied := make([][]float32, len(vectors))
	for i, v := range vectors {
		copied[i] = append([]float32(nil), v...)
	}
	ix.dim = dim
	ix.vectors = copied
	return nil
}

// Len returns the number of indexed vectors.
func (ix *FlatIndex) Len() int { return len(ix.vectors) }

// Dimension returns the vector dimensionality, 0 when empty.
func (ix *FlatIndex) Dimension() int { return ix.dim }

// Search returns up to k nearest vectors to query by squared L2 distance,
// ascending, with ties broken by smaller ordinal. An empty index returns
// empty slices. A k larger than the index returns everything.
func (ix *FlatIndex) Search(query []float32, k int) ([]float64, []int, error) {
	if len(ix.vectors) == 0 {
		return nil, nil, nil
	}
	if len(query) != ix.dim {
		return nil, nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil, nil
	}

	type scored struct {
		ordinal  int
		distance float64
	}
	results := make([]scored, len(ix.vectors))
	for i, v := range ix.vectors {
		results[i] = scored{ordinal: i, distance: squaredL2(query, v)}
	}

	// SliceStable keeps equal distances in ordinal order.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].distance < results[b].distance
	})

	if k > len(results) {
		k = len(results)
	}
	distances := make([]float64, k)
	ordinals := make([]int, k)
	for i := 0; i < k; i++ {
		distances[i] = results[i].distance
		ordinals[i] = results[i].ordinal
	}
	return distances, ordinals, nil
}

// squaredL2 computes the squared Euclidean distance between two vectors of
// equal length. Accumulating in float64 keeps results stable across
// persist/restore cycles.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
