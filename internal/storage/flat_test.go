package storage

import (
	"errors"
	"testing"
)

func TestFlatIndex_RankingByDistance(t *testing.T) {
	ix := NewFlatIndex()
	// Distances from the origin query: vector 2 is nearest, then 0, then 1.
	err := ix.Build([][]float32{
		{3, 0},
		{0, 5},
		{1, 0},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	distances, ordinals, err := ix.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	wantOrdinals := []int{2, 0, 1}
	wantDistances := []float64{1, 9, 25}
	for i := range wantOrdinals {
		if ordinals[i] != wantOrdinals[i] {
			t.Errorf("ordinals[%d] = %d, want %d", i, ordinals[i], wantOrdinals[i])
		}
		if distances[i] != wantDistances[i] {
			t.Errorf("distances[%d] = %v, want %v", i, distances[i], wantDistances[i])
		}
	}
}

func TestFlatIndex_TiesBreakOnSmallerOrdinal(t *testing.T) {
	ix := NewFlatIndex()
	// Vectors 1 and 3 are equidistant from the query.
	err := ix.Build([][]float32{
		{10, 0},
		{0, 2},
		{0, 0},
		{2, 0},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, ordinals, err := ix.Search([]float32{0, 0}, 4)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	want := []int{2, 1, 3, 0}
	for i := range want {
		if ordinals[i] != want[i] {
			t.Errorf("ordinals = %v, want %v", ordinals, want)
			break
		}
	}
}

func TestFlatIndex_EmptySearchNotAnError(t *testing.T) {
	ix := NewFlatIndex()
	if err := ix.Build(nil); err != nil {
		t.Fatalf("Build(nil) failed: %v", err)
	}

	distances, ordinals, err := ix.Search([]float32{1, 2, 3}, 5)
	if err != nil {
		t.Fatalf("Search on empty index errored: %v", err)
	}
	if len(distances) != 0 || len(ordinals) != 0 {
		t.Errorf("expected empty results, got %v / %v", distances, ordinals)
	}
}

func TestFlatIndex_KLargerThanCount(t *testing.T) {
	ix := NewFlatIndex()
	if err := ix.Build([][]float32{{1}, {2}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	distances, ordinals, err := ix.Search([]float32{0}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(distances) != 2 || len(ordinals) != 2 {
		t.Errorf("expected all 2 vectors, got %d", len(ordinals))
	}
}

func TestFlatIndex_InconsistentDimensionsRejected(t *testing.T) {
	ix := NewFlatIndex()
	err := ix.Build([][]float32{{1, 2}, {1, 2, 3}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Build error = %v, want ErrDimensionMismatch", err)
	}
}

func TestFlatIndex_QueryDimensionChecked(t *testing.T) {
	ix := NewFlatIndex()
	if err := ix.Build([][]float32{{1, 2, 3}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, _, err := ix.Search([]float32{1, 2}, 1)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Search error = %v, want ErrDimensionMismatch", err)
	}
}

func TestFlatIndex_RebuildReplacesContent(t *testing.T) {
	ix := NewFlatIndex()
	if err := ix.Build([][]float32{{1}, {2}, {3}}); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	if err := ix.Build([][]float32{{9, 9}}); err != nil {
		t.Fatalf("second Build failed: %v", err)
	}

	if ix.Len() != 1 {
		t.Errorf("Len = %d after rebuild, want 1", ix.Len())
	}
	if ix.Dimension() != 2 {
		t.Errorf("Dimension = %d after rebuild, want 2", ix.Dimension())
	}
}
