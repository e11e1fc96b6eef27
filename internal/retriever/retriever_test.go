package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/ragserver/internal/storage"
)

// fixedEmbedder returns a preset vector for any input.
type fixedEmbedder struct {
	vector []float32
	err    error
}

func (f *fixedEmbedder) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func builtStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	vectors := [][]float32{
		{0, 3}, // distance 9 from origin
		{1, 0}, // distance 1
		{2, 0}, // distance 4
	}
	records := []storage.ChunkMetadata{
		{Source: "doc.pdf", ChunkIndex: 1, ChunkText: "far chunk"},
		{Source: "doc.pdf", ChunkIndex: 2, ChunkText: "near chunk"},
		{Source: "doc.pdf", ChunkIndex: 3, ChunkText: "middle chunk"},
	}
	require.NoError(t, store.Build(vectors, records))
	return store
}

func TestRetrieve_RanksByAscendingDistance(t *testing.T) {
	store := builtStore(t)
	r := New(&fixedEmbedder{vector: []float32{0, 0}}, store, nil)

	results, err := r.Retrieve(context.Background(), "anything", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "near chunk", results[0].Text)
	assert.Equal(t, "middle chunk", results[1].Text)
	assert.Equal(t, "far chunk", results[2].Text)
	assert.Less(t, results[0].Distance, results[1].Distance)
	assert.Less(t, results[1].Distance, results[2].Distance)
}

func TestRetrieve_ResultCarriesProvenance(t *testing.T) {
	store := builtStore(t)
	r := New(&fixedEmbedder{vector: []float32{0, 0}}, store, nil)

	results, err := r.Retrieve(context.Background(), "anything", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc.pdf", results[0].Metadata.Source)
	assert.Equal(t, 2, results[0].Metadata.ChunkIndex)
}

func TestRetrieve_ColdStartReturnsEmpty(t *testing.T) {
	store, err := storage.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	r := New(&fixedEmbedder{vector: []float32{1, 2}}, store, nil)

	results, err := r.Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieve_BlankQueryReturnsEmpty(t *testing.T) {
	store := builtStore(t)
	embedder := &fixedEmbedder{err: errors.New("must not be called")}
	r := New(embedder, store, nil)

	results, err := r.Retrieve(context.Background(), "   \n ", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieve_EmbedderFailurePropagates(t *testing.T) {
	store := builtStore(t)
	r := New(&fixedEmbedder{err: errors.New("model down")}, store, nil)

	_, err := r.Retrieve(context.Background(), "anything", 5)
	assert.Error(t, err)
}

func TestRetrieve_DefaultsKToFive(t *testing.T) {
	store, err := storage.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	vectors := make([][]float32, 8)
	records := make([]storage.ChunkMetadata, 8)
	for i := range vectors {
		vectors[i] = []float32{float32(i)}
		records[i] = storage.ChunkMetadata{Source: "d.pdf", ChunkIndex: i + 1, ChunkText: "t"}
	}
	require.NoError(t, store.Build(vectors, records))

	r := New(&fixedEmbedder{vector: []float32{0}}, store, nil)
	results, err := r.Retrieve(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultTopK)
}
