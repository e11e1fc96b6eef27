// Package retriever turns a free-text query into ranked supporting
// passages with provenance.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bull/ragserver/internal/storage"
)

// DefaultTopK is the number of results retrieved when the caller does not
// specify one.
const DefaultTopK = 5

// Embedder embeds query text; a single-element batch is used per query.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Result is one retrieved passage. Distance is the squared L2 distance
// between the query and the chunk embedding; lower means more similar.
type Result struct {
	Text     string                `json:"text"`
	Metadata storage.ChunkMetadata `json:"metadata"`
	Distance float64               `json:"distance"`
}

// Retriever composes the embedder and the store into the query-time path.
type Retriever struct {
	embedder Embedder
	store    *storage.Store
	logger   *slog.Logger
}

// New creates a Retriever.
func New(embedder Embedder, store *storage.Store, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Retrieve returns up to k passages ranked by ascending distance. A
// whitespace-only query or a never-built index yields an empty result,
// not an error; callers treat that as insufficient grounding. Ordinals
// the metadata store cannot resolve are skipped, never surfaced.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	vectors, err := r.embedder.GenerateEmbeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}

	distances, ordinals, err := r.store.Search(vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]Result, 0, len(ordinals))
	for i, ordinal := range ordinals {
		rec, err := r.store.Metadata(ordinal)
		if err != nil {
			if errors.Is(err, storage.ErrOutOfRange) {
				// Stale index handing out ordinals past the metadata:
				// drop the result rather than failing the query.
				r.logger.Warn("skipping unresolvable ordinal", "ordinal", ordinal)
				continue
			}
			return nil, fmt.Errorf("metadata lookup: %w", err)
		}
		results = append(results, Result{
			Text:     rec.ChunkText,
			Metadata: rec,
			Distance: distances[i],
		})
	}

	r.logger.Info("retrieved chunks", "query_len", len(query), "results", len(results))
	return results, nil
}
