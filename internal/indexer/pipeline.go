// Package indexer orchestrates document ingest: extraction, chunking,
// embedding and index rebuild.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bull/ragserver/internal/storage"
)

// ErrAllDocumentsFailed reports an ingest batch in which not a single
// document produced chunks. Partial failures are not errors; they are
// reported in IndexResult.FailedDocs.
var ErrAllDocumentsFailed = errors.New("no documents were successfully processed")

// TextExtractor produces plain text from a document file.
type TextExtractor interface {
	Text(path string) (string, error)
}

// Splitter cuts document text into chunks.
type Splitter interface {
	Split(text string) []string
}

// Embedder turns texts into vectors, order-preserving.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// IndexResult contains statistics about an ingest operation.
type IndexResult struct {
	RunID          string
	TotalDocs      int
	SuccessfulDocs int
	FailedDocs     []FailedDoc
	TotalChunks    int
	Duration       time.Duration
}

// FailedDoc records a document that was skipped during ingest.
type FailedDoc struct {
	Name   string
	Reason string
}

// Pipeline drives the full ingest flow and rebuilds the store from the
// complete batch.
type Pipeline struct {
	extractor TextExtractor
	splitter  Splitter
	embedder  Embedder
	store     *storage.Store
	logger    *slog.Logger
}

// NewPipeline creates an ingest pipeline with the given components.
func NewPipeline(extractor TextExtractor, splitter Splitter, embedder Embedder, store *storage.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		logger:    logger,
	}
}

// ProcessDocuments extracts and chunks each document, tagging chunks with
// their source name and a 1-based per-document index. Documents that fail
// extraction, yield no text or yield no chunks are skipped and reported;
// the error is non-nil only when every document failed.
func (p *Pipeline) ProcessDocuments(paths []string) ([]storage.Chunk, []FailedDoc, error) {
	var chunks []storage.Chunk
	var failed []FailedDoc
	successful := 0

	for _, path := range paths {
		name := filepath.Base(path)

		text, err := p.extractor.Text(path)
		if err != nil {
			p.logger.Warn("failed to extract document", "name", name, "error", err)
			failed = append(failed, FailedDoc{Name: name, Reason: err.Error()})
			continue
		}
		if strings.TrimSpace(text) == "" {
			p.logger.Warn("no extractable text in document", "name", name)
			failed = append(failed, FailedDoc{Name: name, Reason: "no extractable text"})
			continue
		}

		pieces := p.splitter.Split(text)
		if len(pieces) == 0 {
			p.logger.Warn("no chunks produced from document", "name", name)
			failed = append(failed, FailedDoc{Name: name, Reason: "no chunks produced"})
			continue
		}

		for i, piece := range pieces {
			chunks = append(chunks, storage.Chunk{
				Text: piece,
				Metadata: storage.ChunkMetadata{
					Source:     name,
					ChunkIndex: i + 1,
					ChunkSize:  len(piece),
					WordCount:  len(strings.Fields(piece)),
				},
			})
		}
		successful++
		p.logger.Info("processed document", "name", name, "chunks", len(pieces))
	}

	if len(paths) > 0 && successful == 0 {
		return nil, failed, ErrAllDocumentsFailed
	}
	return chunks, failed, nil
}

// Ingest processes the documents, embeds every chunk and rebuilds the
// store from the result. The previous index remains intact if embedding
// or the rebuild fails.
func (p *Pipeline) Ingest(ctx context.Context, paths []string) (*IndexResult, error) {
	start := time.Now()
	result := &IndexResult{
		RunID:     uuid.New().String(),
		TotalDocs: len(paths),
	}
	p.logger.Info("starting ingest", "run_id", result.RunID, "documents", len(paths))

	chunks, failed, err := p.ProcessDocuments(paths)
	result.FailedDocs = failed
	result.SuccessfulDocs = len(paths) - len(failed)
	if err != nil {
		return result, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := p.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return result, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return result, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	records := make([]storage.ChunkMetadata, len(chunks))
	for i, chunk := range chunks {
		rec := chunk.Metadata
		rec.ChunkText = chunk.Text
		records[i] = rec
	}

	if err := p.store.Build(vectors, records); err != nil {
		return result, fmt.Errorf("rebuild index: %w", err)
	}

	result.TotalChunks = len(chunks)
	result.Duration = time.Since(start)
	p.logger.Info("ingest complete",
		"run_id", result.RunID,
		"successful", result.SuccessfulDocs,
		"failed", len(result.FailedDocs),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)
	return result, nil
}
