// Package storage pairs a flat vector index with a positional metadata
// store and persists both under one directory.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store owns the vector index and its metadata records. Record i always
// describes vector i; Build enforces that alignment and rewrites both
// persisted files together. A readers-writer lock makes concurrent
// searches safe against rebuilds and (re)loads.
type Store struct {
	mu     sync.RWMutex
	dir    string
	index  *FlatIndex
	meta   []ChunkMetadata
	loaded bool
	logger *slog.Logger
}

// NewStore creates a store persisting under dir. The directory is created
// if missing. Nothing is loaded until Load or the first Search.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	return &Store{
		dir:    dir,
		index:  NewFlatIndex(),
		logger: logger,
	}, nil
}

// Build replaces the index and metadata with the given aligned slices and
// persists both files. On any failure the previous in-memory and on-disk
// state is left intact.
func (s *Store) Build(vectors [][]float32, records []ChunkMetadata) error {
	if len(vectors) != len(records) {
		return fmt.Errorf("%w: %d vectors but %d metadata records",
			ErrDimensionMismatch, len(vectors), len(records))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := NewFlatIndex()
	if err := next.Build(vectors); err != nil {
		return err
	}

	if err := saveIndex(next, s.indexPath()); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	if err := saveMetadata(records, s.metadataPath()); err != nil {
		return fmt.Errorf("persist metadata: %w", err)
	}

	s.index = next
	s.meta = append([]ChunkMetadata(nil), records...)
	s.loaded = true
	s.logger.Info("index rebuilt", "vectors", next.Len(), "dimension", next.Dimension())
	return nil
}

// Load restores the persisted pair. A missing pair is a cold start: the
// store becomes an empty, usable index. A file that exists but cannot be
// read back is an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	ix, err := loadIndex(s.indexPath())
	if err != nil {
		if errors.Is(err, ErrIndexNotFound) {
			s.logger.Info("no persisted index, starting cold")
			s.index = NewFlatIndex()
			s.meta = nil
			s.loaded = true
			return nil
		}
		return err
	}

	records, err := loadMetadata(s.metadataPath())
	if err != nil {
		if errors.Is(err, ErrIndexNotFound) {
			// Index present but metadata missing: the pair is broken.
			return fmt.Errorf("%w: index file present but metadata file missing", ErrIndexCorrupt)
		}
		return err
	}

	if len(records) != ix.Len() {
		return fmt.Errorf("%w: %d metadata records for %d vectors",
			ErrIndexCorrupt, len(records), ix.Len())
	}

	s.index = ix
	s.meta = records
	s.loaded = true
	s.logger.Info("index loaded", "vectors", ix.Len(), "dimension", ix.Dimension())
	return nil
}

// Search runs a nearest-neighbor query, lazily loading the persisted pair
// on first use. An empty or never-built index returns empty results.
func (s *Store) Search(query []float32, k int) ([]float64, []int, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.index.Search(query, k)
	}
	s.mu.RUnlock()

	s.mu.Lock()
	if !s.loaded {
		if err := s.loadLocked(); err != nil {
			s.mu.Unlock()
			return nil, nil, err
		}
	}
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Search(query, k)
}

// Metadata returns the record for the given ordinal. Ordinals outside the
// store are reported with ErrOutOfRange; a stale index can hand out such
// ordinals and callers are expected to skip them.
func (s *Store) Metadata(ordinal int) (ChunkMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ordinal < 0 || ordinal >= len(s.meta) {
		return ChunkMetadata{}, fmt.Errorf("%w: ordinal %d, store holds %d records",
			ErrOutOfRange, ordinal, len(s.meta))
	}
	return s.meta[ordinal], nil
}

// Len returns the number of indexed chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Len()
}

func (s *Store) indexPath() string    { return filepath.Join(s.dir, IndexFileName) }
func (s *Store) metadataPath() string { return filepath.Join(s.dir, MetadataFileName) }
