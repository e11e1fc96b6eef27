package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bull/ragserver/internal/answer"
	"github.com/bull/ragserver/internal/indexer"
	"github.com/bull/ragserver/internal/retriever"
)

// Ingester runs the document ingest pipeline.
type Ingester interface {
	Ingest(ctx context.Context, paths []string) (*indexer.IndexResult, error)
}

// Retriever returns ranked passages for a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]retriever.Result, error)
}

// Answerer generates an answer from retrieved passages.
type Answerer interface {
	Generate(ctx context.Context, question string, results []retriever.Result) (*answer.Answer, error)
}

// ChunkCounter reports how many chunks are indexed; the store implements
// it.
type ChunkCounter interface {
	Len() int
}

// Server wires the REST handlers to the pipeline, retriever and answerer.
type Server struct {
	ingester  Ingester
	retriever Retriever
	answerer  Answerer
	counter   ChunkCounter
	topK      int
	logger    *slog.Logger
}

// Config collects the Server dependencies.
type Config struct {
	Ingester  Ingester
	Retriever Retriever
	Answerer  Answerer
	Counter   ChunkCounter
	TopK      int
	Logger    *slog.Logger
}

// New creates a Server from its dependencies.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = retriever.DefaultTopK
	}
	return &Server{
		ingester:  cfg.Ingester,
		retriever: cfg.Retriever,
		answerer:  cfg.Answerer,
		counter:   cfg.Counter,
		topK:      topK,
		logger:    logger,
	}
}

// Routes returns the HTTP mux for the API.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /documents", s.handleUploadDocuments)
	mux.HandleFunc("POST /question", s.handleQuestion)
	return mux
}
