// Package main provides the RAG HTTP server entry point.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bull/ragserver/internal/answer"
	"github.com/bull/ragserver/internal/config"
	"github.com/bull/ragserver/internal/embedding"
	"github.com/bull/ragserver/internal/indexer"
	"github.com/bull/ragserver/internal/pdf"
	"github.com/bull/ragserver/internal/retriever"
	"github.com/bull/ragserver/internal/server"
	"github.com/bull/ragserver/internal/storage"
	"github.com/bull/ragserver/internal/textsplit"
)

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	cfgPath := os.Getenv("RAG_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Debug)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	store, err := storage.NewStore(cfg.Index.Dir, logger)
	if err != nil {
		logger.Error("failed to open index store", "error", err)
		os.Exit(1)
	}
	// Warm load: a missing pair is a cold start, a corrupt pair is fatal.
	if err := store.Load(); err != nil {
		logger.Error("failed to load persisted index", "error", err)
		os.Exit(1)
	}

	embeddingClient, err := embedding.NewClient(cfg.EmbeddingAPIKey())
	if err != nil {
		logger.Error("failed to create embedding client", "error", err)
		os.Exit(1)
	}
	embedder := embedding.NewEmbedder(embeddingClient, cfg.Embedding.Model, cfg.Embedding.BatchSize)

	extractor := pdf.NewExtractor(logger)
	splitter := textsplit.NewSplitter(cfg.Chunking.Size, cfg.Chunking.Overlap)
	pipeline := indexer.NewPipeline(extractor, splitter, embedder, store, logger)
	ret := retriever.New(embedder, store, logger)
	answerer := answer.New(embeddingClient.Client(), cfg.LLM.Model, logger)

	srv := server.New(server.Config{
		Ingester:  pipeline,
		Retriever: ret,
		Answerer:  answerer,
		Counter:   store,
		TopK:      cfg.Retrieval.TopK,
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown error", "error", err)
		}
	}()

	logger.Info("starting server", "addr", cfg.Server.Addr, "indexed_chunks", store.Len())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
