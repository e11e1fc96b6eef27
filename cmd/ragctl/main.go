// Package main provides the ragctl CLI for ingesting documents and asking
// questions against the local index.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/ragserver/internal/answer"
	"github.com/bull/ragserver/internal/config"
	"github.com/bull/ragserver/internal/embedding"
	"github.com/bull/ragserver/internal/indexer"
	"github.com/bull/ragserver/internal/pdf"
	"github.com/bull/ragserver/internal/retriever"
	"github.com/bull/ragserver/internal/storage"
	"github.com/bull/ragserver/internal/textsplit"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Manage the local document QA index",
	Long:  "CLI tool for ingesting PDF documents into the local vector index and asking questions against it",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <pdf>...",
	Short: "Rebuild the index from the given PDF files",
	Long: `Extracts text from the given PDFs, chunks and embeds it, and rebuilds
the vector index from the complete batch. The previous index is replaced.

Environment variables:
  OPENAI_API_KEY  API key for embeddings (required)
  RAG_CONFIG      config file path (default: config.yaml)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question against the indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (overrides RAG_CONFIG)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("RAG_CONFIG")
	}
	if path == "" {
		path = "config.yaml"
	}
	return config.Load(path)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := storage.NewStore(cfg.Index.Dir, slog.Default())
	if err != nil {
		return fmt.Errorf("open index store: %w", err)
	}

	embeddingClient, err := embedding.NewClient(cfg.EmbeddingAPIKey())
	if err != nil {
		return fmt.Errorf("create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, cfg.Embedding.Model, cfg.Embedding.BatchSize)

	extractor := pdf.NewExtractor(slog.Default())
	splitter := textsplit.NewSplitter(cfg.Chunking.Size, cfg.Chunking.Overlap)
	pipeline := indexer.NewPipeline(extractor, splitter, embedder, store, slog.Default())

	fmt.Printf("Ingesting %d documents...\n", len(args))
	result, err := pipeline.Ingest(ctx, args)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Ingest complete!")
	fmt.Printf("  Documents: %d/%d\n", result.SuccessfulDocs, result.TotalDocs)
	fmt.Printf("  Chunks:    %d\n", result.TotalChunks)
	fmt.Printf("  Duration:  %s\n", result.Duration.Round(time.Millisecond))

	if len(result.FailedDocs) > 0 {
		fmt.Println()
		fmt.Println("Failed documents:")
		for _, failed := range result.FailedDocs {
			fmt.Printf("  - %s: %s\n", failed.Name, failed.Reason)
		}
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := storage.NewStore(cfg.Index.Dir, slog.Default())
	if err != nil {
		return fmt.Errorf("open index store: %w", err)
	}
	if err := store.Load(); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	embeddingClient, err := embedding.NewClient(cfg.EmbeddingAPIKey())
	if err != nil {
		return fmt.Errorf("create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, cfg.Embedding.Model, cfg.Embedding.BatchSize)

	ret := retriever.New(embedder, store, slog.Default())
	results, err := ret.Retrieve(ctx, question, cfg.Retrieval.TopK)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No relevant documents were found to answer the question.")
		return nil
	}

	answerer := answer.New(embeddingClient.Client(), cfg.LLM.Model, slog.Default())
	resp, err := answerer.Generate(ctx, question, results)
	if err != nil {
		return fmt.Errorf("generate answer: %w", err)
	}

	fmt.Println(resp.Answer)
	fmt.Println()
	fmt.Println("Sources:")
	for _, res := range results {
		fmt.Printf("  - %s (chunk %d, distance %.4f)\n",
			res.Metadata.Source, res.Metadata.ChunkIndex, res.Distance)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := storage.NewStore(cfg.Index.Dir, slog.Default())
	if err != nil {
		return fmt.Errorf("open index store: %w", err)
	}
	if err := store.Load(); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	fmt.Printf("Index directory: %s\n", cfg.Index.Dir)
	fmt.Printf("Indexed chunks:  %d\n", store.Len())
	return nil
}
