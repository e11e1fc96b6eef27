// Package config loads and validates application configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// IndexConfig holds vector index persistence settings.
type IndexConfig struct {
	// Dir is the directory holding the index and metadata files.
	Dir string `yaml:"dir"`
}

// EmbeddingConfig configures the embedding model client.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BatchSize int    `yaml:"batch_size"`
}

// LLMConfig configures the answer-generation model. It shares the API
// credential with the embedding client.
type LLMConfig struct {
	Model string `yaml:"model"`
}

// ChunkingConfig configures how document text is split.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// RetrievalConfig configures query-time behavior.
type RetrievalConfig struct {
	// TopK is the number of chunks retrieved per question.
	TopK int `yaml:"top_k"`
}

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Debug     bool            `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Addr: ":8080"},
		Index:     IndexConfig{Dir: "vector_db"},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small", APIKeyEnv: "OPENAI_API_KEY", BatchSize: 500},
		LLM:       LLMConfig{Model: "gpt-4o-mini"},
		Chunking:  ChunkingConfig{Size: 500, Overlap: 50},
		Retrieval: RetrievalConfig{TopK: 5},
	}
}

// Load reads the config file at path. A missing file yields the defaults;
// a present file is merged over them. The result is always validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	var errs []error

	if c.Chunking.Size <= 0 {
		errs = append(errs, errors.New("chunking.size must be a positive integer"))
	}
	if c.Chunking.Overlap < 0 {
		errs = append(errs, errors.New("chunking.overlap must be non-negative"))
	}
	if c.Chunking.Overlap >= c.Chunking.Size && c.Chunking.Size > 0 {
		errs = append(errs, errors.New("chunking.overlap must be smaller than chunking.size"))
	}
	if c.Retrieval.TopK <= 0 {
		errs = append(errs, errors.New("retrieval.top_k must be a positive integer"))
	}
	if c.Embedding.Model == "" {
		errs = append(errs, errors.New("embedding.model must be set"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model must be set"))
	}

	return errors.Join(errs...)
}

// EmbeddingAPIKey resolves the API key from the environment. Both the
// embedding and chat clients authenticate with it.
func (c *Config) EmbeddingAPIKey() string {
	return os.Getenv(c.Embedding.APIKeyEnv)
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = def.Index.Dir
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = def.Embedding.Model
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = def.Embedding.APIKeyEnv
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = def.Embedding.BatchSize
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = def.Chunking.Size
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
}
