// Package embedding generates dense vector embeddings for text.
package embedding

import (
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrEmbedding wraps any failure of the underlying embedding model call.
// Embedding failures are never retried here; retry policy belongs to the
// calling orchestration layer.
var ErrEmbedding = errors.New("embedding generation failed")

// Client wraps the OpenAI client used for embedding generation.
type Client struct {
	client *openai.Client
}

// NewClient creates an embedding client with the given API key.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding API key not set")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{client: &client}, nil
}

// Client returns the underlying OpenAI client for reuse by other
// components (the answer generator shares it).
func (c *Client) Client() *openai.Client {
	return c.client
}
