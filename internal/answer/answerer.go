// Package answer generates grounded answers from retrieved passages.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"

	"github.com/bull/ragserver/internal/retriever"
)

// DefaultMaxContextTokens bounds the prompt context before truncation.
const DefaultMaxContextTokens = 16000

// Answer is the generated response plus the chunk texts it was grounded
// on, echoed back in retrieval order.
type Answer struct {
	Answer     string   `json:"answer"`
	References []string `json:"references"`
}

// Answerer produces answers with a chat model. Retrieval itself never
// retries; this boundary owns the retry policy and backs off on rate
// limit responses only.
type Answerer struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *slog.Logger
}

// New creates an Answerer using the given chat model.
func New(client *openai.Client, model string, logger *slog.Logger) *Answerer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{
		client:    client,
		model:     model,
		maxTokens: DefaultMaxContextTokens,
		logger:    logger,
	}
}

// Generate answers the question using only the retrieved passages. The
// references list echoes the context chunk texts in order so callers can
// show provenance.
func (a *Answerer) Generate(ctx context.Context, question string, results []retriever.Result) (*Answer, error) {
	texts := make([]string, len(results))
	for i, res := range results {
		texts[i] = res.Text
	}
	prompt := buildPrompt(question, a.truncate(strings.Join(texts, "\n\n")))

	var content string
	operation := func() error {
		resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: openai.ChatModel(a.model),
		})
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("chat completion returned no choices"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	a.logger.Info("answer generated", "question_len", len(question), "references", len(texts))
	return &Answer{
		Answer:     strings.TrimSpace(content),
		References: texts,
	}, nil
}

// buildPrompt renders the grounded-QA prompt: answer only from the given
// context and admit ignorance otherwise.
func buildPrompt(question, context string) string {
	return fmt.Sprintf(`You are an assistant specialized in answering questions based on provided documents.

Follow these instructions carefully:
1. Use ONLY the information explicitly present in the given context below.
2. If the answer cannot be found in the context, explicitly reply: "I don't know based on the available documents."
3. Be clear, concise, and objective.
4. Whenever possible, cite the specific passages or document references that support your answer.

CONTEXT:
%s

QUESTION:
%s

ANSWER:`, context, question)
}

// truncate bounds context length using the rough 4-characters-per-token
// estimate.
func (a *Answerer) truncate(context string) string {
	maxChars := a.maxTokens * 4
	if len(context) <= maxChars {
		return context
	}
	a.logger.Warn("truncating context", "from", len(context), "to", maxChars)
	return context[:maxChars]
}

// isRateLimitError reports whether the error is an HTTP 429 from the API.
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
