package answer

import (
	"log/slog"
	"strings"
	"testing"
)

func TestBuildPrompt_ContainsContextAndQuestion(t *testing.T) {
	prompt := buildPrompt("What is the warranty period?", "The warranty lasts 24 months.")

	if !strings.Contains(prompt, "The warranty lasts 24 months.") {
		t.Error("prompt missing context")
	}
	if !strings.Contains(prompt, "What is the warranty period?") {
		t.Error("prompt missing question")
	}
	if !strings.Contains(prompt, "I don't know based on the available documents.") {
		t.Error("prompt missing the refusal instruction")
	}
	if strings.Index(prompt, "CONTEXT:") > strings.Index(prompt, "QUESTION:") {
		t.Error("context must precede question")
	}
}

func TestTruncate_BoundsContextLength(t *testing.T) {
	a := &Answerer{maxTokens: 10, logger: slog.Default()}

	short := "short context"
	if got := a.truncate(short); got != short {
		t.Errorf("short context modified: %q", got)
	}

	long := strings.Repeat("x", 100)
	got := a.truncate(long)
	if len(got) != 40 { // 10 tokens * 4 chars
		t.Errorf("truncated length = %d, want 40", len(got))
	}
}
