package textsplit

import (
	"strings"
	"testing"
)

func TestSplit_EmptyInput(t *testing.T) {
	s := NewSplitter(100, 20)

	if got := s.Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
	if got := s.Split("   \n\t  "); got != nil {
		t.Errorf("Split(whitespace) = %v, want nil", got)
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(100, 20)

	chunks := s.Split("A short sentence.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "A short sentence." {
		t.Errorf("chunk content changed: %q", chunks[0])
	}
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	para1 := strings.Repeat("a", 40)
	para2 := strings.Repeat("b", 40)
	text := para1 + "\n\n" + para2

	s := NewSplitter(50, 0)
	chunks := s.Split(text)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[0], para1) {
		t.Errorf("chunk 0 should start with first paragraph")
	}
	if chunks[1] != para2 {
		t.Errorf("chunk 1 = %q, want second paragraph", chunks[1])
	}
}

func TestSplit_SizeBound(t *testing.T) {
	text := strings.Repeat("one two three four five. ", 40)

	s := NewSplitter(80, 10)
	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 80 {
			t.Errorf("chunk %d length %d exceeds limit 80", i, len(c))
		}
	}
}

func TestSplit_OversizedTokenEmittedWhole(t *testing.T) {
	long := strings.Repeat("x", 120)
	text := "short words here " + long + " more words"

	s := NewSplitter(50, 5)
	chunks := s.Split(text)

	found := false
	for _, c := range chunks {
		if strings.Contains(c, long) {
			found = true
		}
		if len(c) > 50 && !strings.Contains(c, long) {
			t.Errorf("non-token chunk exceeds limit: %d chars", len(c))
		}
	}
	if !found {
		t.Error("oversized token was dropped or cut")
	}
}

// TestSplit_Reconstruction verifies that removing each chunk's overlap
// prefix and concatenating the remainders reproduces the input exactly.
func TestSplit_Reconstruction(t *testing.T) {
	text := "First paragraph with some words.\n\n" +
		"Second paragraph. It has two sentences and keeps going for a while longer.\n" +
		"A trailing line without a final period"

	s := NewSplitter(40, 12)
	chunks := s.Split(text)
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}

	rebuilt := chunks[0]
	for _, c := range chunks[1:] {
		overlap := longestSuffixPrefix(rebuilt, c)
		rebuilt += c[overlap:]
	}
	if rebuilt != text {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", rebuilt, text)
	}
}

func TestSplit_ConsecutiveChunksOverlap(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta. ", 30)

	s := NewSplitter(100, 30)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		if longestSuffixPrefix(chunks[i-1], chunks[i]) == 0 {
			t.Errorf("chunks %d and %d share no overlap", i-1, i)
		}
	}
}

func TestSplit_DocumentOrderPreserved(t *testing.T) {
	text := "first marker here. second marker here. third marker here. " +
		"fourth marker here. fifth marker here."

	s := NewSplitter(45, 0)
	chunks := s.Split(text)

	joined := strings.Join(chunks, "")
	order := []string{"first", "second", "third", "fourth", "fifth"}
	last := -1
	for _, marker := range order {
		pos := strings.Index(joined, marker)
		if pos < 0 {
			t.Fatalf("marker %q missing from output", marker)
		}
		if pos < last {
			t.Errorf("marker %q out of order", marker)
		}
		last = pos
	}
}

// longestSuffixPrefix returns the length of the longest suffix of a that
// is also a prefix of b.
func longestSuffixPrefix(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(a, b[:n]) {
			return n
		}
	}
	return 0
}
