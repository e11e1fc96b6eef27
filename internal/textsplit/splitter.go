// Package textsplit splits plain document text into overlapping,
// size-bounded chunks suitable for embedding.
package textsplit

import "strings"

// defaultSeparators order boundary preference from coarse to fine:
// paragraph break, line break, sentence break, word break.
var defaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts text into chunks of at most ChunkSize characters,
// preferring natural boundaries and overlapping consecutive chunks by up
// to ChunkOverlap characters.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewSplitter creates a splitter with the given chunk size and overlap.
// Size must be positive and overlap must be smaller than size; values
// outside those bounds are clamped rather than rejected since they are
// validated at config load.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize - 1
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// ChunkSize returns the configured maximum chunk length in characters.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// ChunkOverlap returns the configured overlap length in characters.
func (s *Splitter) ChunkOverlap() int { return s.chunkOverlap }

// Split cuts text into chunks. Empty or whitespace-only input yields no
// chunks. Pieces are kept verbatim (separators included), so concatenating
// the chunks with overlaps removed reconstructs the original text. A single
// token longer than the chunk size is emitted as its own oversized chunk.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

// split recursively breaks text at the coarsest separator present,
// descending to finer separators for pieces that are still too large.
func (s *Splitter) split(text string, separators []string) []string {
	sep, remaining := pickSeparator(text, separators)

	var pieces []string
	if sep == "" {
		// No separator applies at any granularity: the text is a single
		// oversized token and is emitted whole.
		return []string{text}
	}
	// SplitAfter keeps the separator attached to the preceding piece so
	// that no characters are lost when chunks are reassembled.
	pieces = strings.SplitAfter(text, sep)

	var chunks []string
	var fitting []string
	for _, piece := range pieces {
		if len(piece) <= s.chunkSize {
			fitting = append(fitting, piece)
			continue
		}
		// Flush accumulated pieces before descending into the large one.
		chunks = append(chunks, s.merge(fitting)...)
		fitting = nil
		chunks = append(chunks, s.split(piece, remaining)...)
	}
	chunks = append(chunks, s.merge(fitting)...)
	return chunks
}

// merge greedily packs pieces into chunks up to the size limit, carrying a
// window of trailing pieces totalling at most the overlap into the next
// chunk.
func (s *Splitter) merge(pieces []string) []string {
	if len(pieces) == 0 {
		return nil
	}

	var chunks []string
	var window []string
	total := 0

	for _, piece := range pieces {
		if total+len(piece) > s.chunkSize && len(window) > 0 {
			chunks = append(chunks, strings.Join(window, ""))
			// Shrink the window until it fits within the configured overlap
			// and leaves room for the incoming piece.
			for len(window) > 0 && (total > s.chunkOverlap || total+len(piece) > s.chunkSize) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += len(piece)
	}
	if len(window) > 0 {
		chunks = append(chunks, strings.Join(window, ""))
	}
	return chunks
}

// pickSeparator returns the coarsest separator occurring in text and the
// finer separators left to try. An empty separator means none applied.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}
