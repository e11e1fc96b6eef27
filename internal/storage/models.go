package storage

// ChunkMetadata is the provenance record kept for every indexed chunk.
// Records are stored positionally: record i describes vector i in the
// index, and ChunkText duplicates the chunk body so retrieval needs no
// separate text store.
type ChunkMetadata struct {
	Source     string `json:"source"`      // originating document name
	ChunkIndex int    `json:"chunk_index"` // 1-based position within the document
	ChunkSize  int    `json:"chunk_size"`  // chunk length in characters
	WordCount  int    `json:"word_count"`  // whitespace-delimited word count
	ChunkText  string `json:"chunk_text"`  // the chunk body itself
}

// Chunk pairs a chunk's text with its metadata during ingest, before the
// text is folded into ChunkText for storage.
type Chunk struct {
	Text     string
	Metadata ChunkMetadata
}

// IndexFileName and MetadataFileName are the paired artifacts written
// under the index directory. They are always rewritten together.
const (
	IndexFileName    = "index.bin"
	MetadataFileName = "metadata.json"
)
