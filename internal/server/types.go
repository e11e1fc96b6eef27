// Package server exposes the ingest and question-answering REST API.
package server

// QuestionRequest is the /question request body.
type QuestionRequest struct {
	Question string `json:"question"`
}

// QuestionResponse is the /question response body. References echo the
// chunk texts the answer was grounded on.
type QuestionResponse struct {
	Answer     string   `json:"answer"`
	References []string `json:"references"`
}

// UploadResponse reports the outcome of a document upload. Partial
// failures are reported as counts, not as an error.
type UploadResponse struct {
	Message          string   `json:"message"`
	DocumentsIndexed int      `json:"documents_indexed"`
	DocumentsFailed  int      `json:"documents_failed"`
	FailedDocuments  []string `json:"failed_documents,omitempty"`
	TotalChunks      int      `json:"total_chunks"`
}

// HealthResponse is the /health response body.
type HealthResponse struct {
	Status        string `json:"status"`
	IndexedChunks int    `json:"indexed_chunks"`
	Timestamp     string `json:"timestamp"`
}

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

const (
	msgInvalidFileType = "only PDF files are allowed"
	msgNoRelevantDocs  = "No relevant documents were found to answer the question."
	msgProcessingError = "error processing documents"
	msgQuestionError   = "error processing question"
)
