package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bull/ragserver/internal/indexer"
)

// maxUploadBytes bounds the in-memory part of multipart parsing; larger
// parts spill to disk.
const maxUploadBytes = 64 << 20

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "RAG server is running",
		"status":  "healthy",
	})
}

// handleUploadDocuments accepts multipart PDF uploads, writes them to a
// per-request temp directory, runs the ingest pipeline and always cleans
// the temp directory up afterwards.
func (s *Server) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "malformed multipart request"})
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "no files provided"})
		return
	}
	for _, header := range files {
		if !isPDF(header) {
			s.logger.Warn("rejected upload", "filename", header.Filename, "content_type", header.Header.Get("Content-Type"))
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: msgInvalidFileType})
			return
		}
	}

	tempDir, err := os.MkdirTemp("", "ragserver-upload-")
	if err != nil {
		s.logger.Error("failed to create temp dir", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: msgProcessingError})
		return
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			s.logger.Warn("failed to clean temp dir", "dir", tempDir, "error", err)
		}
	}()

	paths, err := saveTempFiles(files, tempDir)
	if err != nil {
		s.logger.Error("failed to save uploads", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: msgProcessingError})
		return
	}

	result, err := s.ingester.Ingest(r.Context(), paths)
	if err != nil {
		if errors.Is(err, indexer.ErrAllDocumentsFailed) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "no uploaded document could be processed"})
			return
		}
		s.logger.Error("ingest failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: msgProcessingError})
		return
	}

	resp := UploadResponse{
		Message:          "documents processed successfully",
		DocumentsIndexed: result.SuccessfulDocs,
		DocumentsFailed:  len(result.FailedDocs),
		TotalChunks:      result.TotalChunks,
	}
	for _, failed := range result.FailedDocs {
		resp.FailedDocuments = append(resp.FailedDocuments, fmt.Sprintf("%s: %s", failed.Name, failed.Reason))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleQuestion retrieves supporting passages and generates an answer.
// An empty retrieval is a valid outcome answered with a fixed sentinel
// response instead of an error.
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "malformed request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "question must not be empty"})
		return
	}

	results, err := s.retriever.Retrieve(r.Context(), req.Question, s.topK)
	if err != nil {
		s.logger.Error("retrieval failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: msgQuestionError})
		return
	}

	if len(results) == 0 {
		writeJSON(w, http.StatusOK, QuestionResponse{
			Answer:     msgNoRelevantDocs,
			References: []string{},
		})
		return
	}

	answer, err := s.answerer.Generate(r.Context(), req.Question, results)
	if err != nil {
		s.logger.Error("answer generation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: msgQuestionError})
		return
	}

	writeJSON(w, http.StatusOK, QuestionResponse{
		Answer:     answer.Answer,
		References: answer.References,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		IndexedChunks: s.counter.Len(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// isPDF accepts a part by extension or declared content type.
func isPDF(header *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return true
	}
	return header.Header.Get("Content-Type") == "application/pdf"
}

// saveTempFiles writes the uploaded parts under dir, keeping each part's
// base name so it becomes the chunk provenance source.
func saveTempFiles(files []*multipart.FileHeader, dir string) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, header := range files {
		src, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
		}

		path := filepath.Join(dir, filepath.Base(header.Filename))
		dst, err := os.Create(path)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("create temp file: %w", err)
		}
		if _, err := io.Copy(dst, src); err != nil {
			dst.Close()
			src.Close()
			return nil, fmt.Errorf("write temp file: %w", err)
		}
		dst.Close()
		src.Close()
		paths = append(paths, path)
	}
	return paths, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
