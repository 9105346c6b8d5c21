package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abhisek/stepwise/internal/document"
	"github.com/abhisek/stepwise/internal/session"
)

// handleUpload builds a session from uploaded PDFs: the files are parsed,
// read as one text in upload order, and turned into seed questions.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.seeds == nil {
		jsonError(w, "question generation unavailable", http.StatusServiceUnavailable)
		return
	}

	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	count := s.cfg.QuestionCount
	if v := r.FormValue("questionCount"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "questionCount must be a positive integer", http.StatusBadRequest)
			return
		}
		count = n
	}

	var (
		docs  []*document.Document
		total int64
	)
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}

		f, err := fh.Open()
		if err != nil {
			jsonError(w, "failed to open file", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		total += int64(len(data))
		if total > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("upload exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}

		doc, err := document.Parse(bytes.NewReader(data), filename)
		if err != nil {
			jsonError(w, fmt.Sprintf("failed to parse %s: %v", filename, err), http.StatusUnprocessableEntity)
			return
		}
		docs = append(docs, doc)
	}

	chunking := document.ChunkConfig{Size: s.cfg.ChunkSize, Overlap: s.cfg.ChunkOverlap}
	seeds, err := s.seeds.FromDocuments(r.Context(), docs, chunking, count)
	if err != nil {
		s.fail(w, r, &session.CollaboratorError{Op: "generate seed questions", Err: err})
		return
	}

	owner := ownerFields{
		CourseID: r.FormValue("course_id"),
		UserID:   r.FormValue("user_id"),
		UserName: r.FormValue("user_name"),
	}
	id, _, err := s.sessions.Start(r.Context(), seeds, owner.owner())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("session created from upload", "session", id, "files", len(files), "questions", len(seeds))
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id":     id,
		"question_count": len(seeds),
	})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
