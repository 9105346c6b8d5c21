package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/stepwise/internal/session"
)

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	if s.rewriter == nil {
		jsonError(w, "answer rewriting unavailable", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	answer, err := s.rewriter.RewriteAnswer(r.Context(), req.Question, req.Answer)
	if err != nil {
		s.fail(w, r, &session.CollaboratorError{Op: "rewrite answer", Err: err})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard == nil {
		jsonError(w, "leaderboard unavailable", http.StatusServiceUnavailable)
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, 100)
	}

	courseID := chi.URLParam(r, "courseID")
	standings, err := s.leaderboard.Top(r.Context(), courseID, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"course_id": courseID,
		"standings": standings,
	})
}
