package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/stepwise/internal/quiztree"
	"github.com/abhisek/stepwise/internal/ranking"
)

type ownerFields struct {
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

func (o ownerFields) owner() ranking.Owner {
	return ranking.Owner{CourseID: o.CourseID, UserID: o.UserID, UserName: o.UserName}
}

type startRequest struct {
	Seeds []quiztree.Seed `json:"seeds"`
	ownerFields
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, progress, err := s.sessions.Start(r.Context(), req.Seeds, req.owner())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": id,
		"progress":   progress,
	})
}

// handleQuestion returns the current question. Once the quiz is over it
// returns the summary instead, which also ends the session.
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	view, err := s.sessions.Current(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !view.Finished {
		writeJSON(w, http.StatusOK, view)
		return
	}

	summary, err := s.sessions.Summary(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"finished": true,
		"summary":  summary,
		"progress": view.Progress,
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.sessions.Submit(r.Context(), chi.URLParam(r, "sessionID"), req.Answer)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.sessions.Summary(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Quit(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Score int `json:"score"`
		ownerFields
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	points, err := s.sessions.AwardCompletion(r.Context(), chi.URLParam(r, "sessionID"), req.owner(), req.Score)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"points_earned": points})
}
