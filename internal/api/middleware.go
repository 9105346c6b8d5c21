package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/abhisek/stepwise/internal/llm"
	"github.com/abhisek/stepwise/internal/quiztree"
	"github.com/abhisek/stepwise/internal/session"
)

// RequestLogger logs incoming requests.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto HTTP status codes. A model still
// rate limiting after retries is a 503.
func statusFor(err error) int {
	if _, limited := llm.RetryAfter(err); limited {
		return http.StatusServiceUnavailable
	}
	switch {
	case errors.Is(err, quiztree.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoActiveQuestion),
		errors.Is(err, session.ErrSessionFinished),
		errors.Is(err, session.ErrNotFinished):
		return http.StatusConflict
	case errors.Is(err, session.ErrCollaborator):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if after, _ := llm.RetryAfter(err); after > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(after.Seconds())))
	}
	if code >= 500 {
		s.log.Error("request failed", "path", r.URL.Path, "status", code, "error", err)
	}
	jsonError(w, err.Error(), code)
}
