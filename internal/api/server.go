package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/stepwise/internal/config"
	"github.com/abhisek/stepwise/internal/document"
	"github.com/abhisek/stepwise/internal/quiztree"
	"github.com/abhisek/stepwise/internal/ranking"
	"github.com/abhisek/stepwise/internal/session"
)

// SeedGenerator turns uploaded documents into seed questions.
type SeedGenerator interface {
	FromDocuments(ctx context.Context, docs []*document.Document, chunking document.ChunkConfig, count int) ([]quiztree.Seed, error)
}

// AnswerRewriter cleans up a learner's answer.
type AnswerRewriter interface {
	RewriteAnswer(ctx context.Context, question, answer string) (string, error)
}

// Server is the HTTP API server for stepwise.
type Server struct {
	router      chi.Router
	sessions    *session.Orchestrator
	seeds       SeedGenerator
	rewriter    AnswerRewriter
	leaderboard ranking.Leaderboard
	log         *slog.Logger
	cfg         config.Config
}

// Deps are the collaborators the server routes to. Seeds, Rewriter and
// Leaderboard may be nil; their routes then answer 503.
type Deps struct {
	Sessions    *session.Orchestrator
	Seeds       SeedGenerator
	Rewriter    AnswerRewriter
	Leaderboard ranking.Leaderboard
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		sessions:    deps.Sessions,
		seeds:       deps.Seeds,
		rewriter:    deps.Rewriter,
		leaderboard: deps.Leaderboard,
		log:         log,
		cfg:         cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleStartSession)
		r.Post("/sessions/upload", s.handleUpload)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/question", s.handleQuestion)
			r.Post("/answer", s.handleAnswer)
			r.Get("/summary", s.handleSummary)
			r.Delete("/", s.handleQuit)
			r.Post("/complete", s.handleComplete)
		})
		r.Post("/rewrite", s.handleRewrite)
		r.Get("/courses/{courseID}/leaderboard", s.handleLeaderboard)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
