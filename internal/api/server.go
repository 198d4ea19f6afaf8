package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Kaliakbarb/persona/internal/model"
	"github.com/Kaliakbarb/persona/internal/store"
	"github.com/Kaliakbarb/persona/internal/worker"
)

// PipelineRunner is the subset of pipeline operations the API invokes
// synchronously.
type PipelineRunner interface {
	ProfileSearch(ctx context.Context, subjectKey, fullName string) (*model.Artifact, error)
	Profile(ctx context.Context, subjectKey, fullName string) (*model.Artifact, error)
	Chat(ctx context.Context, subjectKey, message string) (string, error)
}

// Config holds the API server settings.
type Config struct {
	// CORSOrigin is the allowed CORS origin ("*" when empty).
	CORSOrigin string
	// UploadDir is where transient audio uploads are staged.
	UploadDir string
	// MaxUploadBytes caps the request body size.
	MaxUploadBytes int64
}

// Server holds the HTTP handlers and dependencies.
type Server struct {
	pipelines PipelineRunner
	store     store.ArtifactStore
	queue     *worker.Queue
	cfg       Config
	mux       *http.ServeMux
}

// New creates a new API server.
func New(p PipelineRunner, s store.ArtifactStore, q *worker.Queue, cfg Config) *Server {
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 64 << 20
	}
	srv := &Server{pipelines: p, store: s, queue: q, cfg: cfg, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

// Handler returns the root http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.limitBody(jsonContent(s.mux)))
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /api/subjects/{key}/audio", s.handleAudioUpload)
	s.mux.HandleFunc("POST /api/subjects/{key}/chat", s.handleChat)
	s.mux.HandleFunc("GET /api/subjects/{key}/artifacts", s.handleListArtifacts)
	s.mux.HandleFunc("GET /api/subjects/{key}/artifacts/{kind}/latest", s.handleLatestArtifact)
	s.mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody restricts the request body size. The limit accommodates audio
// uploads, which are by far the largest requests.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
		next.ServeHTTP(w, r)
	})
}

func jsonContent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
