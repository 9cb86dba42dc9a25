package frontend

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ragdesk/internal/backend"
	"ragdesk/internal/observability"
	"ragdesk/internal/view"
)

// Config captures the settings for serving the browser front end.
type Config struct {
	Addr     string
	Client   *backend.Client
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	Archive  *sql.DB
	Subjects []string
	LLMs     []LLM
	// Category and Models seed the view state.
	Category string
	Models   []string
	Now      func() time.Time
}

// LLM is one selectable model for the ask and paper forms.
type LLM struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

// Server holds the shared view state behind the HTTP handlers.
type Server struct {
	cfg    Config
	client *backend.Client
	log    *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	state view.State
}

// NewHandler builds the router for the front end.
func NewHandler(cfg Config) (http.Handler, error) {
	srv, err := NewServer(cfg)
	if err != nil {
		return nil, err
	}
	return srv.Routes(), nil
}

// NewServer validates cfg and prepares the initial view state.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Client == nil {
		return nil, errors.New("frontend: backend client is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if cfg.Metrics != nil {
		cfg.Client.SetObserver(cfg.Metrics)
	}
	mode := view.ModeSingle
	if len(cfg.Models) > 1 {
		mode = view.ModeCompare
	}
	return &Server{
		cfg:    cfg,
		client: cfg.Client,
		log:    cfg.logger(),
		now:    now,
		state:  view.New(mode, cfg.Category, cfg.Models),
	}, nil
}

// Routes wires every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CleanPath)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handleIndex)
	r.Get("/report", s.handleReport)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.handleCategories)
		r.Get("/state", s.handleState)
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/compare", s.handleCompare)
		r.Post("/ask", s.handleAsk)
		r.Post("/feedback", s.handleFeedback)
		r.Post("/upload", s.handleUpload)
		r.Post("/ingest", s.handleIngest)
		r.Post("/question-paper", s.handleQuestionPaper)
		r.Get("/logs", s.handleLogs)
		r.Get("/archive", s.handleArchive)
	})
	return r
}

// observe logs each request and records its latency under the route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.cfg.Metrics.ObserveHTTP(r.Method, route, status, elapsed)
		s.log.Info("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", elapsed.Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// snapshotState returns a copy-safe view of the current state.
func (s *Server) snapshotState() view.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// begin marks action in flight, returning false when it already is.
func (s *Server) begin(action view.Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := view.Submit(s.state, action)
	if !ok {
		s.cfg.Metrics.RejectedSubmit(string(action))
		return false
	}
	s.state = next
	return true
}

// finish settles action with result.
func (s *Server) finish(action view.Action, result view.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = view.Settle(s.state, action, result)
}

// settleOnPanic clears action when its handler panics, then re-panics so
// the recoverer still answers the request. It must be deferred directly.
func (s *Server) settleOnPanic(action view.Action) {
	if r := recover(); r != nil {
		s.finish(action, view.Result{Err: fmt.Errorf("frontend: %s panicked: %v", action, r), Fallback: "Unexpected error"})
		panic(r)
	}
}

// update applies a reducer to the shared state.
func (s *Server) update(reduce func(view.State) view.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = reduce(s.state)
}
