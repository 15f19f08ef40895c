package live

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verdant-ui/verdant/pkg/reconcile"
	"github.com/verdant-ui/verdant/pkg/render"
)

// Server serves one view as a live application: the index route renders
// it to HTML, and the websocket route attaches a session that streams
// patches for the same view.
type Server struct {
	logger      *slog.Logger
	view        View
	title       string
	readTimeout time.Duration
	registry    *prometheus.Registry
	renderer    *render.Renderer
	upgrader    websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTitle sets the rendered page title.
func WithTitle(title string) ServerOption {
	return func(s *Server) { s.title = title }
}

// WithReadTimeout bounds how long a session waits for client frames.
func WithReadTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// WithRegistry supplies the Prometheus registry backing /metrics and
// the per-session engine collectors.
func WithRegistry(reg *prometheus.Registry) ServerOption {
	return func(s *Server) { s.registry = reg }
}

// NewServer creates a Server for a view.
func NewServer(view View, opts ...ServerOption) *Server {
	s := &Server{
		logger:      slog.Default(),
		view:        view,
		title:       "verdant",
		readTimeout: 60 * time.Second,
		renderer:    render.NewRenderer(),
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP surface: index, websocket, health, and
// metrics when a registry is configured.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// sessions and shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.logger.Info("listening", "addr", addr)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.Close()
	}
	s.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) newEngine() *reconcile.Engine {
	opts := []reconcile.Option{
		reconcile.WithLogger(s.logger),
		reconcile.WithTracerName("verdant.live"),
	}
	return reconcile.New(opts...)
}

// handleIndex serves the server-rendered page. The render uses a
// detached session so the view sees the same call shape it gets live.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := newSession(s.view, s.newEngine(), s.logger)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.renderer.WritePage(w, render.Page{
		Title: s.title,
		Root:  s.view(sess),
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// handleWS upgrades the connection and runs a live session on it.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sess := newSession(s.view, s.newEngine(), s.logger)
	sess.conn = conn

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.mu.Unlock()
	}()

	sess.logger.Info("session connected", "remote", r.RemoteAddr)
	go sess.readLoop(s.readTimeout)
	sess.run(r.Context())
	sess.logger.Info("session closed")
}

// SessionCount reports the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
