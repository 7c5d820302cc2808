package debugserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/timetravel/config"
	"github.com/hazyhaar/timetravel/idgen"
	"github.com/hazyhaar/timetravel/journal"
)

var (
	// ErrAlreadyEnabled is returned by a second Enable on the same Server.
	ErrAlreadyEnabled = errors.New("debugserver: already enabled")
	// ErrServerStarted is returned by Enable once the server is listening.
	ErrServerStarted = errors.New("debugserver: server already started")
	// ErrServerClosed is returned after Shutdown.
	ErrServerClosed = errors.New("debugserver: server closed")
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 1000
)

// Recorder journals control actions. *journal.Journal implements it.
type Recorder interface {
	RecordAsync(journal.Entry)
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the base logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRecorder journals every control action and mounts GET /journal.
func WithRecorder(rec Recorder) Option {
	return func(s *Server) { s.recorder = rec }
}

// WithTraceIDGenerator overrides the per-request trace ID generator.
func WithTraceIDGenerator(gen idgen.Generator) Option {
	return func(s *Server) { s.newTraceID = gen }
}

// Server owns the HTTP listener and at most one enabled Handle.
type Server struct {
	cfg        config.ServerConfig
	logger     *slog.Logger
	recorder   Recorder
	newTraceID idgen.Generator
	router     *chi.Mux
	http       *http.Server

	mu       sync.Mutex
	handle   handleBase
	listener net.Listener
	closed   bool
}

// NewServer builds the router and middleware stack. Nothing listens until
// Enable or Start.
func NewServer(cfg config.ServerConfig, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultAddr
	}
	s := &Server{
		cfg:        cfg,
		logger:     slog.Default(),
		newTraceID: idgen.TraceID,
	}
	for _, o := range opts {
		o(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(traceID(s.logger, s.newTraceID))
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(headToGet)

	r.Get("/healthz", s.handleHealthz)
	if s.recorder != nil {
		r.Get("/journal", s.handleJournal)
	}
	s.router = r

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}
	return s
}

// Enable registers the five debugger routes for a Handle of the given
// action and model types, starts the server and returns the Handle.
// It may succeed at most once per Server.
func Enable[A, M any](s *Server) (*Handle[A, M], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return nil, ErrServerClosed
	case s.handle != nil:
		return nil, ErrAlreadyEnabled
	case s.listener != nil:
		return nil, ErrServerStarted
	}

	h := &Handle[A, M]{recorder: s.recorder}
	s.router.Method(http.MethodGet, "/", rootResource[A, M]{self: h})
	s.router.Method(http.MethodGet, "/step", stepResource[A, M]{self: h})
	s.router.Method(http.MethodPost, "/goto", gotoResource[A, M]{self: h})
	s.router.Method(http.MethodPost, "/undo", undoResource[A, M]{self: h})
	s.router.Method(http.MethodPost, "/redo", redoResource[A, M]{self: h})
	s.handle = h

	if err := s.startLocked(); err != nil {
		return nil, err
	}
	return h, nil
}

// Start listens without a debugger attached; only /healthz (and /journal)
// answer. A later Enable fails with ErrServerStarted.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServerClosed
	}
	if s.listener != nil {
		return ErrServerStarted
	}
	return s.startLocked()
}

// startLocked binds synchronously so address errors reach the caller, then
// serves in the background.
func (s *Server) startLocked() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("debugserver: listen %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.logger.Info("debugserver: listening", "addr", ln.Addr().String())
	go func() {
		if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("debugserver: serve", "error", err)
		}
	}()
	return nil
}

// Handler returns the router, for in-process use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the bound address once listening, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

// Shutdown stops accepting requests and waits for in-flight ones, bounded
// by the configured shutdown timeout. The dispatcher is dropped first so no
// control action reaches an application that is going away.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.handle != nil {
		s.handle.detach()
	}
	started := s.listener != nil
	s.mu.Unlock()

	if !started {
		return nil
	}
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	s.logger.Info("debugserver: shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	initialized := s.handle != nil && s.handle.initialized()
	s.mu.Unlock()

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":      "ok",
		"initialized": initialized,
		"timestamp":   TimeNow().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit := defaultJournalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid limit %q: must be a positive integer", raw))
			return
		}
		limit = min(n, maxJournalLimit)
	}

	entries, err := s.recorder.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"entries": entries})
}
