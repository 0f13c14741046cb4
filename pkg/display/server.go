package display

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/genomechart/pkg/composer"
	gcio "github.com/matzehuels/genomechart/pkg/io"
	"github.com/matzehuels/genomechart/pkg/observability"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = ":8080"

// shutdownTimeout bounds graceful shutdown once the serving context ends.
const shutdownTimeout = 5 * time.Second

// Server serves the most recently displayed environment over HTTP.
// It is safe for concurrent use.
type Server struct {
	logger  *log.Logger
	options gcio.HTMLOptions
	router  chi.Router

	mu  sync.RWMutex
	env *composer.Environment
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) ServerOption { return func(s *Server) { s.logger = l } }

// WithHTMLOptions sets the document options of the "/" route.
func WithHTMLOptions(opts gcio.HTMLOptions) ServerOption {
	return func(s *Server) { s.options = opts }
}

// NewServer creates a server with no environment. Routes answer 503 until
// the first Display call.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Get("/", s.handleDocument)
	r.Get("/environment", s.handleEnvironment)
	r.Get("/charts", s.handleCharts)
	r.Get("/charts/{id}", s.handleChart)
	s.router = r
	return s
}

// Ensure Server implements composer.Displayer.
var _ composer.Displayer = (*Server)(nil)

// Display replaces the served environment.
func (s *Server) Display(_ context.Context, env *composer.Environment) error {
	s.mu.Lock()
	s.env = env
	s.mu.Unlock()
	s.logger.Info("serving environment", "window", env.Window(), "charts", env.Len())
	return nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) environment(w http.ResponseWriter) (*composer.Environment, bool) {
	s.mu.RLock()
	env := s.env
	s.mu.RUnlock()
	if env == nil {
		http.Error(w, "no environment to display", http.StatusServiceUnavailable)
		return nil, false
	}
	return env, true
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	env, ok := s.environment(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := gcio.WriteHTML(&buf, env, s.options); err != nil {
		s.fail(w, r, err)
		return
	}
	writeBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	env, ok := s.environment(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := env.Render(&buf); err != nil {
		s.fail(w, r, err)
		return
	}
	writeBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	env, ok := s.environment(w)
	if !ok {
		return
	}
	data, err := json.Marshal(Summarize(env))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeBody(w, "application/json", data)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	env, ok := s.environment(w)
	if !ok {
		return
	}
	c, ok := env.Chart(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	if err := c.Tag().Render(&buf); err != nil {
		s.fail(w, r, err)
		return
	}
	writeBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// observe reports requests to the HTTP hooks and logs them at debug level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", elapsed)
	})
}
