// Package server exposes a built package graph over a read-only JSON API.
//
// Routes:
//
//	GET /packages                 all packages
//	GET /packages/{id}            one package; id is path-escaped
//	GET /packages/{id}/deps       links, ?direction=incoming&platform=<triple>&kind=<kind>
//	GET /topo                     package ids in topological order, ?workspace=true
//	GET /workspace                workspace root, members and cycles
//	GET /healthz                  liveness
//	GET /metrics                  Prometheus metrics
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/guppy-rs/guppy/pkg/graph"
	"github.com/guppy-rs/guppy/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

// Server serves one immutable [graph.PackageGraph]. Handlers only read the
// graph, so requests are served concurrently without locking.
type Server struct {
	graph   *graph.PackageGraph
	logger  *log.Logger
	metrics *Metrics
	router  chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger for request and lifecycle messages.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics mounts m at /metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a server for g.
func New(g *graph.PackageGraph, opts ...Option) *Server {
	s := &Server{graph: g, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/packages", s.handlePackages)
	r.Get("/packages/{id}", s.handlePackage)
	r.Get("/packages/{id}/deps", s.handleDeps)
	r.Get("/topo", s.handleTopo)
	r.Get("/workspace", s.handleWorkspace)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// instrument reports every request to the registered HTTP hooks. The route
// pattern is only known once chi has routed the request, so OnRequest sees
// the raw path and OnResponse the pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", time.Since(start))
	})
}
