// Package server exposes the layout pipeline over HTTP.
//
//	GET  /healthz       liveness probe
//	GET  /v1/engines    engines and whether their binaries are installed
//	POST /v1/validate   validate a document and report the model size
//	POST /v1/solve      solve a document and return the layout
//
// Request and response bodies are JSON. Errors carry the coded error of the
// failing stage:
//
//	{"error": {"code": "UNKNOWN_REFERENCE", "message": "..."}}
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kitchendesigner/pkg/observability"
	"github.com/matzehuels/kitchendesigner/pkg/pipeline"
)

// Options configures the server.
type Options struct {
	// Defaults are merged into every solve request: engine, time limit,
	// families and weights the request leaves unset.
	Defaults pipeline.Options

	// RequestTimeout bounds a request, solve included. Zero means 10 minutes.
	RequestTimeout time.Duration

	// MaxBodyBytes caps request bodies. Zero means 1 MiB.
	MaxBodyBytes int64

	Logger *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
}

// New creates a server around a runner.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Minute
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Logger == nil {
		opts.Logger = runner.Logger
	}
	return &Server{runner: runner, opts: opts, logger: opts.Logger.WithPrefix("server")}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/engines", s.handleEngines)
		r.With(middleware.RequestSize(s.opts.MaxBodyBytes), middleware.AllowContentType("application/json")).
			Group(func(r chi.Router) {
				r.Post("/validate", s.handleValidate)
				r.Post("/solve", s.handleSolve)
			})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// observe reports requests to the server hooks and logs them.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}
