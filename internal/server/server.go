// Package server exposes the concept map pipeline over HTTP.
//
// Routes:
//
//	POST   /v1/layout                   lay out a graph sent in the body
//	POST   /v1/maps                     store a map
//	GET    /v1/maps                     list stored maps (summaries)
//	GET    /v1/maps/{id}                fetch a stored map
//	DELETE /v1/maps/{id}                delete a stored map
//	GET    /v1/maps/{id}/layout         lay out a stored map (?depth=)
//	GET    /v1/maps/{id}/render.{fmt}   render a stored map (svg, dot, json, graphviz)
//	GET    /v1/maps/{id}/stats          structural diagnostics
//	POST   /v1/generate                 generate and store a map (rate limited)
//	GET    /metrics                     Prometheus metrics
//	GET    /healthz                     liveness and build info
//
// Errors are returned as {"code": ..., "message": ...} with the status
// derived from the error code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/matzehuels/conceptmap/pkg/generate"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/observability"
	"github.com/matzehuels/conceptmap/pkg/pipeline"
	"github.com/matzehuels/conceptmap/pkg/store"
)

// Defaults for [Config].
const (
	DefaultAddr          = ":8080"
	DefaultGenerateRate  = 0.5
	DefaultGenerateBurst = 3
	maxBodyBytes         = 1 << 20
	shutdownTimeout      = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	Addr string

	// DefaultDepth is used for maps stored without a depth.
	DefaultDepth int

	// GenerateRate limits POST /v1/generate to this many requests per
	// second across all clients, with bursts of GenerateBurst.
	GenerateRate  float64
	GenerateBurst int
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.DefaultDepth <= 0 {
		c.DefaultDepth = layout.DefaultMaxLevels
	}
	if c.GenerateRate <= 0 {
		c.GenerateRate = DefaultGenerateRate
	}
	if c.GenerateBurst <= 0 {
		c.GenerateBurst = DefaultGenerateBurst
	}
	return c
}

// Server serves the HTTP API.
type Server struct {
	cfg       Config
	runner    *pipeline.Runner
	store     store.Store
	generator *generate.Generator
	limiter   *rate.Limiter
	metrics   *Metrics
	logger    *log.Logger
	router    chi.Router
	now       func() time.Time
}

// New creates a server. generator may be nil, in which case generation
// answers 501. A nil logger discards output.
func New(cfg Config, runner *pipeline.Runner, st store.Store, generator *generate.Generator, logger *log.Logger) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		cfg:       cfg,
		runner:    runner,
		store:     st,
		generator: generator,
		limiter:   rate.NewLimiter(rate.Limit(cfg.GenerateRate), cfg.GenerateBurst),
		metrics:   NewMetrics(),
		logger:    logger,
		now:       time.Now,
	}
	s.metrics.Install()
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Metrics returns the server's metrics.
func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/generate", s.handleGenerate)

		r.Route("/maps", func(r chi.Router) {
			r.Get("/", s.handleListMaps)
			r.Post("/", s.handleCreateMap)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetMap)
				r.Delete("/", s.handleDeleteMap)
				r.Get("/layout", s.handleMapLayout)
				r.Get("/render.{format}", s.handleMapRender)
				r.Get("/stats", s.handleMapStats)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFoundRoute)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errMethodNotAllowed)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
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

// observe logs each request and reports it to the HTTP hooks, labeled
// with the matched route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		defer func() {
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			code := ww.Status()
			if code == 0 {
				code = http.StatusOK
			}
			d := time.Since(start)
			hooks.OnResponse(r.Context(), r.Method, route, code, d)
			s.logger.Debug("request",
				"method", r.Method,
				"route", route,
				"status", code,
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
				"duration", d)
		}()

		next.ServeHTTP(ww, r)
	})
}
