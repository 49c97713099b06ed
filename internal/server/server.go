// Package server exposes the circle-graph pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     build information
//	POST /v1/render   render a matrix at one or more thresholds
//
// Rendered artifacts are returned inline (base64 in JSON); the API never
// writes to the server's filesystem. Artifacts are cached under the "api:"
// key namespace so that a cache shared with the CLI keeps both apart.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/matzehuels/circlegraph/pkg/cache"
	"github.com/matzehuels/circlegraph/pkg/pipeline"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultMaxBodyBytes bounds the size of a render request.
	DefaultMaxBodyBytes = 64 << 20

	// DefaultTimeout bounds the handling time of one request.
	DefaultTimeout = 2 * time.Minute

	// DefaultMaxThresholds bounds the thresholds of one request.
	DefaultMaxThresholds = 64

	// DefaultMaxSize bounds the image edge length of one request, well
	// below what the CLI allows.
	DefaultMaxSize = 4096

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server. Zero values select the defaults.
type Config struct {
	Addr          string
	MaxBodyBytes  int64
	Timeout       time.Duration
	MaxThresholds int
	// MaxSize bounds options.size in pixels.
	MaxSize int
	// Concurrency bounds the thresholds rendered at once per request.
	Concurrency int
	// AllowedOrigins enables CORS for browser clients. Empty disables it.
	AllowedOrigins []string
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxThresholds <= 0 {
		c.MaxThresholds = DefaultMaxThresholds
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server rendering through c (nil disables caching).
func New(c cache.Cache, logger *log.Logger, cfg Config) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:")
	return &Server{
		cfg:    cfg,
		runner: pipeline.NewRunner(c, keyer, logger),
		logger: logger,
	}
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(serverHeader)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         600,
		}).Handler)
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.Timeout))
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/render", s.handleRender)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "", r.Method+" not allowed on "+r.URL.Path)
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
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the cache.
func (s *Server) Close() error {
	return s.runner.Close()
}
