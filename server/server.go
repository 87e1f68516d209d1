// Package server provides the HTTP server for signupd.
//
// The server owns the activity registry and exposes it over a small JSON API
// alongside a static web UI for students.
//
// # Endpoints
//
//   - GET / - Redirects to the web UI at /static/index.html
//   - GET /static/ - Web UI
//   - GET /activities - All activities with their rosters
//   - POST /activities/{name}/signup?email=... - Signs a student up for an activity
//   - GET /health - Health check
//   - GET /version - Build information
//   - GET /config - Running configuration as YAML
//   - GET /metrics - Prometheus metrics (scrape mode only)
//
// # Example
//
//	srv, err := server.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	if err := srv.Run(ctx); err != nil {
//	    return err
//	}
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/nomis52/signupd/config"
	"github.com/nomis52/signupd/metrics"
	"github.com/nomis52/signupd/registry"
	"github.com/nomis52/signupd/server/handlers"
	"github.com/nomis52/signupd/server/report"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the signup service.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *registry.Registry
	metrics    *metrics.Service
	scrape     *metrics.ScrapeRegistry // nil in push mode
	push       *metrics.PushRegistry   // nil in scrape mode
	static     fs.FS
	reporter   *report.Reporter        // nil when reporting is disabled
	certLoader *CertLoader             // nil when TLS is disabled
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server) error

// WithRegistry makes the server use reg instead of building one from the
// seed configuration.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Server) error {
		s.registry = reg
		return nil
	}
}

// New creates a Server from cfg. The registry is seeded from cfg.Seed.File
// if set, otherwise from the built-in activities.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	static, err := staticSubFS(staticFiles)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		static: static,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.registry == nil {
		reg, err := newRegistry(cfg.Seed)
		if err != nil {
			return nil, err
		}
		s.registry = reg
	}
	logger.Info("activity registry loaded", "activities", s.registry.Len(), "seed_file", cfg.Seed.File)

	if err := s.initMetrics(); err != nil {
		return nil, err
	}

	if cfg.Report.Schedule != "" {
		r, err := report.New(cfg.Report.Schedule, s.registry, s.metrics, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating enrollment reporter: %w", err)
		}
		s.reporter = r
	}

	if cfg.TLSEnabled() {
		l, err := NewCertLoader(cfg.Listener.TLSCert, cfg.Listener.TLSKey, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("loading tls certificate: %w", err)
		}
		s.certLoader = l
	}

	return s, nil
}

// staticSubFS roots the web UI at the static directory and checks the page
// GET / redirects to is present.
func staticSubFS(fsys fs.FS) (fs.FS, error) {
	sub, err := fs.Sub(fsys, "static")
	if err != nil {
		return nil, fmt.Errorf("opening static files: %w", err)
	}
	if _, err := fs.Stat(sub, strings.TrimPrefix(handlers.IndexPath, "/static/")); err != nil {
		return nil, fmt.Errorf("static files: %w", err)
	}
	return sub, nil
}

func newRegistry(cfg config.SeedConfig) (*registry.Registry, error) {
	if cfg.File == "" {
		return registry.Default(), nil
	}
	seed, err := registry.LoadSeedFile(cfg.File)
	if err != nil {
		return nil, err
	}
	return registry.New(seed), nil
}

func (s *Server) initMetrics() error {
	var reg metrics.Registry
	if s.cfg.PushMetrics() {
		s.push = metrics.NewPushRegistry(metrics.PushConfig{
			URL:      s.cfg.Monitoring.RemoteWriteURL,
			Prefix:   s.cfg.Monitoring.MetricsPrefix,
			Job:      s.cfg.Monitoring.JobName,
			Instance: s.cfg.Monitoring.Instance,
			Logger:   s.logger,
		})
		reg = s.push
	} else {
		scrape, err := metrics.NewScrapeRegistry(s.cfg.Monitoring.MetricsPrefix)
		if err != nil {
			return fmt.Errorf("creating metrics registry: %w", err)
		}
		s.scrape = scrape
		reg = scrape
	}

	svc, err := metrics.NewService(reg)
	if err != nil {
		s.Close()
		return fmt.Errorf("registering metrics: %w", err)
	}
	s.metrics = svc
	return nil
}

// Config returns the server's configuration.
func (s *Server) Config() *config.Config {
	return s.cfg
}

// Registry returns the activity registry served by s.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Close stops background metric pushing. Serve calls it on return.
func (s *Server) Close() {
	if s.push != nil {
		s.push.Close()
	}
}

// Handler returns the root http.Handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return withRequestID(withAccessLog(s.logger, s.metrics, mux))
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs a graceful shutdown when the context is done.
// If an enrollment report schedule is configured, it is started as well.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listener.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Listener.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like Run but accepts connections on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Listener.ReadTimeout,
		WriteTimeout: s.cfg.Listener.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	if s.certLoader != nil {
		s.httpServer.TLSConfig = s.certLoader.TLSConfig()
	}

	if s.reporter != nil {
		s.logger.Info("starting enrollment reporter", "next_run", s.reporter.NextRun())
		s.reporter.Report()
		s.reporter.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"addr", ln.Addr().String(),
			"tls", s.certLoader != nil,
		)
		var err error
		if s.certLoader != nil {
			err = s.httpServer.ServeTLS(ln, "", "")
		} else {
			err = s.httpServer.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Listener.ShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handlers.HandleRoot)
	mux.Handle("GET /activities", handlers.NewActivitiesHandler(s.registry))
	mux.Handle("POST /activities/{name}/signup", handlers.NewSignupHandler(s.logger, s.registry, s.metrics))
	mux.Handle("GET /health", handlers.NewHealthHandler(s.registry))
	mux.HandleFunc("GET /version", handlers.HandleVersion)
	mux.Handle("GET /config", handlers.NewConfigHandler(s))

	if s.scrape != nil {
		mux.Handle("GET /metrics", s.scrape.Handler())
	}

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(s.static)))
}
