// Package web provides the HTTP API and event stream for mood chat sessions.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/justestif/go-mood-music/internal/metrics"
)

const (
	// DefaultAddr is the default server address.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP server for the chat API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	logger   zerolog.Logger
	shutdown time.Duration
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig, handlers *Handlers, logger zerolog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		router:   chi.NewRouter(),
		handlers: handlers,
		logger:   logger,
		shutdown: cfg.ShutdownTimeout,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.Get("/healthz", h.Health)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.loadSession)
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/messages", h.PostMessage)
			r.Post("/emotion", h.SetEmotion)
			r.Post("/image", h.UploadImage)
			r.Get("/events", h.Events)

			r.Post("/playback/select", h.SelectTrack)
			r.Post("/playback/events", h.PlaybackEvent)
			r.Post("/playback/{action}", h.Playback)
		})
	})
}

// requestLogger logs each request and records the HTTP metrics under the
// matched route pattern.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			metrics.RequestCount.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", elapsed).
				Msg("request")
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and shuts it down gracefully when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info().Msg("server stopped")
	return nil
}
