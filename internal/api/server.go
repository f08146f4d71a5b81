package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/atomic"
)

// RouteRegistrar is implemented by components that add routes to the server.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// ServerConfig contains the parameters of the HTTP server.
type ServerConfig struct {
	// ListenAddr is the address and port the server listens on.
	ListenAddr string

	// Log is the structured logger for server operations.
	Log *slog.Logger

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of
	// the response.
	WriteTimeout time.Duration
}

// Server is the HTTP front end: common middleware, liveness and readiness
// probes, and graceful shutdown around the registered routes.
type Server struct {
	cfg     *ServerConfig
	isReady atomic.Bool
	log     *slog.Logger
	srv     *http.Server
}

// NewServer creates a Server. It is ready as soon as it is created.
func NewServer(cfg *ServerConfig, registrars ...RouteRegistrar) *Server {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Server{cfg: cfg, log: log}
	s.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.createRouter(registrars),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.isReady.Store(true)
	return s
}

func (s *Server) createRouter(registrars []RouteRegistrar) http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(s.httpLogger)
	mux.Use(middleware.Recoverer)

	mux.Get("/livez", s.handleLivenessCheck)
	mux.Get("/readyz", s.handleReadinessCheck)

	for _, registrar := range registrars {
		registrar.RegisterRoutes(mux)
	}
	return mux
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// httpLogger logs one line per request.
func (s *Server) httpLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"requestID", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleLivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"alive"}`))
}

func (s *Server) handleReadinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", contentTypeJSON)
	if !s.isReady.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// SetReady flips the readiness probe.
func (s *Server) SetReady(ready bool) {
	if s.isReady.Swap(ready) != ready {
		s.log.Info("readiness changed", "ready", ready)
	}
}

// Ready reports the readiness probe state.
func (s *Server) Ready() bool {
	return s.isReady.Load()
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("Starting HTTP server", "listenAddress", ln.Addr().String())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown marks the server not ready and waits for in-flight requests,
// bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Error("Graceful HTTP server shutdown failed", "err", err)
		return err
	}
	s.log.Info("HTTP server gracefully stopped")
	return nil
}
