package stubserver

import (
	"context"
	"net/http"

	"github.com/yndnr/sessprobe-go/internal/config"
	"github.com/yndnr/sessprobe-go/internal/telemetry/logger"
	"github.com/yndnr/sessprobe-go/internal/telemetry/metric"
)

// Server is the built-in reference endpoint. It serves the session
// contract on POST /endpoint and the dependency double's admin probe on
// GET /__admin/, so conformance checks and load runs can execute
// self-contained.
type Server struct {
	httpServer *http.Server
	handler    *Handler
	logger     logger.Logger
}

// New creates a stub server for the given configuration. A nil metrics
// registry disables instrumentation-by-status.
func New(cfg config.StubSection, log logger.Logger, metrics *metric.Registry) *Server {
	if log == nil {
		log = logger.Default()
	}

	h := NewHandler(cfg.APIKey, cfg.FailureRate, log)

	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.Addr,
			Handler: Router(h, log, metrics),
		},
		handler: h,
		logger:  log,
	}
}

// Router assembles the stub's routes with the middleware chain. It is
// exported so tests can drive the full stack through httptest.
func Router(h *Handler, log logger.Logger, metrics *metric.Registry) http.Handler {
	if log == nil {
		log = logger.Default()
	}

	middlewares := []Middleware{
		Recover(log),
		RequestID(),
		RequestLog(log),
	}
	if metrics != nil {
		middlewares = append(middlewares, Instrument(metrics))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /endpoint", Chain(h, middlewares...))
	mux.Handle("GET /__admin/", Chain(adminHandler(), middlewares...))
	return mux
}

// Handler exposes the endpoint handler for state inspection.
func (s *Server) Handler() *Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the server and blocks until Shutdown or a
// listener failure.
func (s *Server) ListenAndServe() error {
	s.logger.Info("stub server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
