// Package server exposes the geodata pipeline and the assistant over HTTP
// and WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/zhiwei-liang/geofile-go/internal/agent"
	"github.com/zhiwei-liang/geofile-go/internal/geodata"
	"github.com/zhiwei-liang/geofile-go/internal/memory"
	"github.com/zhiwei-liang/geofile-go/internal/metrics"
	"github.com/zhiwei-liang/geofile-go/internal/notify"
)

const shutdownGrace = 10 * time.Second

// Server holds the HTTP surface and its collaborators.
type Server struct {
	dispatcher *geodata.Dispatcher
	assistant  *agent.Assistant
	memory     *memory.Store
	hub        *notify.Hub
	metrics    *metrics.Collector
	logger     *slog.Logger
	addr       string
}

// New creates a server. The memory store may be nil; its routes then answer
// with an error envelope instead of failing at startup.
func New(addr string, dispatcher *geodata.Dispatcher, assistant *agent.Assistant,
	store *memory.Store, hub *notify.Hub, collector *metrics.Collector, logger *slog.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		assistant:  assistant,
		memory:     store,
		hub:        hub,
		metrics:    collector,
		logger:     logger,
		addr:       addr,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/ws", s.hub)
	mux.HandleFunc("GET /chat", s.handleChat)
	mux.HandleFunc("GET /chat/stream", s.handleChatStream)
	mux.HandleFunc("GET /readGeoFile", s.handleReadGeoFile)
	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("POST /memory", s.handleMemoryAdd)
	mux.HandleFunc("POST /memory/query", s.handleMemoryQuery)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /stats", s.handleStats)

	return corsMiddleware(loggingMiddleware(s.logger, mux))
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
