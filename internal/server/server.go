// Package server exposes the HTTP + WebSocket API over the scan pipeline.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/averdin/realmbroker/internal/server/handler"
	"github.com/averdin/realmbroker/internal/server/middleware"
	"github.com/averdin/realmbroker/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health        *handler.HealthHandler
	Items         *handler.ItemHandler
	Realms        *handler.RealmHandler
	Opportunities *handler.OpportunityHandler
	Scan          *handler.ScanHandler
	Settings      *handler.SettingsHandler
}

// Server is the headless HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth) and attaches the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required for the route itself; auth middleware
	// applies uniformly, so deployments wanting an open health probe run
	// without an API key or terminate auth upstream).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Tracked-item watchlist.
	mux.HandleFunc("GET /api/items", handlers.Items.ListItems)
	mux.HandleFunc("POST /api/items", handlers.Items.CreateItem)
	mux.HandleFunc("PUT /api/items/{id}", handlers.Items.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", handlers.Items.DeleteItem)
	mux.HandleFunc("DELETE /api/items", handlers.Items.DeleteAllItems)

	// Connected-realm directory.
	mux.HandleFunc("GET /api/realms", handlers.Realms.ListRealms)
	mux.HandleFunc("POST /api/realms/sync", handlers.Realms.SyncRealms)

	// Arbitrage opportunities.
	mux.HandleFunc("GET /api/opportunities", handlers.Opportunities.ListTop)
	mux.HandleFunc("DELETE /api/opportunities", handlers.Opportunities.Prune)

	// Scan control.
	mux.HandleFunc("POST /api/scan/trigger", handlers.Scan.TriggerScan)
	mux.HandleFunc("GET /api/scan/status", handlers.Scan.ScanStatus)

	// Operator scan settings.
	mux.HandleFunc("GET /api/settings", handlers.Settings.GetSettings)
	mux.HandleFunc("PUT /api/settings", handlers.Settings.UpdateSettings)

	// WebSocket progress feed.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
