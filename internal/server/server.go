// Package server exposes the HTTP API and dashboard for the content
// operations service.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ykamio/contentops/internal/anonymize"
	"github.com/ykamio/contentops/internal/articles"
	"github.com/ykamio/contentops/internal/config"
	"github.com/ykamio/contentops/internal/logger"
	"github.com/ykamio/contentops/internal/pipeline"
	"github.com/ykamio/contentops/internal/telemetry"
	"github.com/ykamio/contentops/internal/web"
	"github.com/ykamio/contentops/internal/websocket"
	"go.uber.org/zap"
)

// RunTrigger starts batch runs and previews candidates.
type RunTrigger interface {
	Run(ctx context.Context) (*pipeline.RunResult, error)
	SelectCandidates(ctx context.Context) ([]telemetry.Candidate, error)
	Running() bool
}

// RewriteLister reads recent rewrite history for the dashboard.
type RewriteLister interface {
	RecentRewrites(ctx context.Context, limit int) ([]articles.RewriteRecord, error)
}

// Server is the HTTP front of the service.
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	engine   *anonymize.Engine
	runner   RunTrigger
	rewrites RewriteLister
	router   *mux.Router
	server   *http.Server
	wsHub    *websocket.Hub
}

// New creates the HTTP server. The hub is shared with the pipeline so both
// sides broadcast to the same clients. runner and rewrites may be nil in
// reduced deployments; the corresponding endpoints then report 503.
func New(cfg *config.Config, engine *anonymize.Engine, runner RunTrigger, rewrites RewriteLister, wsHub *websocket.Hub, log *logger.Logger) *Server {
	s := &Server{
		config:   cfg,
		logger:   log.WithComponent("server"),
		engine:   engine,
		runner:   runner,
		rewrites: rewrites,
		router:   mux.NewRouter(),
		wsHub:    wsHub,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	// Dashboard endpoint - embedded HTML
	s.router.HandleFunc("/", web.ServeDashboard).Methods("GET")
	s.router.HandleFunc("/dashboard", web.ServeDashboard).Methods("GET")

	// WebSocket endpoint for dashboard
	s.router.HandleFunc("/ws", s.wsHub.HandleWebSocket).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.loggingMiddleware)
	api.HandleFunc("/anonymize", s.handleAnonymize).Methods("POST")
	api.HandleFunc("/rewrites", s.handleRewrites).Methods("GET")
	api.HandleFunc("/candidates", s.handleCandidates).Methods("GET")
	api.HandleFunc("/run", s.handleRun).Methods("POST")
}

// Start starts the HTTP server and the WebSocket hub.
func (s *Server) Start() error {
	s.logger.Info("Starting content operations server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("websocket_enabled", s.config.WebSocket.Enabled),
	)

	go s.wsHub.Run()

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping content operations server")
	return s.server.Shutdown(ctx)
}

// Hub returns the WebSocket hub for broadcasting pipeline events.
func (s *Server) Hub() *websocket.Hub {
	return s.wsHub
}

// Router exposes the route table. Intended for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
