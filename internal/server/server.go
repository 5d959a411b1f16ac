package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/raaihank/record-sentinel/internal/config"
	"github.com/raaihank/record-sentinel/internal/logger"
	"github.com/raaihank/record-sentinel/internal/records"
	"github.com/raaihank/record-sentinel/internal/security"
	"github.com/raaihank/record-sentinel/internal/websocket"
	"go.uber.org/zap"
)

const statusInterval = 30 * time.Second

// Authenticator checks administrator credentials
type Authenticator interface {
	AuthenticateAdmin(username, password string) bool
}

// Server serves the record management API
type Server struct {
	config    *config.Config
	version   string
	logger    *logger.Logger
	service   *records.Service
	auth      Authenticator
	wsHub     *websocket.Hub
	limiter   *security.RateLimiter
	router    *mux.Router
	server    *http.Server
	startedAt time.Time
	requests  atomic.Int64
	stop      chan struct{}
}

// New creates the API server. hub may be nil when WebSocket events are
// disabled.
func New(cfg *config.Config, version string, log *logger.Logger, service *records.Service, auth Authenticator, hub *websocket.Hub) *Server {
	s := &Server{
		config:    cfg,
		version:   version,
		logger:    log.WithComponent("server"),
		service:   service,
		auth:      auth,
		wsHub:     hub,
		limiter:   security.NewRateLimiter(cfg.RateLimit),
		router:    mux.NewRouter(),
		startedAt: time.Now(),
		stop:      make(chan struct{}),
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

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)

	if s.wsHub != nil {
		path := s.config.WebSocket.Path
		if path == "" {
			path = "/ws"
		}
		s.router.HandleFunc(path, s.wsHub.HandleWebSocket).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.rateLimitMiddleware)

	api.HandleFunc("/records", s.handleListRecords).Methods(http.MethodGet)
	api.HandleFunc("/records", s.handleCreateRecord).Methods(http.MethodPost)
	api.HandleFunc("/records/{id}", s.handleGetRecord).Methods(http.MethodGet)
	api.HandleFunc("/records/{id}", s.handleUpdateRecord).Methods(http.MethodPut)
	api.HandleFunc("/records/{id}", s.handleDeleteRecord).Methods(http.MethodDelete)

	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/mask", s.handleMask).Methods(http.MethodPost)

	api.HandleFunc("/admin/login", s.handleAdminLogin).Methods(http.MethodPost)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting record server",
		zap.Int("port", s.config.Server.Port),
		zap.String("storage_driver", s.config.Storage.Driver),
		zap.Bool("cache_enabled", s.config.Cache.Enabled),
		zap.Bool("sync_enabled", s.config.Sync.Enabled),
		zap.Bool("websocket_enabled", s.wsHub != nil),
	)

	s.limiter.StartCleanupRoutine(s.stop)
	if s.wsHub != nil {
		go s.broadcastStatus()
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping record server")
	close(s.stop)
	return s.server.Shutdown(ctx)
}

func (s *Server) broadcastStatus() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.wsHub.BroadcastSystemStatus(s.status(context.Background()))
		case <-s.stop:
			return
		}
	}
}

func (s *Server) status(ctx context.Context) websocket.SystemStatusEvent {
	status := websocket.SystemStatusEvent{
		Status:        "healthy",
		Uptime:        time.Since(s.startedAt).Round(time.Second).String(),
		TotalRequests: s.requests.Load(),
	}
	if all, err := s.service.List(ctx); err == nil {
		status.TotalRecords = len(all)
	} else {
		status.Status = "degraded"
	}
	if s.wsHub != nil {
		status.ConnectedClients = int(s.wsHub.GetStats().ActiveConnections)
	}
	return status
}
