package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raaihank/record-sentinel/internal/bootstrap"
	"github.com/raaihank/record-sentinel/internal/config"
	"github.com/raaihank/record-sentinel/internal/records"
	"github.com/raaihank/record-sentinel/internal/server"
	"github.com/raaihank/record-sentinel/internal/syncclient"
	"github.com/raaihank/record-sentinel/internal/websocket"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		healthCheck = flag.Bool("health-check", false, "Perform health check and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("Record-Sentinel %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *healthCheck {
		performHealthCheck(cfg.Server.Port)
		return
	}

	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	redacted := cfg.Redacted()
	log.Info("Starting Record-Sentinel",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Any("config", redacted),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *configPath != "" {
		err := config.Watch(*configPath, func(updated *config.Config) {
			if err := log.SetLevel(updated.Logging.Level); err != nil {
				log.Warn("Ignoring invalid log level", zap.Error(err))
				return
			}
			log.Info("Configuration reloaded", zap.String("log_level", updated.Logging.Level))
		}, func(err error) {
			log.Warn("Configuration reload failed", zap.Error(err))
		})
		if err != nil {
			log.Warn("Configuration watch disabled", zap.Error(err))
		}
	}

	syncClient := syncclient.New(cfg.Sync, cfg.Admin, log)
	if cfg.Storage.Driver == config.DriverPostgres {
		syncClient.DescribeDatabase(cfg.Storage.DatabaseURL)
	}

	store, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to open record store", zap.Error(err))
	}

	var hub *websocket.Hub
	var publisher records.Publisher
	if cfg.WebSocket.Enabled {
		hub = websocket.NewHub(&websocket.HubConfig{
			BroadcastRecords:     cfg.WebSocket.Events.BroadcastRecords,
			BroadcastRequests:    cfg.WebSocket.Events.BroadcastRequests,
			BroadcastSystem:      cfg.WebSocket.Events.BroadcastSystem,
			BroadcastConnections: cfg.WebSocket.Events.BroadcastConnections,
			Username:             cfg.WebSocket.Username,
			Password:             cfg.WebSocket.Password,
		}, log.Logger)
		publisher = hub
		go hub.Run(ctx)
	}

	service := records.NewService(store, syncClient, publisher, log)
	defer func() {
		if err := service.Close(); err != nil {
			log.Error("Failed to close record service", zap.Error(err))
		}
	}()

	if cfg.Seed.SampleData {
		if _, err := service.Seed(ctx); err != nil {
			log.Error("Failed to load sample data", zap.Error(err))
		}
	}

	srv := server.New(cfg, version, log, service, syncClient, hub)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", zap.Error(err))
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Give outstanding requests 30 seconds to complete
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
		}

		log.Info("Server shutdown complete")
	}
}

// performHealthCheck performs a health check against the running server
func performHealthCheck(port int) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/health", port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
	os.Exit(0)
}
