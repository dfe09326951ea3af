package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ykamio/contentops/internal/anonymize"
	"github.com/ykamio/contentops/internal/articles"
	"github.com/ykamio/contentops/internal/cache"
	"github.com/ykamio/contentops/internal/config"
	"github.com/ykamio/contentops/internal/database"
	"github.com/ykamio/contentops/internal/knowledge"
	"github.com/ykamio/contentops/internal/links"
	"github.com/ykamio/contentops/internal/llm"
	"github.com/ykamio/contentops/internal/logger"
	"github.com/ykamio/contentops/internal/notify"
	"github.com/ykamio/contentops/internal/pipeline"
	"github.com/ykamio/contentops/internal/server"
	"github.com/ykamio/contentops/internal/telemetry"
	"github.com/ykamio/contentops/internal/websocket"
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
		runOnce     = flag.Bool("run-once", false, "Execute one rewrite run and exit")
		healthCheck = flag.Bool("health-check", false, "Perform health check and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("ContentOps %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if *healthCheck {
		performHealthCheck()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting ContentOps",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := database.Connect(cfg.Database, log.WithComponent("database").Logger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	var completionCache *cache.CompletionCache
	if cfg.Cache.Enabled {
		completionCache, err = cache.NewCompletionCache(&cache.Config{
			RedisURL:   cfg.Cache.RedisURL,
			KeyPrefix:  cfg.Cache.KeyPrefix,
			DefaultTTL: cfg.Cache.DefaultTTL,
			PoolSize:   cfg.Cache.PoolSize,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			log.Fatal("Failed to initialize completion cache", zap.Error(err))
		}
		defer completionCache.Close()
	}

	engine := anonymize.New(log.WithComponent("anonymize"))
	writer := llm.New(cfg.LLM, completionCache, log.WithComponent("llm"))
	linker := links.New(cfg.Rewrite.MaxLinks, log.WithComponent("links"))
	notifier := notify.New(cfg.Notify, log)

	metricsStore := telemetry.NewStore(db, log.WithComponent("telemetry").Logger)
	knowledgeStore := knowledge.NewStore(db, log.WithComponent("knowledge").Logger)
	articleStore := articles.NewStore(db, log.WithComponent("articles").Logger)

	wsHub := websocket.NewHub(cfg.WebSocket, log.WithComponent("websocket").Logger)

	runner := pipeline.NewRunner(cfg, metricsStore, articleStore, knowledgeStore,
		writer, engine, linker, notifier, wsHub, log)

	if *runOnce {
		result, err := runner.Run(context.Background())
		if err != nil {
			log.Fatal("Rewrite run failed", zap.Error(err))
		}
		log.Info("Rewrite run finished",
			zap.String("run_id", result.RunID),
			zap.Int("rewritten", result.Rewritten),
			zap.Int("failed", result.Failed),
		)
		return
	}

	srv := server.New(cfg, engine, runner, articleStore, wsHub, log)

	if err := config.Watch(cfg, func(newCfg *config.Config) {
		log.Info("Configuration reloaded",
			zap.Int("batch_size", newCfg.Rewrite.BatchSize),
			zap.String("model", newCfg.LLM.Model),
		)
	}); err != nil {
		log.Warn("Failed to watch configuration", zap.Error(err))
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Error("Server error", zap.Error(err))
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
			os.Exit(1)
		}

		log.Info("Server shutdown complete")
	}
}

// performHealthCheck performs a health check against the running server
func performHealthCheck() {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get("http://localhost:8080/health")
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
