package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/certwatch-io/certwatch/internal/api"
	"github.com/certwatch-io/certwatch/internal/api/handlers"
	"github.com/certwatch-io/certwatch/internal/checker"
	"github.com/certwatch-io/certwatch/internal/config"
	"github.com/certwatch-io/certwatch/internal/db"
	"github.com/certwatch-io/certwatch/internal/metrics"
	"github.com/certwatch-io/certwatch/internal/scheduler"
	"github.com/certwatch-io/certwatch/internal/settings"
	"github.com/certwatch-io/certwatch/internal/watchlist"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := newLogger(cfg.Server.Mode)
	defer logger.Sync()

	// Database
	database, err := db.NewConnection(cfg.Database.URL, cfg.Database.MaxConnections, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repo := db.NewRepository(database)
	settingsStore := settings.NewStore(repo, logger)

	// Snapshot cache is optional; without redis every fetch dials out.
	var cache *checker.Cache
	if cfg.Redis.URL != "" {
		cache = checker.NewCache(cfg.Redis.URL, cfg.Redis.CacheTTL, logger)
		defer cache.Close()
	}

	fetcher := checker.NewTLSFetcher(cfg.Fetch, settingsStore, cache, logger)
	whoisChecker := checker.NewWHOISChecker()

	var verifier watchlist.Verifier
	if cfg.Fetch.VerifyOnAdd {
		verifier = checker.NewResolver()
	}

	service := watchlist.NewService(repo, fetcher, verifier, settingsStore, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := service.Load(ctx); err != nil {
		logger.Fatal("Failed to load watch list", zap.Error(err))
	}

	collector := metrics.NewCollector(cfg.RemoteWrite)
	collector.UpdateWatchlist(service.List())
	if cfg.RemoteWrite.URL != "" {
		go collector.StartRemoteWrite(ctx, logger)
	}

	sched := scheduler.NewScheduler(service, collector, logger)
	sched.Configure(settingsStore.AutoRefreshInterval(ctx))
	defer sched.Stop()

	janitor := scheduler.NewJanitor(repo, settingsStore, logger)
	go janitor.Run(ctx)

	handler := handlers.NewHandler(
		service, fetcher, whoisChecker, repo, settingsStore, sched, collector, logger)
	server := api.NewServer(cfg, handler, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("API server started", zap.String("port", cfg.Server.Port))

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(mode string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if mode == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	return logger
}
