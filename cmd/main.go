package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"ozondash/internal/adapters/mongodb"
	"ozondash/internal/api"
	"ozondash/internal/backend"
	"ozondash/internal/collector"
	"ozondash/internal/config"
	"ozondash/internal/directory"
	"ozondash/internal/service"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("failed to load config", zap.Error(err))
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalw("failed to load timezone", zap.Error(err))
	}

	policy, err := collector.ParseJoinPolicy(cfg.JoinPolicy)
	if err != nil {
		log.Fatalw("invalid join policy", zap.Error(err))
	}

	mongoDB, err := mongodb.NewMongoDB(ctx, cfg.MongoDBURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalw("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoDB.Disconnect(context.Background())

	err = mongodb.SetUpCollections(ctx, mongoDB.Database, cfg.ViewTTL)
	if err != nil {
		log.Fatalw("failed to set up collections", zap.Error(err))
	}

	client := backend.NewClient(log.Named("backend"), backend.Options{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.BackendTimeout,
		RPS:     cfg.BackendRPS,
		Burst:   cfg.BackendBurst,
	})

	proxy, err := backend.NewProxy(log.Named("proxy"), cfg.BackendBaseURL)
	if err != nil {
		log.Fatalw("failed to create backend proxy", zap.Error(err))
	}

	dir := directory.New(log.Named("directory"), client)
	if err := dir.Refresh(ctx); err != nil {
		// the first dashboard request retries the load
		log.Warnw("initial directory load failed", zap.Error(err))
	}
	if err := dir.Start(cfg.DirectoryRefresh, cfg.BackendTimeout); err != nil {
		log.Fatalw("failed to schedule directory refresh", zap.Error(err))
	}
	defer dir.Stop()

	collect := collector.New(log.Named("collector"), client, policy, cfg.BackendTimeout, cfg.MaxConcurrency)
	dashboard := service.NewAnalyticsService(log.Named("service"), dir, collect, collector.NewSequencer())
	viewRepository := mongodb.NewViewRepository(mongoDB)

	mainAPI := api.NewAPI(log.Named("api"), dashboard, viewRepository, proxy, loc)

	// Start server with context-aware logic
	server := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           mainAPI.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Listen for syscall signals for process to interrupt/quit
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		// Shutdown signal with grace period of 30 seconds
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit")
			}
		}()

		// Trigger graceful shutdown
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		cancel()
	}()

	log.Infow("starting server",
		"addr", cfg.ServerPort,
		"backend", client.BaseURL(),
		"join_policy", policy,
	)

	// Run the server
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	// Wait for server context to be stopped
	<-ctx.Done()
}
