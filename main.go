package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"blogposts/config"
	"blogposts/config/database"
	"blogposts/internal/post/repository"
	"blogposts/internal/post/service"
	"blogposts/pkg/logger"
	"blogposts/pkg/metrics"
	"blogposts/router"
	"blogposts/socket"
)

func main() {
	envLoaded := config.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()
	if !envLoaded {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Sugar.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	// The hub fans post events out to websocket subscribers.
	hub := socket.NewHub()
	go hub.Run(ctx)

	reg := metrics.NewRegistry()
	handler := router.Setup(router.Deps{
		Service:        service.NewPostService(repo, hub),
		Hub:            hub,
		Metrics:        metrics.NewHTTPMetrics(reg),
		Gatherer:       reg,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigin:     cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("Posts API listening on %s (store=%s)", cfg.Addr(), cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil

	case config.DriverMemory:
		logger.Sugar.Warn("Using in-memory store; posts are lost on restart")
		return repository.NewMemoryRepository(), func() {}, nil

	default:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		return repository.NewMongoRepository(coll), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Sugar.Errorf("Failed to disconnect from MongoDB: %v", err)
			}
		}, nil
	}
}
