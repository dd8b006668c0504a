package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/config"
	"taskboard/logging"
	"taskboard/repositories"
	"taskboard/routes"
	"taskboard/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := logging.InitLogger(logging.Options{
		SystemName: "taskboard-api",
		File:       cfg.LogFile,
		Level:      cfg.LogLevel,
		Stdout:     cfg.LogStdout,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting taskboard API...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: routes.NewRouter(store, routes.Options{
			Tokens:      services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL),
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Logger.Info("Event ID: SERVER_SHUTDOWN, Description: Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_FAILED, Description: Graceful shutdown failed: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*repositories.Store, func()) {
	if cfg.Store == config.StoreMemory {
		logging.Logger.Warn("Event ID: DB_IN_MEMORY, Description: Using the in-memory store, data is lost on exit")
		return repositories.NewMemoryStore(), func() {}
	}

	client, err := repositories.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB, database %s", cfg.MongoDBName)

	store, err := repositories.NewMongoStore(ctx, client, client.Database(cfg.MongoDBName))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	return store, func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logging.Logger.Errorf("Event ID: DB_DISCONNECT_FAILED, Description: %v", err)
		}
	}
}
