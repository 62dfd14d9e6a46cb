// Package main runs the social media backend: configuration, database,
// migrations, application services and the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/microblog/service_layer/internal/api/httpserver"
	app "github.com/microblog/service_layer/internal/app"
	"github.com/microblog/service_layer/internal/app/httpapi"
	"github.com/microblog/service_layer/internal/app/storage/postgres"
	"github.com/microblog/service_layer/internal/config"
	"github.com/microblog/service_layer/internal/platform/database"
	"github.com/microblog/service_layer/internal/platform/migrations"
	"github.com/microblog/service_layer/pkg/logger"
)

const shutdownGrace = 10 * time.Second

func main() {
	envFile := flag.String("env", ".env", "Path to optional .env file")
	flag.Parse()

	// Optional; absence is not an error for local runs.
	_ = godotenv.Load(*envFile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores := app.Stores{}
	if cfg.Database.DSN != "" {
		db, err := database.Open(ctx, cfg.Database.DSN)
		if err != nil {
			logg.Fatalf("open database: %v", err)
		}
		defer db.Close()

		if err := migrations.Apply(ctx, db); err != nil {
			logg.Fatalf("apply migrations: %v", err)
		}

		store := postgres.New(db, logg.WithField("component", "postgres"))
		stores.Accounts = store
		stores.Messages = store
		logg.Info("using postgres persistence")
	} else {
		logg.Warn("DATABASE_URL not set; using in-memory persistence")
	}

	application, err := app.New(stores, logg.WithField("component", "app"))
	if err != nil {
		logg.Fatalf("build application: %v", err)
	}
	if err := application.Start(ctx); err != nil {
		logg.Fatalf("start application: %v", err)
	}

	handler := httpapi.NewHandler(application, logg.WithField("component", "httpapi"))
	server := httpserver.New(cfg.Server, logg.WithField("component", "httpserver"), handler)

	errCh := make(chan error, 1)
	go func() {
		logg.Infof("HTTP server listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logg.Info("shutdown signal received")
	case err := <-errCh:
		logg.Errorf("http server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Errorf("http shutdown: %v", err)
	}
	if err := application.Stop(shutdownCtx); err != nil {
		logg.Errorf("application stop: %v", err)
	}
}
