package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/rfdpanel/internal/adapter/driven/github"
	"github.com/ericfisherdev/rfdpanel/internal/adapter/driven/rfdapi"
	sqliteadapter "github.com/ericfisherdev/rfdpanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/rfdpanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/rfdpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/rfdpanel/internal/application"
	"github.com/ericfisherdev/rfdpanel/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid values). A TOML file is
	// read when RFDPANEL_CONFIG_FILE is set.
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"rfd_api_url", cfg.RFDAPIURL,
		"cache_ttl", cfg.CacheTTL,
		"poll_interval", cfg.PollInterval,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the snapshot cache and apply migrations.
	db, err := sqliteadapter.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", db.Path())

	// 4. Wire driven adapters.
	store := sqliteadapter.NewDiscussionRepo(db)
	rfdSource := rfdapi.NewClient(cfg.RFDAPIURL, cfg.RFDAPIToken, cfg.RFDAPIRPS)
	ghClient := githubadapter.NewClient(cfg.GitHubToken)
	if !cfg.HasGitHubToken() {
		slog.Warn("no github token configured, using the anonymous rate limit")
	}

	// 5. Create services and start the poll loop.
	discussions := application.NewDiscussionService(rfdSource, ghClient, store, cfg.CacheTTL)
	pollSvc := application.NewPollService(discussions, store, cfg.CacheTTL, cfg.PollInterval)
	go pollSvc.Start(ctx)

	// 6. Register API and GUI routes on one mux.
	mux := http.NewServeMux()
	httphandler.NewHandler(discussions, pollSvc, slog.Default()).RegisterRoutes(mux)
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(discussions, slog.Default()))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.Wrap(mux, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("rfdpanel started", "listen_addr", cfg.ListenAddr)

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
