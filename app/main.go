package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/feed-digest/app/api"
	"github.com/lysyi3m/feed-digest/app/cfg"
	"github.com/lysyi3m/feed-digest/app/database"
	"github.com/lysyi3m/feed-digest/app/feed"
	"github.com/lysyi3m/feed-digest/app/sources"
	"github.com/lysyi3m/feed-digest/app/tasks"
)

const fetchCacheExpiration = 24 * time.Hour

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := cfg.Load()
	if err != nil {
		return err
	}
	if appCfg == nil {
		// Help was shown
		return nil
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	location, err := appCfg.Location()
	if err != nil {
		slog.Warn("Falling back to UTC", "error", err)
	}

	slog.Info("Starting Feed Digest", "version", appCfg.Version, "timezone", location.String())

	srcs, err := sources.Load(appCfg.FeedsFile, appCfg.Feeds)
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	slog.Info("Sources loaded", "count", len(srcs))

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	runRepo := database.NewRunRepository(db)

	parser := feed.NewParser()
	pool := tasks.NewPool(&http.Client{}, parser, feed.NewFilterer(), tasks.PoolConfig{
		WorkerCount: appCfg.WorkerCount,
		MaxRetries:  appCfg.MaxRetries,
		Timeout:     appCfg.FetchTimeout,
		UserAgent:   appCfg.UserAgent,
		Days:        appCfg.Days,
	})
	if appCfg.Serve {
		pool.WithCache(tasks.NewFetchCache(fetchCacheExpiration))
	}
	digester := tasks.NewDigester(pool, feed.NewGenerator(appCfg.Version), runRepo, srcs, location)

	if !appCfg.Serve {
		return runOnce(digester, appCfg.Output)
	}

	return serve(appCfg, digester, runRepo)
}

func runOnce(digester *tasks.Digester, output string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	digest, err := digester.Run(ctx)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, []byte(digest.HTML), 0o644); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}

	slog.Info("Digest written", "path", output, "run_id", digest.RunID, "blogs", len(digest.Report.Blogs), "posts", digest.Report.PostCount())
	return nil
}

func serve(appCfg *cfg.Cfg, digester *tasks.Digester, runRepo database.RunRepository) error {
	scheduler := tasks.NewScheduler(digester, appCfg.RefreshInterval)
	scheduler.Start()
	defer scheduler.Stop()

	server := api.NewServer(api.NewHandler(runRepo, scheduler, appCfg.Version), appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "refresh_interval", appCfg.RefreshInterval.String())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
		slog.Error("Server error", "error", serveErr)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return serveErr
}
