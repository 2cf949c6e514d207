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

	"github.com/craftwiki/feedticker/app/api"
	"github.com/craftwiki/feedticker/app/cfg"
	"github.com/craftwiki/feedticker/app/database"
	"github.com/craftwiki/feedticker/app/feed"
	"github.com/craftwiki/feedticker/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)
	slog.Info("Starting FeedTicker server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	// Repositories
	feedRepo := database.NewFeedRepository(db)
	itemRepo := database.NewItemRepository(db)
	settingsRepo := database.NewSettingsRepository(db)
	auditRepo := database.NewAuditRepository(db)

	// Register seed feeds
	if appCfg.SeedFile != "" {
		if err := registerSeeds(appCfg.SeedFile, feedRepo); err != nil {
			slog.Error("Failed to register seed feeds", "file", appCfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	// Core pipeline components
	httpClient := &http.Client{Timeout: time.Duration(appCfg.FetchTimeout) * time.Second}
	clock := feed.SystemClock()
	registry := feed.NewRegistry(httpClient, appCfg.UserAgent, clock, feedRepo, itemRepo)
	refresher := feed.NewRefresher(registry, feed.NewFilterer(), feedRepo, httpClient,
		appCfg.UserAgent, time.Duration(appCfg.FetchTimeout)*time.Second, clock, auditRepo)
	ticker := feed.NewTicker(feedRepo, itemRepo, settingsRepo)
	runner := tasks.NewRunner(refresher, feedRepo)

	// Background scheduler
	scheduler := tasks.NewScheduler(runner, time.Duration(appCfg.SchedulerInterval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "interval_seconds", appCfg.SchedulerInterval)

	// HTTP server
	handler := api.NewHandler(feedRepo, itemRepo, settingsRepo, auditRepo, ticker, runner)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// registerSeeds upserts the seed file's feeds, keyed by URL so restarts do
// not duplicate them.
func registerSeeds(path string, feedRepo database.FeedRepository) error {
	seeds, err := cfg.LoadSeeds(path)
	if err != nil {
		return err
	}

	registered := 0
	for _, seed := range seeds {
		feedType := database.FeedType(seed.Type)
		if !database.ValidFeedType(feedType) {
			return fmt.Errorf("seed %s has unknown type %q", seed.URL, seed.Type)
		}

		existing, err := feedRepo.GetFeedByURL(seed.URL)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		if _, err := feedRepo.CreateFeed(database.Feed{
			URL:          seed.URL,
			Title:        seed.Title,
			Type:         feedType,
			Keywords:     seed.Keywords,
			ShowInTicker: seed.ShowInTicker,
			IconURL:      seed.IconURL,
		}); err != nil {
			return err
		}
		registered++
	}

	slog.Info("Seed feeds registered", "file", path, "new", registered, "total", len(seeds))
	return nil
}
