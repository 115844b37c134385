package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/cdusync/internal/api"
	"github.com/hyperengineering/cdusync/internal/config"
	"github.com/hyperengineering/cdusync/internal/engine"
	"github.com/hyperengineering/cdusync/internal/snapshot"
	"github.com/hyperengineering/cdusync/internal/worker"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "cdusync",
	Short:         "cdusync - hierarchical CRUD sync engine for the CDU portal",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the entity tree and serve the admin API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.Version = Version
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reloadCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))
	slog.Info("configuration loaded", "mode", cfg.Mode, "level", cfg.Log.Level)

	// Engine, with its remote store and cached snapshot
	feed := engine.NewFeed(200)
	rt, err := openRuntime(cfg, engine.Multi{engine.LogNotifier{}, feed})
	if err != nil {
		return err
	}
	defer rt.Close()

	res := rt.engine.Start(ctx)
	slog.Info("initial load complete",
		"component", "engine",
		"action", "load_complete",
		"source", res.Source,
		"degraded", res.Degraded,
	)

	uploader, err := snapshot.NewUploader(cfg.Backup)
	if err != nil {
		return fmt.Errorf("backup uploader: %w", err)
	}

	handler := api.NewHandler(rt.engine, feed, cfg.Auth.APIKey, Version)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	var wg sync.WaitGroup
	refresher := worker.NewSnapshotRefresher(rt.engine, rt.cache, uploader, time.Duration(cfg.Snapshot.Interval))
	startWorker(ctx, &wg, "snapshot-refresh", refresher.Run)

	go func() {
		slog.Info("server starting", "address", addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	wg.Wait()

	// Drain queued remote writes before the store closes
	rt.engine.Wait()

	slog.Info("shutdown complete")
	return nil
}

// newLogger builds the process logger from the log section of the config.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
