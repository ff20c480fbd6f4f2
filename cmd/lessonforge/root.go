package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slateworks/lessonforge/internal/api"
	"github.com/slateworks/lessonforge/internal/auth"
	"github.com/slateworks/lessonforge/internal/config"
	"github.com/slateworks/lessonforge/internal/generate"
	"github.com/slateworks/lessonforge/internal/metrics"
	"github.com/slateworks/lessonforge/internal/store"
	"github.com/slateworks/lessonforge/internal/types"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "lessonforge",
	Short:   "LessonForge - educational content authoring service",
	Version: Version,
	RunE:    run,
}

func run(cmd *cobra.Command, args []string) error {
	// Signal handling
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Load configuration; missing secrets fail here, not on first use
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize logger
	initLogger(cfg.Log)
	slog.Info("configuration loaded", "storage_driver", cfg.Storage.Driver)

	// Initialize store
	db, err := newStore(cfg.Storage)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "driver", cfg.Storage.Driver)

	// Seed the fixture user
	if err := seedUser(ctx, db, cfg.Seed); err != nil {
		return err
	}

	// Initialize generation service
	generator := generate.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	slog.Info("generator initialized", "model", cfg.OpenAI.Model)

	// Initialize HTTP router
	collector := metrics.NewCollector("lessonforge")
	handler := api.NewHandler(db, generator, collector, Version)
	router := api.NewRouter(handler, collector)
	slog.Info("router initialized")

	// Configure HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error on graceful Shutdown().
		// Any other error is an actual server failure.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	// Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	// Graceful shutdown: drain in-flight requests, then close the store
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func initLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
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

// newStore constructs the storage driver selected by configuration.
func newStore(cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return store.NewSQLiteStore(cfg.Path)
	default:
		return store.NewMemoryStore(), nil
	}
}

// seedUser creates the fixture authoring account. An already-present
// username means a previous run seeded it, which is not an error.
func seedUser(ctx context.Context, db store.Store, cfg config.SeedConfig) error {
	password := cfg.Password
	if password == "" {
		// Dev mode only; config validation requires it otherwise
		password = "lessonforge"
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	user, err := db.CreateUser(ctx, types.NewUser{
		Username:     cfg.Username,
		PasswordHash: hash,
	})
	if errors.Is(err, store.ErrDuplicateUsername) {
		slog.Info("seed user already present", "username", cfg.Username)
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	slog.Info("seed user created", "username", user.Username, "id", user.ID)
	return nil
}
