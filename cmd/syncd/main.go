package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/config"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/logging"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/storage"
	"github.com/blockalphadev/dejavu-sub004/internal/providers"
	syncer "github.com/blockalphadev/dejavu-sub004/internal/sync"

	// Register all supported provider adapters via init().
	_ "github.com/blockalphadev/dejavu-sub004/internal/providers/all"
)

const defaultConfigPath = "configs/production.yaml"

type flags struct {
	configPath string
	envPath    string
	runFor     time.Duration
}

func main() {
	if err := run(); err != nil {
		slog.Error("Sync daemon failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()
	slog.Info("Loading config", "path", cfg.configPath)

	appConfig, err := config.LoadWithEnv(cfg.configPath, cfg.envPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	_, err = logging.SetupLogger(&appConfig.Logging, "syncd")
	if err != nil {
		slog.Warn("Failed to setup logging, continuing with default logger", "error", err)
	}

	adapters, err := providers.BuildEnabled(appConfig)
	if err != nil {
		return fmt.Errorf("failed to build providers: %w", err)
	}
	if len(adapters) == 0 {
		return fmt.Errorf("no providers enabled (providers.enabled=%v)", appConfig.Providers.Enabled)
	}

	store, err := storage.NewPostgres(&appConfig.Postgres)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer store.Close()

	ctx, cancel := createContext(cfg.runFor)
	defer cancel()
	setupSignalHandler(ctx, cancel)

	orch := syncer.New(appConfig, adapters, store, store)
	for name, ok := range orch.TestConnections(ctx) {
		if !ok {
			slog.Warn("Provider unreachable at startup", "source", name)
		}
	}

	scheduler := syncer.NewScheduler(appConfig, orch)
	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func parseFlags() flags {
	var cfg flags

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&cfg.envPath, "env", "", "Optional .env file with secrets (POSTGRES_DSN, SPORTSIO_API_KEY, SPORTSDB_API_KEY)")
	flag.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration (e.g. 10m, 1h). 0 = run until SIGINT/SIGTERM")
	flag.Parse()
	return cfg
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal, stopping sync daemon...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
			close(sigChan)
		}
	}()
}
