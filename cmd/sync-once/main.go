// Command sync-once runs a single sync pass and exits. It bypasses the
// scheduler, so it works even when scheduled sync is disabled in the config.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/config"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
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
	syncType   string
	sport      string
	dryRun     bool
	timeout    time.Duration
}

func main() {
	if err := run(); err != nil {
		slog.Error("Sync failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	appConfig, err := config.LoadWithEnv(cfg.configPath, cfg.envPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	_, err = logging.SetupLogger(&appConfig.Logging, "sync-once")
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

	var store interface {
		storage.Store
		storage.SyncLogStore
	}
	if cfg.dryRun {
		slog.Info("Dry run: records go to an in-memory store")
		store = storage.NewMemory()
	} else {
		pg, err := storage.NewPostgres(&appConfig.Postgres)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer pg.Close()
		store = pg
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	orch := syncer.New(appConfig, adapters, store, store)

	if cfg.syncType == "all" {
		return printReport(orch.SyncAllSports(ctx))
	}

	sport, ok := enums.ParseSport(cfg.sport)
	if !ok {
		return fmt.Errorf("unknown sport %q (known: %v)", cfg.sport, enums.GetAllSports())
	}

	var report syncer.RunReport
	switch cfg.syncType {
	case "leagues":
		report = orch.SyncLeagues(ctx, sport)
	case "teams":
		report = orch.SyncTeams(ctx, sport)
	case "events":
		report = orch.SyncUpcomingEvents(ctx, sport)
	case "live":
		report = orch.SyncLiveEvents(ctx, sport)
	case "odds":
		report = orch.SyncOdds(ctx, sport)
	default:
		return fmt.Errorf("unknown sync type %q (known: leagues, teams, events, live, odds, all)", cfg.syncType)
	}
	return printReport(report)
}

func printReport(report syncer.RunReport) error {
	fmt.Printf("run:      %s\n", report.RunID)
	fmt.Printf("type:     %s\n", report.SyncType)
	if report.Sport != "" {
		fmt.Printf("sport:    %s\n", report.Sport)
	}
	fmt.Printf("fetched:  %d\n", report.Fetched)
	fmt.Printf("created:  %d\n", report.Created)
	fmt.Printf("updated:  %d\n", report.Updated)
	fmt.Printf("failed:   %d\n", report.Failed)
	fmt.Printf("duration: %s\n", report.Duration.Round(time.Millisecond))
	if len(report.Errors) > 0 {
		fmt.Printf("errors:\n  %s\n", strings.Join(report.Errors, "\n  "))
	}
	if !report.Success {
		return fmt.Errorf("sync run did not succeed")
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
	flag.StringVar(&cfg.envPath, "env", "", "Optional .env file with secrets")
	flag.StringVar(&cfg.syncType, "type", "events", "Sync type: leagues, teams, events, live, odds or all")
	flag.StringVar(&cfg.sport, "sport", "football", "Sport to sync (ignored for -type all)")
	flag.BoolVar(&cfg.dryRun, "dry-run", false, "Fetch and report without writing to postgres")
	flag.DurationVar(&cfg.timeout, "timeout", 10*time.Minute, "Overall run timeout")
	flag.Parse()
	return cfg
}
