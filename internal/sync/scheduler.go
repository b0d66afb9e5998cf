package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/config"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
)

// Scheduler runs the orchestrator on fixed cadences, one ticker per sync
// type. It only starts when sync is enabled in the config; manual runs via
// the orchestrator are not gated.
type Scheduler struct {
	cfg    *config.Config
	orch   *Orchestrator
	sports []enums.Sport
}

func NewScheduler(cfg *config.Config, orch *Orchestrator) *Scheduler {
	var sports []enums.Sport
	for _, name := range cfg.Sync.Sports {
		sport, ok := enums.ParseSport(name)
		if !ok {
			slog.Warn("Ignoring unknown sport in config", "sport", name)
			continue
		}
		sports = append(sports, sport)
	}
	return &Scheduler{cfg: cfg, orch: orch, sports: sports}
}

// Run blocks until ctx is cancelled. The first full pass happens immediately;
// after that each sync type fires on its own interval.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.cfg.Sync.Enabled {
		slog.Info("Scheduled sync disabled, scheduler idle")
		<-ctx.Done()
		return ctx.Err()
	}
	if len(s.sports) == 0 {
		slog.Warn("No sports configured, scheduler idle")
		<-ctx.Done()
		return ctx.Err()
	}

	slog.Info("Scheduler started",
		"sports", s.cfg.Sync.Sports,
		"live_interval", s.cfg.Sync.LiveInterval,
		"events_interval", s.cfg.Sync.EventsInterval,
		"leagues_interval", s.cfg.Sync.LeaguesInterval,
		"odds_interval", s.cfg.Sync.OddsInterval,
		"multi_sport_interval", s.cfg.Sync.MultiSportInterval)

	s.initialPass(ctx)

	live := time.NewTicker(s.cfg.Sync.LiveInterval)
	events := time.NewTicker(s.cfg.Sync.EventsInterval)
	leagues := time.NewTicker(s.cfg.Sync.LeaguesInterval)
	odds := time.NewTicker(s.cfg.Sync.OddsInterval)
	multi := time.NewTicker(s.cfg.Sync.MultiSportInterval)
	defer live.Stop()
	defer events.Stop()
	defer leagues.Stop()
	defer odds.Stop()
	defer multi.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return ctx.Err()
		case <-live.C:
			s.forEachSport(ctx, s.orch.SyncLiveEvents)
		case <-events.C:
			s.forEachSport(ctx, s.orch.SyncUpcomingEvents)
		case <-leagues.C:
			s.forEachSport(ctx, s.orch.SyncLeagues)
		case <-odds.C:
			s.forEachSport(ctx, s.orch.SyncOdds)
		case <-multi.C:
			s.orch.SyncAllSports(ctx)
		}
	}
}

// initialPass seeds the store right after startup instead of waiting a full
// interval for the slowest tickers.
func (s *Scheduler) initialPass(ctx context.Context) {
	s.forEachSport(ctx, s.orch.SyncLeagues)
	s.forEachSport(ctx, s.orch.SyncUpcomingEvents)
}

func (s *Scheduler) forEachSport(ctx context.Context, sync func(context.Context, enums.Sport) RunReport) {
	for _, sport := range s.sports {
		if ctx.Err() != nil {
			return
		}
		sync(ctx, sport)
	}
}
