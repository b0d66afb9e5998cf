// Package sync coordinates provider fetches into the canonical store: it
// fans out across enabled sources, pushes records through the quality
// pipeline, upserts the result and records one audit row per run.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/config"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/markets"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/quality"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/storage"
	"github.com/blockalphadev/dejavu-sub004/internal/providers"
)

// quotaMargin is the minimum remaining daily quota a source must have before
// multi-sport sync schedules more work against it.
const quotaMargin = 2

// RunReport summarizes one orchestration run.
type RunReport struct {
	RunID    string
	SyncType models.SyncType
	Sport    enums.Sport
	Success  bool
	Fetched  int
	Created  int
	Updated  int
	Failed   int
	Errors   []string
	Duration time.Duration
}

// Orchestrator drives sync runs over a fixed set of provider adapters.
// Adapters are ordered by descending priority and the order never changes
// within a run.
type Orchestrator struct {
	cfg      *config.Config
	adapters []providers.Adapter
	store    storage.Store
	logs     storage.SyncLogStore
	quality  *quality.Engine
}

func New(cfg *config.Config, adapters []providers.Adapter, store storage.Store, logs storage.SyncLogStore) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		adapters: adapters,
		store:    store,
		logs:     logs,
		quality:  quality.NewEngine(),
	}
}

// runState carries one run's bookkeeping between the shared helpers.
type runState struct {
	id     string
	start  time.Time
	report RunReport

	okSources  int
	storeError error
}

func (o *Orchestrator) begin(ctx context.Context, syncType models.SyncType, sport enums.Sport) *runState {
	rs := &runState{
		start:  time.Now(),
		report: RunReport{SyncType: syncType, Sport: sport},
	}

	id, err := o.logs.CreateSyncLog(ctx, syncType, o.sourceLabel(), sport)
	if err != nil {
		// The audit log is best effort: a run proceeds without its row.
		slog.Warn("Failed to create sync log", "sync_type", syncType, "error", err)
		return rs
	}
	rs.id = id
	rs.report.RunID = id
	return rs
}

func (o *Orchestrator) sourceLabel() string {
	if len(o.adapters) == 1 {
		return o.adapters[0].Name()
	}
	return "all"
}

func (rs *runState) addError(format string, args ...any) {
	rs.report.Errors = append(rs.report.Errors, fmt.Sprintf(format, args...))
}

// eachSource runs fn once per adapter with the configured delay between
// sources. A source that fails or has no quota left is recorded and skipped;
// the run continues with the next one.
func (o *Orchestrator) eachSource(ctx context.Context, rs *runState, fn func(context.Context, providers.Adapter) error) {
	for i, adapter := range o.adapters {
		if i > 0 {
			if err := sleepCtx(ctx, o.cfg.Sync.InterSourceDelay); err != nil {
				rs.addError("sync interrupted: %v", err)
				return
			}
		}

		if usage := adapter.Usage(); usage.Remaining == 0 {
			rs.addError("source %s: daily quota exhausted", adapter.Name())
			slog.Warn("Skipping source, daily quota exhausted", "source", adapter.Name())
			continue
		}

		if err := fn(ctx, adapter); err != nil {
			rs.addError("source %s: %v", adapter.Name(), err)
			slog.Error("Source sync failed", "source", adapter.Name(), "error", err)
			continue
		}
		rs.okSources++
	}
}

// finish writes the single terminal audit update and seals the report.
func (o *Orchestrator) finish(ctx context.Context, rs *runState) RunReport {
	rs.report.Duration = time.Since(rs.start)
	rs.report.Success = rs.okSources > 0 && rs.storeError == nil

	status := models.SyncCompleted
	if !rs.report.Success {
		status = models.SyncFailed
	}

	if rs.id != "" {
		update := storage.SyncLogUpdate{
			Status:         status,
			RecordsFetched: rs.report.Fetched,
			RecordsCreated: rs.report.Created,
			RecordsUpdated: rs.report.Updated,
			RecordsFailed:  rs.report.Failed,
			ErrorMessage:   strings.Join(rs.report.Errors, "; "),
			Duration:       rs.report.Duration,
		}
		if err := o.logs.UpdateSyncLog(ctx, rs.id, update); err != nil {
			slog.Warn("Failed to update sync log", "run_id", rs.id, "error", err)
		}
	}

	slog.Info("Sync run finished",
		"sync_type", rs.report.SyncType,
		"sport", rs.report.Sport,
		"success", rs.report.Success,
		"fetched", rs.report.Fetched,
		"created", rs.report.Created,
		"updated", rs.report.Updated,
		"failed", rs.report.Failed,
		"duration", rs.report.Duration)
	return rs.report
}

// SyncLeagues fetches leagues for one sport from every source, deduplicates
// the accumulated batch and upserts it.
func (o *Orchestrator) SyncLeagues(ctx context.Context, sport enums.Sport) RunReport {
	rs := o.begin(ctx, models.SyncLeagues, sport)

	var batch []models.League
	o.eachSource(ctx, rs, func(ctx context.Context, adapter providers.Adapter) error {
		leagues, err := adapter.LeaguesBySport(ctx, sport)
		if err != nil {
			return err
		}
		rs.report.Fetched += len(leagues)
		for _, league := range leagues {
			if result := o.quality.ValidateLeague(&league); !result.Valid {
				rs.report.Failed++
				slog.Warn("Dropping invalid league", "source", league.Source, "name", league.Name, "errors", result.Errors)
				continue
			}
			batch = append(batch, league)
		}
		return nil
	})

	if len(batch) > 0 {
		result, err := o.store.UpsertLeagues(ctx, o.quality.DeduplicateLeagues(batch))
		o.recordUpsert(rs, result, err)
	}
	return o.finish(ctx, rs)
}

// SyncTeams fetches each source's leagues for the sport and the teams of
// every league. The league list comes from the source itself so team external
// ids always match their own league ids.
func (o *Orchestrator) SyncTeams(ctx context.Context, sport enums.Sport) RunReport {
	rs := o.begin(ctx, models.SyncTeams, sport)

	var batch []models.Team
	o.eachSource(ctx, rs, func(ctx context.Context, adapter providers.Adapter) error {
		leagues, err := adapter.LeaguesBySport(ctx, sport)
		if err != nil {
			return err
		}
		for _, league := range leagues {
			if usage := adapter.Usage(); usage.Remaining >= 0 && usage.Remaining < quotaMargin {
				slog.Warn("Stopping team sync early, quota margin reached",
					"source", adapter.Name(), "remaining", usage.Remaining)
				break
			}
			teams, err := adapter.TeamsByLeague(ctx, league.ExternalID, sport)
			if err != nil {
				return err
			}
			rs.report.Fetched += len(teams)
			batch = append(batch, o.prepareTeams(rs, teams)...)
		}
		return nil
	})

	if len(batch) > 0 {
		result, err := o.store.UpsertTeams(ctx, o.quality.DeduplicateTeams(batch))
		o.recordUpsert(rs, result, err)
	}
	return o.finish(ctx, rs)
}

// SyncUpcomingEvents fetches the schedule window for one sport.
func (o *Orchestrator) SyncUpcomingEvents(ctx context.Context, sport enums.Sport) RunReport {
	return o.syncEvents(ctx, models.SyncEvents, sport, func(ctx context.Context, adapter providers.Adapter) ([]models.Event, error) {
		return adapter.UpcomingEvents(ctx, sport, o.cfg.Sync.UpcomingDays)
	})
}

// SyncLiveEvents fetches in-play events for one sport.
func (o *Orchestrator) SyncLiveEvents(ctx context.Context, sport enums.Sport) RunReport {
	return o.syncEvents(ctx, models.SyncLive, sport, func(ctx context.Context, adapter providers.Adapter) ([]models.Event, error) {
		return adapter.LiveEvents(ctx, sport)
	})
}

func (o *Orchestrator) syncEvents(ctx context.Context, syncType models.SyncType, sport enums.Sport, fetch func(context.Context, providers.Adapter) ([]models.Event, error)) RunReport {
	rs := o.begin(ctx, syncType, sport)

	var batch []models.Event
	o.eachSource(ctx, rs, func(ctx context.Context, adapter providers.Adapter) error {
		events, err := fetch(ctx, adapter)
		if err != nil {
			return err
		}
		rs.report.Fetched += len(events)
		batch = append(batch, o.prepareEvents(rs, events)...)
		return nil
	})

	if len(batch) > 0 {
		result, err := o.store.UpsertEvents(ctx, o.quality.DeduplicateEvents(batch))
		o.recordUpsert(rs, result, err)
	}
	return o.finish(ctx, rs)
}

// SyncOdds fetches bookmaker odds from odds-capable sources and converts
// them into prediction-market records. Unmapped bet types are skipped.
func (o *Orchestrator) SyncOdds(ctx context.Context, sport enums.Sport) RunReport {
	rs := o.begin(ctx, models.SyncOdds, sport)

	var batch []models.ConvertedMarket
	capable := 0
	o.eachSource(ctx, rs, func(ctx context.Context, adapter providers.Adapter) error {
		odds, ok := adapter.(providers.OddsProvider)
		if !ok {
			return nil
		}
		capable++
		entries, err := odds.EventOdds(ctx, sport)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			rs.report.Fetched += len(entry.Bets)
			for _, bet := range entry.Bets {
				market := markets.ConvertBetToMarket(bet, entry.EventName, entry.HomeTeam, entry.AwayTeam, adapter.Name())
				if market == nil {
					continue
				}
				batch = append(batch, *market)
			}
		}
		return nil
	})

	if capable == 0 {
		rs.addError("no odds-capable source enabled")
		rs.okSources = 0
	}
	if len(batch) > 0 {
		result, err := o.store.UpsertMarkets(ctx, batch)
		o.recordUpsert(rs, result, err)
	}
	return o.finish(ctx, rs)
}

// SyncAllSports runs the event pipelines for every configured sport under
// one multi-sport audit record. It stops scheduling new sports once every
// limited source is within the quota margin.
func (o *Orchestrator) SyncAllSports(ctx context.Context) RunReport {
	rs := o.begin(ctx, models.SyncMultiSport, "")

	for _, name := range o.cfg.Sync.Sports {
		sport, ok := enums.ParseSport(name)
		if !ok {
			rs.addError("skipping unknown sport %q", name)
			continue
		}
		if !o.quotaAvailable() {
			rs.addError("stopping early: quota margin reached on all sources")
			slog.Warn("Multi-sport sync stopped early, quota margin reached")
			break
		}

		upcoming := o.SyncUpcomingEvents(ctx, sport)
		live := o.SyncLiveEvents(ctx, sport)
		rs.mergeSub(upcoming)
		rs.mergeSub(live)

		if ctx.Err() != nil {
			rs.addError("sync interrupted: %v", ctx.Err())
			break
		}
	}
	return o.finish(ctx, rs)
}

// quotaAvailable reports whether at least one source still has quotaMargin
// requests left today.
func (o *Orchestrator) quotaAvailable() bool {
	for _, adapter := range o.adapters {
		usage := adapter.Usage()
		if usage.Remaining < 0 || usage.Remaining >= quotaMargin {
			return true
		}
	}
	return false
}

func (rs *runState) mergeSub(sub RunReport) {
	rs.report.Fetched += sub.Fetched
	rs.report.Created += sub.Created
	rs.report.Updated += sub.Updated
	rs.report.Failed += sub.Failed
	rs.report.Errors = append(rs.report.Errors, sub.Errors...)
	if sub.Success {
		rs.okSources++
	}
}

func (o *Orchestrator) prepareTeams(rs *runState, teams []models.Team) []models.Team {
	out := make([]models.Team, 0, len(teams))
	for _, team := range teams {
		cleaned, changes := o.quality.CleanTeam(team)
		if len(changes) > 0 {
			slog.Debug("Cleaned team record", "source", team.Source, "name", team.Name, "changes", changes)
		}
		if result := o.quality.ValidateTeam(&cleaned); !result.Valid {
			rs.report.Failed++
			slog.Warn("Dropping invalid team", "source", team.Source, "name", team.Name, "errors", result.Errors)
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

func (o *Orchestrator) prepareEvents(rs *runState, events []models.Event) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, event := range events {
		cleaned, changes := o.quality.CleanEvent(event)
		if len(changes) > 0 {
			slog.Debug("Cleaned event record", "source", event.Source, "name", event.Name, "changes", changes)
		}
		result := o.quality.ValidateEvent(&cleaned)
		if !result.Valid {
			rs.report.Failed++
			slog.Warn("Dropping invalid event", "source", event.Source, "name", event.Name, "errors", result.Errors)
			continue
		}
		for _, warning := range result.Warnings {
			slog.Debug("Event validation warning", "source", event.Source, "name", event.Name, "warning", warning)
		}
		out = append(out, cleaned)
	}
	return out
}

func (o *Orchestrator) recordUpsert(rs *runState, result storage.UpsertResult, err error) {
	if err != nil {
		rs.storeError = err
		rs.addError("store: %v", err)
		slog.Error("Upsert failed", "sync_type", rs.report.SyncType, "error", err)
		return
	}
	rs.report.Created += result.Created
	rs.report.Updated += result.Updated
}

// TestConnections probes every adapter once and returns reachability by
// source name.
func (o *Orchestrator) TestConnections(ctx context.Context) map[string]bool {
	out := make(map[string]bool, len(o.adapters))
	for _, adapter := range o.adapters {
		out[adapter.Name()] = adapter.TestConnection(ctx)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
