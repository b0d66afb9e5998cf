package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/config"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/resilience"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/storage"
	"github.com/blockalphadev/dejavu-sub004/internal/providers"
)

// fakeAdapter is a canned-data provider adapter. remaining mirrors a daily
// quota snapshot: -1 means unlimited.
type fakeAdapter struct {
	name      string
	priority  int
	remaining int

	leagues []models.League
	teams   []models.Team
	events  []models.Event
	err     error

	calls int
}

func (f *fakeAdapter) Name() string  { return f.name }
func (f *fakeAdapter) Priority() int { return f.priority }

func (f *fakeAdapter) LeaguesBySport(ctx context.Context, sport enums.Sport) ([]models.League, error) {
	f.calls++
	return f.leagues, f.err
}

func (f *fakeAdapter) TeamsByLeague(ctx context.Context, leagueID string, sport enums.Sport) ([]models.Team, error) {
	f.calls++
	return f.teams, f.err
}

func (f *fakeAdapter) UpcomingEvents(ctx context.Context, sport enums.Sport, days int) ([]models.Event, error) {
	f.calls++
	return f.events, f.err
}

func (f *fakeAdapter) LiveEvents(ctx context.Context, sport enums.Sport) ([]models.Event, error) {
	f.calls++
	return f.events, f.err
}

func (f *fakeAdapter) TestConnection(ctx context.Context) bool { return f.err == nil }

func (f *fakeAdapter) Usage() resilience.UsageStats {
	return resilience.UsageStats{Remaining: f.remaining}
}

func (f *fakeAdapter) CircuitStatus() resilience.BreakerStatus { return resilience.BreakerStatus{} }
func (f *fakeAdapter) ResetCircuit()                           {}

// oddsAdapter adds canned bookmaker odds on top of fakeAdapter.
type oddsAdapter struct {
	fakeAdapter
	odds []providers.EventOdds
}

func (f *oddsAdapter) EventOdds(ctx context.Context, sport enums.Sport) ([]providers.EventOdds, error) {
	f.calls++
	return f.odds, f.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Sync.Sports = []string{"football"}
	cfg.Sync.UpcomingDays = 3
	return cfg
}

func league(id, source, name string) models.League {
	return models.League{ExternalID: id, Source: source, Name: name, Sport: enums.Football, Country: "England"}
}

func event(id, source, home, away string) models.Event {
	return models.Event{
		ExternalID: id,
		Source:     source,
		Name:       home + " vs " + away,
		Sport:      enums.Football,
		HomeTeam:   home,
		AwayTeam:   away,
		StartTime:  time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC),
		Status:     enums.StatusScheduled,
	}
}

func TestSyncLeaguesAggregatesSources(t *testing.T) {
	primary := &fakeAdapter{name: "sportsio", priority: 3, remaining: -1,
		leagues: []models.League{league("39", "sportsio", "Premier League")}}
	secondary := &fakeAdapter{name: "sportsdb", priority: 2, remaining: -1,
		leagues: []models.League{
			league("4328", "sportsdb", "Premier League"),
			league("4329", "sportsdb", "Championship"),
		}}
	mem := storage.NewMemory()
	orch := New(testConfig(), []providers.Adapter{primary, secondary}, mem, mem)

	report := orch.SyncLeagues(context.Background(), enums.Football)

	if !report.Success {
		t.Fatalf("report = %+v, want success", report)
	}
	if report.Fetched != 3 {
		t.Errorf("fetched = %d, want 3", report.Fetched)
	}
	// Same natural key from two sources: the higher-priority record survives.
	if report.Created != 2 {
		t.Errorf("created = %d, want 2 after dedup", report.Created)
	}

	run, ok := mem.SyncLog(report.RunID)
	if !ok {
		t.Fatal("sync log row missing")
	}
	if run.Status != models.SyncCompleted {
		t.Errorf("log status = %s, want completed", run.Status)
	}
	if run.RecordsFetched != 3 || run.RecordsCreated != 2 {
		t.Errorf("log counts = %d/%d", run.RecordsFetched, run.RecordsCreated)
	}
}

func TestSourceFailureIsIsolated(t *testing.T) {
	broken := &fakeAdapter{name: "sportsio", priority: 3, remaining: -1,
		err: errors.New("upstream down")}
	healthy := &fakeAdapter{name: "sportsdb", priority: 2, remaining: -1,
		leagues: []models.League{league("4328", "sportsdb", "Premier League")}}
	mem := storage.NewMemory()
	orch := New(testConfig(), []providers.Adapter{broken, healthy}, mem, mem)

	report := orch.SyncLeagues(context.Background(), enums.Football)

	if !report.Success {
		t.Fatalf("report = %+v, want success despite one broken source", report)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("errors = %v, want one", report.Errors)
	}
	if report.Created != 1 {
		t.Errorf("created = %d, want healthy source's record", report.Created)
	}
}

func TestQuotaExhaustedSourceSkippedWithoutFetch(t *testing.T) {
	exhausted := &fakeAdapter{name: "sportsio", priority: 3, remaining: 0,
		leagues: []models.League{league("39", "sportsio", "Premier League")}}
	mem := storage.NewMemory()
	orch := New(testConfig(), []providers.Adapter{exhausted}, mem, mem)

	report := orch.SyncLeagues(context.Background(), enums.Football)

	if report.Success {
		t.Fatal("want failure when every source is out of quota")
	}
	if exhausted.calls != 0 {
		t.Errorf("adapter called %d times, want 0", exhausted.calls)
	}
	if report.Fetched != 0 || report.Created != 0 {
		t.Errorf("counts = %d/%d, want zero", report.Fetched, report.Created)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("errors = %v, want quota error", report.Errors)
	}

	run, _ := mem.SyncLog(report.RunID)
	if run.Status != models.SyncFailed {
		t.Errorf("log status = %s, want failed", run.Status)
	}
}

func TestSyncEventsDropsInvalidRecords(t *testing.T) {
	bad := event("2", "sportsio", "C", "D")
	bad.HomeScore = models.IntPtr(-1)
	adapter := &fakeAdapter{name: "sportsio", priority: 3, remaining: -1,
		events: []models.Event{event("1", "sportsio", "A", "B"), bad}}
	mem := storage.NewMemory()
	orch := New(testConfig(), []providers.Adapter{adapter}, mem, mem)

	report := orch.SyncUpcomingEvents(context.Background(), enums.Football)

	if !report.Success {
		t.Fatalf("report = %+v, want success", report)
	}
	if report.Fetched != 2 || report.Created != 1 || report.Failed != 1 {
		t.Errorf("counts = fetched %d created %d failed %d", report.Fetched, report.Created, report.Failed)
	}
}

func TestSyncOddsConvertsMappedBets(t *testing.T) {
	adapter := &oddsAdapter{
		fakeAdapter: fakeAdapter{name: "sportsio", priority: 3, remaining: -1},
		odds: []providers.EventOdds{{
			EventName: "Lions vs Tigers",
			HomeTeam:  "Lions",
			AwayTeam:  "Tigers",
			Bets: []models.RawBet{
				{BetTypeID: 1, Name: "Match Winner", Outcomes: []models.RawOutcome{
					{Label: "Home", Odds: 2.60},
					{Label: "Draw", Odds: 3.90},
					{Label: "Away", Odds: 5.20},
				}},
				{BetTypeID: 999, Name: "Exotic", Outcomes: []models.RawOutcome{{Label: "Yes", Odds: 1.5}}},
			},
		}},
	}
	plain := &fakeAdapter{name: "sportsdb", priority: 2, remaining: -1}
	mem := storage.NewMemory()
	orch := New(testConfig(), []providers.Adapter{adapter, plain}, mem, mem)

	report := orch.SyncOdds(context.Background(), enums.Football)

	if !report.Success {
		t.Fatalf("report = %+v, want success", report)
	}
	if report.Fetched != 2 {
		t.Errorf("fetched = %d, want 2 bets", report.Fetched)
	}
	// Unmapped bet types are skipped, not stored and not counted as failures.
	_, _, _, marketCount := mem.Counts()
	if marketCount != 1 {
		t.Errorf("markets stored = %d, want 1", marketCount)
	}
	if report.Failed != 0 {
		t.Errorf("failed = %d, want 0", report.Failed)
	}
}

func TestSyncOddsWithoutCapableSource(t *testing.T) {
	plain := &fakeAdapter{name: "sportsdb", priority: 2, remaining: -1}
	mem := storage.NewMemory()
	orch := New(testConfig(), []providers.Adapter{plain}, mem, mem)

	report := orch.SyncOdds(context.Background(), enums.Football)
	if report.Success {
		t.Fatal("want failure when no source can provide odds")
	}
	if len(report.Errors) == 0 {
		t.Error("want an error naming the missing capability")
	}
}

func TestSyncAllSportsStopsAtQuotaMargin(t *testing.T) {
	nearlyOut := &fakeAdapter{name: "sportsio", priority: 3, remaining: 1,
		events: []models.Event{event("1", "sportsio", "A", "B")}}
	cfg := testConfig()
	cfg.Sync.Sports = []string{"football", "basketball", "snooker"}
	mem := storage.NewMemory()
	orch := New(cfg, []providers.Adapter{nearlyOut}, mem, mem)

	report := orch.SyncAllSports(context.Background())

	if report.Success {
		t.Fatal("want failure, no sport could run")
	}
	if nearlyOut.calls != 0 {
		t.Errorf("adapter called %d times, want 0 below quota margin", nearlyOut.calls)
	}
	found := false
	for _, e := range report.Errors {
		if e == "stopping early: quota margin reached on all sources" {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want early-stop marker", report.Errors)
	}
}

func TestSyncAllSportsMergesSubRuns(t *testing.T) {
	adapter := &fakeAdapter{name: "sportsio", priority: 3, remaining: -1,
		events: []models.Event{event("1", "sportsio", "A", "B")}}
	cfg := testConfig()
	cfg.Sync.Sports = []string{"football", "snooker"}
	mem := storage.NewMemory()
	orch := New(cfg, []providers.Adapter{adapter}, mem, mem)

	report := orch.SyncAllSports(context.Background())

	if !report.Success {
		t.Fatalf("report = %+v, want success", report)
	}
	// Upcoming plus live for the one valid sport.
	if report.Fetched != 2 {
		t.Errorf("fetched = %d, want 2", report.Fetched)
	}
	if len(report.Errors) != 1 {
		t.Errorf("errors = %v, want only the unknown-sport entry", report.Errors)
	}
}

// failingLogs rejects every audit write; runs must proceed regardless.
type failingLogs struct{}

func (failingLogs) CreateSyncLog(ctx context.Context, syncType models.SyncType, source string, sport enums.Sport) (string, error) {
	return "", errors.New("log store down")
}

func (failingLogs) UpdateSyncLog(ctx context.Context, id string, update storage.SyncLogUpdate) error {
	return errors.New("log store down")
}

func TestAuditLogFailureDoesNotAbortRun(t *testing.T) {
	adapter := &fakeAdapter{name: "sportsio", priority: 3, remaining: -1,
		leagues: []models.League{league("39", "sportsio", "Premier League")}}
	mem := storage.NewMemory()
	orch := New(testConfig(), []providers.Adapter{adapter}, mem, failingLogs{})

	report := orch.SyncLeagues(context.Background(), enums.Football)

	if !report.Success {
		t.Fatalf("report = %+v, want success despite audit failures", report)
	}
	if report.RunID != "" {
		t.Errorf("run id = %q, want empty when the log row never existed", report.RunID)
	}
	if report.Created != 1 {
		t.Errorf("created = %d, want 1", report.Created)
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	first := &fakeAdapter{name: "sportsio", priority: 3, remaining: -1,
		leagues: []models.League{league("39", "sportsio", "Premier League")}}
	second := &fakeAdapter{name: "sportsdb", priority: 2, remaining: -1}
	cfg := testConfig()
	cfg.Sync.InterSourceDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	mem := storage.NewMemory()
	orch := New(cfg, []providers.Adapter{first, second}, mem, mem)

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	report := orch.SyncLeagues(ctx, enums.Football)

	if second.calls != 0 {
		t.Errorf("second source called %d times, want 0 after cancel", second.calls)
	}
	// The first source finished before cancellation, so its records land.
	if report.Created != 1 {
		t.Errorf("created = %d, want 1", report.Created)
	}
}
