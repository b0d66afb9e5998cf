package storage

import (
	"context"
	"testing"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
)

func testEvent(id, source string, sport enums.Sport, status enums.EventStatus, start time.Time) models.Event {
	return models.Event{
		ExternalID: id,
		Source:     source,
		Name:       "A vs B",
		Sport:      sport,
		HomeTeam:   "A",
		AwayTeam:   "B",
		StartTime:  start,
		Status:     status,
	}
}

func TestUpsertCountsCreatedThenUpdated(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	batch := []models.League{
		{ExternalID: "39", Source: "sportsio", Name: "Premier League", Sport: enums.Football},
		{ExternalID: "40", Source: "sportsio", Name: "Championship", Sport: enums.Football},
	}
	res, err := m.UpsertLeagues(ctx, batch)
	if err != nil {
		t.Fatalf("UpsertLeagues: %v", err)
	}
	if res.Created != 2 || res.Updated != 0 {
		t.Errorf("first pass = %+v, want 2 created", res)
	}

	res, err = m.UpsertLeagues(ctx, batch)
	if err != nil {
		t.Fatalf("UpsertLeagues: %v", err)
	}
	if res.Created != 0 || res.Updated != 2 {
		t.Errorf("second pass = %+v, want 2 updated", res)
	}
}

func TestSameExternalIDDifferentSourcesAreDistinct(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	res, err := m.UpsertTeams(ctx, []models.Team{
		{ExternalID: "7", Source: "sportsio", Name: "Liverpool", Sport: enums.Football},
		{ExternalID: "7", Source: "sportsdb", Name: "Liverpool", Sport: enums.Football},
	})
	if err != nil {
		t.Fatalf("UpsertTeams: %v", err)
	}
	if res.Created != 2 {
		t.Errorf("created = %d, want 2 distinct rows", res.Created)
	}
}

func TestEventsFilterAndOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	_, err := m.UpsertEvents(ctx, []models.Event{
		testEvent("3", "sportsio", enums.Football, enums.StatusScheduled, base.Add(2*time.Hour)),
		testEvent("1", "sportsio", enums.Football, enums.StatusLive, base),
		testEvent("2", "sportsdb", enums.Basketball, enums.StatusScheduled, base.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("UpsertEvents: %v", err)
	}

	got, err := m.Events(ctx, EventFilter{Sport: enums.Football})
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].ExternalID != "1" || got[1].ExternalID != "3" {
		t.Errorf("order = %s, %s, want by start time", got[0].ExternalID, got[1].ExternalID)
	}

	got, err = m.Events(ctx, EventFilter{Status: enums.StatusScheduled, Limit: 1})
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(got) != 1 || got[0].ExternalID != "2" {
		t.Errorf("limited = %+v, want earliest scheduled only", got)
	}

	got, err = m.Events(ctx, EventFilter{From: base.Add(90 * time.Minute)})
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(got) != 1 || got[0].ExternalID != "3" {
		t.Errorf("windowed = %+v, want only the late event", got)
	}
}

func TestSyncLogLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.CreateSyncLog(ctx, models.SyncLeagues, "sportsio", enums.Football)
	if err != nil {
		t.Fatalf("CreateSyncLog: %v", err)
	}

	run, ok := m.SyncLog(id)
	if !ok {
		t.Fatal("sync log row missing after create")
	}
	if run.Status != models.SyncRunning {
		t.Errorf("status = %s, want running", run.Status)
	}

	err = m.UpdateSyncLog(ctx, id, SyncLogUpdate{
		Status:         models.SyncCompleted,
		RecordsFetched: 10,
		RecordsCreated: 7,
		RecordsUpdated: 3,
		Duration:       2 * time.Second,
	})
	if err != nil {
		t.Fatalf("UpdateSyncLog: %v", err)
	}

	run, _ = m.SyncLog(id)
	if run.Status != models.SyncCompleted || run.RecordsFetched != 10 {
		t.Errorf("run = %+v", run)
	}
	if run.FinishedAt.IsZero() {
		t.Error("finished_at not set on terminal update")
	}
}

func TestUpdateUnknownSyncLogFails(t *testing.T) {
	m := NewMemory()
	if err := m.UpdateSyncLog(context.Background(), "nope", SyncLogUpdate{Status: models.SyncFailed}); err == nil {
		t.Fatal("expected error for unknown sync log id")
	}
}
