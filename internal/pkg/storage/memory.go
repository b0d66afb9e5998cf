package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
)

var (
	_ Store        = (*Memory)(nil)
	_ SyncLogStore = (*Memory)(nil)
)

// Memory is an in-memory store used by tests and dry runs.
type Memory struct {
	mu       sync.Mutex
	leagues  map[string]models.League
	teams    map[string]models.Team
	events   map[string]models.Event
	markets  map[string]models.ConvertedMarket
	syncLogs map[string]models.SyncRun
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		leagues:  make(map[string]models.League),
		teams:    make(map[string]models.Team),
		events:   make(map[string]models.Event),
		markets:  make(map[string]models.ConvertedMarket),
		syncLogs: make(map[string]models.SyncRun),
	}
}

func ingestKey(externalID, source string) string {
	return externalID + "|" + source
}

func (m *Memory) UpsertLeagues(ctx context.Context, leagues []models.League) (UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res UpsertResult
	for _, l := range leagues {
		key := ingestKey(l.ExternalID, l.Source)
		if _, ok := m.leagues[key]; ok {
			res.Updated++
		} else {
			res.Created++
		}
		m.leagues[key] = l
	}
	return res, nil
}

func (m *Memory) UpsertTeams(ctx context.Context, teams []models.Team) (UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res UpsertResult
	for _, t := range teams {
		key := ingestKey(t.ExternalID, t.Source)
		if _, ok := m.teams[key]; ok {
			res.Updated++
		} else {
			res.Created++
		}
		m.teams[key] = t
	}
	return res, nil
}

func (m *Memory) UpsertEvents(ctx context.Context, events []models.Event) (UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res UpsertResult
	for _, e := range events {
		key := ingestKey(e.ExternalID, e.Source)
		if _, ok := m.events[key]; ok {
			res.Updated++
		} else {
			res.Created++
		}
		m.events[key] = e
	}
	return res, nil
}

func (m *Memory) UpsertMarkets(ctx context.Context, markets []models.ConvertedMarket) (UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res UpsertResult
	for _, mk := range markets {
		key := mk.Source + "|" + mk.EventName + "|" + mk.Title
		if _, ok := m.markets[key]; ok {
			res.Updated++
		} else {
			res.Created++
		}
		m.markets[key] = mk
	}
	return res, nil
}

func (m *Memory) Events(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Event
	for _, e := range m.events {
		if filter.Sport != "" && e.Sport != filter.Sport {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Source != "" && e.Source != filter.Source {
			continue
		}
		if !filter.From.IsZero() && e.StartTime.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.StartTime.After(filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *Memory) CreateSyncLog(ctx context.Context, syncType models.SyncType, source string, sport enums.Sport) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.syncLogs[id] = models.SyncRun{
		ID:        id,
		SyncType:  syncType,
		Source:    source,
		Sport:     sport,
		Status:    models.SyncRunning,
		StartedAt: time.Now(),
	}
	return id, nil
}

func (m *Memory) UpdateSyncLog(ctx context.Context, id string, update SyncLogUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.syncLogs[id]
	if !ok {
		return fmt.Errorf("sync log %s not found", id)
	}
	run.Status = update.Status
	run.RecordsFetched = update.RecordsFetched
	run.RecordsCreated = update.RecordsCreated
	run.RecordsUpdated = update.RecordsUpdated
	run.RecordsFailed = update.RecordsFailed
	run.ErrorMessage = update.ErrorMessage
	run.Duration = update.Duration
	run.FinishedAt = time.Now()
	m.syncLogs[id] = run
	return nil
}

// SyncLog returns the audit record for id. Test helper.
func (m *Memory) SyncLog(id string) (models.SyncRun, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.syncLogs[id]
	return run, ok
}

// Counts returns entity counts. Test helper.
func (m *Memory) Counts() (leagues, teams, events, markets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leagues), len(m.teams), len(m.events), len(m.markets)
}

func (m *Memory) Close() error { return nil }
