package storage

import (
	"context"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
)

// UpsertResult reports how an upsert batch landed.
type UpsertResult struct {
	Created int
	Updated int
}

// EventFilter narrows Events queries.
type EventFilter struct {
	Sport  enums.Sport
	Status enums.EventStatus
	Source string
	From   time.Time
	To     time.Time
	Limit  int
}

// Store is the canonical-store upsert contract. Batches are
// transactional-at-the-batch-level: either the whole slice lands or none of it.
type Store interface {
	UpsertLeagues(ctx context.Context, leagues []models.League) (UpsertResult, error)
	UpsertTeams(ctx context.Context, teams []models.Team) (UpsertResult, error)
	UpsertEvents(ctx context.Context, events []models.Event) (UpsertResult, error)
	UpsertMarkets(ctx context.Context, markets []models.ConvertedMarket) (UpsertResult, error)

	Events(ctx context.Context, filter EventFilter) ([]models.Event, error)

	Close() error
}

// SyncLogUpdate is the single terminal mutation applied to a sync run record.
type SyncLogUpdate struct {
	Status         models.SyncStatus
	RecordsFetched int
	RecordsCreated int
	RecordsUpdated int
	RecordsFailed  int
	ErrorMessage   string
	Duration       time.Duration
}

// SyncLogStore is the sync-run audit log contract. Write failures must never
// abort the sync run that triggered them.
type SyncLogStore interface {
	CreateSyncLog(ctx context.Context, syncType models.SyncType, source string, sport enums.Sport) (string, error)
	UpdateSyncLog(ctx context.Context, id string, update SyncLogUpdate) error
}
