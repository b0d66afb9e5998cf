package models

import (
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
)

// SyncType identifies what a sync run fetches
type SyncType string

const (
	SyncLeagues    SyncType = "leagues"
	SyncTeams      SyncType = "teams"
	SyncEvents     SyncType = "events"
	SyncLive       SyncType = "live"
	SyncOdds       SyncType = "odds"
	SyncMultiSport SyncType = "multi_sport"
)

// SyncStatus is the lifecycle status of a sync run
type SyncStatus string

const (
	SyncPending   SyncStatus = "pending"
	SyncRunning   SyncStatus = "running"
	SyncCompleted SyncStatus = "completed"
	SyncFailed    SyncStatus = "failed"
)

// SyncRun is the audit record for one orchestration invocation.
// Created with status=running, updated exactly once with a terminal status.
type SyncRun struct {
	ID             string      `json:"id"`
	SyncType       SyncType    `json:"sync_type"`
	Source         string      `json:"source"`
	Sport          enums.Sport `json:"sport,omitempty"`
	Status         SyncStatus  `json:"status"`
	RecordsFetched int         `json:"records_fetched"`
	RecordsCreated int         `json:"records_created"`
	RecordsUpdated int         `json:"records_updated"`
	RecordsFailed  int         `json:"records_failed"`
	ErrorMessage   string      `json:"error_message,omitempty"`
	Duration       time.Duration `json:"duration"`
	StartedAt      time.Time   `json:"started_at"`
	FinishedAt     time.Time   `json:"finished_at,omitempty"`
}
