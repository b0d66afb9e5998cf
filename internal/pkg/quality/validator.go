// Package quality validates, normalizes and deduplicates canonical records
// coming from multiple providers before they reach the store.
package quality

import (
	"fmt"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
)

// Result is the outcome of validating one record. Errors block persistence;
// warnings are advisory only.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *Result) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Engine implements the data-quality checks. Stateless; safe for concurrent use.
type Engine struct{}

// NewEngine creates a data-quality engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ValidateLeague validates a canonical league record.
func (e *Engine) ValidateLeague(league *models.League) Result {
	r := Result{Valid: true}
	if league == nil {
		r.addError("league cannot be nil")
		return r
	}

	if league.ExternalID == "" {
		r.addError("external ID cannot be empty")
	}
	if league.Source == "" {
		r.addError("source cannot be empty")
	}
	if league.Name == "" {
		r.addError("league name cannot be empty")
	}
	if !league.Sport.IsValid() {
		r.addError("invalid sport: %s", league.Sport)
	}
	return r
}

// ValidateTeam validates a canonical team record.
func (e *Engine) ValidateTeam(team *models.Team) Result {
	r := Result{Valid: true}
	if team == nil {
		r.addError("team cannot be nil")
		return r
	}

	if team.ExternalID == "" {
		r.addError("external ID cannot be empty")
	}
	if team.Source == "" {
		r.addError("source cannot be empty")
	}
	if team.Name == "" {
		r.addError("team name cannot be empty")
	}
	if !team.Sport.IsValid() {
		r.addError("invalid sport: %s", team.Sport)
	}
	if team.FoundedYear != 0 {
		if team.FoundedYear < 1800 || team.FoundedYear > time.Now().Year()+1 {
			r.addWarning("suspicious founded year: %d", team.FoundedYear)
		}
	}
	return r
}

// ValidateEvent validates a canonical event record. Negative scores are
// errors; scores on a scheduled event are tolerated as a warning.
func (e *Engine) ValidateEvent(event *models.Event) Result {
	r := Result{Valid: true}
	if event == nil {
		r.addError("event cannot be nil")
		return r
	}

	if event.ExternalID == "" {
		r.addError("external ID cannot be empty")
	}
	if event.Source == "" {
		r.addError("source cannot be empty")
	}
	if event.HomeTeam == "" {
		r.addError("home team cannot be empty")
	}
	if event.AwayTeam == "" {
		r.addError("away team cannot be empty")
	}
	if !event.Sport.IsValid() {
		r.addError("invalid sport: %s", event.Sport)
	}
	if !event.Status.IsValid() {
		r.addError("invalid status: %s", event.Status)
	}

	if event.HomeScore != nil && *event.HomeScore < 0 {
		r.addError("home score cannot be negative: %d", *event.HomeScore)
	}
	if event.AwayScore != nil && *event.AwayScore < 0 {
		r.addError("away score cannot be negative: %d", *event.AwayScore)
	}

	if event.Status == enums.StatusScheduled && (event.HomeScore != nil || event.AwayScore != nil) {
		r.addWarning("scheduled event carries scores")
	}
	if event.StartTime.IsZero() {
		r.addWarning("event has no start time")
	}
	return r
}
