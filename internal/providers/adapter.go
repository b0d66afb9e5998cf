// Package providers defines the provider-adapter contract and shared mapping
// helpers. One adapter per upstream source; each owns its resilient client
// and therefore its circuit-breaker, rate-limit and quota state.
package providers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/resilience"
)

// Adapter translates one provider's API into canonical records.
type Adapter interface {
	Name() string
	// Priority orders sources for quota-aware multi-sport sync (higher first).
	Priority() int

	LeaguesBySport(ctx context.Context, sport enums.Sport) ([]models.League, error)
	TeamsByLeague(ctx context.Context, leagueID string, sport enums.Sport) ([]models.Team, error)
	UpcomingEvents(ctx context.Context, sport enums.Sport, days int) ([]models.Event, error)
	LiveEvents(ctx context.Context, sport enums.Sport) ([]models.Event, error)

	TestConnection(ctx context.Context) bool
	Usage() resilience.UsageStats
	CircuitStatus() resilience.BreakerStatus
	ResetCircuit()
}

// EventOdds is one event's bookmaker bets as reported by an odds-capable source.
type EventOdds struct {
	EventName string
	HomeTeam  string
	AwayTeam  string
	Bets      []models.RawBet
}

// OddsProvider is implemented by adapters whose upstream exposes odds.
type OddsProvider interface {
	EventOdds(ctx context.Context, sport enums.Sport) ([]EventOdds, error)
}

// MapStatus resolves a provider status string through a case-insensitive
// lookup table, defaulting to scheduled for anything unknown.
func MapStatus(table map[string]enums.EventStatus, raw string) enums.EventStatus {
	if status, ok := table[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}
	return enums.StatusScheduled
}

// ParseTime tries each layout in order. Providers format timestamps loosely,
// so a value that matches nothing maps to "now" instead of failing the record.
func ParseTime(value string, layouts ...string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	if value != "" {
		slog.Debug("Unparseable provider timestamp, substituting now", "value", value)
	}
	return time.Now().UTC()
}
