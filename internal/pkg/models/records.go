package models

import (
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
)

// League represents a canonical league record
type League struct {
	ExternalID string            `json:"external_id"`
	Source     string            `json:"source"`
	Name       string            `json:"name"`
	Sport      enums.Sport       `json:"sport"`
	Country    string            `json:"country"`
	Season     string            `json:"season"`
	LogoURL    string            `json:"logo_url,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Team represents a canonical team record
type Team struct {
	ExternalID   string            `json:"external_id"`
	Source       string            `json:"source"`
	Name         string            `json:"name"`
	ShortName    string            `json:"short_name,omitempty"`
	Sport        enums.Sport       `json:"sport"`
	Country      string            `json:"country"`
	FoundedYear  int               `json:"founded_year,omitempty"`
	PrimaryColor string            `json:"primary_color,omitempty"`
	LogoURL      string            `json:"logo_url,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Event represents a canonical sporting event record.
// Scores are pointers: nil means the source reported no score yet.
type Event struct {
	ExternalID string            `json:"external_id"`
	Source     string            `json:"source"`
	Name       string            `json:"name"`
	Sport      enums.Sport       `json:"sport"`
	LeagueID   string            `json:"league_id,omitempty"`
	HomeTeam   string            `json:"home_team"`
	AwayTeam   string            `json:"away_team"`
	StartTime  time.Time         `json:"start_time"`
	Timezone   string            `json:"timezone,omitempty"`
	Status     enums.EventStatus `json:"status"`
	HomeScore  *int              `json:"home_score,omitempty"`
	AwayScore  *int              `json:"away_score,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// MarketType is a canonical prediction-market type
type MarketType string

const (
	MarketMatchWinner    MarketType = "match_winner"
	MarketTotalOverUnder MarketType = "total_over_under"
	MarketHandicap       MarketType = "handicap"
	MarketBothTeamsScore MarketType = "both_teams_score"
	MarketDoubleChance   MarketType = "double_chance"
	MarketCorrectScore   MarketType = "correct_score"
)

// ConvertedMarket is a bookmaker bet converted to a prediction-market shape.
// Derived, not persisted by the sync core itself.
// Invariant: len(Outcomes) == len(OutcomePrices) and prices sum to ~1.
type ConvertedMarket struct {
	MarketType    MarketType `json:"market_type"`
	Title         string     `json:"title"`
	Question      string     `json:"question"`
	EventName     string     `json:"event_name"`
	Outcomes      []string   `json:"outcomes"`
	OutcomePrices []float64  `json:"outcome_prices"`
	Line          *float64   `json:"line,omitempty"`
	Source        string     `json:"source"`
}

// RawBet is a bookmaker bet structure before taxonomy conversion
type RawBet struct {
	BetTypeID int          `json:"bet_type_id"`
	Name      string       `json:"name"`
	Line      *float64     `json:"line,omitempty"`
	Outcomes  []RawOutcome `json:"outcomes"`
}

// RawOutcome is one selection inside a RawBet. Odds is the decimal
// coefficient as reported by the bookmaker feed (often a string upstream).
type RawOutcome struct {
	Label string  `json:"label"`
	Odds  float64 `json:"odds"`
}

// IntPtr returns a pointer to v. Convenience for score fields.
func IntPtr(v int) *int { return &v }
