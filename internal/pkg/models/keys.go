package models

import (
	"strings"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
)

// TeamKey builds a stable cross-source team identifier.
//
// IMPORTANT: this assumes team names are in the same language/format across
// sources. Keys are pure functions of their normalized inputs, so re-running
// deduplication over an already deduplicated batch is a no-op.
// Format: name|sport|country
func TeamKey(name string, sport enums.Sport, country string) string {
	return normalizeKeyPart(name) + "|" + sport.String() + "|" + normalizeKeyPart(country)
}

// EventKey builds a stable cross-source event identifier.
// Two sources reporting the same fixture on the same calendar day collide here.
// Format: sport|homeKey|awayKey|date
func EventKey(sport enums.Sport, homeTeamKey, awayTeamKey string, start time.Time) string {
	date := "unknown-date"
	if !start.IsZero() {
		date = start.UTC().Format("2006-01-02")
	}
	return sport.String() + "|" + homeTeamKey + "|" + awayTeamKey + "|" + date
}

func normalizeKeyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	// Keep the key delimiter-safe.
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "|", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// NaturalKey derives the deduplication key for a team record.
func (t *Team) NaturalKey() string {
	return TeamKey(t.Name, t.Sport, t.Country)
}

// NaturalKey derives the deduplication key for an event record.
func (e *Event) NaturalKey() string {
	home := TeamKey(e.HomeTeam, e.Sport, "")
	away := TeamKey(e.AwayTeam, e.Sport, "")
	return EventKey(e.Sport, home, away, e.StartTime)
}
