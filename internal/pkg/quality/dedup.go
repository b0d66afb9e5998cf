package quality

import (
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
)

// sourcePriority is a total order over provider identities. It is used only
// as a deterministic tie-break during deduplication and never affects live
// request behavior.
var sourcePriority = map[string]int{
	"sportsio": 3,
	"sportsdb": 2,
	"manual":   1,
}

// SourcePriority returns the rank of a source; unknown sources rank lowest.
func SourcePriority(source string) int {
	return sourcePriority[source]
}

// DeduplicateLeagues collapses leagues sharing a name/sport/country key,
// keeping the record from the higher-priority source. Fields are never merged.
func (e *Engine) DeduplicateLeagues(leagues []models.League) []models.League {
	return dedupe(leagues, func(l *models.League) string {
		return models.TeamKey(l.Name, l.Sport, l.Country)
	}, func(l *models.League) string {
		return l.Source
	})
}

// DeduplicateTeams collapses teams sharing a natural key.
func (e *Engine) DeduplicateTeams(teams []models.Team) []models.Team {
	return dedupe(teams, func(t *models.Team) string {
		return t.NaturalKey()
	}, func(t *models.Team) string {
		return t.Source
	})
}

// DeduplicateEvents collapses events sharing a natural key
// (sport, home, away, calendar date).
func (e *Engine) DeduplicateEvents(events []models.Event) []models.Event {
	return dedupe(events, func(ev *models.Event) string {
		return ev.NaturalKey()
	}, func(ev *models.Event) string {
		return ev.Source
	})
}

// dedupe groups records by key and keeps the highest-priority source per
// group, preserving first-seen order. Re-running over its own output is a
// no-op because keys are pure functions of normalized fields.
func dedupe[T any](records []T, keyFn func(*T) string, sourceFn func(*T) string) []T {
	type slot struct {
		index    int
		priority int
	}
	byKey := make(map[string]slot, len(records))
	order := make([]string, 0, len(records))
	kept := make(map[string]T, len(records))

	for i := range records {
		key := keyFn(&records[i])
		prio := SourcePriority(sourceFn(&records[i]))

		existing, seen := byKey[key]
		if !seen {
			byKey[key] = slot{index: i, priority: prio}
			order = append(order, key)
			kept[key] = records[i]
			continue
		}
		if prio > existing.priority {
			byKey[key] = slot{index: existing.index, priority: prio}
			kept[key] = records[i]
		}
	}

	out := make([]T, 0, len(order))
	for _, key := range order {
		out = append(out, kept[key])
	}
	return out
}
