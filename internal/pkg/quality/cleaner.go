package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
)

// teamAliases canonicalizes well-known team-name variants before the generic
// cleanup runs. Keys are lowercase normalized names.
var teamAliases = map[string]string{
	"man united":          "Manchester United",
	"man utd":             "Manchester United",
	"manchester utd":      "Manchester United",
	"man city":            "Manchester City",
	"spurs":               "Tottenham Hotspur",
	"wolves":              "Wolverhampton Wanderers",
	"inter":               "Inter Milan",
	"internazionale":      "Inter Milan",
	"bayern":              "Bayern Munich",
	"fc bayern munchen":   "Bayern Munich",
	"psg":                 "Paris Saint-Germain",
	"paris sg":            "Paris Saint-Germain",
	"atletico":            "Atletico Madrid",
	"la lakers":           "Los Angeles Lakers",
	"ny knicks":           "New York Knicks",
}

var (
	teamSuffixRe    = regexp.MustCompile(`(?i)\s+(FC|SC|CF|AFC|BC|HC)$`)
	multiSpaceRe    = regexp.MustCompile(`\s+`)
	hexColorRe      = regexp.MustCompile(`^[0-9a-fA-F]{3}(?:[0-9a-fA-F]{3})?$`)
)

// CleanTeam returns a normalized copy of team plus the list of changes made.
// Cleaning is idempotent: running it on its own output reports no changes.
func (e *Engine) CleanTeam(team models.Team) (models.Team, []string) {
	var changes []string

	if name := CanonicalTeamName(team.Name); name != team.Name {
		changes = append(changes, fmt.Sprintf("name: %q -> %q", team.Name, name))
		team.Name = name
	}

	if team.ShortName != "" {
		short := strings.ToUpper(strings.TrimSpace(team.ShortName))
		if len(short) > 5 {
			short = short[:5]
		}
		if short != team.ShortName {
			changes = append(changes, fmt.Sprintf("short_name: %q -> %q", team.ShortName, short))
			team.ShortName = short
		}
	}

	if team.PrimaryColor != "" && !strings.HasPrefix(team.PrimaryColor, "#") {
		if hexColorRe.MatchString(team.PrimaryColor) {
			color := "#" + strings.ToLower(team.PrimaryColor)
			changes = append(changes, fmt.Sprintf("primary_color: %q -> %q", team.PrimaryColor, color))
			team.PrimaryColor = color
		}
	}

	if country := tidySpacing(team.Country); country != team.Country {
		changes = append(changes, fmt.Sprintf("country: %q -> %q", team.Country, country))
		team.Country = country
	}

	return team, changes
}

// CleanEvent returns a normalized copy of event plus the list of changes made.
func (e *Engine) CleanEvent(event models.Event) (models.Event, []string) {
	var changes []string

	if home := CanonicalTeamName(event.HomeTeam); home != event.HomeTeam {
		changes = append(changes, fmt.Sprintf("home_team: %q -> %q", event.HomeTeam, home))
		event.HomeTeam = home
	}
	if away := CanonicalTeamName(event.AwayTeam); away != event.AwayTeam {
		changes = append(changes, fmt.Sprintf("away_team: %q -> %q", event.AwayTeam, away))
		event.AwayTeam = away
	}

	if event.Name == "" && event.HomeTeam != "" && event.AwayTeam != "" {
		event.Name = event.HomeTeam + " vs " + event.AwayTeam
		changes = append(changes, "name: derived from teams")
	}

	if event.Timezone == "" {
		event.Timezone = "UTC"
		changes = append(changes, "timezone: defaulted to UTC")
	}

	// Live and finished events without reported scores get explicit zeros so
	// downstream consumers never see a half-defined scoreline.
	if event.Status.InPlay() || event.Status == enums.StatusFinished {
		if event.HomeScore == nil {
			event.HomeScore = models.IntPtr(0)
			changes = append(changes, "home_score: zero-initialized")
		}
		if event.AwayScore == nil {
			event.AwayScore = models.IntPtr(0)
			changes = append(changes, "away_score: zero-initialized")
		}
	}

	return event, changes
}

// CanonicalTeamName applies the alias table, then generic suffix and spacing
// cleanup. Pure function; used by both cleaning and key generation.
func CanonicalTeamName(name string) string {
	cleaned := tidySpacing(name)
	if cleaned == "" {
		return cleaned
	}

	if canonical, ok := teamAliases[strings.ToLower(cleaned)]; ok {
		return canonical
	}

	cleaned = teamSuffixRe.ReplaceAllString(cleaned, "")
	cleaned = tidySpacing(cleaned)

	// The suffix-stripped form may itself be an alias ("Bayern FC" -> "Bayern").
	if canonical, ok := teamAliases[strings.ToLower(cleaned)]; ok {
		return canonical
	}
	return cleaned
}

func tidySpacing(s string) string {
	return multiSpaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
