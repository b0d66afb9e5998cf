// Package sportsdb adapts a TheSportsDB-style provider: API key embedded in
// the URL path, flat record arrays, and all numeric fields typed as strings.
package sportsdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/config"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/resilience"
	"github.com/blockalphadev/dejavu-sub004/internal/providers"
)

const (
	// SourceName is this provider's canonical identity. Ranked below
	// sportsio in the deduplication priority order.
	SourceName = "sportsdb"
	priority   = 2
)

func init() {
	providers.Register(SourceName, func(cfg *config.Config) (providers.Adapter, error) {
		return New(cfg, nil)
	})
}

// sportNames is the bidirectional vocabulary table: canonical sport to the
// provider's strSport value and back.
var sportNames = map[enums.Sport]string{
	enums.Football:   "Soccer",
	enums.Basketball: "Basketball",
	enums.Tennis:     "Tennis",
	enums.Hockey:     "Ice Hockey",
	enums.Volleyball: "Volleyball",
	enums.Baseball:   "Baseball",
	enums.MMA:        "Fighting",
	enums.Esports:    "ESports",
}

var nameSports = func() map[string]enums.Sport {
	out := make(map[string]enums.Sport, len(sportNames))
	for sport, name := range sportNames {
		out[strings.ToLower(name)] = sport
	}
	return out
}()

var statusTable = map[string]enums.EventStatus{
	"not started":    enums.StatusScheduled,
	"ns":             enums.StatusScheduled,
	"1h":             enums.StatusLive,
	"2h":             enums.StatusLive,
	"live":           enums.StatusLive,
	"in play":        enums.StatusLive,
	"ht":             enums.StatusHalftime,
	"halftime":       enums.StatusHalftime,
	"match finished": enums.StatusFinished,
	"ft":             enums.StatusFinished,
	"aet":            enums.StatusFinished,
	"postponed":      enums.StatusPostponed,
	"cancelled":      enums.StatusCancelled,
	"canceled":       enums.StatusCancelled,
	"abandoned":      enums.StatusCancelled,
	"suspended":      enums.StatusSuspended,
}

// Adapter is the TheSportsDB provider adapter.
type Adapter struct {
	client  *resilience.Client
	baseURL string
	apiKey  string
}

// New builds the adapter. A nil doer gets the default HTTP client.
func New(cfg *config.Config, doer resilience.Doer) (*Adapter, error) {
	pc := cfg.Providers.SportsDB
	if pc.BaseURL == "" {
		return nil, fmt.Errorf("sportsdb: base_url is required")
	}
	if pc.APIKey == "" {
		return nil, fmt.Errorf("sportsdb: api_key is required")
	}

	client := resilience.NewClient(resilience.Options{
		Name:              SourceName,
		RequestsPerMinute: pc.RequestsPerMinute,
		DailyLimit:        pc.DailyLimit,
		Timeout:           cfg.Providers.Timeout,
		UserAgent:         cfg.Providers.UserAgent,
	}, doer)

	return &Adapter{
		client:  client,
		baseURL: strings.TrimRight(pc.BaseURL, "/"),
		apiKey:  pc.APIKey,
	}, nil
}

func (a *Adapter) Name() string  { return SourceName }
func (a *Adapter) Priority() int { return priority }

// url builds an endpoint URL with the key in the path, the provider's auth
// scheme.
func (a *Adapter) url(endpoint string) string {
	return a.baseURL + "/" + a.apiKey + endpoint
}

func sportName(sport enums.Sport) (string, error) {
	name, ok := sportNames[sport]
	if !ok {
		return "", fmt.Errorf("sportsdb: unsupported sport %q", sport)
	}
	return name, nil
}

// SportForName resolves a strSport value back to the canonical sport.
func SportForName(name string) (enums.Sport, bool) {
	sport, ok := nameSports[strings.ToLower(name)]
	return sport, ok
}

func (a *Adapter) LeaguesBySport(ctx context.Context, sport enums.Sport) ([]models.League, error) {
	name, err := sportName(sport)
	if err != nil {
		return nil, err
	}

	var resp leaguesResponse
	if err := a.client.GetJSON(ctx, a.url("/search_all_leagues.php?s="+url.QueryEscape(name)), &resp); err != nil {
		return nil, err
	}

	now := time.Now()
	leagues := make([]models.League, 0, len(resp.Leagues))
	for _, entry := range resp.Leagues {
		leagues = append(leagues, models.League{
			ExternalID: entry.ID,
			Source:     SourceName,
			Name:       entry.Name,
			Sport:      sport,
			Country:    entry.Country,
			Season:     entry.Season,
			LogoURL:    entry.Badge,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return leagues, nil
}

func (a *Adapter) TeamsByLeague(ctx context.Context, leagueID string, sport enums.Sport) ([]models.Team, error) {
	var resp teamsResponse
	if err := a.client.GetJSON(ctx, a.url("/lookup_all_teams.php?id="+url.QueryEscape(leagueID)), &resp); err != nil {
		return nil, err
	}

	now := time.Now()
	teams := make([]models.Team, 0, len(resp.Teams))
	for _, entry := range resp.Teams {
		founded, _ := strconv.Atoi(entry.FormedYear)
		team := models.Team{
			ExternalID:   entry.ID,
			Source:       SourceName,
			Name:         entry.Name,
			ShortName:    entry.ShortName,
			Sport:        sport,
			Country:      entry.Country,
			FoundedYear:  founded,
			PrimaryColor: entry.Colour,
			LogoURL:      entry.Badge,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if entry.Stadium != "" {
			team.Metadata = map[string]string{"venue": entry.Stadium}
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// UpcomingEvents walks the schedule one calendar day at a time; the provider
// only exposes per-day event listings.
func (a *Adapter) UpcomingEvents(ctx context.Context, sport enums.Sport, days int) ([]models.Event, error) {
	name, err := sportName(sport)
	if err != nil {
		return nil, err
	}

	start := time.Now().UTC()
	var events []models.Event
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		endpoint := fmt.Sprintf("/eventsday.php?d=%s&s=%s", day, url.QueryEscape(name))

		var resp eventsResponse
		if err := a.client.GetJSON(ctx, a.url(endpoint), &resp); err != nil {
			return events, err
		}
		for _, entry := range resp.Events {
			events = append(events, a.mapEvent(entry, sport))
		}
	}
	return events, nil
}

func (a *Adapter) LiveEvents(ctx context.Context, sport enums.Sport) ([]models.Event, error) {
	name, err := sportName(sport)
	if err != nil {
		return nil, err
	}

	var resp eventsResponse
	if err := a.client.GetJSON(ctx, a.url("/livescore.php?s="+url.QueryEscape(name)), &resp); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(resp.Events))
	for _, entry := range resp.Events {
		events = append(events, a.mapEvent(entry, sport))
	}
	return events, nil
}

func (a *Adapter) mapEvent(entry eventEntry, sport enums.Sport) models.Event {
	now := time.Now()
	ev := models.Event{
		ExternalID: entry.ID,
		Source:     SourceName,
		Name:       entry.Name,
		Sport:      sport,
		LeagueID:   entry.LeagueID,
		HomeTeam:   entry.HomeTeam,
		AwayTeam:   entry.AwayTeam,
		StartTime:  combineDateTime(entry.Date, entry.Time),
		Timezone:   "UTC",
		Status:     providers.MapStatus(statusTable, entry.Status),
		HomeScore:  parseScore(entry.HomeScore),
		AwayScore:  parseScore(entry.AwayScore),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if ev.Name == "" {
		ev.Name = entry.HomeTeam + " vs " + entry.AwayTeam
	}
	if entry.Venue != "" {
		ev.Metadata = map[string]string{"venue": entry.Venue}
	}
	return ev
}

// combineDateTime joins the split dateEvent and strTime fields into one
// timestamp. A missing or malformed time falls back to midnight UTC on the
// event date.
func combineDateTime(date, clock string) time.Time {
	if clock != "" {
		if ts, err := time.Parse("2006-01-02 15:04:05", date+" "+clock); err == nil {
			return ts.UTC()
		}
		if ts, err := time.Parse("2006-01-02 15:04", date+" "+clock); err == nil {
			return ts.UTC()
		}
	}
	return providers.ParseTime(date, "2006-01-02")
}

func parseScore(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func (a *Adapter) TestConnection(ctx context.Context) bool {
	return a.client.TestConnection(ctx, a.url("/all_sports.php"))
}

func (a *Adapter) Usage() resilience.UsageStats            { return a.client.Usage() }
func (a *Adapter) CircuitStatus() resilience.BreakerStatus { return a.client.CircuitStatus() }
func (a *Adapter) ResetCircuit()                           { a.client.ResetCircuit() }
