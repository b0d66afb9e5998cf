// Package sportsio adapts an API-Sports-style provider: per-sport URL paths,
// API key in a request header, everything wrapped in a "response" envelope.
package sportsio

import (
	"context"
	"fmt"
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
	// SourceName is this provider's canonical identity. Highest ranked in
	// the deduplication priority order.
	SourceName = "sportsio"
	priority   = 3
)

func init() {
	providers.Register(SourceName, func(cfg *config.Config) (providers.Adapter, error) {
		return New(cfg, nil)
	})
}

// sportPaths is the bidirectional vocabulary table: canonical sport to URL
// path segment and back.
var sportPaths = map[enums.Sport]string{
	enums.Football:   "football",
	enums.Basketball: "basketball",
	enums.Hockey:     "hockey",
	enums.Baseball:   "baseball",
	enums.Volleyball: "volleyball",
	enums.MMA:        "mma",
}

var pathSports = func() map[string]enums.Sport {
	out := make(map[string]enums.Sport, len(sportPaths))
	for sport, path := range sportPaths {
		out[path] = sport
	}
	return out
}()

var statusTable = map[string]enums.EventStatus{
	"ns":   enums.StatusScheduled,
	"tbd":  enums.StatusScheduled,
	"1h":   enums.StatusLive,
	"2h":   enums.StatusLive,
	"et":   enums.StatusLive,
	"live": enums.StatusLive,
	"p":    enums.StatusLive,
	"ht":   enums.StatusHalftime,
	"ft":   enums.StatusFinished,
	"aet":  enums.StatusFinished,
	"pen":  enums.StatusFinished,
	"pst":  enums.StatusPostponed,
	"canc": enums.StatusCancelled,
	"abd":  enums.StatusCancelled,
	"susp": enums.StatusSuspended,
	"int":  enums.StatusSuspended,
}

// Adapter is the API-Sports provider adapter.
type Adapter struct {
	client  *resilience.Client
	baseURL string
}

// New builds the adapter. A nil doer gets the default HTTP client.
func New(cfg *config.Config, doer resilience.Doer) (*Adapter, error) {
	pc := cfg.Providers.SportsIO
	if pc.BaseURL == "" {
		return nil, fmt.Errorf("sportsio: base_url is required")
	}

	client := resilience.NewClient(resilience.Options{
		Name:              SourceName,
		RequestsPerMinute: pc.RequestsPerMinute,
		DailyLimit:        pc.DailyLimit,
		Timeout:           cfg.Providers.Timeout,
		UserAgent:         cfg.Providers.UserAgent,
		Headers:           authHeaders(pc.APIKey),
	}, doer)

	return &Adapter{
		client:  client,
		baseURL: strings.TrimRight(pc.BaseURL, "/"),
	}, nil
}

func authHeaders(apiKey string) map[string]string {
	if apiKey == "" {
		return nil
	}
	return map[string]string{"x-apisports-key": apiKey}
}

func (a *Adapter) Name() string  { return SourceName }
func (a *Adapter) Priority() int { return priority }

func (a *Adapter) url(sport enums.Sport, endpoint string) (string, error) {
	path, ok := sportPaths[sport]
	if !ok {
		return "", fmt.Errorf("sportsio: unsupported sport %q", sport)
	}
	return a.baseURL + "/" + path + endpoint, nil
}

// SportForPath resolves a URL path segment back to the canonical sport.
func SportForPath(path string) (enums.Sport, bool) {
	sport, ok := pathSports[strings.ToLower(path)]
	return sport, ok
}

func (a *Adapter) LeaguesBySport(ctx context.Context, sport enums.Sport) ([]models.League, error) {
	url, err := a.url(sport, "/leagues")
	if err != nil {
		return nil, err
	}

	var env envelope[leagueEntry]
	if err := a.client.GetJSON(ctx, url, &env); err != nil {
		return nil, err
	}

	now := time.Now()
	leagues := make([]models.League, 0, len(env.Response))
	for _, entry := range env.Response {
		season := ""
		for _, s := range entry.Seasons {
			if s.Current {
				season = strconv.Itoa(s.Year)
			}
		}
		leagues = append(leagues, models.League{
			ExternalID: strconv.Itoa(entry.League.ID),
			Source:     SourceName,
			Name:       entry.League.Name,
			Sport:      sport,
			Country:    entry.Country.Name,
			Season:     season,
			LogoURL:    entry.League.Logo,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return leagues, nil
}

func (a *Adapter) TeamsByLeague(ctx context.Context, leagueID string, sport enums.Sport) ([]models.Team, error) {
	url, err := a.url(sport, "/teams?league="+leagueID)
	if err != nil {
		return nil, err
	}

	var env envelope[teamEntry]
	if err := a.client.GetJSON(ctx, url, &env); err != nil {
		return nil, err
	}

	now := time.Now()
	teams := make([]models.Team, 0, len(env.Response))
	for _, entry := range env.Response {
		team := models.Team{
			ExternalID:  strconv.Itoa(entry.Team.ID),
			Source:      SourceName,
			Name:        entry.Team.Name,
			ShortName:   entry.Team.Code,
			Sport:       sport,
			Country:     entry.Team.Country,
			FoundedYear: entry.Team.Founded,
			LogoURL:     entry.Team.Logo,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if entry.Venue.Name != "" {
			team.Metadata = map[string]string{
				"venue":      entry.Venue.Name,
				"venue_city": entry.Venue.City,
			}
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func (a *Adapter) UpcomingEvents(ctx context.Context, sport enums.Sport, days int) ([]models.Event, error) {
	from := time.Now().UTC()
	to := from.AddDate(0, 0, days)
	endpoint := fmt.Sprintf("/fixtures?from=%s&to=%s",
		from.Format("2006-01-02"), to.Format("2006-01-02"))

	url, err := a.url(sport, endpoint)
	if err != nil {
		return nil, err
	}
	return a.fetchFixtures(ctx, url, sport)
}

func (a *Adapter) LiveEvents(ctx context.Context, sport enums.Sport) ([]models.Event, error) {
	url, err := a.url(sport, "/fixtures?live=all")
	if err != nil {
		return nil, err
	}
	return a.fetchFixtures(ctx, url, sport)
}

func (a *Adapter) fetchFixtures(ctx context.Context, url string, sport enums.Sport) ([]models.Event, error) {
	var env envelope[fixtureEntry]
	if err := a.client.GetJSON(ctx, url, &env); err != nil {
		return nil, err
	}

	now := time.Now()
	events := make([]models.Event, 0, len(env.Response))
	for _, entry := range env.Response {
		ev := models.Event{
			ExternalID: strconv.Itoa(entry.Fixture.ID),
			Source:     SourceName,
			Name:       entry.Teams.Home.Name + " vs " + entry.Teams.Away.Name,
			Sport:      sport,
			LeagueID:   strconv.Itoa(entry.League.ID),
			HomeTeam:   entry.Teams.Home.Name,
			AwayTeam:   entry.Teams.Away.Name,
			StartTime:  providers.ParseTime(entry.Fixture.Date, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"),
			Timezone:   entry.Fixture.Timezone,
			Status:     providers.MapStatus(statusTable, entry.Fixture.Status.Short),
			HomeScore:  entry.Goals.Home,
			AwayScore:  entry.Goals.Away,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		meta := map[string]string{}
		if entry.League.Round != "" {
			meta["round"] = entry.League.Round
		}
		if entry.Fixture.Venue.Name != "" {
			meta["venue"] = entry.Fixture.Venue.Name
		}
		if len(meta) > 0 {
			ev.Metadata = meta
		}
		events = append(events, ev)
	}
	return events, nil
}

// EventOdds fetches today's bookmaker odds. Odd values arrive as strings;
// unparseable ones map to 0 and convert to a zero probability downstream.
func (a *Adapter) EventOdds(ctx context.Context, sport enums.Sport) ([]providers.EventOdds, error) {
	endpoint := "/odds?date=" + time.Now().UTC().Format("2006-01-02")
	url, err := a.url(sport, endpoint)
	if err != nil {
		return nil, err
	}

	var env envelope[oddsEntry]
	if err := a.client.GetJSON(ctx, url, &env); err != nil {
		return nil, err
	}

	out := make([]providers.EventOdds, 0, len(env.Response))
	for _, entry := range env.Response {
		if len(entry.Bookmakers) == 0 {
			continue
		}
		eo := providers.EventOdds{
			EventName: entry.Teams.Home.Name + " vs " + entry.Teams.Away.Name,
			HomeTeam:  entry.Teams.Home.Name,
			AwayTeam:  entry.Teams.Away.Name,
		}
		// First bookmaker only: one price vector per event is enough for
		// market conversion, and it keeps the batch bounded.
		for _, bet := range entry.Bookmakers[0].Bets {
			raw := models.RawBet{
				BetTypeID: bet.ID,
				Name:      bet.Name,
			}
			for _, v := range bet.Values {
				odds, _ := strconv.ParseFloat(v.Odd, 64)
				raw.Outcomes = append(raw.Outcomes, models.RawOutcome{
					Label: v.Value,
					Odds:  odds,
				})
				if raw.Line == nil {
					if line, ok := lineFromLabel(v.Value); ok {
						raw.Line = &line
					}
				}
			}
			eo.Bets = append(eo.Bets, raw)
		}
		out = append(out, eo)
	}
	return out, nil
}

// lineFromLabel extracts the numeric line from labels like "Over 2.5".
func lineFromLabel(label string) (float64, bool) {
	fields := strings.Fields(label)
	if len(fields) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (a *Adapter) TestConnection(ctx context.Context) bool {
	return a.client.TestConnection(ctx, a.baseURL+"/status")
}

func (a *Adapter) Usage() resilience.UsageStats           { return a.client.Usage() }
func (a *Adapter) CircuitStatus() resilience.BreakerStatus { return a.client.CircuitStatus() }
func (a *Adapter) ResetCircuit()                           { a.client.ResetCircuit() }
