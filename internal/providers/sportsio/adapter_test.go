package sportsio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/config"
	"github.com/blockalphadev/dejavu-sub004/internal/pkg/enums"
)

// stubDoer serves canned bodies by URL substring and records requests.
type stubDoer struct {
	responses map[string]string
	requests  []*http.Request
}

func (s *stubDoer) Do(req *http.Request) (*http.Response, error) {
	s.requests = append(s.requests, req)
	for fragment, body := range s.responses {
		if strings.Contains(req.URL.String(), fragment) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewReader([]byte(body))),
			}, nil
		}
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(bytes.NewReader([]byte(`{"response":[]}`))),
	}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Providers.UserAgent = "test-agent"
	cfg.Providers.SportsIO.BaseURL = "https://api.example.test"
	cfg.Providers.SportsIO.APIKey = "secret"
	return cfg
}

func newTestAdapter(t *testing.T, doer *stubDoer) *Adapter {
	t.Helper()
	adapter, err := New(testConfig(), doer)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return adapter
}

func TestLeaguesBySport(t *testing.T) {
	doer := &stubDoer{responses: map[string]string{
		"/football/leagues": `{"results":1,"response":[{
			"league":{"id":39,"name":"Premier League","logo":"https://img/39.png"},
			"country":{"name":"England"},
			"seasons":[{"year":2023,"current":false},{"year":2024,"current":true}]
		}]}`,
	}}
	adapter := newTestAdapter(t, doer)

	leagues, err := adapter.LeaguesBySport(context.Background(), enums.Football)
	if err != nil {
		t.Fatalf("LeaguesBySport: %v", err)
	}
	if len(leagues) != 1 {
		t.Fatalf("got %d leagues, want 1", len(leagues))
	}
	l := leagues[0]
	if l.ExternalID != "39" || l.Source != SourceName {
		t.Errorf("identity = %s/%s", l.ExternalID, l.Source)
	}
	if l.Name != "Premier League" || l.Country != "England" {
		t.Errorf("league = %+v", l)
	}
	if l.Season != "2024" {
		t.Errorf("season = %q, want current season 2024", l.Season)
	}
}

func TestUnsupportedSportDoesNotCallNetwork(t *testing.T) {
	doer := &stubDoer{}
	adapter := newTestAdapter(t, doer)

	if _, err := adapter.LeaguesBySport(context.Background(), enums.Tennis); err == nil {
		t.Fatal("expected error for unsupported sport")
	}
	if len(doer.requests) != 0 {
		t.Errorf("made %d requests, want 0", len(doer.requests))
	}
}

func TestLiveEventsMapping(t *testing.T) {
	doer := &stubDoer{responses: map[string]string{
		"live=all": `{"results":1,"response":[{
			"fixture":{"id":1001,"date":"2026-08-29T14:00:00+00:00","timezone":"UTC",
				"status":{"long":"Halftime","short":"HT"},
				"venue":{"name":"Anfield"}},
			"league":{"id":39,"name":"Premier League","round":"Regular Season - 3"},
			"teams":{"home":{"name":"Liverpool"},"away":{"name":"Everton"}},
			"goals":{"home":2,"away":0}
		}]}`,
	}}
	adapter := newTestAdapter(t, doer)

	events, err := adapter.LiveEvents(context.Background(), enums.Football)
	if err != nil {
		t.Fatalf("LiveEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Status != enums.StatusHalftime {
		t.Errorf("status = %s, want halftime", ev.Status)
	}
	if ev.HomeScore == nil || *ev.HomeScore != 2 || ev.AwayScore == nil || *ev.AwayScore != 0 {
		t.Errorf("scores = %v/%v", ev.HomeScore, ev.AwayScore)
	}
	want := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)
	if !ev.StartTime.Equal(want) {
		t.Errorf("start = %v, want %v", ev.StartTime, want)
	}
	if ev.Metadata["round"] != "Regular Season - 3" || ev.Metadata["venue"] != "Anfield" {
		t.Errorf("metadata = %v", ev.Metadata)
	}
	if ev.Name != "Liverpool vs Everton" {
		t.Errorf("name = %q", ev.Name)
	}
}

func TestUnknownStatusDefaultsToScheduled(t *testing.T) {
	doer := &stubDoer{responses: map[string]string{
		"live=all": `{"response":[{
			"fixture":{"id":1,"date":"not a date","status":{"short":"WTF"}},
			"teams":{"home":{"name":"A"},"away":{"name":"B"}}
		}]}`,
	}}
	adapter := newTestAdapter(t, doer)

	events, err := adapter.LiveEvents(context.Background(), enums.Football)
	if err != nil {
		t.Fatalf("LiveEvents: %v", err)
	}
	if events[0].Status != enums.StatusScheduled {
		t.Errorf("status = %s, want scheduled", events[0].Status)
	}
	// Unparseable timestamps substitute the fetch time instead of failing.
	if time.Since(events[0].StartTime) > time.Minute {
		t.Errorf("start = %v, want near now", events[0].StartTime)
	}
}

func TestEventOddsFirstBookmakerAndLine(t *testing.T) {
	doer := &stubDoer{responses: map[string]string{
		"/odds?date=": `{"response":[{
			"fixture":{"id":1001},
			"teams":{"home":{"name":"Lions"},"away":{"name":"Tigers"}},
			"bookmakers":[
				{"id":8,"name":"First","bets":[
					{"id":1,"name":"Match Winner","values":[
						{"value":"Home","odd":"2.60"},
						{"value":"Draw","odd":"3.90"},
						{"value":"Away","odd":"5.20"}]},
					{"id":5,"name":"Goals Over/Under","values":[
						{"value":"Over 2.5","odd":"1.85"},
						{"value":"Under 2.5","odd":"1.95"}]}
				]},
				{"id":9,"name":"Second","bets":[
					{"id":1,"name":"Match Winner","values":[{"value":"Home","odd":"1.01"}]}
				]}
			]
		}]}`,
	}}
	adapter := newTestAdapter(t, doer)

	odds, err := adapter.EventOdds(context.Background(), enums.Football)
	if err != nil {
		t.Fatalf("EventOdds: %v", err)
	}
	if len(odds) != 1 {
		t.Fatalf("got %d odds entries, want 1", len(odds))
	}
	eo := odds[0]
	if eo.EventName != "Lions vs Tigers" {
		t.Errorf("event = %q", eo.EventName)
	}
	if len(eo.Bets) != 2 {
		t.Fatalf("got %d bets, want 2 from first bookmaker only", len(eo.Bets))
	}
	winner := eo.Bets[0]
	if winner.BetTypeID != 1 || len(winner.Outcomes) != 3 {
		t.Errorf("winner bet = %+v", winner)
	}
	if winner.Outcomes[0].Odds != 2.60 {
		t.Errorf("home odds = %v", winner.Outcomes[0].Odds)
	}
	total := eo.Bets[1]
	if total.Line == nil || *total.Line != 2.5 {
		t.Errorf("line = %v, want 2.5", total.Line)
	}
}

func TestAuthHeaderAndUserAgent(t *testing.T) {
	doer := &stubDoer{responses: map[string]string{
		"/leagues": `{"response":[]}`,
	}}
	adapter := newTestAdapter(t, doer)

	if _, err := adapter.LeaguesBySport(context.Background(), enums.Basketball); err != nil {
		t.Fatalf("LeaguesBySport: %v", err)
	}
	if len(doer.requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(doer.requests))
	}
	req := doer.requests[0]
	if got := req.Header.Get("x-apisports-key"); got != "secret" {
		t.Errorf("api key header = %q", got)
	}
	if got := req.Header.Get("User-Agent"); got != "test-agent" {
		t.Errorf("user agent = %q", got)
	}
	if !strings.HasPrefix(req.URL.String(), "https://api.example.test/basketball/") {
		t.Errorf("url = %s", req.URL)
	}
}

func TestSportForPath(t *testing.T) {
	for sport, path := range sportPaths {
		got, ok := SportForPath(path)
		if !ok || got != sport {
			t.Errorf("SportForPath(%q) = %v, %v", path, got, ok)
		}
	}
	if _, ok := SportForPath("curling"); ok {
		t.Error("expected unknown path to miss")
	}
}
