package sportsdb

// The API returns flat arrays of records with string-typed fields, including
// numbers; null sections come back as JSON null rather than empty arrays.

type leaguesResponse struct {
	Leagues []leagueEntry `json:"leagues"`
}

type leagueEntry struct {
	ID      string `json:"idLeague"`
	Name    string `json:"strLeague"`
	Sport   string `json:"strSport"`
	Country string `json:"strCountry"`
	Season  string `json:"strCurrentSeason"`
	Badge   string `json:"strBadge"`
}

type teamsResponse struct {
	Teams []teamEntry `json:"teams"`
}

type teamEntry struct {
	ID         string `json:"idTeam"`
	Name       string `json:"strTeam"`
	ShortName  string `json:"strTeamShort"`
	Sport      string `json:"strSport"`
	Country    string `json:"strCountry"`
	FormedYear string `json:"intFormedYear"`
	Colour     string `json:"strColour1"`
	Badge      string `json:"strBadge"`
	Stadium    string `json:"strStadium"`
}

type eventsResponse struct {
	Events []eventEntry `json:"events"`
}

type eventEntry struct {
	ID        string `json:"idEvent"`
	Name      string `json:"strEvent"`
	Sport     string `json:"strSport"`
	LeagueID  string `json:"idLeague"`
	HomeTeam  string `json:"strHomeTeam"`
	AwayTeam  string `json:"strAwayTeam"`
	Date      string `json:"dateEvent"`
	Time      string `json:"strTime"`
	Status    string `json:"strStatus"`
	HomeScore string `json:"intHomeScore"`
	AwayScore string `json:"intAwayScore"`
	Venue     string `json:"strVenue"`
}
