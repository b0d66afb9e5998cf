// Package markets converts bookmaker bet structures into normalized
// prediction-market outcomes. All functions are pure and stateless.
package markets

import "github.com/blockalphadev/dejavu-sub004/internal/pkg/models"

// Bookmaker bet-type ids as they appear in odds feeds.
const (
	BetMatchWinner    = 1
	BetHomeAway       = 2
	BetTotalOverUnder = 5
	BetHandicap       = 8
	BetBothTeamsScore = 10
	BetDoubleChance   = 12
	BetCorrectScore   = 24
)

// maxEnumerableOutcomes bounds UI-facing markets. Correct-score bets can carry
// dozens of scorelines; downstream markets accept at most 10 outcomes.
const maxEnumerableOutcomes = 10

type taxonomyEntry struct {
	MarketType  models.MarketType
	Title       string
	Question    string // one %s placeholder for the event name
	MaxOutcomes int    // 0 = uncapped
	HasLine     bool
}

// betTaxonomy maps bookmaker bet-type ids to canonical market definitions.
// Bet types absent here are intentionally unmapped: ConvertBetToMarket
// returns nil for them and the caller skips the bet.
var betTaxonomy = map[int]taxonomyEntry{
	BetMatchWinner: {
		MarketType: models.MarketMatchWinner,
		Title:      "Match Winner",
		Question:   "Who will win %s?",
	},
	BetHomeAway: {
		MarketType: models.MarketMatchWinner,
		Title:      "Winner",
		Question:   "Who will win %s?",
	},
	BetTotalOverUnder: {
		MarketType: models.MarketTotalOverUnder,
		Title:      "Total Over/Under",
		Question:   "How many goals will be scored in %s?",
		HasLine:    true,
	},
	BetHandicap: {
		MarketType: models.MarketHandicap,
		Title:      "Handicap",
		Question:   "Who wins %s with the handicap applied?",
		HasLine:    true,
	},
	BetBothTeamsScore: {
		MarketType: models.MarketBothTeamsScore,
		Title:      "Both Teams To Score",
		Question:   "Will both teams score in %s?",
	},
	BetDoubleChance: {
		MarketType: models.MarketDoubleChance,
		Title:      "Double Chance",
		Question:   "What double-chance outcome settles %s?",
	},
	BetCorrectScore: {
		MarketType:  models.MarketCorrectScore,
		Title:       "Correct Score",
		Question:    "What will the final score of %s be?",
		MaxOutcomes: maxEnumerableOutcomes,
	},
}

// MappedBetTypes returns the supported bookmaker bet-type ids.
func MappedBetTypes() []int {
	out := make([]int, 0, len(betTaxonomy))
	for id := range betTaxonomy {
		out = append(out, id)
	}
	return out
}
