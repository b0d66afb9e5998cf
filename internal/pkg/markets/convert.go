package markets

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/blockalphadev/dejavu-sub004/internal/pkg/models"
)

// OddsToProb converts a decimal coefficient to an implied probability.
// Odds at or below 1.0 carry no information and map to 0.
func OddsToProb(decimalOdds float64) float64 {
	if decimalOdds <= 1 {
		return 0
	}
	return 1 / decimalOdds
}

// NormalizeProbabilities divides every element by the vector sum so the
// result sums to 1, removing the bookmaker overround. Values are rounded to
// 4 decimal places. A zero-sum vector is returned unchanged.
func NormalizeProbabilities(probs []float64) []float64 {
	var sum float64
	for _, p := range probs {
		sum += p
	}

	out := make([]float64, len(probs))
	if sum == 0 {
		copy(out, probs)
		return out
	}
	for i, p := range probs {
		out[i] = round4(p / sum)
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// ConvertBetToMarket maps one bookmaker bet onto a canonical market.
// Returns nil for unmapped bet types; the caller must skip, not fail.
// Literal "Home"/"Away" outcome tokens are replaced with real team names.
func ConvertBetToMarket(bet models.RawBet, eventName, homeTeam, awayTeam, source string) *models.ConvertedMarket {
	entry, ok := betTaxonomy[bet.BetTypeID]
	if !ok {
		return nil
	}
	if len(bet.Outcomes) == 0 {
		return nil
	}

	labels := make([]string, 0, len(bet.Outcomes))
	probs := make([]float64, 0, len(bet.Outcomes))
	for _, o := range bet.Outcomes {
		labels = append(labels, substituteTeams(o.Label, homeTeam, awayTeam))
		probs = append(probs, OddsToProb(o.Odds))
	}

	// Keep only the most likely outcomes when the taxonomy caps cardinality,
	// then normalize over the survivors.
	if entry.MaxOutcomes > 0 && len(labels) > entry.MaxOutcomes {
		labels, probs = topByProbability(labels, probs, entry.MaxOutcomes)
	}
	probs = NormalizeProbabilities(probs)

	title := entry.Title
	if entry.HasLine && bet.Line != nil {
		title = fmt.Sprintf("%s %.1f", entry.Title, *bet.Line)
	}

	m := &models.ConvertedMarket{
		MarketType:    entry.MarketType,
		Title:         title,
		Question:      fmt.Sprintf(entry.Question, eventName),
		EventName:     eventName,
		Outcomes:      labels,
		OutcomePrices: probs,
		Source:        source,
	}
	if entry.HasLine {
		m.Line = bet.Line
	}
	return m
}

// topByProbability keeps the n most probable outcomes, preserving the
// original relative order of the survivors.
func topByProbability(labels []string, probs []float64, n int) ([]string, []float64) {
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return probs[idx[a]] > probs[idx[b]]
	})

	keep := make(map[int]bool, n)
	for _, i := range idx[:n] {
		keep[i] = true
	}

	outLabels := make([]string, 0, n)
	outProbs := make([]float64, 0, n)
	for i := range labels {
		if keep[i] {
			outLabels = append(outLabels, labels[i])
			outProbs = append(outProbs, probs[i])
		}
	}
	return outLabels, outProbs
}

func substituteTeams(label, homeTeam, awayTeam string) string {
	if homeTeam != "" {
		label = replaceToken(label, "Home", homeTeam)
	}
	if awayTeam != "" {
		label = replaceToken(label, "Away", awayTeam)
	}
	return label
}

// replaceToken swaps token for name when it appears as a whole word, so
// "Home" and "Home or Draw" are substituted but "Homerton" is not.
func replaceToken(label, token, name string) string {
	if strings.EqualFold(label, token) {
		return name
	}
	fields := strings.Fields(label)
	for i, f := range fields {
		if strings.EqualFold(f, token) {
			fields[i] = name
		}
	}
	return strings.Join(fields, " ")
}
