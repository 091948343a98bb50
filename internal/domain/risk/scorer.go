// Package risk scores expenses for fraud likelihood with additive heuristics.
package risk

import "unicode"

// Weights holds the additive scoring weights. Zero value is useless; build it
// from configuration.
type Weights struct {
	AmountSpike     float64 // added when amount exceeds the rolling average multiple
	SpikeMultiplier float64 // rolling-average multiple that counts as a spike
	Violation       float64 // added when any policy violation is present
	ForeignMerchant float64 // added when the merchant name looks non-Japanese
}

// DefaultWeights mirror the production scoring parameters.
func DefaultWeights() Weights {
	return Weights{
		AmountSpike:     0.3,
		SpikeMultiplier: 3.0,
		Violation:       0.4,
		ForeignMerchant: 0.2,
	}
}

// Scorer computes a deterministic risk score in [0, 1].
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score computes the risk score for an expense. avgAmount is the card's
// trailing-30-day average transaction amount, computed by the caller.
func (s *Scorer) Score(amount int64, avgAmount float64, violations []string, merchantName string) float64 {
	score := 0.0

	// A card with no history has a zero average, so any first charge counts
	// as a spike.
	if float64(amount) > avgAmount*s.weights.SpikeMultiplier {
		score += s.weights.AmountSpike
	}

	if len(violations) > 0 {
		score += s.weights.Violation
	}

	if looksForeign(merchantName) {
		score += s.weights.ForeignMerchant
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

// looksForeign reports whether the merchant name contains a rune outside
// ASCII and the Japanese script ranges (hiragana, katakana, kanji). A crude
// stand-in for overseas-merchant detection.
func looksForeign(merchantName string) bool {
	for _, r := range merchantName {
		if r <= unicode.MaxASCII {
			continue
		}
		if r >= 0x3040 && r <= 0x309F { // hiragana
			continue
		}
		if r >= 0x30A0 && r <= 0x30FF { // katakana
			continue
		}
		if r >= 0x4E00 && r <= 0x9FAF { // kanji
			continue
		}
		return true
	}
	return false
}
