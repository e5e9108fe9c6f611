package scoring

import (
	"fmt"
	"math"

	"PulseWatch/internal/domain/models"
)

// Profile carries the tunable scoring thresholds. Several deployments of
// this scanner family disagree on RSI extremes (25/75, 30/80, 32/68), so
// the thresholds are configuration, not constants.
type Profile struct {
	RSIOversold   float64
	RSIOverbought float64
	VolumeTiers   [3]float64 // spike ratio, high to low
	ChangeTiers   [3]float64 // abs 24h change %, high to low
	BreakoutTiers [3]float64 // abs breakout %, high to low
	MomentumTiers [3]float64 // abs momentum %, high to low
}

// DefaultProfile returns the canonical thresholds.
func DefaultProfile() Profile {
	return Profile{
		RSIOversold:   25,
		RSIOverbought: 80,
		VolumeTiers:   [3]float64{2.0, 1.5, 1.2},
		ChangeTiers:   [3]float64{4.0, 2.5, 1.5},
		BreakoutTiers: [3]float64{1.5, 1.0, 0.7},
		MomentumTiers: [3]float64{3.5, 2.0, 1.2},
	}
}

// Maximum contribution per factor. The five maxima sum to 100.
const (
	maxRSIPoints      = 25
	maxVolumePoints   = 25
	maxChangePoints   = 20
	maxBreakoutPoints = 15
	maxMomentumPoints = 15
)

// Scorer combines indicator outputs into a 0-100 confidence score.
// Score is a pure function: identical inputs always produce identical
// results, and it never fails; undefined indicators contribute nothing.
type Scorer struct {
	profile Profile
}

func NewScorer(profile Profile) *Scorer {
	return &Scorer{profile: profile}
}

// Score evaluates one indicator set. Factor lines are recorded in fixed
// order (RSI, volume, 24h change, breakout, momentum) for every non-zero
// contribution; undefined inputs are omitted.
func (s *Scorer) Score(ind models.IndicatorSet) models.ConfidenceResult {
	score := 0
	factors := make([]string, 0, 5)

	if ind.RSIOK {
		if ind.RSI <= s.profile.RSIOversold {
			score += maxRSIPoints
			factors = append(factors, fmt.Sprintf("RSI oversold at %.1f", ind.RSI))
		} else if ind.RSI >= s.profile.RSIOverbought {
			score += maxRSIPoints
			factors = append(factors, fmt.Sprintf("RSI overbought at %.1f", ind.RSI))
		}
	}

	if ind.VolumeSpikeOK {
		if pts := tierPoints(ind.VolumeSpike, s.profile.VolumeTiers, [3]int{25, 18, 10}); pts > 0 {
			score += pts
			factors = append(factors, fmt.Sprintf("volume spike %.1fx average", ind.VolumeSpike))
		}
	}

	if pts := tierPoints(math.Abs(ind.ChangePct24h), s.profile.ChangeTiers, [3]int{20, 12, 8}); pts > 0 {
		score += pts
		factors = append(factors, fmt.Sprintf("24h move %+.1f%%", ind.ChangePct24h))
	}

	if ind.BreakoutOK {
		if pts := tierPoints(math.Abs(ind.BreakoutPct), s.profile.BreakoutTiers, [3]int{15, 10, 6}); pts > 0 {
			score += pts
			factors = append(factors, fmt.Sprintf("breakout %+.2f%% past range", ind.BreakoutPct))
		}
	}

	if pts := tierPoints(math.Abs(ind.MomentumPct), s.profile.MomentumTiers, [3]int{15, 10, 5}); pts > 0 {
		score += pts
		factors = append(factors, fmt.Sprintf("momentum %+.1f%%", ind.MomentumPct))
	}

	if score > 100 {
		score = 100
	}

	return models.ConfidenceResult{
		Score:   score,
		Level:   levelFor(score),
		Factors: factors,
	}
}

// Profile returns the thresholds the scorer was built with.
func (s *Scorer) Profile() Profile { return s.profile }

func tierPoints(magnitude float64, tiers [3]float64, points [3]int) int {
	switch {
	case magnitude >= tiers[0]:
		return points[0]
	case magnitude >= tiers[1]:
		return points[1]
	case magnitude >= tiers[2]:
		return points[2]
	default:
		return 0
	}
}

func levelFor(score int) models.ConfidenceLevel {
	switch {
	case score >= 75:
		return models.LevelVeryHigh
	case score >= 60:
		return models.LevelHigh
	case score >= 45:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}
