package scoring

import (
	"math"

	"PulseWatch/internal/domain/models"
)

// Classify resolves the signal type and direction for a scored indicator
// set. Priority order: RSI extreme > breakout > volume spike > momentum >
// multi-factor fallback.
func (s *Scorer) Classify(ind models.IndicatorSet) (models.SignalType, models.Direction) {
	if ind.RSIOK {
		if ind.RSI <= s.profile.RSIOversold {
			return models.SignalRSIOversold, models.Long
		}
		if ind.RSI >= s.profile.RSIOverbought {
			return models.SignalRSIOverbought, models.Short
		}
	}

	if ind.BreakoutOK && ind.BreakoutPct != 0 {
		if ind.BreakoutPct > 0 {
			return models.SignalBreakout, models.Long
		}
		return models.SignalBreakout, models.Short
	}

	if ind.VolumeSpikeOK && ind.VolumeSpike >= s.profile.VolumeTiers[2] {
		return models.SignalVolumeSpike, directionFrom(ind.ChangePct24h)
	}

	if math.Abs(ind.MomentumPct) >= s.profile.MomentumTiers[2] {
		return models.SignalMomentum, directionFrom(ind.MomentumPct)
	}

	return models.SignalMultiFactor, directionFrom(ind.ChangePct24h)
}

func directionFrom(v float64) models.Direction {
	if v < 0 {
		return models.Short
	}
	return models.Long
}
