package scoring

import (
	"fmt"

	"PulseWatch/internal/domain/models"
)

// levelSpec holds the long-side price multipliers for one signal type.
// Short signals mirror each multiplier around the entry price.
type levelSpec struct {
	tp1, tp2, tp3, stop float64
}

// Multipliers are fixed per signal type; mean-reversion entries (RSI)
// run tighter stops than continuation entries (breakout, momentum).
var levelTable = map[models.SignalType]levelSpec{
	models.SignalRSIOversold:   {tp1: 1.012, tp2: 1.025, tp3: 1.040, stop: 0.985},
	models.SignalRSIOverbought: {tp1: 1.012, tp2: 1.025, tp3: 1.040, stop: 0.985},
	models.SignalBreakout:      {tp1: 1.015, tp2: 1.030, tp3: 1.050, stop: 0.980},
	models.SignalVolumeSpike:   {tp1: 1.010, tp2: 1.020, tp3: 1.035, stop: 0.988},
	models.SignalMomentum:      {tp1: 1.015, tp2: 1.028, tp3: 1.045, stop: 0.982},
	models.SignalMultiFactor:   {tp1: 1.010, tp2: 1.022, tp3: 1.038, stop: 0.985},
}

// Levels derives entry, take-profit and stop-loss prices for a candidate
// deterministically from its entry price, type and direction.
func Levels(entry float64, typ models.SignalType, dir models.Direction) models.TradingLevels {
	spec, ok := levelTable[typ]
	if !ok {
		spec = levelTable[models.SignalMultiFactor]
	}

	apply := func(m float64) float64 {
		if dir == models.Short {
			return entry * (2 - m)
		}
		return entry * m
	}

	lv := models.TradingLevels{
		Entry:    entry,
		TP1:      apply(spec.tp1),
		TP2:      apply(spec.tp2),
		TP3:      apply(spec.tp3),
		StopLoss: apply(spec.stop),
	}

	risk := 1 - spec.stop
	reward := spec.tp2 - 1
	if risk > 0 {
		lv.RiskReward = fmt.Sprintf("1:%.1f", reward/risk)
	}
	return lv
}
