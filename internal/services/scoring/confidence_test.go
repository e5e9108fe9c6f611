package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseWatch/internal/domain/models"
)

func TestScoreIsPure(t *testing.T) {
	s := NewScorer(DefaultProfile())
	ind := models.IndicatorSet{
		RSI: 22, RSIOK: true,
		VolumeSpike: 2.2, VolumeSpikeOK: true,
		ChangePct24h: -3.0,
		MomentumPct:  -2.0,
	}

	a := s.Score(ind)
	b := s.Score(ind)
	assert.Equal(t, a, b)
}

func TestScoreBoundedAndCapped(t *testing.T) {
	s := NewScorer(DefaultProfile())
	ind := models.IndicatorSet{
		RSI: 5, RSIOK: true,
		VolumeSpike: 10, VolumeSpikeOK: true,
		ChangePct24h: -20,
		BreakoutPct:  -5, BreakoutOK: true,
		MomentumPct: -15,
	}

	res := s.Score(ind)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, models.LevelVeryHigh, res.Level)
	assert.Len(t, res.Factors, 5)
}

func TestUndefinedIndicatorsContributeNothing(t *testing.T) {
	s := NewScorer(DefaultProfile())
	res := s.Score(models.IndicatorSet{
		RSI: 10, RSIOK: false, // undefined despite extreme value
		VolumeSpike: 3.0, VolumeSpikeOK: false,
	})
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, models.LevelLow, res.Level)
	assert.Empty(t, res.Factors)
}

func TestVolumeContributionMonotonicInTier(t *testing.T) {
	s := NewScorer(DefaultProfile())
	prev := -1
	for _, ratio := range []float64{1.0, 1.1, 1.2, 1.3, 1.5, 1.9, 2.0, 2.5} {
		res := s.Score(models.IndicatorSet{VolumeSpike: ratio, VolumeSpikeOK: true})
		assert.GreaterOrEqual(t, res.Score, prev, "ratio %.1f", ratio)
		prev = res.Score
	}
}

func TestFactorTiers(t *testing.T) {
	s := NewScorer(DefaultProfile())
	tests := []struct {
		name string
		ind  models.IndicatorSet
		want int
	}{
		{"volume top tier", models.IndicatorSet{VolumeSpike: 2.0, VolumeSpikeOK: true}, 25},
		{"volume mid tier", models.IndicatorSet{VolumeSpike: 1.5, VolumeSpikeOK: true}, 18},
		{"volume low tier", models.IndicatorSet{VolumeSpike: 1.2, VolumeSpikeOK: true}, 10},
		{"volume below tier", models.IndicatorSet{VolumeSpike: 1.1, VolumeSpikeOK: true}, 0},
		{"change negative magnitude", models.IndicatorSet{ChangePct24h: -4.5}, 20},
		{"breakout down", models.IndicatorSet{BreakoutPct: -1.6, BreakoutOK: true}, 15},
		{"momentum mid", models.IndicatorSet{MomentumPct: 2.2}, 10},
		{"rsi oversold edge", models.IndicatorSet{RSI: 25, RSIOK: true}, 25},
		{"rsi overbought edge", models.IndicatorSet{RSI: 80, RSIOK: true}, 25},
		{"rsi neutral", models.IndicatorSet{RSI: 50, RSIOK: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(tt.ind).Score)
		})
	}
}

func TestLevelMapping(t *testing.T) {
	assert.Equal(t, models.LevelVeryHigh, levelFor(75))
	assert.Equal(t, models.LevelHigh, levelFor(60))
	assert.Equal(t, models.LevelMedium, levelFor(45))
	assert.Equal(t, models.LevelLow, levelFor(44))
}

func TestClassifyPriority(t *testing.T) {
	s := NewScorer(DefaultProfile())

	// RSI extreme beats a simultaneous breakout
	typ, dir := s.Classify(models.IndicatorSet{
		RSI: 20, RSIOK: true,
		BreakoutPct: 2.0, BreakoutOK: true,
	})
	assert.Equal(t, models.SignalRSIOversold, typ)
	assert.Equal(t, models.Long, dir)

	typ, dir = s.Classify(models.IndicatorSet{
		RSI: 85, RSIOK: true,
	})
	assert.Equal(t, models.SignalRSIOverbought, typ)
	assert.Equal(t, models.Short, dir)

	typ, dir = s.Classify(models.IndicatorSet{
		RSI: 50, RSIOK: true,
		BreakoutPct: -1.2, BreakoutOK: true,
		VolumeSpike: 3.0, VolumeSpikeOK: true,
	})
	assert.Equal(t, models.SignalBreakout, typ)
	assert.Equal(t, models.Short, dir)

	typ, _ = s.Classify(models.IndicatorSet{
		VolumeSpike: 1.5, VolumeSpikeOK: true,
	})
	assert.Equal(t, models.SignalVolumeSpike, typ)

	typ, dir = s.Classify(models.IndicatorSet{MomentumPct: -2.5})
	assert.Equal(t, models.SignalMomentum, typ)
	assert.Equal(t, models.Short, dir)

	typ, _ = s.Classify(models.IndicatorSet{ChangePct24h: 1.0})
	assert.Equal(t, models.SignalMultiFactor, typ)
}

func TestLevels(t *testing.T) {
	long := Levels(100, models.SignalBreakout, models.Long)
	require.Equal(t, 100.0, long.Entry)
	assert.InDelta(t, 101.5, long.TP1, 1e-9)
	assert.InDelta(t, 105.0, long.TP3, 1e-9)
	assert.InDelta(t, 98.0, long.StopLoss, 1e-9)
	assert.Equal(t, "1:1.5", long.RiskReward)

	short := Levels(100, models.SignalBreakout, models.Short)
	assert.InDelta(t, 98.5, short.TP1, 1e-9)
	assert.InDelta(t, 102.0, short.StopLoss, 1e-9)

	// deterministic for identical inputs
	assert.Equal(t, long, Levels(100, models.SignalBreakout, models.Long))
}
