package policy

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseWatch/internal/domain/models"
	"PulseWatch/internal/services/scoring"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPolicy(cfg Config, clk *fakeClock) *Policy {
	return New(cfg, scoring.DefaultProfile(), WithClock(clk.now))
}

func strongCandidate(symbol string) *models.SignalCandidate {
	return &models.SignalCandidate{
		Symbol: symbol,
		Price:  1.0,
		Indicators: models.IndicatorSet{
			RSI: 22, RSIOK: true,
			VolumeSpike: 2.2, VolumeSpikeOK: true,
			ChangePct24h: -3.0,
			MomentumPct:  -2.0,
		},
		Confidence: models.ConfidenceResult{Score: 61, Level: models.LevelHigh},
		Type:       models.SignalRSIOversold,
		Direction:  models.Long,
	}
}

func TestMinConfidenceGate(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)}
	p := newTestPolicy(Config{MinConfidence: 45, Cooldown: 15 * time.Minute, MaxHourlySignals: 6}, clk)

	c := strongCandidate("BTC_USDT")
	c.Confidence.Score = 44
	d := p.Evaluate(c)
	assert.False(t, d.Accepted)
	assert.Equal(t, ReasonBelowMinConfidence, d.Reason)
}

func TestQualityConditionGate(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)}
	p := newTestPolicy(Config{MinConfidence: 45, Cooldown: 15 * time.Minute, MaxHourlySignals: 6}, clk)

	// high score but no composite condition: lone borderline volume factor
	c := &models.SignalCandidate{
		Symbol:     "AAA_USDT",
		Indicators: models.IndicatorSet{VolumeSpike: 1.2, VolumeSpikeOK: true},
		Confidence: models.ConfidenceResult{Score: 50},
		Type:       models.SignalVolumeSpike,
		Direction:  models.Long,
	}
	d := p.Evaluate(c)
	assert.False(t, d.Accepted)
	assert.Equal(t, ReasonNoQualityCondition, d.Reason)

	// momentum with neutral RSI qualifies
	c.Indicators = models.IndicatorSet{
		RSI: 50, RSIOK: true,
		MomentumPct: 2.6,
	}
	assert.True(t, p.Evaluate(c).Accepted)
}

func TestCooldownWindow(t *testing.T) {
	start := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		gap        time.Duration
		wantSecond bool
	}{
		{800 * time.Second, false},
		{901 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("gap %v", tt.gap), func(t *testing.T) {
			clk := &fakeClock{t: start}
			p := newTestPolicy(Config{MinConfidence: 45, Cooldown: 900 * time.Second, MaxHourlySignals: 100}, clk)

			require.True(t, p.Evaluate(strongCandidate("BTC_USDT")).Accepted)

			clk.advance(tt.gap)
			d := p.Evaluate(strongCandidate("BTC_USDT"))
			assert.Equal(t, tt.wantSecond, d.Accepted)
			if !tt.wantSecond {
				assert.Equal(t, ReasonCooldown, d.Reason)
			}
		})
	}
}

func TestCooldownKeyedBySymbolAndType(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)}
	p := newTestPolicy(Config{MinConfidence: 45, Cooldown: 15 * time.Minute, MaxHourlySignals: 100}, clk)

	require.True(t, p.Evaluate(strongCandidate("BTC_USDT")).Accepted)

	// different symbol, same type: unaffected
	assert.True(t, p.Evaluate(strongCandidate("ETH_USDT")).Accepted)

	// same symbol, different type: unaffected
	other := strongCandidate("BTC_USDT")
	other.Type = models.SignalBreakout
	other.Indicators = models.IndicatorSet{
		BreakoutPct: 1.5, BreakoutOK: true,
		VolumeSpike: 1.4, VolumeSpikeOK: true,
	}
	assert.True(t, p.Evaluate(other).Accepted)
}

func TestHourlyCap(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)}
	p := newTestPolicy(Config{MinConfidence: 45, Cooldown: time.Second, MaxHourlySignals: 3}, clk)

	for i := 0; i < 3; i++ {
		sym := fmt.Sprintf("SYM%d_USDT", i)
		require.True(t, p.Evaluate(strongCandidate(sym)).Accepted)
	}
	assert.True(t, p.HourlyCapReached())

	d := p.Evaluate(strongCandidate("LATE_USDT"))
	assert.False(t, d.Accepted)
	assert.Equal(t, ReasonHourlyCap, d.Reason)

	// bucket clears when the wall-clock hour changes
	clk.advance(time.Hour)
	assert.False(t, p.HourlyCapReached())
	assert.True(t, p.Evaluate(strongCandidate("LATE_USDT")).Accepted)
}

func TestRejectionHasNoSideEffects(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)}
	p := newTestPolicy(Config{MinConfidence: 45, Cooldown: 15 * time.Minute, MaxHourlySignals: 1}, clk)

	low := strongCandidate("BTC_USDT")
	low.Confidence.Score = 10
	require.False(t, p.Evaluate(low).Accepted)

	// the rejection neither consumed the hourly budget nor armed a cooldown
	assert.True(t, p.Evaluate(strongCandidate("BTC_USDT")).Accepted)
}
