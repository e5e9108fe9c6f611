package indicators

import (
	"math"

	"github.com/montanaflynn/stats"

	"PulseWatch/internal/domain/models"
)

// Engine computes technical indicators over a symbol's rolling window.
// All methods are pure functions of the given samples; an indicator that
// lacks history reports ok=false and contributes nothing downstream.
type Engine struct {
	rsiPeriod        int
	momentumPeriod   int
	volumeBaseline   int
	breakoutLookback int
}

type Option func(*Engine)

// WithRSIPeriod sets the RSI lookback period.
func WithRSIPeriod(n int) Option {
	return func(e *Engine) {
		if n >= 2 {
			e.rsiPeriod = n
		}
	}
}

// WithMomentumPeriod sets the momentum lookback period.
func WithMomentumPeriod(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.momentumPeriod = n
		}
	}
}

// WithVolumeBaseline sets how many trailing samples form the volume baseline.
func WithVolumeBaseline(n int) Option {
	return func(e *Engine) {
		if n >= 2 {
			e.volumeBaseline = n
		}
	}
}

// WithBreakoutLookback sets the total samples required for breakout detection.
func WithBreakoutLookback(n int) Option {
	return func(e *Engine) {
		if n >= 3 {
			e.breakoutLookback = n
		}
	}
}

// NewEngine creates an indicator engine with default periods (RSI 14,
// momentum 10, volume baseline 10, breakout lookback 20).
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rsiPeriod:        14,
		momentumPeriod:   10,
		volumeBaseline:   10,
		breakoutLookback: 20,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute derives the full indicator set for one cycle. change24h comes
// from the ticker, not the window, and is passed through for scoring.
func (e *Engine) Compute(window []models.Sample, change24h float64) models.IndicatorSet {
	set := models.IndicatorSet{ChangePct24h: change24h}
	set.RSI, set.RSIOK = e.RSI(window)
	set.VolumeSpike, set.VolumeSpikeOK = e.VolumeSpike(window)
	set.BreakoutPct, set.BreakoutOK = e.Breakout(window)
	set.MomentumPct = e.Momentum(window)
	return set
}

// RSI computes the Relative Strength Index over the configured period.
// Requires period+1 samples; ok=false otherwise. When there are no losses
// over the period RSI is 100, or 50 if there are no gains either.
func (e *Engine) RSI(window []models.Sample) (float64, bool) {
	if len(window) < e.rsiPeriod+1 {
		return 0, false
	}

	prices := window[len(window)-(e.rsiPeriod+1):]
	var gains, losses float64
	for i := 1; i < len(prices); i++ {
		delta := prices[i].Price - prices[i-1].Price
		if delta > 0 {
			gains += delta
		} else {
			losses += -delta
		}
	}

	avgGain := gains / float64(e.rsiPeriod)
	avgLoss := losses / float64(e.rsiPeriod)
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, true
		}
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// VolumeSpike returns the ratio of the latest volume sample to the mean of
// the preceding baseline samples. ok=false on insufficient history or a
// zero baseline.
func (e *Engine) VolumeSpike(window []models.Sample) (float64, bool) {
	if len(window) < e.volumeBaseline+1 {
		return 0, false
	}

	latest := window[len(window)-1].Volume
	baseline := window[len(window)-(e.volumeBaseline+1) : len(window)-1]
	vols := make([]float64, len(baseline))
	for i, s := range baseline {
		vols[i] = s.Volume
	}

	mean, err := stats.Mean(vols)
	if err != nil || mean == 0 {
		return 0, false
	}
	return latest / mean, true
}

// Breakout compares the latest price to the high/low of the preceding
// lookback-1 samples. Positive pct means a close above the prior high,
// negative below the prior low, 0 means price stayed inside the range.
func (e *Engine) Breakout(window []models.Sample) (float64, bool) {
	if len(window) < e.breakoutLookback {
		return 0, false
	}

	latest := window[len(window)-1].Price
	prior := window[len(window)-e.breakoutLookback : len(window)-1]

	high := math.Inf(-1)
	low := math.Inf(1)
	for _, s := range prior {
		if s.Price > high {
			high = s.Price
		}
		if s.Price < low {
			low = s.Price
		}
	}

	switch {
	case high > 0 && latest > high:
		return (latest - high) / high * 100, true
	case low > 0 && latest < low:
		return (latest - low) / low * 100, true
	default:
		return 0, true
	}
}

// Momentum returns the percentage change between the latest price and the
// price momentumPeriod samples back. Returns 0 (not undefined) when the
// window is too short; callers rely on that exact behavior.
func (e *Engine) Momentum(window []models.Sample) float64 {
	if len(window) < e.momentumPeriod+1 {
		return 0
	}

	latest := window[len(window)-1].Price
	past := window[len(window)-(e.momentumPeriod+1)].Price
	if past == 0 {
		return 0
	}
	return (latest - past) / past * 100
}
