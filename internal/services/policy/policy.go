package policy

import (
	"math"
	"sync"
	"time"

	"PulseWatch/internal/domain/models"
	"PulseWatch/internal/services/scoring"
	"PulseWatch/pkg/util"
)

// Rejection reasons, used as metric labels and debug-log fields.
const (
	ReasonBelowMinConfidence = "below_min_confidence"
	ReasonNoQualityCondition = "no_quality_condition"
	ReasonCooldown           = "cooldown"
	ReasonHourlyCap          = "hourly_cap"
)

// Composite quality conditions. A candidate must clear at least one so a
// single borderline factor cannot emit on its own.
const (
	qualityVolumeWithRSI      = 1.30
	qualityVolumeWithBreakout = 1.25
	qualityVolumeWithMove     = 1.40
	qualityBreakoutPct        = 1.0
	qualityMovePct            = 3.5
	qualityMomentumPct        = 2.5
	neutralRSILow             = 35.0
	neutralRSIHigh            = 65.0
)

// Config holds the policy gates' settings.
type Config struct {
	MinConfidence    int
	Cooldown         time.Duration
	MaxHourlySignals int
}

// Decision is the outcome of one candidate evaluation.
type Decision struct {
	Accepted bool
	Reason   string // set on rejection
}

func accept() Decision         { return Decision{Accepted: true} }
func reject(r string) Decision { return Decision{Reason: r} }

type cooldownKey struct {
	symbol string
	typ    models.SignalType
}

// Policy decides whether a scored candidate becomes an emitted signal.
// Accepting mutates the cooldown map and hourly counter; rejecting has no
// side effect. All state is guarded by one mutex so concurrent workers
// cannot lose updates.
type Policy struct {
	cfg     Config
	profile scoring.Profile

	mu           sync.Mutex
	lastEmission map[cooldownKey]time.Time
	hourBucket   time.Time
	hourCount    int

	now func() time.Time
}

type Option func(*Policy)

// WithClock injects the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) { p.now = now }
}

func New(cfg Config, profile scoring.Profile, opts ...Option) *Policy {
	p := &Policy{
		cfg:          cfg,
		profile:      profile,
		lastEmission: make(map[cooldownKey]time.Time),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Evaluate runs the four gates in order: confidence, quality conditions,
// cooldown, hourly cap. State mutates only when all gates pass.
func (p *Policy) Evaluate(c *models.SignalCandidate) Decision {
	if c.Confidence.Score < p.cfg.MinConfidence {
		return reject(ReasonBelowMinConfidence)
	}
	if !p.qualifies(c.Indicators) {
		return reject(ReasonNoQualityCondition)
	}

	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	key := cooldownKey{symbol: c.Symbol, typ: c.Type}
	if last, ok := p.lastEmission[key]; ok && now.Sub(last) < p.cfg.Cooldown {
		return reject(ReasonCooldown)
	}

	p.rollHourLocked(now)
	if p.hourCount >= p.cfg.MaxHourlySignals {
		return reject(ReasonHourlyCap)
	}

	p.lastEmission[key] = now
	p.hourCount++
	return accept()
}

// HourlyCapReached reports whether the current hour bucket is exhausted,
// letting the pipeline short-circuit the rest of a cycle.
func (p *Policy) HourlyCapReached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rollHourLocked(p.now())
	return p.hourCount >= p.cfg.MaxHourlySignals
}

// rollHourLocked clears the counter when the wall-clock hour changes.
// Reset is lazy: it happens on the next evaluation, not on a timer.
func (p *Policy) rollHourLocked(now time.Time) {
	bucket := util.HourBucket(now)
	if !bucket.Equal(p.hourBucket) {
		p.hourBucket = bucket
		p.hourCount = 0
	}
}

// qualifies checks the composite quality conditions.
func (p *Policy) qualifies(ind models.IndicatorSet) bool {
	volume := 0.0
	if ind.VolumeSpikeOK {
		volume = ind.VolumeSpike
	}

	// strong RSI extreme backed by volume
	if ind.RSIOK && (ind.RSI <= p.profile.RSIOversold || ind.RSI >= p.profile.RSIOverbought) && volume >= qualityVolumeWithRSI {
		return true
	}

	// breakout backed by volume
	if ind.BreakoutOK && math.Abs(ind.BreakoutPct) >= qualityBreakoutPct && volume >= qualityVolumeWithBreakout {
		return true
	}

	// large 24h move backed by volume
	if math.Abs(ind.ChangePct24h) >= qualityMovePct && volume >= qualityVolumeWithMove {
		return true
	}

	// momentum push while RSI is neutral (room to run)
	if math.Abs(ind.MomentumPct) >= qualityMomentumPct && ind.RSIOK &&
		ind.RSI >= neutralRSILow && ind.RSI <= neutralRSIHigh {
		return true
	}

	return false
}
