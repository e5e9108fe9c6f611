package usecase

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"PulseWatch/internal/domain/models"
	drepo "PulseWatch/internal/domain/repository"
	"PulseWatch/internal/services/history"
	"PulseWatch/internal/services/indicators"
	"PulseWatch/internal/services/policy"
	"PulseWatch/internal/services/recorder"
	"PulseWatch/internal/services/scoring"
	applogger "PulseWatch/pkg/logger"
)

const (
	stateIdle int32 = iota
	stateRunning
)

// ScannerConfig tunes one scan cycle.
type ScannerConfig struct {
	QuoteSuffix        string
	Workers            int
	MinVolumeUSD       float64
	CycleDeadline      time.Duration
	MaxSymbolsPerCycle int // 0 means unlimited

	// CandleLimit > 0 enables history warmup from candles for symbols
	// seen for the first time.
	CandleInterval drepo.Interval
	CandleLimit    int

	// StreamSymbols are fed into the history store by the live ticker
	// stream; the scan cycle leaves their windows alone so they are not
	// sampled twice per interval.
	StreamSymbols []string
}

// Scanner runs the per-cycle pipeline: fetch tickers, update rolling
// history, compute indicators, score, gate, emit. Cycles never overlap;
// a tick that fires while a cycle is running is dropped.
type Scanner struct {
	market   drepo.MarketData
	hist     *history.Store
	engine   *indicators.Engine
	scorer   *scoring.Scorer
	policy   *policy.Policy
	recorder *recorder.Recorder
	notifier drepo.Notifier
	metrics  drepo.Metrics
	logger   *applogger.Logger
	cfg      ScannerConfig
	streamed map[string]struct{}

	state int32

	// activeKeys holds the (symbol, type) pairs that produced a candidate
	// in the previous cycle, for the sustained flag.
	mu         sync.Mutex
	activeKeys map[candidateKey]struct{}
}

type candidateKey struct {
	symbol string
	typ    models.SignalType
}

// NewScanner creates the scan pipeline.
func NewScanner(
	market drepo.MarketData,
	hist *history.Store,
	engine *indicators.Engine,
	scorer *scoring.Scorer,
	pol *policy.Policy,
	rec *recorder.Recorder,
	notifier drepo.Notifier,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	cfg ScannerConfig,
) *Scanner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	streamed := make(map[string]struct{}, len(cfg.StreamSymbols))
	for _, sym := range cfg.StreamSymbols {
		streamed[sym] = struct{}{}
	}
	return &Scanner{
		market:     market,
		hist:       hist,
		engine:     engine,
		scorer:     scorer,
		policy:     pol,
		recorder:   rec,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		streamed:   streamed,
		activeKeys: make(map[candidateKey]struct{}),
	}
}

// Running reports whether a cycle is in flight.
func (s *Scanner) Running() bool {
	return atomic.LoadInt32(&s.state) == stateRunning
}

// Scan runs one cycle. Returns immediately if a cycle is already
// running. Per-symbol failures skip the symbol; only a tickers fetch
// failure aborts the cycle.
func (s *Scanner) Scan(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&s.state, stateIdle, stateRunning) {
		s.logger.Warn("scan: previous cycle still running, skipping tick")
		s.metrics.RecordRejection("cycle_overlap")
		return
	}
	defer atomic.StoreInt32(&s.state, stateIdle)

	if s.cfg.CycleDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CycleDeadline)
		defer cancel()
	}

	start := time.Now()

	tickers, err := s.market.ListTickers(ctx)
	if err != nil {
		s.logger.Error("scan: list tickers", applogger.Error(err))
		s.metrics.RecordError("list_tickers")
		return
	}

	eligible := s.filter(tickers)

	if s.cfg.CandleLimit > 0 {
		s.warmupNew(ctx, eligible)
	}

	now := time.Now()
	for _, t := range eligible {
		// the live stream owns the sample cadence for its symbols
		if _, ok := s.streamed[t.Symbol]; !ok {
			s.hist.Add(t.Symbol, t.LastPrice, t.BaseVolume, now)
		}
		s.metrics.RecordLastPrice(t.Symbol, t.LastPrice)
	}

	candidates := s.evaluate(ctx, eligible)

	nextActive := make(map[candidateKey]struct{}, len(candidates))
	emitted := 0
	for _, c := range candidates {
		key := candidateKey{symbol: c.Symbol, typ: c.Type}
		nextActive[key] = struct{}{}

		if s.policy.HourlyCapReached() {
			s.metrics.RecordRejection(policy.ReasonHourlyCap)
			continue
		}
		decision := s.policy.Evaluate(c)
		if !decision.Accepted {
			s.metrics.RecordRejection(decision.Reason)
			continue
		}

		sig := s.buildSignal(c, key)
		s.emit(ctx, sig)
		emitted++
	}

	s.mu.Lock()
	s.activeKeys = nextActive
	s.mu.Unlock()

	elapsed := time.Since(start)
	s.metrics.RecordCycle(elapsed.Seconds(), len(eligible))
	s.logger.Info("scan: cycle done",
		applogger.Int("symbols", len(eligible)),
		applogger.Int("candidates", len(candidates)),
		applogger.Int("emitted", emitted),
		applogger.Duration("elapsed", elapsed),
	)
}

// filter keeps quote-suffix pairs above the liquidity floor.
func (s *Scanner) filter(tickers []models.Ticker) []models.Ticker {
	out := make([]models.Ticker, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, s.cfg.QuoteSuffix) {
			continue
		}
		if t.QuoteVolume < s.cfg.MinVolumeUSD {
			continue
		}
		if t.LastPrice <= 0 {
			continue
		}
		out = append(out, t)
		if s.cfg.MaxSymbolsPerCycle > 0 && len(out) >= s.cfg.MaxSymbolsPerCycle {
			break
		}
	}
	return out
}

// warmupNew backfills price history from candles for symbols with no
// window yet, so new or newly eligible pairs do not spend dozens of
// cycles warming up. Runs before the cycle's ticker samples are
// appended.
//
// Volume history is seeded flat with the ticker's current 24h volume,
// not with per-bar candle volumes. Cycle samples carry cumulative 24h
// volume, so mixing in per-bar volumes would shrink the baseline and
// fabricate an enormous spike on the first post-warmup cycle. A flat
// seed reads as spike 1.0 until real ticker samples accumulate.
func (s *Scanner) warmupNew(ctx context.Context, tickers []models.Ticker) {
	var fresh []models.Ticker
	for _, t := range tickers {
		if s.hist.Len(t.Symbol) == 0 {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) == 0 {
		return
	}

	jobs := make(chan models.Ticker)
	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				candles, err := s.market.Candles(ctx, t.Symbol, s.cfg.CandleInterval, s.cfg.CandleLimit)
				if err != nil {
					s.metrics.RecordError("candles")
					continue
				}
				samples := make([]models.Sample, 0, len(candles))
				for _, c := range candles {
					samples = append(samples, models.Sample{Price: c.Close, Volume: t.BaseVolume, Timestamp: c.Bucket})
				}
				s.hist.Seed(t.Symbol, samples)
			}
		}()
	}

feed:
	for _, t := range fresh {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- t:
		}
	}
	close(jobs)
	wg.Wait()
}

// evaluate fans symbols over a worker pool and collects candidates.
func (s *Scanner) evaluate(ctx context.Context, tickers []models.Ticker) []*models.SignalCandidate {
	jobs := make(chan models.Ticker)
	results := make(chan *models.SignalCandidate, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				if c := s.evaluateSymbol(t); c != nil {
					results <- c
				}
			}
		}()
	}

feed:
	for _, t := range tickers {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- t:
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make([]*models.SignalCandidate, 0, len(results))
	for c := range results {
		out = append(out, c)
	}
	return out
}

// evaluateSymbol computes indicators and a score for one symbol.
// Returns nil when nothing classifiable fired.
func (s *Scanner) evaluateSymbol(t models.Ticker) *models.SignalCandidate {
	window := s.hist.Window(t.Symbol)
	if len(window) < 2 {
		return nil
	}

	ind := s.engine.Compute(window, t.ChangePct24h)
	conf := s.scorer.Score(ind)
	if conf.Score == 0 {
		return nil
	}
	typ, dir := s.scorer.Classify(ind)
	if typ == "" {
		return nil
	}

	return &models.SignalCandidate{
		Symbol:     t.Symbol,
		Price:      t.LastPrice,
		Indicators: ind,
		Confidence: conf,
		Type:       typ,
		Direction:  dir,
	}
}

func (s *Scanner) buildSignal(c *models.SignalCandidate, key candidateKey) *models.Signal {
	s.mu.Lock()
	_, sustained := s.activeKeys[key]
	s.mu.Unlock()

	return &models.Signal{
		Symbol:     c.Symbol,
		Type:       c.Type,
		Direction:  c.Direction,
		Price:      c.Price,
		Indicators: c.Indicators,
		Confidence: c.Confidence,
		Levels:     scoring.Levels(c.Price, c.Type, c.Direction),
		Sustained:  sustained,
		EmittedAt:  time.Now().UTC(),
	}
}

// emit records and delivers one signal. Delivery failures are logged
// and counted but never fail the cycle.
func (s *Scanner) emit(ctx context.Context, sig *models.Signal) {
	s.recorder.Record(*sig)
	s.metrics.RecordSignal(string(sig.Type), sig.Symbol)
	s.logger.Info("signal emitted",
		applogger.String("symbol", sig.Symbol),
		applogger.String("type", string(sig.Type)),
		applogger.String("direction", string(sig.Direction)),
		applogger.Int("confidence", sig.Confidence.Score),
		applogger.Bool("sustained", sig.Sustained),
	)

	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, sig); err != nil {
		s.logger.Error("signal delivery", applogger.String("symbol", sig.Symbol), applogger.Error(err))
		s.metrics.RecordError("notify")
	}
}
