package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseWatch/internal/domain/models"
	drepo "PulseWatch/internal/domain/repository"
	"PulseWatch/internal/services/history"
	"PulseWatch/internal/services/indicators"
	"PulseWatch/internal/services/policy"
	"PulseWatch/internal/services/recorder"
	"PulseWatch/internal/services/scoring"
	applogger "PulseWatch/pkg/logger"
)

type stubMarket struct {
	tickers []models.Ticker
	candles []models.Candle
	fills   []models.TradeFill
	err     error
}

func (m *stubMarket) ListTickers(ctx context.Context) ([]models.Ticker, error) {
	return m.tickers, m.err
}

func (m *stubMarket) Candles(ctx context.Context, symbol string, interval drepo.Interval, limit int) ([]models.Candle, error) {
	return m.candles, nil
}

func (m *stubMarket) Trades(ctx context.Context, symbol string, limit int) ([]models.TradeFill, error) {
	return m.fills, m.err
}

type captureNotifier struct {
	signals []models.Signal
}

func (n *captureNotifier) Notify(ctx context.Context, s *models.Signal) error {
	n.signals = append(n.signals, *s)
	return nil
}

func (n *captureNotifier) Close() error { return nil }

type stubMetrics struct {
	rejections map[string]int
	errors     map[string]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{rejections: make(map[string]int), errors: make(map[string]int)}
}

func (m *stubMetrics) RecordCycle(seconds float64, symbols int)     {}
func (m *stubMetrics) RecordSignal(signalType, symbol string)       {}
func (m *stubMetrics) RecordRejection(reason string)                { m.rejections[reason]++ }
func (m *stubMetrics) RecordError(kind string)                      { m.errors[kind]++ }
func (m *stubMetrics) RecordLastPrice(symbol string, price float64) {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	return l
}

// oversoldPrices builds a 20-sample price path whose last 15 points give
// an RSI near 22: ten drops of 1.0 against four recoveries of 0.705.
func oversoldPrices() []float64 {
	prices := []float64{111, 112, 113, 112, 111, 110}
	diffs := []float64{-1, -1, -1, 0.705, -1, -1, -1, 0.705, -1, -1, -1, 0.705, -1, 0.705}
	for _, d := range diffs {
		prices = append(prices, prices[len(prices)-1]+d)
	}
	return prices
}

func newTestScanner(market drepo.MarketData, hist *history.Store, notifier drepo.Notifier, metrics drepo.Metrics, t *testing.T) (*Scanner, *recorder.Recorder) {
	profile := scoring.DefaultProfile()
	rec := recorder.New(50)
	s := NewScanner(
		market,
		hist,
		indicators.NewEngine(),
		scoring.NewScorer(profile),
		policy.New(policy.Config{MinConfidence: 45, Cooldown: 15 * time.Minute, MaxHourlySignals: 6}, profile),
		rec,
		notifier,
		metrics,
		testLogger(t),
		ScannerConfig{QuoteSuffix: "_USDT", Workers: 4, MinVolumeUSD: 250, CycleDeadline: time.Minute},
	)
	return s, rec
}

func TestScanEmitsOversoldSignal(t *testing.T) {
	prices := oversoldPrices()
	last := prices[len(prices)-1]

	hist := history.NewStore(100)
	now := time.Now()
	for i, p := range prices[:len(prices)-1] {
		hist.Add("AAA_USDT", p, 100, now.Add(time.Duration(i)*time.Minute))
	}

	market := &stubMarket{tickers: []models.Ticker{
		{Symbol: "AAA_USDT", LastPrice: last, ChangePct24h: -5.0, BaseVolume: 220, QuoteVolume: 50_000},
		{Symbol: "BBB_USDT", LastPrice: 1.23, ChangePct24h: 0.4, BaseVolume: 900, QuoteVolume: 10_000},
		{Symbol: "CCC_USDT", LastPrice: 0.002, ChangePct24h: 40, BaseVolume: 50, QuoteVolume: 100},
		{Symbol: "DDD_BTC", LastPrice: 0.5, ChangePct24h: -6, BaseVolume: 10, QuoteVolume: 90_000},
	}}
	notifier := &captureNotifier{}
	metrics := newStubMetrics()

	s, rec := newTestScanner(market, hist, notifier, metrics, t)
	s.Scan(context.Background())

	require.Len(t, notifier.signals, 1)
	sig := notifier.signals[0]
	assert.Equal(t, "AAA_USDT", sig.Symbol)
	assert.Equal(t, models.SignalRSIOversold, sig.Type)
	assert.Equal(t, models.Long, sig.Direction)
	assert.GreaterOrEqual(t, sig.Confidence.Score, 51)
	assert.True(t, sig.Indicators.RSIOK)
	assert.InDelta(t, 22.0, sig.Indicators.RSI, 0.5)
	assert.InDelta(t, 2.2, sig.Indicators.VolumeSpike, 0.01)
	assert.Equal(t, last, sig.Levels.Entry)
	assert.NotEmpty(t, sig.Confidence.Factors)
	assert.False(t, sig.Sustained)

	assert.Equal(t, 1, rec.Len())
	assert.False(t, s.Running())

	// the one-sample and filtered pairs never became candidates
	assert.Equal(t, 0, hist.Len("CCC_USDT"))
	assert.Equal(t, 0, hist.Len("DDD_BTC"))
	assert.Equal(t, 1, hist.Len("BBB_USDT"))
}

func TestScanCooldownSuppressesRepeat(t *testing.T) {
	prices := oversoldPrices()
	last := prices[len(prices)-1]

	hist := history.NewStore(100)
	now := time.Now()
	for i, p := range prices[:len(prices)-1] {
		hist.Add("AAA_USDT", p, 100, now.Add(time.Duration(i)*time.Minute))
	}

	market := &stubMarket{tickers: []models.Ticker{
		{Symbol: "AAA_USDT", LastPrice: last, ChangePct24h: -5.0, BaseVolume: 220, QuoteVolume: 50_000},
	}}
	notifier := &captureNotifier{}
	metrics := newStubMetrics()

	s, _ := newTestScanner(market, hist, notifier, metrics, t)
	s.Scan(context.Background())
	require.Len(t, notifier.signals, 1)

	// condition persists next cycle but the cooldown holds it back
	s.Scan(context.Background())
	assert.Len(t, notifier.signals, 1)
	assert.Equal(t, 1, metrics.rejections[policy.ReasonCooldown])
}

func TestScanInsufficientHistoryIsQuiet(t *testing.T) {
	hist := history.NewStore(100)
	market := &stubMarket{tickers: []models.Ticker{
		{Symbol: "NEW_USDT", LastPrice: 3.5, ChangePct24h: 12, BaseVolume: 5000, QuoteVolume: 17_500},
	}}
	notifier := &captureNotifier{}

	s, rec := newTestScanner(market, hist, notifier, newStubMetrics(), t)
	s.Scan(context.Background())

	assert.Empty(t, notifier.signals)
	assert.Equal(t, 0, rec.Len())
	assert.Equal(t, 1, hist.Len("NEW_USDT"))
}

func TestScanWarmsUpNewSymbolFromCandles(t *testing.T) {
	prices := oversoldPrices()
	last := prices[len(prices)-1]

	// per-bar candle volumes are tiny next to the ticker's cumulative
	// 24h volume; warmup must not mix the two units
	bucket := time.Now().Add(-2 * time.Hour)
	candles := make([]models.Candle, 0, len(prices)-1)
	for i, p := range prices[:len(prices)-1] {
		candles = append(candles, models.Candle{
			Bucket: bucket.Add(time.Duration(i) * 5 * time.Minute),
			Close:  p,
			Volume: 100,
		})
	}

	market := &stubMarket{
		tickers: []models.Ticker{
			{Symbol: "AAA_USDT", LastPrice: last, ChangePct24h: -5.0, BaseVolume: 28_800, QuoteVolume: 50_000},
		},
		candles: candles,
	}
	notifier := &captureNotifier{}
	metrics := newStubMetrics()

	hist := history.NewStore(100)
	s, _ := newTestScanner(market, hist, notifier, metrics, t)
	s.cfg.CandleInterval = drepo.IV5m
	s.cfg.CandleLimit = len(candles)

	s.Scan(context.Background())

	// price history is backfilled in one cycle
	require.Equal(t, len(prices), hist.Len("AAA_USDT"))
	window := hist.Window("AAA_USDT")
	assert.InDelta(t, prices[0], window[0].Price, 1e-9)
	assert.InDelta(t, last, window[len(window)-1].Price, 1e-9)

	// the seeded volume baseline is neutral: no fabricated spike from
	// dividing 24h volume by per-bar candle volumes
	ind := indicators.NewEngine().Compute(window, -5.0)
	assert.InDelta(t, 1.0, ind.VolumeSpike, 0.01)

	// oversold alone has no volume backing yet, so nothing emits
	assert.Empty(t, notifier.signals)
	assert.Equal(t, 1, metrics.rejections[policy.ReasonNoQualityCondition])
}

func TestScanLeavesStreamedWindowsToCollector(t *testing.T) {
	hist := history.NewStore(100)
	market := &stubMarket{tickers: []models.Ticker{
		{Symbol: "BTC_USDT", LastPrice: 64_000, ChangePct24h: 1.2, BaseVolume: 1500, QuoteVolume: 90_000_000},
		{Symbol: "AAA_USDT", LastPrice: 2.5, ChangePct24h: 0.5, BaseVolume: 400, QuoteVolume: 1_000},
	}}
	profile := scoring.DefaultProfile()
	s := NewScanner(
		market,
		hist,
		indicators.NewEngine(),
		scoring.NewScorer(profile),
		policy.New(policy.Config{MinConfidence: 45, Cooldown: 15 * time.Minute, MaxHourlySignals: 6}, profile),
		recorder.New(50),
		&captureNotifier{},
		newStubMetrics(),
		testLogger(t),
		ScannerConfig{QuoteSuffix: "_USDT", Workers: 2, MinVolumeUSD: 250, StreamSymbols: []string{"BTC_USDT"}},
	)

	s.Scan(context.Background())

	// the live stream owns BTC's window; the cycle only samples AAA
	assert.Equal(t, 0, hist.Len("BTC_USDT"))
	assert.Equal(t, 1, hist.Len("AAA_USDT"))
}

func TestScanTickersFetchFailureAborts(t *testing.T) {
	hist := history.NewStore(100)
	market := &stubMarket{err: errors.New("gateway timeout")}
	notifier := &captureNotifier{}
	metrics := newStubMetrics()

	s, _ := newTestScanner(market, hist, notifier, metrics, t)
	s.Scan(context.Background())

	assert.Empty(t, notifier.signals)
	assert.Equal(t, 1, metrics.errors["list_tickers"])
	assert.False(t, s.Running())
}
