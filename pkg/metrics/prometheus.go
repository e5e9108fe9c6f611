package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal   prometheus.Counter
	cycleSymbols  prometheus.Gauge
	cycleDuration prometheus.Histogram
	signalsTotal  *prometheus.CounterVec
	rejectedTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pulsewatch_scan_cycles_total",
				Help: "Total number of completed scan cycles",
			},
		),
		cycleSymbols: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulsewatch_scan_symbols",
				Help: "Number of symbols scanned in the last cycle",
			},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pulsewatch_scan_cycle_seconds",
				Help:    "Duration of a full scan cycle in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsewatch_signals_emitted_total",
				Help: "Total signals emitted, by type and symbol",
			},
			[]string{"type", "symbol"},
		),
		rejectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsewatch_signals_rejected_total",
				Help: "Total candidates rejected by the signal policy, by reason",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsewatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pulsewatch_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordCycle records a completed scan cycle.
func (r *Recorder) RecordCycle(seconds float64, symbols int) {
	r.cyclesTotal.Inc()
	r.cycleSymbols.Set(float64(symbols))
	r.cycleDuration.Observe(seconds)
}

// RecordSignal records an emitted signal.
func (r *Recorder) RecordSignal(signalType, symbol string) {
	r.signalsTotal.WithLabelValues(signalType, symbol).Inc()
}

// RecordRejection records a policy rejection.
func (r *Recorder) RecordRejection(reason string) {
	r.rejectedTotal.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}
