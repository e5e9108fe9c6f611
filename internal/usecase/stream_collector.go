package usecase

import (
	"context"
	"time"

	"PulseWatch/internal/domain/models"
	drepo "PulseWatch/internal/domain/repository"
	"PulseWatch/internal/services/history"
	applogger "PulseWatch/pkg/logger"
)

// StreamCollector feeds the rolling history store and last-price metrics
// from the live ticker feed between scan cycles. Samples are throttled
// to one per sampleEvery per symbol so streamed windows keep the same
// cadence the indicators assume for scanned symbols.
type StreamCollector struct {
	stream      drepo.TickerStream
	symbols     []string
	hist        *history.Store
	sampleEvery time.Duration
	metrics     drepo.Metrics
	logger      *applogger.Logger
}

// NewStreamCollector creates a collector over the given stream.
func NewStreamCollector(stream drepo.TickerStream, symbols []string, hist *history.Store, sampleEvery time.Duration, metrics drepo.Metrics, l *applogger.Logger) *StreamCollector {
	if sampleEvery <= 0 {
		sampleEvery = time.Minute
	}
	return &StreamCollector{
		stream:      stream,
		symbols:     symbols,
		hist:        hist,
		sampleEvery: sampleEvery,
		metrics:     metrics,
		logger:      l,
	}
}

// IsConnected returns true if the underlying stream is connected.
func (c *StreamCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes, and consumes in the background.
func (c *StreamCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx, c.symbols); err != nil {
		return err
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *StreamCollector) consume(ctx context.Context, tickCh <-chan *models.Ticker, errCh <-chan error) {
	lastSample := make(map[string]time.Time, len(c.symbols))
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.logger.Warn("ticker stream error, reconnecting", applogger.Error(err))
				c.metrics.RecordError("stream")
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.logger.Error("ticker stream reconnect failed", applogger.Error(rerr))
					return
				}
				tickCh, errCh = c.stream.Read(ctx)
			}
		case t := <-tickCh:
			if t == nil {
				continue
			}
			c.metrics.RecordLastPrice(t.Symbol, t.LastPrice)
			now := time.Now()
			if now.Sub(lastSample[t.Symbol]) < c.sampleEvery {
				continue
			}
			c.hist.Add(t.Symbol, t.LastPrice, t.BaseVolume, now)
			lastSample[t.Symbol] = now
		}
	}
}

// Stop closes the stream.
func (c *StreamCollector) Stop() error { return c.stream.Close() }
