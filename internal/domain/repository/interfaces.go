package repository

import (
	"context"

	"PulseWatch/internal/domain/models"
)

// MarketData is the exchange-facing collaborator the scanner reads from.
// Every call may fail per symbol; callers skip the symbol for the cycle.
type MarketData interface {
	ListTickers(ctx context.Context) ([]models.Ticker, error)
	Candles(ctx context.Context, symbol string, interval Interval, limit int) ([]models.Candle, error)
	Trades(ctx context.Context, symbol string, limit int) ([]models.TradeFill, error)
}

// TickerStream is a live ticker feed used between scan cycles.
type TickerStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbols []string) error
	Read(ctx context.Context) (<-chan *models.Ticker, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Notifier delivers an emitted signal. Delivery formatting is the
// implementation's concern; failures never abort the scan cycle.
type Notifier interface {
	Notify(ctx context.Context, s *models.Signal) error
	Close() error
}

type Metrics interface {
	RecordCycle(seconds float64, symbols int)
	RecordSignal(signalType, symbol string)
	RecordRejection(reason string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
}
