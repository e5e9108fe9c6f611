package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseWatch/internal/domain/models"
	"PulseWatch/internal/services/history"
)

type fakeStream struct {
	tickCh chan *models.Ticker
	errCh  chan error

	connected  atomic.Bool
	reconnects atomic.Int32
	subscribed []string
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		tickCh: make(chan *models.Ticker, 16),
		errCh:  make(chan error, 1),
	}
}

func (f *fakeStream) Connect(ctx context.Context) error {
	f.connected.Store(true)
	return nil
}

func (f *fakeStream) Subscribe(ctx context.Context, symbols []string) error {
	f.subscribed = symbols
	return nil
}

func (f *fakeStream) Read(ctx context.Context) (<-chan *models.Ticker, <-chan error) {
	return f.tickCh, f.errCh
}

func (f *fakeStream) Reconnect(ctx context.Context) error {
	f.reconnects.Add(1)
	return nil
}

func (f *fakeStream) Close() error {
	f.connected.Store(false)
	return nil
}

func (f *fakeStream) IsConnected() bool { return f.connected.Load() }

func TestStreamCollectorFeedsHistory(t *testing.T) {
	hist := history.NewStore(100)
	fs := newFakeStream()
	c := NewStreamCollector(fs, []string{"BTC_USDT", "ETH_USDT"}, hist, time.Hour, newStubMetrics(), testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))
	assert.Equal(t, []string{"BTC_USDT", "ETH_USDT"}, fs.subscribed)
	assert.True(t, c.IsConnected())

	fs.tickCh <- &models.Ticker{Symbol: "BTC_USDT", LastPrice: 64_000, BaseVolume: 1500}
	require.Eventually(t, func() bool { return hist.Len("BTC_USDT") == 1 }, time.Second, 5*time.Millisecond)

	w := hist.Window("BTC_USDT")
	assert.InDelta(t, 64_000, w[0].Price, 1e-9)
	assert.InDelta(t, 1500, w[0].Volume, 1e-9)

	// a second tick inside the sample interval updates metrics only
	fs.tickCh <- &models.Ticker{Symbol: "BTC_USDT", LastPrice: 64_050, BaseVolume: 1501}
	fs.tickCh <- &models.Ticker{Symbol: "ETH_USDT", LastPrice: 3100, BaseVolume: 900}
	require.Eventually(t, func() bool { return hist.Len("ETH_USDT") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, hist.Len("BTC_USDT"))

	require.NoError(t, c.Stop())
	assert.False(t, c.IsConnected())
}

func TestStreamCollectorReconnectsOnError(t *testing.T) {
	hist := history.NewStore(100)
	fs := newFakeStream()
	c := NewStreamCollector(fs, []string{"BTC_USDT"}, hist, time.Hour, newStubMetrics(), testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))

	fs.errCh <- errors.New("connection reset")
	require.Eventually(t, func() bool { return fs.reconnects.Load() == 1 }, time.Second, 5*time.Millisecond)

	// the feed keeps flowing after the reconnect
	fs.tickCh <- &models.Ticker{Symbol: "BTC_USDT", LastPrice: 64_000, BaseVolume: 1500}
	require.Eventually(t, func() bool { return hist.Len("BTC_USDT") == 1 }, time.Second, 5*time.Millisecond)
}
