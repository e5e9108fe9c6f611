package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseWatch/internal/domain/models"
)

func TestListingWatcherColdStartSeedsSilently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_pairs.json")
	market := &stubMarket{tickers: []models.Ticker{
		{Symbol: "BTC_USDT"}, {Symbol: "ETH_USDT"},
	}}

	w, err := NewListingWatcher(market, path, testLogger(t))
	require.NoError(t, err)

	require.NoError(t, w.Check(context.Background()))
	assert.Empty(t, w.Recent(0))
}

func TestListingWatcherDetectsNewPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_pairs.json")
	market := &stubMarket{tickers: []models.Ticker{
		{Symbol: "BTC_USDT"}, {Symbol: "ETH_USDT"},
	}}

	w, err := NewListingWatcher(market, path, testLogger(t))
	require.NoError(t, err)
	require.NoError(t, w.Check(context.Background()))

	market.tickers = append(market.tickers, models.Ticker{Symbol: "PEPE_USDT"})
	require.NoError(t, w.Check(context.Background()))

	recent := w.Recent(10)
	require.Len(t, recent, 1)
	assert.Equal(t, "PEPE_USDT", recent[0].Pair)
	assert.False(t, recent[0].FirstSeen.IsZero())

	// set persisted across restarts
	w2, err := NewListingWatcher(market, path, testLogger(t))
	require.NoError(t, err)
	require.NoError(t, w2.Check(context.Background()))
	assert.Empty(t, w2.Recent(0))
}
