package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseWatch/internal/domain/models"
)

func TestVolumeFlowSplit(t *testing.T) {
	now := time.Now()
	market := &stubMarket{fills: []models.TradeFill{
		{Price: 10, Amount: 30, Side: "buy", CreatedAt: now.Add(-1 * time.Minute)},
		{Price: 10, Amount: 45, Side: "buy", CreatedAt: now.Add(-2 * time.Minute)},
		{Price: 10, Amount: 25, Side: "sell", CreatedAt: now.Add(-3 * time.Minute)},
		// outside the 5m window, ignored
		{Price: 10, Amount: 999, Side: "sell", CreatedAt: now.Add(-20 * time.Minute)},
	}}

	flow, err := NewVolumeFlow(market, 250).Flow(context.Background(), "BTC_USDT", "5m")
	require.NoError(t, err)

	assert.Equal(t, "BTC_USDT", flow.Pair)
	assert.Equal(t, "5m", flow.Period)
	assert.InDelta(t, 750, flow.BuyVolume, 1e-9)
	assert.InDelta(t, 250, flow.SellVol, 1e-9)
	assert.InDelta(t, 75, flow.BuyPct, 1e-9)
	assert.InDelta(t, 25, flow.SellPct, 1e-9)
}

func TestVolumeFlowBelowFloorReadsZero(t *testing.T) {
	now := time.Now()
	market := &stubMarket{fills: []models.TradeFill{
		{Price: 10, Amount: 6, Side: "buy", CreatedAt: now.Add(-1 * time.Minute)},
		{Price: 10, Amount: 4, Side: "sell", CreatedAt: now.Add(-2 * time.Minute)},
	}}

	// $100 traded against a $250 floor
	flow, err := NewVolumeFlow(market, 250).Flow(context.Background(), "DUST_USDT", "5m")
	require.NoError(t, err)

	assert.Equal(t, "DUST_USDT", flow.Pair)
	assert.Zero(t, flow.BuyVolume)
	assert.Zero(t, flow.SellVol)
	assert.Zero(t, flow.BuyPct)
	assert.Zero(t, flow.SellPct)
}

func TestVolumeFlowNoFillsInWindow(t *testing.T) {
	market := &stubMarket{fills: []models.TradeFill{
		{Price: 5, Amount: 100, Side: "buy", CreatedAt: time.Now().Add(-2 * time.Hour)},
	}}

	flow, err := NewVolumeFlow(market, 250).Flow(context.Background(), "ETH_USDT", "15m")
	require.NoError(t, err)

	assert.Zero(t, flow.BuyVolume)
	assert.Zero(t, flow.SellVol)
	assert.Zero(t, flow.BuyPct)
	assert.Zero(t, flow.SellPct)
}
