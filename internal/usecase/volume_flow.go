package usecase

import (
	"context"
	"fmt"
	"time"

	"PulseWatch/internal/domain/models"
	drepo "PulseWatch/internal/domain/repository"
	"PulseWatch/pkg/util"
)

const flowTradeLimit = 500

// VolumeFlow splits recent traded quote volume into buy and sell sides
// over a lookback period. Totals under the liquidity floor report zeros
// so thin pairs do not show meaningless 100/0 splits.
type VolumeFlow struct {
	market      drepo.MarketData
	minTotalUSD float64
}

// NewVolumeFlow creates the volume flow usecase. minTotalUSD is the
// quote-volume floor under which a pair's flow reads as zero.
func NewVolumeFlow(market drepo.MarketData, minTotalUSD float64) *VolumeFlow {
	return &VolumeFlow{market: market, minTotalUSD: minTotalUSD}
}

// Flow computes the buy/sell split for a pair over the given period
// ("1m".."24h"). A pair with no fills inside the window, or with total
// traded volume under the floor, reports zeros.
func (v *VolumeFlow) Flow(ctx context.Context, pair, period string) (models.VolumeFlow, error) {
	fills, err := v.market.Trades(ctx, pair, flowTradeLimit)
	if err != nil {
		return models.VolumeFlow{}, fmt.Errorf("volume flow %s: %w", pair, err)
	}

	cutoff := time.Now().Add(-util.PeriodDuration(period))

	var buy, sell float64
	for _, f := range fills {
		if f.CreatedAt.Before(cutoff) {
			continue
		}
		quote := f.Price * f.Amount
		if f.Side == "buy" {
			buy += quote
		} else {
			sell += quote
		}
	}

	flow := models.VolumeFlow{Pair: pair, Period: period}
	total := buy + sell
	if total <= 0 || total < v.minTotalUSD {
		return flow, nil
	}
	flow.BuyVolume = buy
	flow.SellVol = sell
	flow.BuyPct = buy / total * 100
	flow.SellPct = sell / total * 100
	return flow, nil
}
