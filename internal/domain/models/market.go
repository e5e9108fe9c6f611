package models

import "time"

// Ticker is a 24h rolling summary for one trading pair.
type Ticker struct {
	Symbol       string
	LastPrice    float64
	ChangePct24h float64 // percent, signed
	BaseVolume   float64
	QuoteVolume  float64 // 24h volume in quote currency (USD for *_USDT pairs)
}

// Candle represents one OHLCV bar.
type Candle struct {
	Bucket time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64 // base volume
}

// TradeFill is a single executed spot trade.
type TradeFill struct {
	Price     float64
	Amount    float64
	Side      string // "buy" or "sell"
	CreatedAt time.Time
}

// Sample is one observation fed into the rolling history.
type Sample struct {
	Price     float64
	Volume    float64
	Timestamp time.Time
}

// VolumeFlow is the buy/sell split of traded quote volume over a period.
type VolumeFlow struct {
	Pair      string  `json:"pair"`
	Period    string  `json:"period"`
	BuyVolume float64 `json:"buy_volume"`
	SellVol   float64 `json:"sell_volume"`
	BuyPct    float64 `json:"buy_percentage"`
	SellPct   float64 `json:"sell_percentage"`
}

// Listing is a pair seen on the exchange for the first time.
type Listing struct {
	Pair      string    `json:"pair"`
	FirstSeen time.Time `json:"first_seen"`
}
