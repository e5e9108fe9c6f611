package models

import "time"

// SignalType classifies what triggered a signal. Resolution on acceptance
// follows priority: RSI extreme > breakout > volume spike > momentum > multi-factor.
type SignalType string

const (
	SignalRSIOversold   SignalType = "RSI_OVERSOLD"
	SignalRSIOverbought SignalType = "RSI_OVERBOUGHT"
	SignalBreakout      SignalType = "BREAKOUT"
	SignalVolumeSpike   SignalType = "VOLUME_SPIKE"
	SignalMomentum      SignalType = "MOMENTUM"
	SignalMultiFactor   SignalType = "MULTI_FACTOR"
)

// Direction is the suggested trade side.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// ConfidenceLevel buckets a confidence score.
type ConfidenceLevel string

const (
	LevelLow      ConfidenceLevel = "LOW"
	LevelMedium   ConfidenceLevel = "MEDIUM"
	LevelHigh     ConfidenceLevel = "HIGH"
	LevelVeryHigh ConfidenceLevel = "VERY_HIGH"
)

// IndicatorSet holds one cycle's indicator outputs for a symbol.
// RSI, VolumeSpike and BreakoutPct carry an ok flag because each is
// undefined until enough history has accumulated; Momentum is 0 instead.
type IndicatorSet struct {
	RSI           float64 `json:"rsi"`
	RSIOK         bool    `json:"rsi_ok"`
	VolumeSpike   float64 `json:"volume_spike"`
	VolumeSpikeOK bool    `json:"volume_spike_ok"`
	BreakoutPct   float64 `json:"breakout_pct"` // signed: >0 above prior high, <0 below prior low
	BreakoutOK    bool    `json:"breakout_ok"`
	MomentumPct   float64 `json:"momentum_pct"`
	ChangePct24h  float64 `json:"change_pct_24h"`
}

// ConfidenceResult is the scored outcome for one candidate.
type ConfidenceResult struct {
	Score   int             `json:"score"` // always in [0,100]
	Level   ConfidenceLevel `json:"level"`
	Factors []string        `json:"factors"`
}

// TradingLevels are suggested entry/exit prices derived from the entry
// price and signal type via a fixed multiplier table.
type TradingLevels struct {
	Entry      float64 `json:"entry"`
	TP1        float64 `json:"tp1"`
	TP2        float64 `json:"tp2"`
	TP3        float64 `json:"tp3"`
	StopLoss   float64 `json:"stop_loss"`
	RiskReward string  `json:"risk_reward"`
}

// SignalCandidate is a scored symbol awaiting the policy decision.
type SignalCandidate struct {
	Symbol     string
	Price      float64
	Indicators IndicatorSet
	Confidence ConfidenceResult
	Type       SignalType
	Direction  Direction
}

// Signal is a candidate that passed all policy gates, ready for delivery.
type Signal struct {
	Symbol     string           `json:"symbol"`
	Type       SignalType       `json:"type"`
	Direction  Direction        `json:"direction"`
	Price      float64          `json:"price"`
	Indicators IndicatorSet     `json:"indicators"`
	Confidence ConfidenceResult `json:"confidence"`
	Levels     TradingLevels    `json:"levels"`
	Sustained  bool             `json:"sustained"`
	EmittedAt  time.Time        `json:"emitted_at"`
}
