package models

// Requests for scanner HTTP endpoints. Defined in domain for consistency and reuse.

type SignalsRequest struct {
	Limit int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
	Type  string `query:"type" json:"type" validate:"omitempty,oneof=RSI_OVERSOLD RSI_OVERBOUGHT BREAKOUT VOLUME_SPIKE MOMENTUM MULTI_FACTOR"`
}

type VolumeFlowRequest struct {
	Pair   string `query:"pair" json:"pair" validate:"required"`
	Period string `query:"period" json:"period" default:"1h" validate:"oneof=1m 5m 10m 15m 30m 1h 2h 6h 12h 24h"`
}

type ListingsRequest struct {
	Limit int `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
