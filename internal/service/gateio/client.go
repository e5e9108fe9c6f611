package gateio

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"PulseWatch/internal/domain/models"
	drepo "PulseWatch/internal/domain/repository"
	"PulseWatch/internal/service/ratelimit"
	"PulseWatch/pkg/cache"
	xhttp "PulseWatch/pkg/http"
	"PulseWatch/pkg/util"
)

const rateKey = "gateio:rest"

// Client implements MarketData against the Gate.io spot REST API (v4).
// All price and volume fields arrive as JSON strings and are coerced
// here; rows that fail to parse are skipped, not fatal.
type Client struct {
	baseURL string
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	rps     float64
	burst   float64

	cache     cache.Service
	tickerTTL time.Duration
	candleTTL time.Duration
}

// Option configures Client.
type Option func(*Client)

// WithCache enables response caching for tickers and candles.
func WithCache(c cache.Service, tickerTTL, candleTTL time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.tickerTTL = tickerTTL
		cl.candleTTL = candleTTL
	}
}

// WithRateLimit sets the token bucket parameters for outbound requests.
func WithRateLimit(perSec, burst float64) Option {
	return func(cl *Client) {
		cl.rps = perSec
		cl.burst = burst
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.http = xhttp.NewClient(xhttp.WithTimeout(d))
	}
}

// New creates a Gate.io spot client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		limiter: ratelimit.New(),
		rps:     8,
		burst:   16,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ drepo.MarketData = (*Client)(nil)

type tickerDTO struct {
	CurrencyPair string `json:"currency_pair"`
	Last         string `json:"last"`
	ChangePct    string `json:"change_percentage"`
	BaseVolume   string `json:"base_volume"`
	QuoteVolume  string `json:"quote_volume"`
}

type tradeDTO struct {
	CreateTime string `json:"create_time"`
	Side       string `json:"side"`
	Amount     string `json:"amount"`
	Price      string `json:"price"`
}

// ListTickers returns 24h summaries for every spot pair.
func (c *Client) ListTickers(ctx context.Context) ([]models.Ticker, error) {
	const key = "tickers:all"
	if c.cache != nil {
		var cached []models.Ticker
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var dtos []tickerDTO
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/spot/tickers",
	}, &dtos)
	if err != nil {
		return nil, fmt.Errorf("gateio list tickers: %w", err)
	}

	out := make([]models.Ticker, 0, len(dtos))
	for _, d := range dtos {
		t, ok := parseTicker(d)
		if !ok {
			continue
		}
		out = append(out, t)
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, out, c.tickerTTL)
	}
	return out, nil
}

// Candles returns OHLCV bars, oldest first. Gate.io encodes each bar as
// a string array: [ts, quote_volume, close, high, low, open, base_volume, closed].
func (c *Client) Candles(ctx context.Context, symbol string, interval drepo.Interval, limit int) ([]models.Candle, error) {
	key := cache.GenerateKeyWithParams("candles", symbol, interval, limit)
	if c.cache != nil {
		var cached []models.Candle
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var rows [][]string
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/spot/candlesticks",
		QueryParams: map[string][]string{
			"currency_pair": {symbol},
			"interval":      {string(interval)},
			"limit":         {strconv.Itoa(limit)},
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("gateio candles %s: %w", symbol, err)
	}

	out := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		candle, ok := parseCandle(row)
		if !ok {
			continue
		}
		out = append(out, candle)
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, out, c.candleTTL)
	}
	return out, nil
}

// Trades returns recent fills for a pair, newest first.
func (c *Client) Trades(ctx context.Context, symbol string, limit int) ([]models.TradeFill, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var dtos []tradeDTO
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/spot/trades",
		QueryParams: map[string][]string{
			"currency_pair": {symbol},
			"limit":         {strconv.Itoa(limit)},
		},
	}, &dtos)
	if err != nil {
		return nil, fmt.Errorf("gateio trades %s: %w", symbol, err)
	}

	out := make([]models.TradeFill, 0, len(dtos))
	for _, d := range dtos {
		price, err1 := strconv.ParseFloat(d.Price, 64)
		amount, err2 := strconv.ParseFloat(d.Amount, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		created, ok := util.ParseUnixSeconds(d.CreateTime)
		if !ok {
			continue
		}
		out = append(out, models.TradeFill{
			Price:     price,
			Amount:    amount,
			Side:      d.Side,
			CreatedAt: created,
		})
	}
	return out, nil
}

// wait blocks until a request token is available or the context ends.
func (c *Client) wait(ctx context.Context) error {
	return c.limiter.Wait(ctx, rateKey, c.burst, c.rps)
}

func parseTicker(d tickerDTO) (models.Ticker, bool) {
	if d.CurrencyPair == "" {
		return models.Ticker{}, false
	}
	last, err := strconv.ParseFloat(d.Last, 64)
	if err != nil {
		return models.Ticker{}, false
	}
	change, err := strconv.ParseFloat(d.ChangePct, 64)
	if err != nil {
		change = 0
	}
	base, err := strconv.ParseFloat(d.BaseVolume, 64)
	if err != nil {
		base = 0
	}
	quote, err := strconv.ParseFloat(d.QuoteVolume, 64)
	if err != nil {
		quote = 0
	}
	return models.Ticker{
		Symbol:       d.CurrencyPair,
		LastPrice:    last,
		ChangePct24h: change,
		BaseVolume:   base,
		QuoteVolume:  quote,
	}, true
}

func parseCandle(row []string) (models.Candle, bool) {
	if len(row) < 7 {
		return models.Candle{}, false
	}
	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, false
	}
	open, err1 := strconv.ParseFloat(row[5], 64)
	high, err2 := strconv.ParseFloat(row[3], 64)
	low, err3 := strconv.ParseFloat(row[4], 64)
	closeP, err4 := strconv.ParseFloat(row[2], 64)
	baseVol, err5 := strconv.ParseFloat(row[6], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return models.Candle{}, false
	}
	return models.Candle{
		Bucket: time.Unix(ts, 0),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closeP,
		Volume: baseVol,
	}, true
}
