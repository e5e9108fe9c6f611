package gateio

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"PulseWatch/internal/domain/models"
	drepo "PulseWatch/internal/domain/repository"
	applogger "PulseWatch/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements TickerStream over the Gate.io spot WebSocket,
// channel "spot.tickers".
type Stream struct {
	websocketURL   string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *applogger.Logger

	// mu guards conn, symbols, and connected, and serializes writes.
	// gorilla/websocket permits a single concurrent writer; the ping
	// loop and Subscribe both write.
	mu        sync.Mutex
	conn      *websocket.Conn
	symbols   []string
	connected bool
}

// NewStream creates a Gate.io ticker stream.
func NewStream(websocketURL string, reconnectDelay, pingInterval time.Duration, l *applogger.Logger) drepo.TickerStream {
	return &Stream{
		websocketURL:   websocketURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         l,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("gateio ws connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.logger.Info("gateio ws: connected")
	return nil
}

type wsRequest struct {
	Time    int64    `json:"time"`
	Channel string   `json:"channel"`
	Event   string   `json:"event"`
	Payload []string `json:"payload"`
}

// Subscribe subscribes to ticker updates for the given pairs.
func (s *Stream) Subscribe(ctx context.Context, symbols []string) error {
	req := wsRequest{
		Time:    time.Now().Unix(),
		Channel: "spot.tickers",
		Event:   "subscribe",
		Payload: symbols,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.connected {
		return fmt.Errorf("gateio ws not connected")
	}
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("gateio ws subscribe: %w", err)
	}
	s.symbols = symbols
	s.logger.Info("gateio ws: subscribed", applogger.Int("symbols", len(symbols)))
	return nil
}

type wsTickerMsg struct {
	Channel string    `json:"channel"`
	Event   string    `json:"event"`
	Result  tickerDTO `json:"result"`
}

// Read streams ticker updates and errors until the context ends or the
// connection drops. Slow consumers lose updates rather than block the
// read loop.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Ticker, <-chan error) {
	tickers := make(chan *models.Ticker, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.ping()
			}
		}
	}()

	// read loop
	go func() {
		defer close(tickers)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				conn := s.currentConn()
				if conn == nil {
					errs <- fmt.Errorf("gateio ws conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("gateio ws read: %w", err)
					return
				}
				var m wsTickerMsg
				if err := json.Unmarshal(b, &m); err != nil {
					continue
				}
				if m.Channel != "spot.tickers" || m.Event != "update" {
					continue
				}
				t, ok := parseTicker(m.Result)
				if !ok {
					continue
				}
				select {
				case tickers <- &t:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return tickers, errs
}

func (s *Stream) ping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil && s.connected {
		_ = s.conn.WriteMessage(websocket.PingMessage, nil)
	}
}

func (s *Stream) currentConn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Reconnect closes and reconnects, resubscribing the last symbol set.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	symbols := s.symbols
	s.mu.Unlock()
	return s.Subscribe(ctx, symbols)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
