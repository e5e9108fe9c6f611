package gateio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "PulseWatch/pkg/logger"
)

func testStreamLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	return l
}

// newWSTestServer answers every subscribe request with one ticker update
// and keeps the connection open for pings.
func newWSTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req wsRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if req.Event != "subscribe" {
				continue
			}
			update := `{"channel":"spot.tickers","event":"update","result":{` +
				`"currency_pair":"BTC_USDT","last":"64000.5","change_percentage":"1.5",` +
				`"base_volume":"1520.4","quote_volume":"97680000"}}`
			if err := conn.WriteMessage(websocket.TextMessage, []byte(update)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStreamSubscribeAndRead(t *testing.T) {
	srv := newWSTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	// a short ping interval keeps the ping writer busy while Subscribe
	// and the read loop run
	s := NewStream(wsURL, 10*time.Millisecond, 5*time.Millisecond, testStreamLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Connect(ctx))
	assert.True(t, s.IsConnected())

	ticks, _ := s.Read(ctx)
	require.NoError(t, s.Subscribe(ctx, []string{"BTC_USDT"}))

	select {
	case tick := <-ticks:
		require.NotNil(t, tick)
		assert.Equal(t, "BTC_USDT", tick.Symbol)
		assert.InDelta(t, 64000.5, tick.LastPrice, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("no ticker update received")
	}

	require.NoError(t, s.Close())
	assert.False(t, s.IsConnected())
}

func TestStreamSubscribeBeforeConnectFails(t *testing.T) {
	s := NewStream("ws://127.0.0.1:1", time.Millisecond, time.Minute, testStreamLogger(t))
	err := s.Subscribe(context.Background(), []string{"BTC_USDT"})
	assert.Error(t, err)
}
