package history

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowBoundedToCapacity(t *testing.T) {
	s := NewStore(5)
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		s.Add("BTC_USDT", float64(100+i), 10, base.Add(time.Duration(i)*time.Minute))
	}

	w := s.Window("BTC_USDT")
	require.Len(t, w, 5)
	// window holds exactly the last 5 samples, in original order
	for i, sample := range w {
		assert.Equal(t, float64(107+i), sample.Price)
	}
}

func TestInvalidInputSilentlyDropped(t *testing.T) {
	s := NewStore(10)
	now := time.Now()

	s.Add("ETH_USDT", math.NaN(), 10, now)
	s.Add("ETH_USDT", math.Inf(1), 10, now)
	s.Add("ETH_USDT", 100, math.NaN(), now)
	s.Add("ETH_USDT", 100, -5, now)
	s.Add("ETH_USDT", -1, 10, now)
	s.Add("", 100, 10, now)

	assert.Equal(t, 0, s.Len("ETH_USDT"))

	s.Add("ETH_USDT", 100, 0, now) // zero volume is valid
	assert.Equal(t, 1, s.Len("ETH_USDT"))
}

func TestUnknownSymbolEmptyWindow(t *testing.T) {
	s := NewStore(10)
	assert.Nil(t, s.Window("NOPE_USDT"))
	assert.Equal(t, 0, s.Len("NOPE_USDT"))
}

func TestWindowReturnsCopy(t *testing.T) {
	s := NewStore(10)
	now := time.Now()
	s.Add("BTC_USDT", 100, 1, now)

	w := s.Window("BTC_USDT")
	w[0].Price = 0

	assert.Equal(t, 100.0, s.Window("BTC_USDT")[0].Price)
}
