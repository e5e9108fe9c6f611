package history

import (
	"math"
	"sync"
	"time"

	"PulseWatch/internal/domain/models"
)

// Store keeps a bounded rolling window of price/volume samples per symbol.
// Windows are append-only; the oldest sample is evicted once a window is at
// capacity. The store never fails: invalid numeric input is silently dropped.
type Store struct {
	mu       sync.RWMutex
	capacity int
	windows  map[string][]models.Sample
}

// NewStore creates a store with the given per-symbol window capacity.
func NewStore(capacity int) *Store {
	if capacity < 2 {
		capacity = 2
	}
	return &Store{
		capacity: capacity,
		windows:  make(map[string][]models.Sample),
	}
}

// Add appends a sample to the symbol's window. Non-finite values and
// negative price/volume are dropped without error.
func (s *Store) Add(symbol string, price, volume float64, ts time.Time) {
	if symbol == "" || !finite(price) || !finite(volume) || price < 0 || volume < 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.windows[symbol]
	if len(w) >= s.capacity {
		// shift in place, oldest first out
		copy(w, w[1:])
		w = w[:len(w)-1]
	}
	s.windows[symbol] = append(w, models.Sample{Price: price, Volume: volume, Timestamp: ts})
}

// Seed fills an empty window with historical samples, oldest first,
// trimmed to capacity. A symbol that already has samples is left alone
// so a backfill can never reorder live data.
func (s *Store) Seed(symbol string, samples []models.Sample) {
	if symbol == "" || len(samples) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.windows[symbol]) > 0 {
		return
	}
	if len(samples) > s.capacity {
		samples = samples[len(samples)-s.capacity:]
	}
	w := make([]models.Sample, 0, len(samples))
	for _, smp := range samples {
		if !finite(smp.Price) || !finite(smp.Volume) || smp.Price < 0 || smp.Volume < 0 {
			continue
		}
		w = append(w, smp)
	}
	s.windows[symbol] = w
}

// Window returns a copy of the symbol's samples in insertion order
// (oldest first), or nil if the symbol is unknown.
func (s *Store) Window(symbol string) []models.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.windows[symbol]
	if !ok {
		return nil
	}
	out := make([]models.Sample, len(w))
	copy(out, w)
	return out
}

// Len returns the number of samples currently held for symbol.
func (s *Store) Len(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows[symbol])
}

// Capacity returns the configured per-symbol window capacity.
func (s *Store) Capacity() int { return s.capacity }

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
