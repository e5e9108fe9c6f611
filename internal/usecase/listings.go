package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"PulseWatch/internal/domain/models"
	drepo "PulseWatch/internal/domain/repository"
	applogger "PulseWatch/pkg/logger"
)

const maxRecentListings = 50

// ListingWatcher detects pairs appearing on the exchange for the first
// time by diffing the current ticker set against a persisted known set.
type ListingWatcher struct {
	market drepo.MarketData
	logger *applogger.Logger
	path   string

	mu     sync.Mutex
	known  map[string]struct{}
	recent []models.Listing
}

// NewListingWatcher loads the known pair set from path. A missing file
// means a cold start: the first check seeds the set without reporting
// everything as new.
func NewListingWatcher(market drepo.MarketData, path string, l *applogger.Logger) (*ListingWatcher, error) {
	w := &ListingWatcher{
		market: market,
		logger: l,
		path:   path,
		known:  make(map[string]struct{}),
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read known pairs: %w", err)
		}
		return w, nil
	}

	var pairs []string
	if err := json.Unmarshal(b, &pairs); err != nil {
		return nil, fmt.Errorf("parse known pairs: %w", err)
	}
	for _, p := range pairs {
		w.known[p] = struct{}{}
	}
	return w, nil
}

// Check fetches the current pair set and records anything unseen. On a
// cold start the whole set is seeded silently.
func (w *ListingWatcher) Check(ctx context.Context) error {
	tickers, err := w.market.ListTickers(ctx)
	if err != nil {
		return fmt.Errorf("listings check: %w", err)
	}

	now := time.Now().UTC()

	w.mu.Lock()
	defer w.mu.Unlock()

	coldStart := len(w.known) == 0
	for _, t := range tickers {
		if _, ok := w.known[t.Symbol]; ok {
			continue
		}
		w.known[t.Symbol] = struct{}{}
		if coldStart {
			continue
		}
		w.recent = append(w.recent, models.Listing{Pair: t.Symbol, FirstSeen: now})
		w.logger.Info("new listing detected", applogger.String("pair", t.Symbol))
	}
	if len(w.recent) > maxRecentListings {
		w.recent = w.recent[len(w.recent)-maxRecentListings:]
	}

	return w.persistLocked()
}

// Recent returns detected listings, newest first.
func (w *ListingWatcher) Recent(limit int) []models.Listing {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.recent)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.Listing, 0, n)
	for i := len(w.recent) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, w.recent[i])
	}
	return out
}

func (w *ListingWatcher) persistLocked() error {
	pairs := make([]string, 0, len(w.known))
	for p := range w.known {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)

	b, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("marshal known pairs: %w", err)
	}
	if err := os.WriteFile(w.path, b, 0o644); err != nil {
		return fmt.Errorf("write known pairs: %w", err)
	}
	return nil
}
