package recorder

import (
	"sync"

	"PulseWatch/internal/domain/models"
)

// Recorder keeps a bounded in-memory ring of recently emitted signals so
// the HTTP API can serve them without a persistence layer. Oldest entries
// fall off once the buffer is full; everything is lost on restart.
type Recorder struct {
	mu    sync.RWMutex
	buf   []models.Signal
	next  int
	count int
}

func New(size int) *Recorder {
	if size < 1 {
		size = 1
	}
	return &Recorder{buf: make([]models.Signal, size)}
}

// Record stores an emitted signal.
func (r *Recorder) Record(s models.Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.next] = s
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Recent returns up to limit signals, newest first, optionally filtered
// by signal type (empty string matches everything).
func (r *Recorder) Recent(limit int, typ models.SignalType) []models.Signal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > r.count {
		limit = r.count
	}

	out := make([]models.Signal, 0, limit)
	for i := 1; i <= r.count && len(out) < limit; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		s := r.buf[idx]
		if typ != "" && s.Type != typ {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Len returns how many signals are currently buffered.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}
