package source

import (
	"sync"
	"time"
)

// Metadata is the observable state the composer's Stats() surfaces per
// source (spec.md §3): a stable kind tag, the origin identifier, load
// counters, timestamps, and the last byte size. Fingerprints are not
// recorded here.
// It is mutated only inside Base.Load, under its own mutex, so concurrent
// readers (Manager.Stats) never observe a torn update.
type Metadata struct {
	mu sync.Mutex

	Kind   string
	Origin string

	Attempts int64
	Successes int64
	Failures  int64

	LastSuccessAt time.Time
	LastErrorAt   time.Time
	LastError     string

	LastSize int64
}

func (m *Metadata) recordAttempt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attempts++
}

func (m *Metadata) recordSuccess(size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Successes++
	m.LastSuccessAt = time.Now()
	m.LastSize = size
}

func (m *Metadata) recordFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures++
	m.LastErrorAt = time.Now()
	if err != nil {
		m.LastError = err.Error()
	}
}

// Snapshot returns a copy safe to read without holding the source's lock.
func (m *Metadata) Snapshot() Metadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Metadata{
		Kind:   m.Kind,
		Origin: m.Origin,

		Attempts:  m.Attempts,
		Successes: m.Successes,
		Failures:  m.Failures,

		LastSuccessAt: m.LastSuccessAt,
		LastErrorAt:   m.LastErrorAt,
		LastError:     m.LastError,

		LastSize: m.LastSize,
	}
}
