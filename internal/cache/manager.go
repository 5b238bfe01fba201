package cache

import (
	"sync"
	"time"

	"github.com/yanizio/confstack/internal/metrics"
)

// Manager wraps a Backend with the tag index, hit/miss metrics, and
// enable/disable switch from spec.md §4.4. Every operation, reads
// included, is serialized by mu; eviction counts are kept by the backend
// itself (MemoryBackend.Stats), not by Manager.
type Manager struct {
	mu      sync.Mutex
	backend Backend
	label   string
	enabled bool

	tagIndex map[string]map[string]struct{} // tag -> set of keys

	managerStats ManagerStats
}

// ManagerStats mirrors the hit/miss/set/delete counters spec.md §4.4 asks
// the manager to track, independent of whichever Backend is mounted.
type ManagerStats struct {
	Hits, Misses, Sets, Deletes int64
}

// NewManager wraps backend under label (used for per-backend metrics).
// Passing enabled=false behaves as a null backend without discarding the
// manager's own metrics (spec.md §4.4).
func NewManager(backend Backend, label string, enabled bool) *Manager {
	return &Manager{
		backend:  backend,
		label:    label,
		enabled:  enabled,
		tagIndex: make(map[string]map[string]struct{}),
	}
}

// CacheKey derives the cache key for a source per spec.md §4.4:
// (source_kind, origin, fingerprint). Rotating the fingerprint invalidates
// all prior entries for that source, since the key itself changes.
func CacheKey(kind, origin, fingerprint string) string {
	return kind + "|" + origin + "|" + fingerprint
}

func (m *Manager) activeBackend() Backend {
	if !m.enabled {
		return NullBackend{}
	}
	return m.backend
}

func (m *Manager) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.activeBackend().Get(key)
	if !ok {
		m.managerStats.Misses++
		metrics.CacheMissesTotal.WithLabelValues(m.label).Inc()
		return nil, false
	}
	m.managerStats.Hits++
	metrics.CacheHitsTotal.WithLabelValues(m.label).Inc()
	return entry.Value, true
}

func (m *Manager) Set(key string, value []byte, ttl time.Duration, tags ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := &Entry{
		Key:       key,
		Value:     value,
		CreatedAt: time.Now(),
		TTL:       ttl,
		Size:      int64(len(value)),
		Tags:      tags,
	}
	m.activeBackend().Set(entry)
	m.managerStats.Sets++

	for _, tag := range tags {
		if m.tagIndex[tag] == nil {
			m.tagIndex[tag] = make(map[string]struct{})
		}
		m.tagIndex[tag][key] = struct{}{}
	}
}

func (m *Manager) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeBackend().Delete(key)
	m.managerStats.Deletes++
	for tag, keys := range m.tagIndex {
		delete(keys, key)
		if len(keys) == 0 {
			delete(m.tagIndex, tag)
		}
	}
}

// DeleteByTag removes every cache entry previously Set with tag, per
// spec.md §4.4's tag index: "deleting a tag removes all keyed entries".
func (m *Manager) DeleteByTag(tag string) int {
	m.mu.Lock()
	keys := m.tagIndex[tag]
	toDelete := make([]string, 0, len(keys))
	for k := range keys {
		toDelete = append(toDelete, k)
	}
	delete(m.tagIndex, tag)
	m.mu.Unlock()

	for _, k := range toDelete {
		m.Delete(k)
	}
	return len(toDelete)
}

func (m *Manager) Exists(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeBackend().Exists(key)
}

func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeBackend().Clear()
	m.tagIndex = make(map[string]map[string]struct{})
}

// Enable switches the manager back to its configured backend.
func (m *Manager) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}

// Disable makes the manager behave as a null backend. Metrics continue to
// accumulate (spec.md §4.4).
func (m *Manager) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// Stats returns a snapshot of the manager's own counters.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.managerStats
}
