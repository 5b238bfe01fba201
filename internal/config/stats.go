package config

import (
	dto "github.com/prometheus/client_model/go"

	"github.com/yanizio/confstack/internal/metrics"
	"github.com/yanizio/confstack/internal/source"
)

// Stats is the snapshot spec.md §4.9 asks stats() to return: per-source
// metadata, cache manager counters, reload counts, and validation timings.
type Stats struct {
	State           string
	Sources         []source.Metadata
	Cache           ManagerCacheStats
	ReloadCount     int64
	ReloadNoopCount int64
	Validation      ValidationStats
}

// ManagerCacheStats mirrors cache.ManagerStats without importing the
// cache package's internal naming into the composer's public surface.
type ManagerCacheStats struct {
	Hits, Misses, Sets, Deletes int64
}

// ValidationStats summarizes the confstack_validation_duration_seconds
// histogram (internal/metrics), process-wide rather than per-Manager,
// since the histogram is a shared package-level collector.
type ValidationStats struct {
	Count      uint64
	SumSeconds float64
}

func validationStats() ValidationStats {
	var m dto.Metric
	if err := metrics.ValidationDuration.Write(&m); err != nil {
		return ValidationStats{}
	}
	h := m.GetHistogram()
	return ValidationStats{Count: h.GetSampleCount(), SumSeconds: h.GetSampleSum()}
}

// Stats returns a point-in-time snapshot of composer and cache counters.
func (m *Manager) Stats() Stats {
	m.srcMu.Lock()
	srcStats := make([]source.Metadata, 0, len(m.sources))
	for _, s := range m.sources {
		srcStats = append(srcStats, s.Metadata().Snapshot())
	}
	m.srcMu.Unlock()

	cacheStats := m.cache.Stats()

	return Stats{
		State:   m.state().String(),
		Sources: srcStats,
		Cache: ManagerCacheStats{
			Hits: cacheStats.Hits, Misses: cacheStats.Misses,
			Sets: cacheStats.Sets, Deletes: cacheStats.Deletes,
		},
		ReloadCount:     m.reloadCount.Load(),
		ReloadNoopCount: m.reloadNoopCount.Load(),
		Validation:      validationStats(),
	}
}
