package config

import (
	"context"

	"github.com/yanizio/confstack/internal/cache"
	"github.com/yanizio/confstack/internal/profile"
	"github.com/yanizio/confstack/internal/source"
	"github.com/yanizio/confstack/internal/value"
)

// AddSource appends s to the ordered source list (highest precedence
// last, per spec.md §4.9), invalidates any cached validated tree, and
// rebuilds the composed tree from the current source list. Transitions
// StateEmpty -> StateConfigured on the first call, and StateConfigured/
// StateLoaded -> StateLoaded once a tree has been built at least once.
func (m *Manager) AddSource(s source.Source) {
	m.srcMu.Lock()
	m.sources = append(m.sources, s)
	srcs := append([]source.Source(nil), m.sources...)
	m.srcMu.Unlock()

	if m.state() == StateEmpty {
		m.setState(StateConfigured)
	}

	m.rebuildFrom(context.Background(), srcs, true)
}

// AddProfiledSource resolves basePath/extension against the Manager's own
// bound profile manager's active profile (profile.ProfileSourcePath),
// builds a source with ctor, and adds it through AddSource. This is the
// composer actually consulting m.profile for source selection (§4.7/§4.9)
// instead of requiring callers to resolve the path themselves.
func (m *Manager) AddProfiledSource(basePath, extension string, ctor func(path string) source.Source) source.Source {
	name := ""
	if active := m.profile.Active(); active != nil {
		name = active.Name
	}
	path := profile.ProfileSourcePath(basePath, name, extension)
	s := ctor(path)
	m.AddSource(s)
	return s
}

// RemoveSource removes s from the source list (by identity) and rebuilds
// the tree from the remaining sources.
func (m *Manager) RemoveSource(s source.Source) {
	m.srcMu.Lock()
	kept := make([]source.Source, 0, len(m.sources))
	for _, existing := range m.sources {
		if existing != s {
			kept = append(kept, existing)
		}
	}
	m.sources = kept
	srcs := append([]source.Source(nil), kept...)
	m.srcMu.Unlock()

	m.rebuildFrom(context.Background(), srcs, true)
}

// rebuildFrom loads every source (through the cache when useCache is set)
// and deep-merges them in order, then swaps the tree if the result
// differs from the current one.
func (m *Manager) rebuildFrom(ctx context.Context, srcs []source.Source, useCache bool) {
	merged := value.Mapping{}
	for _, s := range srcs {
		loaded := m.loadSource(ctx, s, useCache)
		merged = value.Merge(merged, loaded)
	}
	m.swapIfChanged(merged)
}

// loadSource loads s directly, or via the cache manager when one is
// configured and useCache is true, keyed by (kind, origin, fingerprint)
// per spec.md §4.4.
func (m *Manager) loadSource(ctx context.Context, s source.Source, useCache bool) value.Mapping {
	meta := s.Metadata()

	if !useCache || m.cache == nil {
		return s.Load(ctx)
	}

	fp := s.Fingerprint(ctx)
	key := cache.CacheKey(meta.Kind, meta.Origin, fp)

	if cached, ok := m.cache.Get(key); ok {
		tree, err := decodeCachedTree(cached)
		if err == nil {
			return tree
		}
	}

	loaded := s.Load(ctx)
	if encoded, err := encodeCachedTree(loaded); err == nil {
		m.cache.Set(key, encoded, 0)
	}
	return loaded
}

// swapIfChanged replaces the current tree with next iff it differs by
// structural equality from the current tree (spec.md §4.5), under a
// short write lock. A swap invalidates the validation cache and bumps the
// generation counter; it fires no reload callbacks itself — callers that
// want callback semantics (Reload) invoke them explicitly.
func (m *Manager) swapIfChanged(next value.Mapping) bool {
	m.treeMu.Lock()
	changed := value.Canonicalize(value.Map(m.tree)) != value.Canonicalize(value.Map(next))
	if changed {
		m.tree = next
		m.generation.Add(1)
	}
	m.treeMu.Unlock()

	if m.state() == StateConfigured || m.state() == StateEmpty {
		m.setState(StateLoaded)
	}
	return changed
}

func (m *Manager) currentTree() value.Mapping {
	m.treeMu.RLock()
	defer m.treeMu.RUnlock()
	return m.tree
}

// Get returns the value at path, or def if missing (spec.md §4.3).
func (m *Manager) Get(path string, def value.Value) value.Value {
	return value.Get(m.currentTree(), path, def)
}

// GetInt is the typed accessor over Get (spec.md §4.3).
func (m *Manager) GetInt(path string, def int64) int64 {
	return value.GetInt(m.currentTree(), path, def)
}

// GetFloat is the typed accessor over Get (spec.md §4.3).
func (m *Manager) GetFloat(path string, def float64) float64 {
	return value.GetFloat(m.currentTree(), path, def)
}

// GetBool is the typed accessor over Get (spec.md §4.3).
func (m *Manager) GetBool(path string, def bool) bool {
	return value.GetBool(m.currentTree(), path, def)
}

// GetList is the typed accessor over Get (spec.md §4.3).
func (m *Manager) GetList(path string, def []string) []string {
	return value.GetList(m.currentTree(), path, def)
}
