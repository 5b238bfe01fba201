package config

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yanizio/confstack/internal/metrics"
	"github.com/yanizio/confstack/internal/source"
	"github.com/yanizio/confstack/internal/value"
)

// Reload re-loads every source through the cache-keyed path, fanning the
// loads out concurrently via errgroup (spec.md §4.9, §5), then merges
// them in source order and atomically swaps the tree if it changed.
// Concurrent Reload callers collapse into a single in-flight reload via
// singleflight; every caller observes that reload's outcome. A failed
// load on any individual source contributes an empty mapping to the
// merge but never fails the reload as a whole (spec.md §4.9).
func (m *Manager) Reload(ctx context.Context) error {
	if m.state() == StateDisposed {
		return errDisposed
	}

	_, err, _ := m.reloadGroup.Do("reload", func() (any, error) {
		return nil, m.doReload(ctx)
	})
	return err
}

func (m *Manager) doReload(ctx context.Context) error {
	prevState := m.state()
	m.setState(StateReloading)
	defer func() {
		if m.state() == StateReloading {
			m.setState(StateLoaded)
		}
	}()

	m.srcMu.Lock()
	srcs := append([]source.Source(nil), m.sources...)
	m.srcMu.Unlock()

	loaded := make([]value.Mapping, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range srcs {
		i, s := i, s
		g.Go(func() error {
			loaded[i] = m.loadSource(gctx, s, true)
			return nil
		})
	}
	// Source-level failures never fail the reload (§4.9); g.Wait only
	// returns an error if a goroutine itself returned one, which loadSource
	// never does.
	_ = g.Wait()

	merged := value.Mapping{}
	for _, tree := range loaded {
		merged = value.Merge(merged, tree)
	}

	changed := m.swapIfChanged(merged)

	if changed {
		metrics.ReloadTotal.Inc()
		m.reloadCount.Add(1)
		m.fireCallbacks(merged)
	} else {
		metrics.ReloadNoopTotal.Inc()
		m.reloadNoopCount.Add(1)
		if prevState == StateEmpty || prevState == StateConfigured {
			m.setState(StateLoaded)
		}
	}
	return nil
}

// OnReload registers cb to be invoked exactly once per successful swap,
// after the swap is visible to readers, in registration order. Returns a
// token usable with OffReload.
func (m *Manager) OnReload(cb ReloadCallback) int {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.nextCBID++
	id := m.nextCBID
	m.callbacks = append(m.callbacks, callbackEntry{id: id, cb: cb})
	return id
}

// OffReload de-registers a callback previously returned by OnReload.
func (m *Manager) OffReload(id int) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	kept := m.callbacks[:0]
	for _, e := range m.callbacks {
		if e.id != id {
			kept = append(kept, e)
		}
	}
	m.callbacks = kept
}

// fireCallbacks invokes every registered callback in registration order.
// A callback panic is caught and recorded but does not prevent subsequent
// callbacks from running and never undoes the swap (spec.md §4.5).
func (m *Manager) fireCallbacks(tree value.Mapping) {
	m.cbMu.Lock()
	cbs := append([]callbackEntry(nil), m.callbacks...)
	m.cbMu.Unlock()

	for _, e := range cbs {
		m.safeInvoke(e.cb, tree)
	}
}

func (m *Manager) safeInvoke(cb ReloadCallback, tree value.Mapping) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorw("reload callback panicked", "recover", r)
		}
	}()
	cb(tree)
}
