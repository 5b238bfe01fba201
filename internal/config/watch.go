package config

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fileBackedKinds is the set of source.Metadata.Kind values whose Origin
// is a filesystem path worth watching (spec.md §4.5's "file-backed
// sources").
var fileBackedKinds = map[string]bool{
	"json": true, "yaml": true, "toml": true, "ini": true,
}

// watcher drives automatic reload mode: an fsnotify watch over every
// currently file-backed source's origin, with a polling fallback loop so
// reload still happens on filesystems fsnotify can't watch (network
// mounts, containers without inotify).
type watcher struct {
	cancel  context.CancelFunc
	done    chan struct{}
}

// StartAutoReload begins automatic reload mode: a background worker
// prepares the new tree off to the side on every detected change (or
// every pollInterval, whichever comes first) and performs the atomic
// swap via Reload, never blocking readers (spec.md §4.5). pollInterval
// <= 0 defaults to one second.
func (m *Manager) StartAutoReload(ctx context.Context, pollInterval time.Duration) error {
	if m.watcher != nil {
		return nil
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		// Degrade to polling-only; fsnotify is best-effort (§4.5 allows
		// "implementation options").
		m.log.Warnw("fsnotify unavailable, falling back to polling only", "err", err)
		fsw = nil
	} else {
		m.addWatchTargets(fsw)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w := &watcher{cancel: cancel, done: make(chan struct{})}
	m.watcher = w

	go m.watchLoop(watchCtx, fsw, pollInterval, w.done)
	return nil
}

func (m *Manager) addWatchTargets(fsw *fsnotify.Watcher) {
	m.srcMu.Lock()
	defer m.srcMu.Unlock()
	seen := map[string]bool{}
	for _, s := range m.sources {
		meta := s.Metadata()
		if !fileBackedKinds[meta.Kind] || seen[meta.Origin] {
			continue
		}
		seen[meta.Origin] = true
		if err := fsw.Add(meta.Origin); err != nil {
			m.log.Debugw("fsnotify add failed, relying on polling", "path", meta.Origin, "err", err)
		}
	}
}

func (m *Manager) watchLoop(ctx context.Context, fsw *fsnotify.Watcher, pollInterval time.Duration, done chan struct{}) {
	defer close(done)
	if fsw != nil {
		defer fsw.Close()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if fsw != nil {
		events = fsw.Events
		errs = fsw.Errors
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.Reload(ctx)
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			_ = m.Reload(ctx)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			m.log.Warnw("fsnotify watch error", "err", err)
		}
	}
}

// StopAutoReload stops the background watcher started by StartAutoReload,
// if any, and waits for it to exit.
func (m *Manager) StopAutoReload() {
	if m.watcher == nil {
		return
	}
	m.watcher.cancel()
	<-m.watcher.done
	m.watcher = nil
}
