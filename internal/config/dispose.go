package config

// Dispose stops any running watcher and transitions the composer to
// StateDisposed. The cache manager and its backend are left as they are.
// After Dispose, Reload returns errDisposed; AddSource, RemoveSource, and
// the read APIs are not refused. A second Dispose call returns without
// effect.
func (m *Manager) Dispose() {
	if m.state() == StateDisposed {
		return
	}
	m.StopAutoReload()
	m.setState(StateDisposed)
}
