// Package profile implements the profile manager (C6): named profiles
// with optional parent inheritance, environment auto-detection, and the
// profile-scoped variable lookup the composer exposes alongside the main
// value tree. Grounded on original_source/config_manager/profiles.py,
// translated from its ConfigProfile/ProfileManager classes into an
// idiomatic Go registry with explicit cycle rejection.
package profile

import (
	"fmt"
	"os"
	"strings"
)

// Reserved base profile names, per spec.md §6.
const (
	Base        = "base"
	Development = "development"
	Testing     = "testing"
	Staging     = "staging"
	Production  = "production"
)

// aliases canonicalizes common environment-variable spellings onto the
// reserved profile names (original_source/config_manager/profiles.py's
// PROFILE_ALIASES).
var aliases = map[string]string{
	"dev":     Development,
	"develop": Development,
	"local":   Development,
	"test":    Testing,
	"stage":   Staging,
	"prod":    Production,
}

// envVars is the ordered list of environment variables DetectEnvironment
// scans, first non-empty wins. Extended beyond spec.md's illustrative
// ENVIRONMENT/ENV/NODE_ENV/APP_ENV with PYTHON_ENV and CONFIG_ENV from
// the wider original_source list.
var envVars = []string{"ENVIRONMENT", "ENV", "NODE_ENV", "PYTHON_ENV", "CONFIG_ENV", "APP_ENV"}

// Profile is a named configuration profile with an optional parent link
// and its own scoped variables (spec.md §3). Vars are resolved
// child-overrides-ancestor along the parent chain.
type Profile struct {
	Name   string
	Parent *Profile
	Vars   map[string]any
	Active bool
}

// GetVar resolves key in this profile, falling back to the parent chain.
func (p *Profile) GetVar(key string, def any) any {
	if v, ok := p.Vars[key]; ok {
		return v
	}
	if p.Parent != nil {
		return p.Parent.GetVar(key, def)
	}
	return def
}

// SetVar sets a profile-scoped variable and returns the profile for
// chaining.
func (p *Profile) SetVar(key string, value any) *Profile {
	if p.Vars == nil {
		p.Vars = make(map[string]any)
	}
	p.Vars[key] = value
	return p
}

// Manager owns the profile registry and the active-profile selection.
type Manager struct {
	profiles map[string]*Profile
	active   string
}

// NewManager returns a Manager pre-populated with the five reserved base
// profiles (spec.md §6), mirroring
// original_source/config_manager/profiles.py's _create_default_profiles.
func NewManager() *Manager {
	m := &Manager{profiles: make(map[string]*Profile)}

	base := &Profile{Name: Base}
	m.profiles[Base] = base

	dev := &Profile{Name: Development, Parent: base, Vars: map[string]any{
		"debug": true, "log_level": "DEBUG", "cache_enabled": false,
	}}
	m.profiles[Development] = dev

	test := &Profile{Name: Testing, Parent: base, Vars: map[string]any{
		"debug": false, "log_level": "WARNING", "cache_enabled": false, "database_pool_size": 1,
	}}
	m.profiles[Testing] = test

	staging := &Profile{Name: Staging, Parent: base, Vars: map[string]any{
		"debug": false, "log_level": "INFO", "cache_enabled": true, "database_pool_size": 10,
	}}
	m.profiles[Staging] = staging

	prod := &Profile{Name: Production, Parent: base, Vars: map[string]any{
		"debug": false, "log_level": "WARNING", "cache_enabled": true,
		"database_pool_size": 20, "ssl_required": true,
	}}
	m.profiles[Production] = prod

	return m
}

func canonicalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}

// DetectEnvironment scans envVars in order and returns the first non-empty
// value's canonicalized profile name, or Development if none is set
// (spec.md §4.7).
func DetectEnvironment() string {
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return canonicalize(v)
		}
	}
	return Development
}

// Get returns the named profile (after alias canonicalization), or nil.
// An empty name resolves to the active profile, or DetectEnvironment if
// none has been set active.
func (m *Manager) Get(name string) *Profile {
	if name == "" {
		name = m.active
		if name == "" {
			name = DetectEnvironment()
		}
	}
	return m.profiles[canonicalize(name)]
}

// CreateProfile registers a new profile inheriting from base (by name,
// already-registered). Rejects a parent reference that would introduce a
// cycle back to name itself.
func (m *Manager) CreateProfile(name, baseProfile string) (*Profile, error) {
	name = canonicalize(name)
	if name == "" {
		return nil, fmt.Errorf("profile: name must not be empty")
	}

	var parent *Profile
	if baseProfile != "" {
		parent = m.Get(baseProfile)
		if parent == nil {
			return nil, fmt.Errorf("profile: base profile %q not found", baseProfile)
		}
		if wouldCycle(parent, name) {
			return nil, fmt.Errorf("profile: %q as parent of %q would introduce a cycle", parent.Name, name)
		}
	}

	p := &Profile{Name: name, Parent: parent}
	m.profiles[name] = p
	return p, nil
}

// wouldCycle reports whether name appears anywhere in candidate's parent
// chain (including candidate itself), which would form a cycle if
// candidate became a descendant's parent named name.
func wouldCycle(candidate *Profile, name string) bool {
	for p := candidate; p != nil; p = p.Parent {
		if p.Name == name {
			return true
		}
	}
	return false
}

// SetActive marks name as the active profile; returns an error if the
// profile does not exist.
func (m *Manager) SetActive(name string) error {
	p := m.Get(name)
	if p == nil {
		return fmt.Errorf("profile: %q not found", name)
	}
	m.active = p.Name
	return nil
}

// Active returns the currently active profile, detecting one if none was
// explicitly set.
func (m *Manager) Active() *Profile {
	return m.Get("")
}

// List returns the names of every registered profile.
func (m *Manager) List() []string {
	names := make([]string, 0, len(m.profiles))
	for name := range m.profiles {
		names = append(names, name)
	}
	return names
}

// GetVar resolves key from the named profile (active/detected if empty),
// falling back to def.
func (m *Manager) GetVar(profileName, key string, def any) any {
	p := m.Get(profileName)
	if p == nil {
		return def
	}
	return p.GetVar(key, def)
}
