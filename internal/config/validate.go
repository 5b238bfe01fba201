package config

import (
	"time"

	"github.com/yanizio/confstack/internal/metrics"
	"github.com/yanizio/confstack/internal/validate"
	"github.com/yanizio/confstack/internal/value"
)

func valueOfTree(m value.Mapping) value.Value { return value.Map(m) }

// Validate runs the bound schema (if any) against the current tree and
// caches the result until the next swap or schema replacement (spec.md
// §4.6, §4.9 — "optimization, not a correctness requirement"). With no
// schema bound, Validate always reports OK.
func (m *Manager) Validate(level validate.Level) validate.Result {
	gen := m.generation.Load()

	m.validateMu.Lock()
	schema := m.schema
	if schema == nil {
		m.validateMu.Unlock()
		return validate.Result{Outcome: validate.OK, Value: valueOfTree(m.currentTree())}
	}
	if m.cachedResult != nil && m.cachedGeneration == gen {
		cached := *m.cachedResult
		m.validateMu.Unlock()
		return cached
	}
	m.validateMu.Unlock()

	start := time.Now()
	result := schema.Validate(m.currentTree(), level)
	metrics.ValidationDuration.Observe(time.Since(start).Seconds())

	m.validateMu.Lock()
	m.cachedResult = &result
	m.cachedGeneration = gen
	m.validateMu.Unlock()

	return result
}

// IsValid is a thin, never-raising wrapper over Validate (spec.md §4.9).
func (m *Manager) IsValid() bool {
	return m.Validate(validate.Lenient).Outcome == validate.OK
}

// Errors returns only the error-severity diagnostics from the last
// Validate pass.
func (m *Manager) Errors() []validate.Diagnostic {
	res := m.Validate(validate.Lenient)
	var errs []validate.Diagnostic
	for _, d := range res.Diagnostics {
		if d.Severity == validate.SeverityError {
			errs = append(errs, d)
		}
	}
	return errs
}

// SetSchema replaces the bound schema, invalidating the validation cache.
func (m *Manager) SetSchema(s *validate.Schema) {
	m.validateMu.Lock()
	defer m.validateMu.Unlock()
	m.schema = s
	m.cachedResult = nil
	m.cachedGeneration = -1
}
