// Package source implements the uniform source contract (C1) and the
// built-in source kinds (C2): JSON, YAML, TOML, INI, environment, remote,
// and secret-backed. Every loader honors the same failure policy as the
// teacher's koanf-based loader did for a single inline step: load never
// raises outward, is-available never raises, and a faulty source degrades
// to an empty mapping rather than aborting composition (spec.md §4.1).
package source

import (
	"context"

	"github.com/yanizio/confstack/internal/metrics"
	"github.com/yanizio/confstack/internal/value"
)

// Source is the contract every origin implements. Kind-specific
// constructors (NewJSONSource, NewEnvironmentSource, ...) each return a
// *Base built by newBase plus their own load function; callers never
// implement the interface from scratch outside this package, but it is
// exported as an interface so internal/config can depend on it abstractly.
type Source interface {
	// IsAvailable is a cheap, side-effect-free predicate: true iff a
	// subsequent Load has a realistic chance of returning data.
	IsAvailable(ctx context.Context) bool

	// Load produces a mapping, or an empty mapping on any failure. Parse,
	// I/O, and decode failures are recorded on Metadata, never returned.
	Load(ctx context.Context) value.Mapping

	// Fingerprint returns a stable, best-effort identifier used to derive
	// cache keys (spec.md §4.4).
	Fingerprint(ctx context.Context) string

	// Metadata exposes the observable counters and timestamps for this
	// source (spec.md §3). The returned pointer is owned by the source;
	// callers must not mutate it.
	Metadata() *Metadata
}

// loadFunc is the kind-specific parse step; Base wraps it with the shared
// metadata bookkeeping every kind needs.
type loadFunc func(ctx context.Context) (value.Mapping, error)

// availableFunc is the kind-specific availability probe.
type availableFunc func(ctx context.Context) bool

// fingerprintFunc is the kind-specific fingerprint derivation.
type fingerprintFunc func(ctx context.Context) string

// Base implements the bookkeeping common to every source kind: metadata
// mutation on load completion, and the total never-raise contract. Kind
// constructors build a *Base with their three behavior functions and
// return it as the Source.
type Base struct {
	meta Metadata

	doLoad        loadFunc
	doIsAvailable availableFunc
	doFingerprint fingerprintFunc
}

func newBase(kind, origin string, doLoad loadFunc, doIsAvailable availableFunc, doFingerprint fingerprintFunc) *Base {
	return &Base{
		meta: Metadata{
			Kind:   kind,
			Origin: origin,
		},
		doLoad:        doLoad,
		doIsAvailable: doIsAvailable,
		doFingerprint: doFingerprint,
	}
}

func (b *Base) IsAvailable(ctx context.Context) bool {
	defer func() { recover() }() // is_available must never raise (§4.1)
	return b.doIsAvailable(ctx)
}

func (b *Base) Load(ctx context.Context) value.Mapping {
	b.meta.recordAttempt()
	metrics.SourceLoadTotal.WithLabelValues(b.meta.Kind).Inc()

	m, err := b.safeLoad(ctx)
	if err != nil {
		b.meta.recordFailure(err)
		metrics.SourceLoadErrorsTotal.WithLabelValues(b.meta.Kind).Inc()
		return value.Mapping{}
	}
	if m == nil {
		m = value.Mapping{}
	}
	b.meta.recordSuccess(estimateSize(m))
	return m
}

// safeLoad recovers from panics in kind-specific parsers so that a single
// malformed source can never take down the composer (spec.md §4.1, §7).
func (b *Base) safeLoad(ctx context.Context) (m value.Mapping, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{r}
		}
	}()
	return b.doLoad(ctx)
}

func (b *Base) Fingerprint(ctx context.Context) string {
	defer func() { recover() }() // fingerprint is best-effort (§4.1)
	return b.doFingerprint(ctx)
}

func (b *Base) Metadata() *Metadata { return &b.meta }

type panicError struct{ v any }

func (p panicError) Error() string { return "source panicked during load" }

func estimateSize(m value.Mapping) int64 {
	return int64(len(value.Canonicalize(value.Map(m))))
}
