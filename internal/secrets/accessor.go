// Package secrets defines the read-only accessor contract the composer
// depends on (spec.md §4.8/§6) and the masking pass applied before any tree
// is emitted for display or logging. Secret *storage* back-ends are out of
// scope (spec.md §1); VaultAccessor in this package is the one reference
// implementation confstack ships, adapted from the teacher's Vault client.
package secrets

import (
	"context"
	"time"
)

// Secret is a wrapped scalar retrieved from an accessor. It is never
// serialized into the composed tree (spec.md §3).
type Secret struct {
	Name      string
	Value     []byte
	CreatedAt time.Time
	Accesses  int64

	Tier         string
	RotationHint string
	Tags         []string
}

// Accessor is the read-only contract the composer requires from a secrets
// back-end (spec.md §4.8/§6). Implementations must not panic; New callers
// treat a returned error as "secret not found" per §6.
type Accessor interface {
	GetSecret(ctx context.Context, name string) (*Secret, error)
	ListSecretNames(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, name string) bool
}

// SafeGetSecret adapts an Accessor for the composer: any error or panic
// from the underlying back-end is treated as "not found", never surfaced
// as a Go error to Manager.GetSecret callers (spec.md §6, §4.8).
func SafeGetSecret(ctx context.Context, a Accessor, name string) (secret *Secret, ok bool) {
	if a == nil {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			secret, ok = nil, false
		}
	}()
	s, err := a.GetSecret(ctx, name)
	if err != nil || s == nil {
		return nil, false
	}
	return s, true
}
