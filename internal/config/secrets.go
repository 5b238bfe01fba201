package config

import (
	"context"
	"regexp"

	"github.com/yanizio/confstack/internal/secrets"
	"github.com/yanizio/confstack/internal/value"
)

// GetSecret delegates to the bound secrets accessor (spec.md §4.8, §6);
// with no accessor bound, or on any accessor error, it returns (nil,
// false) — the composer never surfaces a secret-retrieval error.
func (m *Manager) GetSecret(ctx context.Context, name string) (*secrets.Secret, bool) {
	return secrets.SafeGetSecret(ctx, m.secrets, name)
}

// MaskedTree returns the current composed tree with sensitive-looking
// scalar values redacted, suitable for display or logging (spec.md §4.8).
// A nil pattern uses secrets.DefaultMaskPattern.
func (m *Manager) MaskedTree(pattern *regexp.Regexp) value.Mapping {
	return secrets.MaskTree(m.currentTree(), pattern)
}
