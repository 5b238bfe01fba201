package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/yanizio/confstack/internal/secrets"
	cfvalue "github.com/yanizio/confstack/internal/value"
)

// NewSecretSource returns a Source that overlays named secrets at config
// paths declared in mapping (config path -> secret name). Missing secrets
// are omitted with a logged warning rather than failing the source
// (spec.md §4.2). Per spec.md §4.3/§9, secrets are never merged into the
// tree by the composer directly; this source exists for callers who
// explicitly want specific secrets materialized into the tree (e.g. a
// database password alongside its host/port), while Manager.GetSecret
// remains the read-time overlay path for everything else.
func NewSecretSource(accessor secrets.Accessor, mapping map[string]string) Source {
	origin := "secrets:" + accessorName(accessor)
	b := newBase("secret", origin, nil,
		func(ctx context.Context) bool { return accessor != nil },
		func(ctx context.Context) string {
			return origin + ":" + cfvalue.Canonicalize(cfvalue.Map(loadSecrets(ctx, accessor, mapping)))
		},
	)
	b.doLoad = func(ctx context.Context) (cfvalue.Mapping, error) {
		return loadSecrets(ctx, accessor, mapping), nil
	}
	return b
}

func loadSecrets(ctx context.Context, accessor secrets.Accessor, mapping map[string]string) cfvalue.Mapping {
	root := cfvalue.Mapping{}
	for path, secretName := range mapping {
		sec, ok := secrets.SafeGetSecret(ctx, accessor, secretName)
		if !ok {
			zap.S().Warnw("secret source: secret missing, omitted", "path", path, "secret", secretName)
			continue
		}
		cfvalue.SetPath(root, path, cfvalue.String(string(sec.Value)))
	}
	return root
}

func accessorName(a secrets.Accessor) string {
	if a == nil {
		return "none"
	}
	return "bound"
}
