// Vault-backed secrets accessor.
//
// Adapted from the teacher's internal/vault/vault.go: same singleton-client
// shape, background token renewal loop, and per-key TTL cache, but
// re-pointed at the secrets.Accessor contract (spec.md §4.8/§6) instead of
// a bespoke GetKV(ctx, path, key, ttl) call. list_secret_names() is new,
// grounded on the equivalent capability described for
// HashiCorpVaultSecrets in original_source/config_manager/secrets.py.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// VaultAccessor is a concurrency-safe Accessor backed by HashiCorp Vault's
// KV-v2 engine. Create once at startup; zero value is invalid.
type VaultAccessor struct {
	api   *vault.Client
	mount string

	cacheMu sync.RWMutex
	cache   map[string]cachedSecret

	defaultTTL time.Duration
}

type cachedSecret struct {
	secret *Secret
	exp    time.Time
}

// NewVaultAccessor constructs a VaultAccessor and starts a background
// token-renewal loop. VAULT_ADDR and VAULT_TOKEN are read from the
// environment the same way the teacher's client did.
func NewVaultAccessor(ctx context.Context, mount string, defaultTTL time.Duration) (*VaultAccessor, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	v := &VaultAccessor{
		api:        apiCli,
		mount:      mount,
		cache:      make(map[string]cachedSecret),
		defaultTTL: defaultTTL,
	}
	go v.renewLoop(ctx)
	return v, nil
}

// GetSecret fetches a named secret from KV-v2 under mount/name, treating the
// value map's "value" key as the secret payload and an optional string
// "tier" key as Secret.Tier; other keys are ignored. Cached for defaultTTL
// when positive.
func (v *VaultAccessor) GetSecret(ctx context.Context, name string) (*Secret, error) {
	if name == "" {
		return nil, errors.New("secrets: name must be non-empty")
	}

	if v.defaultTTL > 0 {
		v.cacheMu.RLock()
		if cv, ok := v.cache[name]; ok && time.Now().Before(cv.exp) {
			v.cacheMu.RUnlock()
			cv.secret.Accesses++
			return cv.secret, nil
		}
		v.cacheMu.RUnlock()
	}

	sec, err := v.api.KVv2(v.mount).Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("vault get %s: %w", name, err)
	}

	raw, ok := sec.Data["value"]
	if !ok {
		return nil, fmt.Errorf("secrets: key %q missing \"value\" field", name)
	}
	sval, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("secrets: value at %q is not a string", name)
	}

	result := &Secret{
		Name:      name,
		Value:     []byte(sval),
		CreatedAt: time.Now(),
	}
	if tier, ok := sec.Data["tier"].(string); ok {
		result.Tier = tier
	}

	if v.defaultTTL > 0 {
		v.cacheMu.Lock()
		v.cache[name] = cachedSecret{secret: result, exp: time.Now().Add(v.defaultTTL)}
		v.cacheMu.Unlock()
	}
	return result, nil
}

// ListSecretNames lists keys under the configured mount's metadata path.
func (v *VaultAccessor) ListSecretNames(ctx context.Context) ([]string, error) {
	secret, err := v.api.Logical().ListWithContext(ctx, fmt.Sprintf("%s/metadata", v.mount))
	if err != nil {
		return nil, fmt.Errorf("vault list %s: %w", v.mount, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, nil
	}
	raw, ok := secret.Data["keys"].([]any)
	if !ok {
		return nil, nil
	}
	names := make([]string, 0, len(raw))
	for _, k := range raw {
		if s, ok := k.(string); ok {
			names = append(names, s)
		}
	}
	return names, nil
}

// Exists reports whether name resolves to a readable secret.
func (v *VaultAccessor) Exists(ctx context.Context, name string) bool {
	_, err := v.GetSecret(ctx, name)
	return err == nil
}

func (v *VaultAccessor) renewLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		sec, err := v.api.Auth().Token().RenewSelf(0)
		if err != nil {
			zap.S().Warnw("vault token renew self failed", "err", err)
			vaultBackoff(ctx, 30*time.Second)
			continue
		}
		if sec == nil || !sec.Auth.Renewable {
			zap.S().Debugw("vault token not renewable, sleeping")
			vaultBackoff(ctx, time.Hour)
			continue
		}

		renewer, err := v.api.NewRenewer(&vault.RenewerInput{Secret: sec, Grace: 15 * time.Second})
		if err != nil {
			zap.S().Warnw("vault renewer init failed", "err", err)
			vaultBackoff(ctx, 30*time.Second)
			continue
		}
		go renewer.Renew()

		v.driveRenewer(ctx, renewer)
	}
}

func (v *VaultAccessor) driveRenewer(ctx context.Context, renewer *vault.Renewer) {
	for {
		select {
		case <-ctx.Done():
			renewer.Stop()
			return
		case err := <-renewer.DoneCh():
			renewer.Stop()
			if err != nil {
				zap.S().Warnw("vault token renewal stopped", "err", err)
			}
			vaultBackoff(ctx, 15*time.Second)
			return
		case ev := <-renewer.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				zap.S().Debugw("vault token renewed", "ttl_seconds", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

func vaultBackoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
