package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/confstack/internal/cache"
	"github.com/yanizio/confstack/internal/profile"
	"github.com/yanizio/confstack/internal/source"
	"github.com/yanizio/confstack/internal/validate"
	"github.com/yanizio/confstack/internal/value"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestManagerStateMachineTransitions(t *testing.T) {
	m := New()
	assert.Equal(t, StateEmpty, m.State())

	dir := t.TempDir()
	path := writeTempFile(t, dir, "app.json", `{"host": "localhost"}`)

	m.AddSource(source.NewJSONSource(path))
	assert.Equal(t, StateLoaded, m.State())

	m.Dispose()
	assert.Equal(t, StateDisposed, m.State())
}

func TestManagerPrecedenceLastSourceWins(t *testing.T) {
	dir := t.TempDir()
	low := writeTempFile(t, dir, "low.json", `{"host": "low", "port": 1}`)
	high := writeTempFile(t, dir, "high.json", `{"host": "high"}`)

	m := New()
	m.AddSource(source.NewJSONSource(low))
	m.AddSource(source.NewJSONSource(high))

	assert.Equal(t, "high", m.Get("host", value.String("")).Str)
	assert.Equal(t, int64(1), m.GetInt("port", 0), "lower-precedence keys not overridden must survive the merge")
}

func TestManagerGetNeverRaisesOnMissingPath(t *testing.T) {
	m := New()
	assert.Equal(t, "fallback", m.Get("nonexistent.path", value.String("fallback")).Str)
}

func TestManagerReloadFiresCallbacksOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "app.json", `{"host": "v1"}`)

	m := New(WithCache(cache.NewManager(cache.NewMemoryBackend(0), "test", true)))
	m.AddSource(source.NewJSONSource(path))

	fired := 0
	m.OnReload(func(tree value.Mapping) { fired++ })

	writeTempFile(t, dir, "app.json", `{"host": "v2"}`)
	require.NoError(t, m.Reload(context.Background()))

	assert.Equal(t, 1, fired)
	assert.Equal(t, "v2", m.Get("host", value.String("")).Str)
}

func TestManagerReloadIsNoopWhenTreeUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "app.json", `{"host": "same"}`)

	m := New()
	m.AddSource(source.NewJSONSource(path))

	require.NoError(t, m.Reload(context.Background()))
	stats := m.Stats()
	assert.Equal(t, int64(0), stats.ReloadCount, "identical reload must not count as a structural change")
}

func TestManagerOffReloadStopsFutureCallbacks(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "app.json", `{"host": "v1"}`)

	m := New()
	m.AddSource(source.NewJSONSource(path))

	fired := 0
	id := m.OnReload(func(tree value.Mapping) { fired++ })
	m.OffReload(id)

	writeTempFile(t, dir, "app.json", `{"host": "v2"}`)
	require.NoError(t, m.Reload(context.Background()))

	assert.Equal(t, 0, fired)
}

func TestManagerValidateWithNoSchemaIsAlwaysOK(t *testing.T) {
	m := New()
	res := m.Validate(validate.Lenient)
	assert.Equal(t, validate.OK, res.Outcome)
}

func TestManagerValidateReportsSchemaErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "app.json", `{"port": "not-a-number"}`)

	schema := validate.NewSchema().WithField("port", validate.Field{Kind: value.KindInt, Required: true})

	m := New(WithSchema(schema))
	m.AddSource(source.NewJSONSource(path))

	res := m.Validate(validate.Strict)
	assert.Equal(t, validate.Error, res.Outcome)
	assert.False(t, m.IsValid())
	assert.NotEmpty(t, m.Errors())
}

func TestManagerDisposeRejectsFurtherReload(t *testing.T) {
	m := New()
	m.Dispose()
	assert.ErrorIs(t, m.Reload(context.Background()), errDisposed)
}

func TestManagerBindDecodesTreeIntoStruct(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "app.json", `{"host": "localhost", "port": 8080}`)

	type appConfig struct {
		Host string `config:"host"`
		Port int    `config:"port"`
	}

	m := New()
	m.AddSource(source.NewJSONSource(path))

	var cfg appConfig
	require.NoError(t, m.Bind(&cfg))
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
}

func TestManagerRemoveSourceRebuildsFromRemaining(t *testing.T) {
	dir := t.TempDir()
	low := writeTempFile(t, dir, "low.json", `{"host": "low"}`)
	high := writeTempFile(t, dir, "high.json", `{"host": "high"}`)

	m := New()
	m.AddSource(source.NewJSONSource(low))
	highSrc := source.NewJSONSource(high)
	m.AddSource(highSrc)
	assert.Equal(t, "high", m.Get("host", value.String("")).Str)

	m.RemoveSource(highSrc)
	assert.Equal(t, "low", m.Get("host", value.String("")).Str)
}

func TestManagerAddProfiledSourceUsesBoundProfileManager(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "app.testing.json", `{"host": "profiled"}`)

	profiles := profile.NewManager()
	require.NoError(t, profiles.SetActive(profile.Testing))

	m := New(WithProfileManager(profiles))
	m.AddProfiledSource(filepath.Join(dir, "app.json"), "json", source.NewJSONSource)

	assert.Equal(t, "profiled", m.Get("host", value.String("")).Str)
}
