package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerHasReservedProfiles(t *testing.T) {
	m := NewManager()
	for _, name := range []string{Base, Development, Testing, Staging, Production} {
		assert.NotNil(t, m.Get(name), "reserved profile %q must be pre-registered", name)
	}
}

func TestProfileVarInheritsFromParent(t *testing.T) {
	m := NewManager()
	prod := m.Get(Production)
	require.NotNil(t, prod)

	assert.Equal(t, true, prod.GetVar("ssl_required", nil))
	assert.Equal(t, "fallback", m.Get(Base).GetVar("not_set", "fallback"))
}

func TestGetResolvesAliases(t *testing.T) {
	m := NewManager()
	assert.Equal(t, Development, m.Get("dev").Name)
	assert.Equal(t, Production, m.Get("PROD").Name)
	assert.Equal(t, Staging, m.Get("stage").Name)
}

func TestCreateProfileInheritsFromNamedBase(t *testing.T) {
	m := NewManager()
	custom, err := m.CreateProfile("canary", Production)
	require.NoError(t, err)

	assert.Equal(t, true, custom.GetVar("ssl_required", nil), "child must inherit parent's vars")
}

func TestCreateProfileRejectsUnknownBase(t *testing.T) {
	m := NewManager()
	_, err := m.CreateProfile("canary", "does-not-exist")
	assert.Error(t, err)
}

func TestCreateProfileRejectsCycle(t *testing.T) {
	m := NewManager()
	child, err := m.CreateProfile("child", Base)
	require.NoError(t, err)
	_ = child

	// child's parent is base; attempting to make base's "parent" chain
	// loop back through child must be rejected.
	_, err = m.CreateProfile(Base, "child")
	assert.Error(t, err)
}

func TestSetActiveAndActive(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.SetActive("prod"))
	assert.Equal(t, Production, m.Active().Name)
}

func TestSetActiveRejectsUnknownProfile(t *testing.T) {
	m := NewManager()
	assert.Error(t, m.SetActive("nonexistent"))
}

func TestProfileSourcePathDirectoryForm(t *testing.T) {
	assert.Equal(t, "config/development.json", ProfileSourcePath("config/", "development", "json"))
}

func TestProfileSourcePathInsertsBeforeExtension(t *testing.T) {
	assert.Equal(t, "app.production.json", ProfileSourcePath("app.json", "production", "json"))
}

func TestProfileSourcePathCustomExtensionIsFileStem(t *testing.T) {
	assert.Equal(t, "config.test.toml", ProfileSourcePath("config", "test", "toml"))
}
