package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxlaunch/voxlaunch/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	return NewStore(path, logging.NewNop())
}

func TestInitializeSeedsDefaults(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Initialize())

	aliases := store.Aliases()
	assert.Contains(t, aliases, "Calculator")
	assert.Contains(t, aliases, "Safari")
	assert.Equal(t, map[string]string{}, store.UserCommands())
	assert.False(t, store.DisableWindowManager())
}

func TestInitializePreservesExistingValues(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Initialize())

	require.NoError(t, store.SetAlias("TestApp", []string{"test"}))
	require.NoError(t, store.SetUserCommand("Custom", "/path/to/app"))

	// Simulate a restart against the same file.
	reopened := NewStore(store.path, logging.NewNop())
	require.NoError(t, reopened.Initialize())

	assert.Equal(t, []string{"test"}, reopened.Aliases()["TestApp"])
	assert.Equal(t, map[string]string{"Custom": "/path/to/app"}, reopened.UserCommands())
}

func TestInitializeIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Initialize())
	first := store.Aliases()

	require.NoError(t, store.Initialize())
	assert.Equal(t, first, store.Aliases())
}

func TestPersistenceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Initialize())
	require.NoError(t, store.SetDisableWindowManager(true))

	raw, err := os.ReadFile(store.path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "disable_window_manager")

	reopened := NewStore(store.path, logging.NewNop())
	require.NoError(t, reopened.Initialize())
	assert.True(t, reopened.DisableWindowManager())
}

func TestOnChangeFires(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Initialize())

	fired := 0
	store.OnChange(func() { fired++ })

	require.NoError(t, store.SetUserCommand("Editor", "/usr/local/bin/edit"))
	require.NoError(t, store.SetAlias("Editor", []string{"editor"}))
	assert.Equal(t, 2, fired)
}

func TestAliasesReturnsCopy(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Initialize())

	aliases := store.Aliases()
	aliases["Calculator"] = []string{"mutated"}

	assert.NotEqual(t, []string{"mutated"}, store.Aliases()["Calculator"])
}
