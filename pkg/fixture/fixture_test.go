package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storecheck/storecheck/pkg/store"
)

func TestNewUser_Unique(t *testing.T) {
	u1, u2 := NewUser(), NewUser()
	assert.NotEqual(t, u1.Email, u2.Email)
	assert.NotEqual(t, u1.Password, u2.Password)
	assert.Contains(t, u1.Email, "@storecheck.test")
	assert.NotEmpty(t, u1.FirstName)
	assert.NotEmpty(t, u1.LastName)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "user.json")
	u := store.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "secret"}

	require.NoError(t, Save(path, u))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, u, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "credentials should not be world readable")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "user.json"))
	require.ErrorIs(t, err, ErrMissing)
	assert.Contains(t, err.Error(), "run registration setup first")
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	_, err := Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse fixture")

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"Email":"","Password":""}`), 0o600))
	_, err = Load(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials")
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")

	u1, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created, "first call should create the user")
	assert.NotEmpty(t, u1.Email)

	u2, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created, "second call should load the saved user")
	assert.Equal(t, u1, u2)
}
