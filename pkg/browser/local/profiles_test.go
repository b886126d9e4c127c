package local

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onkernel/profiles-demo/pkg/browser"
)

func newTestStore(t *testing.T) *profileStore {
	t.Helper()
	store, err := newProfileStore(filepath.Join(t.TempDir(), "profiles"))
	require.NoError(t, err)
	return store
}

func TestProfileStoreCreate(t *testing.T) {
	store := newTestStore(t)

	profile, err := store.Create("profile_1_abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "profile_1_abcd1234", profile.Name)
	assert.NotEmpty(t, profile.CreatedAt)

	assert.True(t, store.Exists("profile_1_abcd1234"))
	assert.FileExists(t, filepath.Join(store.dir("profile_1_abcd1234"), metadataFile))
}

func TestProfileStoreCreateConflict(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create("taken")
	require.NoError(t, err)

	_, err = store.Create("taken")
	require.Error(t, err)
	assert.True(t, browser.IsConflict(err))
}

func TestProfileStoreRejectsPathTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create("../escape")
	assert.Error(t, err)
	assert.False(t, browser.IsConflict(err))

	_, err = store.Create("")
	assert.Error(t, err)
}

func TestProfileStoreCopyTo(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create("source")
	require.NoError(t, err)

	// Simulate browser state inside the profile.
	sub := filepath.Join(store.dir("source"), "Default")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "Cookies"), []byte("cookie data"), 0600))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, store.CopyTo("source", dst))

	data, err := os.ReadFile(filepath.Join(dst, "Default", "Cookies"))
	require.NoError(t, err)
	assert.Equal(t, "cookie data", string(data))

	// Writing to the copy leaves the source untouched.
	require.NoError(t, os.WriteFile(filepath.Join(dst, "Default", "Cookies"), []byte("mutated"), 0600))
	original, err := os.ReadFile(filepath.Join(sub, "Cookies"))
	require.NoError(t, err)
	assert.Equal(t, "cookie data", string(original))
}

func TestProfileStoreCopyToMissingProfile(t *testing.T) {
	store := newTestStore(t)
	err := store.CopyTo("ghost", t.TempDir())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
