package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbot/atlas-mcp/internal/store"
)

func storesUnderTest(t *testing.T) map[string]store.Store {
	t.Helper()
	return map[string]store.Store{
		"file": store.NewFileStore(filepath.Join(t.TempDir(), "prefs.json"), store.DefaultPreferences),
		"mem":  store.NewMemStore(store.DefaultPreferences),
	}
}

func TestStoreDefaultsBeforeFirstWrite(t *testing.T) {
	for name, st := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := st.Get("work_hours.start")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "09:00", v)

			_, ok, err = st.Get("no_such_key")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreDottedKeys(t *testing.T) {
	for name, st := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Set("work_hours.start", "10:00"))
			require.NoError(t, st.Set("brand.new.nested", "deep"))

			v, ok, err := st.Get("work_hours.start")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "10:00", v)

			v, ok, err = st.Get("brand.new.nested")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "deep", v)

			// Addressing through a leaf value is a miss, not an error.
			_, ok, err = st.Get("user_email.nope")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreReset(t *testing.T) {
	for name, st := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Set("user_email", "me@example.com"))
			require.NoError(t, st.Reset())

			v, ok, err := st.Get("user_email")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "", v)
		})
	}
}

func TestStoreList(t *testing.T) {
	for name, st := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Set("user_email", "me@example.com"))

			doc, err := st.List()
			require.NoError(t, err)
			assert.Equal(t, "me@example.com", doc["user_email"])
			assert.Contains(t, doc, "availability")
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "prefs.json")

	first := store.NewFileStore(path, store.DefaultPreferences)
	require.NoError(t, first.Set("user_email", "me@example.com"))

	second := store.NewFileStore(path, store.DefaultPreferences)
	v, ok, err := second.Get("user_email")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "me@example.com", v)
}

func TestFileStoreRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	st := store.NewFileStore(path, store.DefaultPreferences)
	_, _, err := st.Get("user_email")
	assert.Error(t, err)
}
