package client_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/project-showcase/client"
)

func TestFileKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	kv, err := client.NewFileKV(path)
	require.NoError(t, err)

	_, ok, err := kv.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("a", []byte(`[1,2]`)))
	require.NoError(t, kv.Set("b", []byte(`{"x":true}`)))
	assert.Error(t, kv.Set("c", []byte(`not json`)))

	reopened, err := client.NewFileKV(path)
	require.NoError(t, err)
	value, ok, err := reopened.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[1,2]`, string(value))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFileKV_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	kv, err := client.NewFileKV(path)
	require.NoError(t, err)
	_, _, err = kv.Get("a")
	assert.Error(t, err)
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	kv := client.NewMemoryKV()
	value := []byte(`"v"`)
	require.NoError(t, kv.Set("k", value))
	value[1] = 'x'

	got, ok, err := kv.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"v"`, string(got))
}
