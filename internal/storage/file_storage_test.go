package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *FileStorage {
	t.Helper()
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestSaveAndLoadJSON(t *testing.T) {
	fs := newTestStorage(t)

	type doc struct {
		Title string `json:"title"`
	}
	require.NoError(t, fs.SaveJSONFile("scripts", "a.json", doc{Title: "Carrossel"}))
	assert.True(t, fs.Exists("scripts", "a.json"))
	assert.NoFileExists(t, filepath.Join(fs.BaseDir, "scripts", "a.json.tmp"))

	var got doc
	require.NoError(t, fs.LoadJSONFile("scripts", "a.json", &got))
	assert.Equal(t, "Carrossel", got.Title)
	assert.Equal(t, 1, fs.CacheSize())

	// a write invalidates the cached read
	require.NoError(t, fs.SaveJSONFile("scripts", "a.json", doc{Title: "Stories"}))
	require.NoError(t, fs.LoadJSONFile("scripts", "a.json", &got))
	assert.Equal(t, "Stories", got.Title)
}

func TestNotFound(t *testing.T) {
	fs := newTestStorage(t)

	_, err := fs.LoadTextFile("scripts", "missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, fs.DeleteFile("scripts", "missing.json"), ErrNotFound)
}

func TestInvalidPath(t *testing.T) {
	fs := newTestStorage(t)

	assert.ErrorIs(t, fs.SaveTextFile("scripts", "../escape.json", []byte("x")), ErrInvalidPath)
	_, err := fs.LoadTextFile("../..", "passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.False(t, fs.Exists("scripts", ".."))
}

func TestListFiles(t *testing.T) {
	fs := newTestStorage(t)

	files, err := fs.ListFiles("scripts", ".json")
	require.NoError(t, err)
	assert.Empty(t, files)

	require.NoError(t, fs.SaveTextFile("scripts", "old.json", []byte("{}")))
	require.NoError(t, fs.SaveTextFile("scripts", "new.json", []byte("{}")))
	require.NoError(t, fs.SaveTextFile("scripts", "notes.txt", []byte("x")))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(fs.BaseDir, "scripts", "old.json"), past, past))

	files, err = fs.ListFiles("scripts", ".json")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "new.json", files[0].Name)
	assert.Equal(t, "old.json", files[1].Name)
}

func TestDeleteFile(t *testing.T) {
	fs := newTestStorage(t)

	require.NoError(t, fs.SaveTextFile("exports", "a.md", []byte("# A")))
	_, err := fs.LoadTextFile("exports", "a.md")
	require.NoError(t, err)

	require.NoError(t, fs.DeleteFile("exports", "a.md"))
	assert.False(t, fs.Exists("exports", "a.md"))
	assert.Equal(t, 0, fs.CacheSize())
}

func TestCacheBound(t *testing.T) {
	fs := newTestStorage(t)
	fs.maxCacheSize = 2

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, fs.SaveTextFile("x", name, []byte(name)))
		_, err := fs.LoadTextFile("x", name)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, fs.CacheSize())

	fs.cacheExpiry = 0
	fs.cleanupExpiredCache()
	assert.Equal(t, 0, fs.CacheSize())
}
