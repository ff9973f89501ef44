package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key := ObjectKey("drivers", "d1", "Licence.PDF")
	assert.True(t, strings.HasPrefix(key, "drivers/d1/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	n, err := store.Save(key, strings.NewReader("scan"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	f, err := store.Open(key)
	require.NoError(t, err)
	body, _ := io.ReadAll(f)
	_ = f.Close()
	assert.Equal(t, "scan", string(body))

	require.NoError(t, store.Delete(key))
	require.NoError(t, store.Delete(key))
	_, err = store.Open(key)
	assert.Error(t, err)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../escape.txt", strings.NewReader("x"))
	assert.Error(t, err)
	_, err = store.Open("/etc/passwd")
	assert.Error(t, err)
}
