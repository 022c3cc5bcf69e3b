package filestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayesamomo/wageflow/internal/domain"
)

func TestDisk_SaveReadDelete(t *testing.T) {
	store, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	path := ProofPath("owner", "inv", 1700000000, ".PNG")
	assert.Equal(t, filepath.Join("proofs", "owner", "inv-1700000000.png"), path)

	require.NoError(t, store.Save(path, []byte("receipt")))

	ok, err := store.Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "receipt", string(data))

	require.NoError(t, store.Delete(path))
	require.NoError(t, store.Delete(path))

	ok, err = store.Exists(path)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Read(path)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDisk_RejectsEscapingPaths(t *testing.T) {
	store, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../outside", "proofs/../../x", "/etc/passwd", ""} {
		err := store.Save(p, []byte("x"))
		assert.ErrorIs(t, err, domain.ErrValidation, p)
	}
}
