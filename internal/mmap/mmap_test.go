package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	want := []byte{0x00, 0x3C, 0x00, 0xC0}
	require.NoError(t, os.WriteFile(path, want, 0o600))

	m, err := Open(path)
	require.NoError(t, err)

	got, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 4, m.Len())

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err = m.Bytes()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpen_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	got, err := m.Bytes()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
