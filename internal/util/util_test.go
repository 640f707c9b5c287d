package util

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuman(t *testing.T) {
	assert.Equal(t, "512 B", Human(512))
	assert.Equal(t, "1.50 KB", Human(1536))
	assert.Equal(t, "2.00 MB", Human(2<<20))
	assert.Equal(t, "1.00 GB", Human(1<<30))
}

func TestCreateCBZKeepsPageOrder(t *testing.T) {
	dir := t.TempDir()

	var files []string
	for i := 1; i <= 11; i++ {
		p := filepath.Join(dir, fmt.Sprintf("%d.png", i))
		require.NoError(t, os.WriteFile(p, []byte(fmt.Sprintf("page %d", i)), 0644))
		files = append(files, p)
	}

	out := filepath.Join(dir, "item.cbz")
	require.NoError(t, CreateCBZ(files, out))

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	require.Len(t, r.File, 11)
	assert.Equal(t, "001.png", r.File[0].Name)
	assert.Equal(t, "002.png", r.File[1].Name)
	assert.Equal(t, "011.png", r.File[10].Name)

	rc, err := r.File[9].Open()
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "page 10", string(b))
}

func TestCreateCBZMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := CreateCBZ([]string{filepath.Join(dir, "nope.png")}, filepath.Join(dir, "x.cbz"))
	assert.Error(t, err)
}

func TestRemoveIfEmpty(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0755))
	assert.True(t, RemoveIfEmpty(empty))
	assert.NoDirExists(t, empty)

	full := filepath.Join(dir, "full")
	require.NoError(t, os.Mkdir(full, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "1.png"), nil, 0644))
	assert.False(t, RemoveIfEmpty(full))
	assert.DirExists(t, full)

	assert.False(t, RemoveIfEmpty(filepath.Join(dir, "missing")))
}
