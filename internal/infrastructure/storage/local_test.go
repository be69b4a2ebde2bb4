package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminhub/user-accounts/internal/core/ports"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newStore(t *testing.T) (*LocalImageStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "images")
	s, err := NewLocalImageStore(dir, "http://localhost:4006/public/images")
	require.NoError(t, err)
	return s, dir
}

func TestLocalImageStore_SaveAndDelete(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	url, err := s.Save(ctx, ports.ImageUpload{Filename: "me.png", Data: pngHeader})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:4006/public/images/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	path := filepath.Join(dir, filepath.Base(url))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, s.Delete(ctx, url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Second delete is a no-op.
	assert.NoError(t, s.Delete(ctx, url))
}

func TestLocalImageStore_SaveGeneratesDistinctNames(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	a, err := s.Save(ctx, ports.ImageUpload{Filename: "a.png", Data: pngHeader})
	require.NoError(t, err)
	b, err := s.Save(ctx, ports.ImageUpload{Filename: "a.png", Data: pngHeader})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalImageStore_SaveRejectsNonImage(t *testing.T) {
	s, dir := newStore(t)

	_, err := s.Save(context.Background(), ports.ImageUpload{Filename: "a.txt", Data: []byte("hello")})
	assert.ErrorIs(t, err, ErrNotImage)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalImageStore_DeleteIgnoresForeignURLs(t *testing.T) {
	s, dir := newStore(t)
	keep := filepath.Join(dir, "keep.png")
	require.NoError(t, os.WriteFile(keep, pngHeader, 0o644))

	assert.NoError(t, s.Delete(context.Background(), "https://elsewhere.example/keep.png"))
	assert.NoError(t, s.Delete(context.Background(), ""))

	_, err := os.Stat(keep)
	assert.NoError(t, err)
}

func TestLocalImageStore_DeleteStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "outside.png")
	require.NoError(t, os.WriteFile(outside, pngHeader, 0o644))

	s, err := NewLocalImageStore(filepath.Join(root, "images"), "http://localhost:4006/public/images/")
	require.NoError(t, err)

	assert.NoError(t, s.Delete(context.Background(), "http://localhost:4006/public/images/../outside.png"))

	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
