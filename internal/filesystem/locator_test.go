package filesystem

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-catalog/internal/catalog"
)

func newTestLocator(t *testing.T) (*Locator, string) {
	t.Helper()
	root := t.TempDir()
	return NewLocator(root, DefaultRetryConfig()), root
}

func TestValidateHash(t *testing.T) {
	tests := []struct {
		hash    string
		wantErr bool
	}{
		{hash: "abcd1234"},
		{hash: "d41d8cd98f00b204e9800998ecf8427e"},
		{hash: "with.dot"},
		{hash: "", wantErr: true},
		{hash: ".", wantErr: true},
		{hash: "..", wantErr: true},
		{hash: "../etc/passwd", wantErr: true},
		{hash: "a/b", wantErr: true},
		{hash: "/abs", wantErr: true},
		{hash: `..\windows`, wantErr: true},
		{hash: "nul\x00byte", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.hash, func(t *testing.T) {
			err := ValidateHash(tt.hash)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidHash)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocatorOpenReturnsWholeFile(t *testing.T) {
	loc, root := newTestLocator(t)
	want := []byte{0x49, 0x44, 0x33, 0x04, 0x00, 0xff}
	require.NoError(t, os.WriteFile(filepath.Join(root, "abcd1234"), want, 0o644))

	asset, err := loc.Open("abcd1234")
	require.NoError(t, err)
	defer asset.Close()

	assert.Equal(t, int64(len(want)), asset.Size)
	got, err := io.ReadAll(asset)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLocatorOpenMissingIsNotFound(t *testing.T) {
	loc, _ := newTestLocator(t)

	_, err := loc.Open("abcd1234")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.True(t, errors.Is(err, os.ErrNotExist), "cause should stay in the chain")
}

func TestLocatorOpenRejectsTraversal(t *testing.T) {
	loc, root := newTestLocator(t)
	outside := filepath.Join(filepath.Dir(root), "secret")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))
	t.Cleanup(func() { os.Remove(outside) })

	_, err := loc.Open("../secret")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestLocatorOpenDirectoryIsNotFound(t *testing.T) {
	loc, root := newTestLocator(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "subdir"), 0o755))

	_, err := loc.Open("subdir")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestLocatorExists(t *testing.T) {
	loc, root := newTestLocator(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "present"), []byte("x"), 0o644))

	assert.True(t, loc.Exists("present"))
	assert.False(t, loc.Exists("absent"))
	assert.False(t, loc.Exists("../present"))
}
