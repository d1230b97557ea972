package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-catalog/internal/catalog"
	"media-catalog/internal/catalog/catalogtest"
	"media-catalog/internal/filesystem"
)

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf)

	out := buf.String()
	for _, cmd := range []string{"check", "playlists", "export <id>", "resolve <id>", "status"} {
		assert.Contains(t, out, cmd)
	}
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"check", "check"},
		{"re-solve_2", "re-solve_2"},
		{"rm -rf /", "rm_-rf__"},
		{"\x1b[31mred", "__31mred"},
		{"ünïcode", "_n_code"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeCommand(tt.in), "sanitizeCommand(%q)", tt.in)
	}
}

func TestCheckAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aaaa"), []byte("x"), 0o600))

	store := catalogtest.New().
		AddContent(catalog.ContentRecord{ContentID: "c1", ContentType: catalog.ContentTypeSound, Hash: "aaaa"}).
		AddContent(catalog.ContentRecord{ContentID: "c2", ContentType: catalog.ContentTypeVideo, Hash: "bbbb"})
	locator := filesystem.NewLocator(dir, filesystem.DefaultRetryConfig())

	var buf bytes.Buffer
	ok := checkAssets(context.Background(), &buf, store, locator)

	assert.False(t, ok)
	assert.Contains(t, buf.String(), "MISSING  c2")
	assert.NotContains(t, buf.String(), "MISSING  c1")
	assert.Contains(t, buf.String(), "Checked 2 content records, 1 missing assets")
}

func TestCheckAssetsAllPresent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aaaa"), []byte("x"), 0o600))

	store := catalogtest.New().AddContent(catalog.ContentRecord{ContentID: "c1", Hash: "aaaa"})

	var buf bytes.Buffer
	assert.True(t, checkAssets(context.Background(), &buf, store, filesystem.NewLocator(dir, filesystem.DefaultRetryConfig())))
}

func TestCheckAssetsListFailure(t *testing.T) {
	store := catalogtest.New()
	store.ListErr = errors.New("cursor died")

	var buf bytes.Buffer
	assert.False(t, checkAssets(context.Background(), &buf, store, filesystem.NewLocator(t.TempDir(), filesystem.DefaultRetryConfig())))
	assert.Contains(t, buf.String(), "cursor died")
}

func TestExportPlaylist(t *testing.T) {
	dir := t.TempDir()
	store := catalogtest.New().
		AddContent(catalog.ContentRecord{ContentID: "c1", Hash: "aaaa"}).
		AddPlaylist(catalog.Playlist{
			Name:       "Morning",
			Identifier: "p1",
			Content: []catalog.ContentEntry{
				{DisplayName: "Known", ContentID: "c1"},
				{DisplayName: "Gone", ContentID: "c9"},
			},
		})
	locator := filesystem.NewLocator(dir, filesystem.DefaultRetryConfig())

	var out, errOut bytes.Buffer
	require.True(t, exportPlaylist(context.Background(), &out, &errOut, store, locator, "p1"))

	assert.Contains(t, out.String(), "<title>Morning</title>")
	assert.Contains(t, out.String(), `src="`+filepath.Join(locator.Root(), "aaaa")+`"`)
	assert.Contains(t, errOut.String(), "skipped c9 (Gone)")
}

func TestExportUnknownPlaylist(t *testing.T) {
	var out, errOut bytes.Buffer
	ok := exportPlaylist(context.Background(), &out, &errOut, catalogtest.New(),
		filesystem.NewLocator(t.TempDir(), filesystem.DefaultRetryConfig()), "nope")

	assert.False(t, ok)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), `No playlist with identifier "nope"`)
}

func TestCheckPlaylists(t *testing.T) {
	store := catalogtest.New().
		AddContent(catalog.ContentRecord{ContentID: "c1", Hash: "aaaa"}).
		AddPlaylist(catalog.Playlist{
			Name:       "Mixed",
			Identifier: "p1",
			Content: []catalog.ContentEntry{
				{DisplayName: "Known", ContentID: "c1"},
				{DisplayName: "Gone", ContentID: "c9"},
			},
		}).
		AddPlaylist(catalog.Playlist{Name: "Empty", Identifier: "p2"})

	var buf bytes.Buffer
	ok := checkPlaylists(context.Background(), &buf, store)

	assert.False(t, ok)
	assert.Contains(t, buf.String(), "DANGLING  p1  c9")
	assert.Contains(t, buf.String(), "Checked 2 playlists, 1 dangling entries")
}

func TestCheckPlaylistsEmptyContentID(t *testing.T) {
	store := catalogtest.New().
		AddContent(catalog.ContentRecord{ContentID: "c1", Hash: "aaaa"}).
		AddPlaylist(catalog.Playlist{
			Name:       "Broken",
			Identifier: "p1",
			Content: []catalog.ContentEntry{
				{DisplayName: "Blank", ContentID: ""},
				{DisplayName: "Known", ContentID: "c1"},
			},
		})

	var buf bytes.Buffer
	ok := checkPlaylists(context.Background(), &buf, store)

	assert.False(t, ok)
	assert.NotContains(t, buf.String(), "Error:")
	assert.Contains(t, buf.String(), `DANGLING  p1  ""`)
	assert.Contains(t, buf.String(), "Checked 1 playlists, 1 dangling entries")
}

func TestCheckPlaylistsBackendFailure(t *testing.T) {
	store := catalogtest.New().AddPlaylist(catalog.Playlist{
		Name:       "One",
		Identifier: "p1",
		Content:    []catalog.ContentEntry{{ContentID: "c1"}},
	})
	store.FindErr = errors.New("connection reset")

	var buf bytes.Buffer
	assert.False(t, checkPlaylists(context.Background(), &buf, store))
	assert.Contains(t, buf.String(), "connection reset")
	assert.NotContains(t, buf.String(), "Checked")
}

func TestResolve(t *testing.T) {
	store := catalogtest.New().AddContent(catalog.ContentRecord{ContentID: "c1", Hash: "aaaa"})

	var buf bytes.Buffer
	require.True(t, resolve(context.Background(), &buf, store, "c1"))
	assert.Equal(t, "aaaa\n", buf.String())

	buf.Reset()
	assert.False(t, resolve(context.Background(), &buf, store, "c2"))
	assert.Contains(t, buf.String(), `No content record with id "c2"`)
}

func TestShowStatus(t *testing.T) {
	store := catalogtest.New()

	var buf bytes.Buffer
	assert.True(t, showStatus(context.Background(), &buf, store))
	assert.Contains(t, buf.String(), "Store reachable")

	store.PingErr = errors.New("no route to host")
	buf.Reset()
	assert.False(t, showStatus(context.Background(), &buf, store))
	assert.Contains(t, buf.String(), "no route to host")
}
