package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-catalog/internal/catalog"
	"media-catalog/internal/catalog/catalogtest"
	"media-catalog/internal/envelope"
	"media-catalog/internal/startup"
)

var errStoreDown = errors.New("server selection timeout")

// fixture wires Handlers to an in-memory store and a temp asset directory.
type fixture struct {
	store    *catalogtest.Store
	assetDir string
	handlers *Handlers
	router   *mux.Router
}

func newFixture(t *testing.T, allowPartial bool) *fixture {
	t.Helper()

	f := &fixture{
		store:    catalogtest.New(),
		assetDir: t.TempDir(),
	}
	f.handlers = New(f.store, &startup.Config{
		StoreDriver:         "mongo",
		AssetDir:            f.assetDir,
		ListingAllowPartial: allowPartial,
	})

	r := mux.NewRouter()
	r.HandleFunc("/", f.handlers.Index).Methods(http.MethodGet)
	r.HandleFunc("/playlists", f.handlers.ListPlaylists).Methods(http.MethodGet)
	r.HandleFunc("/playlist/{identifier}/content", f.handlers.GetPlaylistContent).Methods(http.MethodGet)
	r.HandleFunc("/content/{id}/hash", f.handlers.GetContentHash).Methods(http.MethodGet)
	r.HandleFunc("/content/{id}/download", f.handlers.DownloadContent).Methods(http.MethodGet)
	f.router = r

	return f
}

func (f *fixture) writeAsset(t *testing.T, hash string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.assetDir, hash), data, 0o600))
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	return w
}

type body struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *string         `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) body {
	t.Helper()
	var b body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b), "body: %s", w.Body.String())
	assert.Equal(t, envelope.IsSuccess(w.Code), b.Success, "success flag disagrees with status %d", w.Code)
	return b
}

func TestScenarioPlaylistContent(t *testing.T) {
	f := newFixture(t, false)
	f.store.AddPlaylist(catalog.Playlist{
		Name:       "Morning",
		Identifier: "p1",
		Content: []catalog.ContentEntry{
			{DisplayName: "Song", ContentType: catalog.ContentTypeSound, ContentID: "c1"},
		},
	})

	w := f.get("/playlist/p1/content")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, envelope.ContentType, w.Header().Get("Content-Type"))

	b := decode(t, w)
	var pl struct {
		Name       string `json:"name"`
		Identifier string `json:"identifier"`
		Content    []struct {
			Name        string `json:"name"`
			ContentType int    `json:"content_type"`
			ContentID   string `json:"content_id"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(b.Result, &pl))
	require.Len(t, pl.Content, 1)
	assert.Equal(t, "c1", pl.Content[0].ContentID)
	assert.Equal(t, 1, pl.Content[0].ContentType)
	assert.Equal(t, "Song", pl.Content[0].Name)
	assert.Equal(t, "Morning", pl.Name)
}

func TestScenarioMissingPlaylistIsNoContent(t *testing.T) {
	f := newFixture(t, false)

	w := f.get("/playlist/missing/content")
	require.Equal(t, http.StatusNoContent, w.Code)

	// the recorder keeps the envelope; a real server drops a 204 body
	b := decode(t, w)
	assert.True(t, b.Success)
	assert.JSONEq(t, `{}`, string(b.Result))
	assert.Nil(t, b.Error)
}

func TestPlaylistContentBackendFailure(t *testing.T) {
	f := newFixture(t, false)
	f.store.FindErr = errStoreDown

	w := f.get("/playlist/p1/content")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	b := decode(t, w)
	require.NotNil(t, b.Error)
	assert.Equal(t, envelope.DefaultError, *b.Error)
	assert.NotContains(t, w.Body.String(), "selection timeout")
}

func TestScenarioDownloadMissingFile(t *testing.T) {
	f := newFixture(t, false)
	f.store.AddContent(catalog.ContentRecord{ContentID: "c1", ContentType: catalog.ContentTypeSound, Hash: "abcd1234"})

	w := f.get("/content/c1/download")
	require.Equal(t, http.StatusNotFound, w.Code)

	b := decode(t, w)
	require.NotNil(t, b.Error)
	assert.Equal(t, "file not found", *b.Error)
}

func TestScenarioDownloadStreamsBytes(t *testing.T) {
	f := newFixture(t, false)
	f.store.AddContent(catalog.ContentRecord{ContentID: "c1", ContentType: catalog.ContentTypeSound, Hash: "abcd1234"})
	payload := []byte{0x00, 0x01, 0xFE, 0xFF, 'i', 'd', '3'}
	f.writeAsset(t, "abcd1234", payload)

	w := f.get("/content/c1/download")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, payload, w.Body.Bytes())
	assert.NotEqual(t, envelope.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "7", w.Header().Get("Content-Length"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestDownloadUnknownContentIsFileNotFound(t *testing.T) {
	f := newFixture(t, false)

	w := f.get("/content/ghost/download")
	require.Equal(t, http.StatusNotFound, w.Code)

	b := decode(t, w)
	assert.Equal(t, "file not found", *b.Error)
}

func TestDownloadRejectsTraversalHash(t *testing.T) {
	f := newFixture(t, false)
	f.store.AddContent(catalog.ContentRecord{ContentID: "c1", Hash: "../secret"})
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(f.assetDir), "secret"), []byte("x"), 0o600))

	w := f.get("/content/c1/download")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScenarioUnknownHash(t *testing.T) {
	f := newFixture(t, false)

	w := f.get("/content/unknown/hash")
	require.Equal(t, http.StatusNotFound, w.Code)

	b := decode(t, w)
	assert.False(t, b.Success)
	require.NotNil(t, b.Error)
	assert.Equal(t, "content not found", *b.Error)
}

func TestContentHash(t *testing.T) {
	f := newFixture(t, false)
	f.store.AddContent(catalog.ContentRecord{ContentID: "c1", Hash: "abcd1234"})

	w := f.get("/content/c1/hash")
	require.Equal(t, http.StatusOK, w.Code)

	b := decode(t, w)
	assert.JSONEq(t, `"abcd1234"`, string(b.Result))
}

func TestContentHashBackendFailureCollapsesToNotFound(t *testing.T) {
	f := newFixture(t, false)
	f.store.FindErr = errStoreDown

	w := f.get("/content/c1/hash")
	require.Equal(t, http.StatusNotFound, w.Code)

	b := decode(t, w)
	assert.Equal(t, "content not found", *b.Error)
}

func TestMissingPathParameter(t *testing.T) {
	f := newFixture(t, false)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		vars    map[string]string
		message string
	}{
		{"playlist content", f.handlers.GetPlaylistContent, map[string]string{"identifier": ""}, "playlist identifier is required"},
		{"playlist content blank", f.handlers.GetPlaylistContent, map[string]string{"identifier": "  "}, "playlist identifier is required"},
		{"hash", f.handlers.GetContentHash, map[string]string{}, "content id is required"},
		{"download", f.handlers.DownloadContent, map[string]string{"id": ""}, "content id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", http.NoBody), tt.vars)
			w := httptest.NewRecorder()
			tt.handler(w, r)

			require.Equal(t, http.StatusBadRequest, w.Code)
			b := decode(t, w)
			assert.Equal(t, tt.message, *b.Error)
		})
	}
}

func TestPathParametersAreLookedUpVerbatim(t *testing.T) {
	f := newFixture(t, false)
	f.store.AddContent(catalog.ContentRecord{ContentID: "c1", Hash: "abcd1234"})
	f.store.AddContent(catalog.ContentRecord{ContentID: " c2", Hash: "ef567890"})
	f.store.AddPlaylist(catalog.Playlist{Name: "Morning", Identifier: "p1"})

	w := f.get("/content/%20c1/hash")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.get("/content/%20c2/hash")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"ef567890"`, string(decode(t, w).Result))

	w = f.get("/playlist/p1%20/content")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.get("/content/%20/hash")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "content id is required", *decode(t, w).Error)
}

func TestListPlaylistsOmitsContent(t *testing.T) {
	f := newFixture(t, false)
	f.store.AddPlaylist(catalog.Playlist{
		Name:       "Morning",
		Identifier: "p1",
		Content:    []catalog.ContentEntry{{DisplayName: "Song", ContentType: catalog.ContentTypeSound, ContentID: "c1"}},
	})
	f.store.AddPlaylist(catalog.Playlist{Name: "Evening", Identifier: "p2"})

	w := f.get("/playlists")
	require.Equal(t, http.StatusOK, w.Code)

	b := decode(t, w)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(b.Result, &items))
	require.Len(t, items, 2)
	for _, item := range items {
		assert.NotContains(t, item, "content")
		assert.Len(t, item, 2)
	}
	assert.Equal(t, "p1", items[0]["identifier"])
	assert.Equal(t, "Evening", items[1]["name"])
}

func TestListPlaylistsEmpty(t *testing.T) {
	f := newFixture(t, false)

	w := f.get("/playlists")
	require.Equal(t, http.StatusOK, w.Code)

	b := decode(t, w)
	assert.JSONEq(t, `[]`, string(b.Result))
}

func TestListPlaylistsPartialPolicy(t *testing.T) {
	seed := func(f *fixture) {
		f.store.AddPlaylist(catalog.Playlist{Name: "A", Identifier: "p1"})
		f.store.AddPlaylist(catalog.Playlist{Name: "B", Identifier: "p2"})
		f.store.ListErr = errStoreDown
		f.store.ListFailAfter = 1
	}

	t.Run("strict", func(t *testing.T) {
		f := newFixture(t, false)
		seed(f)

		w := f.get("/playlists")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		b := decode(t, w)
		assert.Equal(t, envelope.DefaultError, *b.Error)
	})

	t.Run("partial", func(t *testing.T) {
		f := newFixture(t, true)
		seed(f)

		w := f.get("/playlists")
		require.Equal(t, http.StatusOK, w.Code)
		b := decode(t, w)
		assert.JSONEq(t, `[{"name":"A","identifier":"p1"}]`, string(b.Result))
	})

	t.Run("partial with store unreachable", func(t *testing.T) {
		f := newFixture(t, true)
		seed(f)
		f.store.ListFailAfter = 0

		w := f.get("/playlists")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		b := decode(t, w)
		assert.False(t, b.Success)
		assert.Equal(t, envelope.DefaultError, *b.Error)
	})
}

func TestIndex(t *testing.T) {
	f := newFixture(t, false)

	w := f.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{catalog.BadRequest("op", errors.New("empty")), http.StatusBadRequest},
		{catalog.NotFound("op"), http.StatusNotFound},
		{catalog.Backend("op", errStoreDown), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), "%v", tt.err)
	}
}
