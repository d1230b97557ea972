package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-catalog/internal/catalog"
	"media-catalog/internal/metrics"
	"media-catalog/internal/startup"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "catalog.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func seed(t *testing.T, s *SQLiteStore, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := s.db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func seedFixture(t *testing.T, s *SQLiteStore) {
	t.Helper()
	seed(t, s,
		`INSERT INTO content (content_id, content_type, hash) VALUES
			('C1', 1, 'h-abc'),
			('C2', 2, 'h-def')`,
		`INSERT INTO playlists (identifier, name) VALUES
			('P1', 'Mix'),
			('P2', 'Empty')`,
		// positions inserted out of order on purpose
		`INSERT INTO playlist_entries (playlist_identifier, position, name, content_type, content_id) VALUES
			('P1', 1, 'B', 2, 'C2'),
			('P1', 0, 'A', 1, 'C1')`,
	)
}

func TestSQLiteFindContent(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	seedFixture(t, s)
	ctx := context.Background()

	rec, err := s.FindContent(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, catalog.ContentRecord{ContentID: "C1", ContentType: catalog.ContentTypeSound, Hash: "h-abc"}, rec)

	_, err = s.FindContent(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSQLiteFindPlaylistKeepsOrder(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	seedFixture(t, s)

	got, err := s.FindPlaylist(context.Background(), "P1")
	require.NoError(t, err)

	want := catalog.Playlist{
		Name:       "Mix",
		Identifier: "P1",
		Content: []catalog.ContentEntry{
			{DisplayName: "A", ContentType: catalog.ContentTypeSound, ContentID: "C1"},
			{DisplayName: "B", ContentType: catalog.ContentTypeVideo, ContentID: "C2"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindPlaylist mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteFindPlaylistWithoutEntries(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	seedFixture(t, s)

	got, err := s.FindPlaylist(context.Background(), "P2")
	require.NoError(t, err)
	assert.Equal(t, "Empty", got.Name)
	assert.Nil(t, got.Content)

	_, err = s.FindPlaylist(context.Background(), "P9")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSQLiteListPlaylists(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)

	got, err := s.ListPlaylists(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	seedFixture(t, s)

	got, err = s.ListPlaylists(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []catalog.PlaylistLight{
		{Name: "Mix", Identifier: "P1"},
		{Name: "Empty", Identifier: "P2"},
	}, got)
}

func TestSQLiteListContent(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	seedFixture(t, s)

	got, err := s.ListContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []catalog.ContentRecord{
		{ContentID: "C1", ContentType: catalog.ContentTypeSound, Hash: "h-abc"},
		{ContentID: "C2", ContentType: catalog.ContentTypeVideo, Hash: "h-def"},
	}, got)
}

func TestSQLiteRejectsUnknownContentType(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	_, err := s.db.Exec(`INSERT INTO content (content_id, content_type, hash) VALUES ('C3', 3, 'h')`)
	assert.Error(t, err)
}

func TestSQLiteUniqueContentID(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	seedFixture(t, s)
	_, err := s.db.Exec(`INSERT INTO content (content_id, content_type, hash) VALUES ('C1', 0, 'other')`)
	assert.Error(t, err)
}

func TestSQLitePingAndClose(t *testing.T) {
	t.Parallel()

	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "catalog.db"), 0)
	require.NoError(t, err)

	assert.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close(context.Background()))

	err = s.Ping(context.Background())
	assert.ErrorIs(t, err, catalog.ErrBackend)
}

func TestNewSQLiteMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "nope", "catalog.db"), time.Second)
	assert.Error(t, err)
}

func TestOpenSelectsDriver(t *testing.T) {
	t.Parallel()

	cfg := &startup.Config{
		StoreDriver:  DriverSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "catalog.db"),
		StoreTimeout: time.Second,
	}
	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	assert.IsType(t, &SQLiteStore{}, store)

	cfg.StoreDriver = "postgres"
	_, err = Open(context.Background(), cfg)
	assert.True(t, errors.Is(err, ErrUnknownDriver))
}

// TestRecordQueryStatus is not parallel: it reads counter deltas.
func TestRecordQueryStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status string
	}{
		{name: "success", err: nil, status: "success"},
		{name: "not found", err: catalog.NotFound("op"), status: "not_found"},
		{name: "backend", err: catalog.Backend("op", errors.New("boom")), status: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.StoreQueryTotal.WithLabelValues("test_record_query", tt.status)
			before := testutil.ToFloat64(counter)

			recordQuery("test_record_query", time.Now(), tt.err)

			assert.InDelta(t, before+1, testutil.ToFloat64(counter), 0.001)
		})
	}
}
