package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-catalog/internal/catalog"
	"media-catalog/internal/logging"
)

// SQLiteStore reads catalog documents from an embedded SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	dbPath  string
	timeout time.Duration
}

// NewSQLite opens the database file at dbPath, creating the schema if it
// does not exist yet. The parent directory must already exist.
func NewSQLite(ctx context.Context, dbPath string, timeout time.Duration) (*SQLiteStore, error) {
	logging.Info("SQLite store path: %s", dbPath)

	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{
		db:      db,
		dbPath:  dbPath,
		timeout: timeout,
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("SQLite store initialized at %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) initialize(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	schema := `
	CREATE TABLE IF NOT EXISTS content (
		content_id TEXT PRIMARY KEY,
		content_type INTEGER NOT NULL CHECK (content_type IN (0, 1, 2)),
		hash TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS playlists (
		identifier TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	-- Ordered playlist content; position is the index in the content array
	CREATE TABLE IF NOT EXISTS playlist_entries (
		playlist_identifier TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		content_type INTEGER NOT NULL CHECK (content_type IN (0, 1, 2)),
		content_id TEXT NOT NULL,
		PRIMARY KEY (playlist_identifier, position),
		FOREIGN KEY (playlist_identifier) REFERENCES playlists(identifier) ON DELETE CASCADE
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// FindContent implements catalog.Store.
func (s *SQLiteStore) FindContent(ctx context.Context, contentID string) (rec catalog.ContentRecord, err error) {
	const op = "find_content"
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var ordinal int64
	err = s.db.QueryRowContext(ctx,
		"SELECT content_id, content_type, hash FROM content WHERE content_id = ?", contentID,
	).Scan(&rec.ContentID, &ordinal, &rec.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.ContentRecord{}, catalog.NotFound(op)
	}
	if err != nil {
		return catalog.ContentRecord{}, catalog.Backend(op, fmt.Errorf("content %q: %w", contentID, err))
	}

	if rec.ContentType, err = catalog.ParseContentType(ordinal); err != nil {
		return catalog.ContentRecord{}, catalog.Backend(op, fmt.Errorf("content %q: %w", contentID, err))
	}
	return rec, nil
}

// FindPlaylist implements catalog.Store. A playlist without entries is
// returned with a nil Content.
func (s *SQLiteStore) FindPlaylist(ctx context.Context, identifier string) (p catalog.Playlist, err error) {
	const op = "find_playlist"
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	err = s.db.QueryRowContext(ctx,
		"SELECT name, identifier FROM playlists WHERE identifier = ?", identifier,
	).Scan(&p.Name, &p.Identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Playlist{}, catalog.NotFound(op)
	}
	if err != nil {
		return catalog.Playlist{}, catalog.Backend(op, fmt.Errorf("playlist %q: %w", identifier, err))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, content_type, content_id
		FROM playlist_entries
		WHERE playlist_identifier = ?
		ORDER BY position`, identifier)
	if err != nil {
		return catalog.Playlist{}, catalog.Backend(op, fmt.Errorf("playlist %q entries: %w", identifier, err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Error("error closing rows: %v", closeErr)
		}
	}()

	for rows.Next() {
		var entry catalog.ContentEntry
		var ordinal int64
		if err := rows.Scan(&entry.DisplayName, &ordinal, &entry.ContentID); err != nil {
			return catalog.Playlist{}, catalog.Backend(op, err)
		}
		if entry.ContentType, err = catalog.ParseContentType(ordinal); err != nil {
			return catalog.Playlist{}, catalog.Backend(op, fmt.Errorf("playlist %q: %w", identifier, err))
		}
		p.Content = append(p.Content, entry)
	}
	if err := rows.Err(); err != nil {
		return catalog.Playlist{}, catalog.Backend(op, err)
	}
	return p, nil
}

// ListPlaylists implements catalog.Store. Rows scanned before a failure are
// returned together with the error.
func (s *SQLiteStore) ListPlaylists(ctx context.Context) (out []catalog.PlaylistLight, err error) {
	const op = "list_playlists"
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT name, identifier FROM playlists ORDER BY rowid")
	if err != nil {
		return nil, catalog.Backend(op, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Error("error closing rows: %v", closeErr)
		}
	}()

	out = []catalog.PlaylistLight{}
	for rows.Next() {
		var p catalog.PlaylistLight
		if err := rows.Scan(&p.Name, &p.Identifier); err != nil {
			return out, catalog.Backend(op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return out, catalog.Backend(op, err)
	}
	return out, nil
}

// ListContent implements catalog.Store.
func (s *SQLiteStore) ListContent(ctx context.Context) (out []catalog.ContentRecord, err error) {
	const op = "list_content"
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT content_id, content_type, hash FROM content ORDER BY content_id")
	if err != nil {
		return nil, catalog.Backend(op, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Error("error closing rows: %v", closeErr)
		}
	}()

	out = []catalog.ContentRecord{}
	for rows.Next() {
		var rec catalog.ContentRecord
		var ordinal int64
		if err := rows.Scan(&rec.ContentID, &ordinal, &rec.Hash); err != nil {
			return nil, catalog.Backend(op, err)
		}
		if rec.ContentType, err = catalog.ParseContentType(ordinal); err != nil {
			return nil, catalog.Backend(op, fmt.Errorf("content %q: %w", rec.ContentID, err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, catalog.Backend(op, err)
	}
	return out, nil
}

// Ping implements catalog.Store.
func (s *SQLiteStore) Ping(ctx context.Context) (err error) {
	const op = "ping"
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return catalog.Backend(op, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close(_ context.Context) error {
	return s.db.Close()
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	if dbInfo, err := os.Stat(dbPath); err == nil {
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", dbPath, dbInfo.Mode(), dbInfo.Size())
		if dbInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("Database file is read-only! Mode: %v", dbInfo.Mode())
		}
	}

	walPath := dbPath + "-wal"
	if walInfo, err := os.Stat(walPath); err == nil {
		logging.Debug("WAL file exists: %s (mode: %v, size: %d bytes)", walPath, walInfo.Mode(), walInfo.Size())
		if walInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("WAL file is read-only! Mode: %v", walInfo.Mode())
		}
	}

	return nil
}
