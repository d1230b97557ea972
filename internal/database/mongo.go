package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"media-catalog/internal/catalog"
	"media-catalog/internal/logging"
)

// Collection names inside the catalog database.
const (
	ContentCollection  = "content"
	PlaylistCollection = "playlist"
)

const appName = "media-catalog"

// MongoOptions configures NewMongo.
type MongoOptions struct {
	URI           string
	Database      string
	Timeout       time.Duration
	EnsureIndexes bool
}

// MongoStore reads catalog documents from MongoDB.
type MongoStore struct {
	client    *mongo.Client
	db        *mongo.Database
	content   *mongo.Collection
	playlists *mongo.Collection
	timeout   time.Duration
}

// NewMongo connects to MongoDB, verifies the connection and optionally
// creates the unique indexes on content_id and identifier.
func NewMongo(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logging.Info("Connecting to MongoDB database %q", opts.Database)

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetAppName(appName).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		if discErr := client.Disconnect(context.Background()); discErr != nil {
			logging.Error("failed to disconnect after ping failure: %v", discErr)
		}
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	s := NewMongoFromDatabase(client.Database(opts.Database), timeout)
	s.client = client

	if opts.EnsureIndexes {
		if err := s.EnsureIndexes(ctx); err != nil {
			// Existing duplicate keys make index creation fail; the service
			// can still serve reads.
			logging.Warn("Failed to ensure unique indexes: %v", err)
		}
	}

	logging.Info("MongoDB store ready (database=%s)", opts.Database)
	return s, nil
}

// NewMongoFromDatabase wraps an already connected database handle. The
// returned store does not own the client and Close leaves it connected.
func NewMongoFromDatabase(db *mongo.Database, timeout time.Duration) *MongoStore {
	return &MongoStore{
		db:        db,
		content:   db.Collection(ContentCollection),
		playlists: db.Collection(PlaylistCollection),
		timeout:   timeout,
	}
}

// EnsureIndexes creates the unique indexes backing content_id and
// identifier lookups.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.content.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "content_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("content_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("content index: %w", err)
	}

	_, err = s.playlists.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "identifier", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("identifier_unique"),
	})
	if err != nil {
		return fmt.Errorf("playlist index: %w", err)
	}
	return nil
}

// FindContent implements catalog.Store.
func (s *MongoStore) FindContent(ctx context.Context, contentID string) (rec catalog.ContentRecord, err error) {
	const op = "find_content"
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	err = s.content.FindOne(ctx, bson.D{{Key: "content_id", Value: contentID}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.ContentRecord{}, catalog.NotFound(op)
	}
	if err != nil {
		return catalog.ContentRecord{}, catalog.Backend(op, fmt.Errorf("content %q: %w", contentID, err))
	}
	return rec, nil
}

// FindPlaylist implements catalog.Store.
func (s *MongoStore) FindPlaylist(ctx context.Context, identifier string) (p catalog.Playlist, err error) {
	const op = "find_playlist"
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	err = s.playlists.FindOne(ctx, bson.D{{Key: "identifier", Value: identifier}}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Playlist{}, catalog.NotFound(op)
	}
	if err != nil {
		return catalog.Playlist{}, catalog.Backend(op, fmt.Errorf("playlist %q: %w", identifier, err))
	}
	return p, nil
}

// listProjection keeps the content array out of listing reads.
var listProjection = bson.D{
	{Key: "_id", Value: 0},
	{Key: "name", Value: 1},
	{Key: "identifier", Value: 1},
}

// ListPlaylists implements catalog.Store. Rows decoded before a cursor
// failure are returned together with the error.
func (s *MongoStore) ListPlaylists(ctx context.Context) (out []catalog.PlaylistLight, err error) {
	const op = "list_playlists"
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.playlists.Find(ctx, bson.D{}, options.Find().SetProjection(listProjection))
	if err != nil {
		return nil, catalog.Backend(op, err)
	}
	defer closeCursor(cur)

	out = []catalog.PlaylistLight{}
	for cur.Next(ctx) {
		var p catalog.PlaylistLight
		if err := cur.Decode(&p); err != nil {
			return out, catalog.Backend(op, fmt.Errorf("decode playlist %d: %w", len(out), err))
		}
		out = append(out, p)
	}
	if err := cur.Err(); err != nil {
		return out, catalog.Backend(op, err)
	}
	return out, nil
}

// ListContent implements catalog.Store.
func (s *MongoStore) ListContent(ctx context.Context) (out []catalog.ContentRecord, err error) {
	const op = "list_content"
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.content.Find(ctx, bson.D{})
	if err != nil {
		return nil, catalog.Backend(op, err)
	}
	defer closeCursor(cur)

	out = []catalog.ContentRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, catalog.Backend(op, err)
	}
	return out, nil
}

// Ping implements catalog.Store.
func (s *MongoStore) Ping(ctx context.Context) (err error) {
	const op = "ping"
	start := time.Now()
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return catalog.Backend(op, err)
	}
	return nil
}

// Close disconnects the client when the store owns it.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongo: %w", err)
	}
	return nil
}

func closeCursor(cur *mongo.Cursor) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := cur.Close(ctx); err != nil {
		logging.Debug("cursor close: %v", err)
	}
}
