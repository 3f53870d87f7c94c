package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tobiaswren/mapforge/pkg/editor"
	"github.com/tobiaswren/mapforge/pkg/errors"
	"github.com/tobiaswren/mapforge/pkg/layout"
)

// MongoConfig configures a MongoDB-backed store.
type MongoConfig struct {
	URI        string `toml:"uri" json:"uri"`
	Database   string `toml:"database" json:"database"`
	Collection string `toml:"collection" json:"collection"`

	// ConnectTimeout bounds the initial connection. Defaults to 10s.
	ConnectTimeout time.Duration `toml:"connect_timeout" json:"connect_timeout"`
}

// MongoStore persists world records as documents keyed by world ID.
// The durable backend for multi-user deployments.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "connect to mongodb")
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "ping mongodb")
	}

	db := cfg.Database
	if db == "" {
		db = "mapforge"
	}
	coll := cfg.Collection
	if coll == "" {
		coll = "worlds"
	}
	return &MongoStore{client: client, coll: client.Database(db).Collection(coll)}, nil
}

// SaveChangeSet merges the change-set into the world's document.
// Read-modify-write with an upsert replace; last writer wins on the
// whole record, matching the other backends.
func (s *MongoStore) SaveChangeSet(ctx context.Context, worldID string, cs editor.ChangeSet) error {
	if err := errors.ValidateWorldID(worldID); err != nil {
		return err
	}

	rec, err := s.LoadRecord(ctx, worldID)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = NewRecord(worldID)
	}
	rec.Apply(cs)

	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": worldID}, rec, opts); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "write record %q", worldID)
	}
	return nil
}

// LoadPositions returns the persisted positions for a world, or an empty
// map when no record exists.
func (s *MongoStore) LoadPositions(ctx context.Context, worldID string) (map[string]layout.Position, error) {
	rec, err := s.LoadRecord(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return map[string]layout.Position{}, nil
	}
	return rec.PositionsCopy(), nil
}

// LoadRecord returns the world's record, or nil if none exists.
func (s *MongoStore) LoadRecord(ctx context.Context, worldID string) (*Record, error) {
	if err := errors.ValidateWorldID(worldID); err != nil {
		return nil, err
	}

	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": worldID}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "read record %q", worldID)
	}
	return &rec, nil
}

// Delete removes a world's record. Missing records are not an error.
func (s *MongoStore) Delete(ctx context.Context, worldID string) error {
	if err := errors.ValidateWorldID(worldID); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": worldID}); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "remove record %q", worldID)
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
