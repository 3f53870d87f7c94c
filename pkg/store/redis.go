package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tobiaswren/mapforge/pkg/editor"
	"github.com/tobiaswren/mapforge/pkg/errors"
	"github.com/tobiaswren/mapforge/pkg/layout"
)

// RedisConfig configures a Redis-backed store.
type RedisConfig struct {
	Addr     string `toml:"addr" json:"addr"`
	Password string `toml:"password" json:"password"`
	DB       int    `toml:"db" json:"db"`

	// KeyPrefix namespaces record keys. Defaults to "mapforge:world:".
	KeyPrefix string `toml:"key_prefix" json:"key_prefix"`

	// TTL expires records after inactivity. Zero means no expiry.
	TTL time.Duration `toml:"ttl" json:"ttl"`
}

// RedisStore persists world records as JSON values in Redis. Suited to
// shared editing state that may expire; for durable storage use MongoStore.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "connect to redis at %s", cfg.Addr)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "mapforge:world:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: cfg.TTL}, nil
}

func (s *RedisStore) key(worldID string) string { return s.prefix + worldID }

// SaveChangeSet merges the change-set into the world's record.
// Read-modify-write without a transaction: concurrent editors of the same
// world are expected to share one session, not one store key.
func (s *RedisStore) SaveChangeSet(ctx context.Context, worldID string, cs editor.ChangeSet) error {
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

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "marshal record %q", worldID)
	}
	if err := s.client.Set(ctx, s.key(worldID), data, s.ttl).Err(); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "write record %q", worldID)
	}
	return nil
}

// LoadPositions returns the persisted positions for a world, or an empty
// map when no record exists.
func (s *RedisStore) LoadPositions(ctx context.Context, worldID string) (map[string]layout.Position, error) {
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
func (s *RedisStore) LoadRecord(ctx context.Context, worldID string) (*Record, error) {
	if err := errors.ValidateWorldID(worldID); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.key(worldID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "read record %q", worldID)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "parse record %q", worldID)
	}
	return &rec, nil
}

// Delete removes a world's record. Missing records are not an error.
func (s *RedisStore) Delete(ctx context.Context, worldID string) error {
	if err := errors.ValidateWorldID(worldID); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.key(worldID)).Err(); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "remove record %q", worldID)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
