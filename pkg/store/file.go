package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/tobiaswren/mapforge/pkg/editor"
	"github.com/tobiaswren/mapforge/pkg/errors"
	"github.com/tobiaswren/mapforge/pkg/layout"
)

// FileStore persists world records as JSON files in a config directory.
// Intended for single-user CLI editing.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.config/mapforge/worlds/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePersistence, err, "get home dir")
		}
		baseDir = filepath.Join(home, ".config", "mapforge", "worlds")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "create store dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) recordPath(worldID string) string {
	return filepath.Join(s.baseDir, worldID+".json")
}

// SaveChangeSet merges the change-set into the world's record file.
// The write is atomic: a temp file is renamed over the target so a crash
// never leaves a half-written record.
func (s *FileStore) SaveChangeSet(ctx context.Context, worldID string, cs editor.ChangeSet) error {
	if err := errors.ValidateWorldID(worldID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.readRecord(worldID)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = NewRecord(worldID)
	}
	rec.Apply(cs)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "marshal record %q", worldID)
	}

	path := s.recordPath(worldID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "write record %q", worldID)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodePersistence, err, "commit record %q", worldID)
	}
	return nil
}

// LoadPositions returns the persisted positions for a world, or an empty
// map when no record exists.
func (s *FileStore) LoadPositions(ctx context.Context, worldID string) (map[string]layout.Position, error) {
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
func (s *FileStore) LoadRecord(ctx context.Context, worldID string) (*Record, error) {
	if err := errors.ValidateWorldID(worldID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readRecord(worldID)
}

// readRecord loads a record file without locking; callers hold the mutex.
func (s *FileStore) readRecord(worldID string) (*Record, error) {
	data, err := os.ReadFile(s.recordPath(worldID))
	if err != nil {
		if os.IsNotExist(err) {
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
func (s *FileStore) Delete(ctx context.Context, worldID string) error {
	if err := errors.ValidateWorldID(worldID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.recordPath(worldID)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodePersistence, err, "remove record %q", worldID)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for record files.
func (s *FileStore) Path() string { return s.baseDir }

var _ Store = (*FileStore)(nil)
