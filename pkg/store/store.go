// Package store persists edit-session change-sets, keyed by world ID.
//
// Three backends are provided:
//   - FileStore: JSON files in a config directory, for CLI use
//   - RedisStore: Redis-backed, for short-lived shared editing state
//   - MongoStore: MongoDB-backed, for durable multi-user deployments
//
// All backends accumulate change-sets into a single record per world:
// positions and partial updates merge key by key, created edges append,
// deleted edge IDs append (and cancel earlier pending creations). The
// merged record is what LoadPositions serves back when a world is next
// opened for editing.
//
// # Usage
//
//	st, err := store.NewFileStore("")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	sess := editor.New(nodes, edges, editor.Options{
//	    Saver: store.Saver(st, "midgaard"),
//	})
package store

import (
	"context"
	"time"

	"github.com/tobiaswren/mapforge/pkg/editor"
	"github.com/tobiaswren/mapforge/pkg/layout"
)

// Store is the interface for change-set persistence backends.
type Store interface {
	// SaveChangeSet merges a change-set into the world's persisted record.
	SaveChangeSet(ctx context.Context, worldID string, cs editor.ChangeSet) error

	// LoadPositions returns the persisted node positions for a world.
	// A world with no record yields an empty map, not an error.
	LoadPositions(ctx context.Context, worldID string) (map[string]layout.Position, error)

	// LoadRecord returns the full persisted record for a world, or nil
	// if none exists.
	LoadRecord(ctx context.Context, worldID string) (*Record, error)

	// Close releases backend resources.
	Close() error
}

// Saver adapts a Store to the editor's persistence callback for one world.
// Empty change-sets are not written.
func Saver(s Store, worldID string) editor.Saver {
	return func(ctx context.Context, cs editor.ChangeSet) error {
		if cs.IsEmpty() {
			return nil
		}
		return s.SaveChangeSet(ctx, worldID, cs)
	}
}

// =============================================================================
// Record
// =============================================================================

// Record is the persisted accumulation of change-sets for one world.
type Record struct {
	WorldID        string                      `json:"world_id" bson:"_id"`
	Positions      map[string]layout.Position  `json:"positions,omitempty" bson:"positions,omitempty"`
	NewEdges       []layout.Edge               `json:"new_edges,omitempty" bson:"new_edges,omitempty"`
	DeletedEdgeIDs []string                    `json:"deleted_edge_ids,omitempty" bson:"deleted_edge_ids,omitempty"`
	EdgeUpdates    map[string]editor.EdgeUpdate `json:"edge_updates,omitempty" bson:"edge_updates,omitempty"`
	RoomUpdates    map[string]editor.RoomUpdate `json:"room_updates,omitempty" bson:"room_updates,omitempty"`
	UpdatedAt      time.Time                   `json:"updated_at" bson:"updated_at"`
}

// NewRecord creates an empty record for a world.
func NewRecord(worldID string) *Record {
	return &Record{
		WorldID:     worldID,
		Positions:   make(map[string]layout.Position),
		EdgeUpdates: make(map[string]editor.EdgeUpdate),
		RoomUpdates: make(map[string]editor.RoomUpdate),
	}
}

// Apply merges a change-set into the record. Deleting an edge that an
// earlier change-set created cancels the creation instead of recording
// the deletion.
func (r *Record) Apply(cs editor.ChangeSet) {
	if r.Positions == nil {
		r.Positions = make(map[string]layout.Position)
	}
	if r.EdgeUpdates == nil {
		r.EdgeUpdates = make(map[string]editor.EdgeUpdate)
	}
	if r.RoomUpdates == nil {
		r.RoomUpdates = make(map[string]editor.RoomUpdate)
	}

	for id, pos := range cs.NodePositions {
		r.Positions[id] = pos
	}
	r.NewEdges = append(r.NewEdges, layout.CloneEdges(cs.NewEdges)...)
	for id, u := range cs.EdgeUpdates {
		r.EdgeUpdates[id] = r.EdgeUpdates[id].Merge(u)
	}
	for id, u := range cs.RoomUpdates {
		r.RoomUpdates[id] = r.RoomUpdates[id].Merge(u)
	}

	for _, deleted := range cs.DeletedEdgeIDs {
		if r.cancelNewEdge(deleted) {
			continue
		}
		delete(r.EdgeUpdates, deleted)
		if !contains(r.DeletedEdgeIDs, deleted) {
			r.DeletedEdgeIDs = append(r.DeletedEdgeIDs, deleted)
		}
	}

	r.UpdatedAt = time.Now().UTC()
}

// cancelNewEdge removes a previously accumulated edge creation.
func (r *Record) cancelNewEdge(edgeID string) bool {
	for i := range r.NewEdges {
		if r.NewEdges[i].ID == edgeID {
			r.NewEdges = append(r.NewEdges[:i], r.NewEdges[i+1:]...)
			delete(r.EdgeUpdates, edgeID)
			return true
		}
	}
	return false
}

// PositionsCopy returns a copy of the record's position map.
func (r *Record) PositionsCopy() map[string]layout.Position {
	out := make(map[string]layout.Position, len(r.Positions))
	for id, pos := range r.Positions {
		out[id] = pos
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
