package editor

import (
	"context"

	"github.com/tobiaswren/mapforge/pkg/layout"
	"github.com/tobiaswren/mapforge/pkg/world"
)

// =============================================================================
// Partial Updates
// =============================================================================

// EdgeUpdate is a partial edge mutation. Nil fields are unchanged; a non-nil
// empty Flags slice clears the flag set. Later updates to the same edge
// overlay earlier ones field by field.
type EdgeUpdate struct {
	Direction   *world.Direction `json:"direction,omitempty" bson:"direction,omitempty"`
	Flags       []string         `json:"flags,omitempty" bson:"flags,omitempty"`
	Description *string          `json:"description,omitempty" bson:"description,omitempty"`
}

// Merge overlays other's set fields onto u and returns the result.
func (u EdgeUpdate) Merge(other EdgeUpdate) EdgeUpdate {
	if other.Direction != nil {
		u.Direction = other.Direction
	}
	if other.Flags != nil {
		u.Flags = other.Flags
	}
	if other.Description != nil {
		u.Description = other.Description
	}
	return u
}

// RoomUpdate is a partial room-property mutation. Nil fields are unchanged.
type RoomUpdate struct {
	Name        *string `json:"name,omitempty" bson:"name,omitempty"`
	Description *string `json:"description,omitempty" bson:"description,omitempty"`
	Zone        *string `json:"zone,omitempty" bson:"zone,omitempty"`
	SubZone     *string `json:"sub_zone,omitempty" bson:"sub_zone,omitempty"`
	Environment *string `json:"environment,omitempty" bson:"environment,omitempty"`
}

// Merge overlays other's set fields onto u and returns the result.
func (u RoomUpdate) Merge(other RoomUpdate) RoomUpdate {
	if other.Name != nil {
		u.Name = other.Name
	}
	if other.Description != nil {
		u.Description = other.Description
	}
	if other.Zone != nil {
		u.Zone = other.Zone
	}
	if other.SubZone != nil {
		u.SubZone = other.SubZone
	}
	if other.Environment != nil {
		u.Environment = other.Environment
	}
	return u
}

// =============================================================================
// ChangeSet
// =============================================================================

// ChangeSet is the minimal description of pending mutations accumulated
// since the last successful save. It is handed verbatim to the persistence
// collaborator; the engine makes no assumption about the transport behind it.
type ChangeSet struct {
	NodePositions  map[string]layout.Position `json:"node_positions,omitempty" bson:"node_positions,omitempty"`
	NewEdges       []layout.Edge              `json:"new_edges,omitempty" bson:"new_edges,omitempty"`
	DeletedEdgeIDs []string                   `json:"deleted_edge_ids,omitempty" bson:"deleted_edge_ids,omitempty"`
	EdgeUpdates    map[string]EdgeUpdate      `json:"edge_updates,omitempty" bson:"edge_updates,omitempty"`
	RoomUpdates    map[string]RoomUpdate      `json:"room_updates,omitempty" bson:"room_updates,omitempty"`
}

// IsEmpty reports whether the change-set carries no mutations.
func (c ChangeSet) IsEmpty() bool {
	return len(c.NodePositions) == 0 &&
		len(c.NewEdges) == 0 &&
		len(c.DeletedEdgeIDs) == 0 &&
		len(c.EdgeUpdates) == 0 &&
		len(c.RoomUpdates) == 0
}

// Saver persists a change-set. Implementations resolve (return nil) on
// success and return an error on failure; a failed save leaves the session's
// pending state intact so a retry resubmits the same change-set.
type Saver func(ctx context.Context, cs ChangeSet) error
