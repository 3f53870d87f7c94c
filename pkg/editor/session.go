package editor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tobiaswren/mapforge/pkg/errors"
	"github.com/tobiaswren/mapforge/pkg/layout"
	"github.com/tobiaswren/mapforge/pkg/observability"
	"github.com/tobiaswren/mapforge/pkg/world"
)

// Validation messages surfaced to the operator. These are stable strings:
// UI layers match on them.
const (
	msgTargetMissing = "Target room does not exist"
	msgSourceMissing = "Source room does not exist"
	msgDuplicateEdge = "An edge with this direction already exists"
	msgNoReverseEdge = "No reverse edge found. Consider creating a bidirectional connection."
)

// =============================================================================
// Options
// =============================================================================

// Options configures a new session.
type Options struct {
	// Saver is the persistence collaborator invoked by Save. When nil,
	// Save is a no-op; the engine never persists anything itself.
	Saver Saver

	// HistoryLimit bounds the undo/redo depth. Zero means DefaultHistoryLimit.
	HistoryLimit int
}

// =============================================================================
// Session
// =============================================================================

// Session is a stateful controller for interactive mutation of a node/edge
// graph with bounded undo/redo and a persistence change-set.
//
// A session is created once per editing interaction, seeded with an initial
// node/edge set, and discarded when the editor closes. Operations are
// synchronous and not safe for concurrent use - the embedding host must
// serialize calls, including overlapping Save calls.
type Session struct {
	id    string
	nodes []layout.Node
	edges []layout.Edge

	initialNodes []layout.Node
	initialEdges []layout.Edge

	hist  *history
	dirty bool
	saver Saver

	pendingPositions   map[string]layout.Position
	pendingNewEdges    []layout.Edge
	pendingDeletedIDs  []string
	pendingEdgeUpdates map[string]EdgeUpdate
	pendingRoomUpdates map[string]RoomUpdate
}

// New creates a session seeded with the given node/edge set. The inputs are
// deep-copied; the caller's slices are never mutated.
func New(nodes []layout.Node, edges []layout.Edge, opts Options) *Session {
	s := &Session{
		id:           uuid.NewString(),
		nodes:        layout.CloneNodes(nodes),
		edges:        layout.CloneEdges(edges),
		initialNodes: layout.CloneNodes(nodes),
		initialEdges: layout.CloneEdges(edges),
		saver:        opts.Saver,
	}
	s.hist = newHistory(opts.HistoryLimit, takeSnapshot(s.nodes, s.edges))
	s.clearPending()
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Nodes returns a deep copy of the current node set.
func (s *Session) Nodes() []layout.Node { return layout.CloneNodes(s.nodes) }

// Edges returns a deep copy of the current edge set.
func (s *Session) Edges() []layout.Edge { return layout.CloneEdges(s.edges) }

// Dirty reports whether the session has unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

// PendingChanges returns a copy of the change-set that the next Save would
// submit. Useful for inspection; mutating the result has no effect.
func (s *Session) PendingChanges() ChangeSet { return s.buildChangeSet() }

// =============================================================================
// Mutations
// =============================================================================

// UpdateNodePosition moves the named node, flags it as unsaved, and records
// the position for the next save. Unknown node IDs are ignored.
func (s *Session) UpdateNodePosition(nodeID string, pos layout.Position) {
	i, ok := s.nodeAt(nodeID)
	if !ok {
		return
	}
	s.nodes[i].Position = pos
	s.nodes[i].Data.HasUnsavedChanges = true
	s.pendingPositions[nodeID] = pos
	s.commit("position")
}

// EdgeSpec describes an edge to be created.
type EdgeSpec struct {
	Source      string          `json:"source" bson:"source"`
	Target      string          `json:"target" bson:"target"`
	Direction   world.Direction `json:"direction" bson:"direction"`
	Flags       []string        `json:"flags,omitempty" bson:"flags,omitempty"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
}

// ValidationResult reports edge-creation validity. Errors block creation;
// warnings never do.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid" bson:"is_valid"`
	Errors   []string `json:"errors,omitempty" bson:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

// ValidateEdgeCreation checks an edge spec against the current graph:
// both endpoints must exist and no edge with the identical
// (source, target, direction) triple may already be present. A missing
// reverse edge is surfaced as a warning unless the new edge is one-way.
func (s *Session) ValidateEdgeCreation(spec EdgeSpec) ValidationResult {
	var result ValidationResult

	if _, ok := s.nodeAt(spec.Target); !ok {
		result.Errors = append(result.Errors, msgTargetMissing)
	}
	if _, ok := s.nodeAt(spec.Source); !ok {
		result.Errors = append(result.Errors, msgSourceMissing)
	}

	for i := range s.edges {
		e := &s.edges[i]
		if e.Source == spec.Source && e.Target == spec.Target && e.Direction == spec.Direction {
			result.Errors = append(result.Errors, msgDuplicateEdge)
			break
		}
	}

	if !hasFlag(spec.Flags, world.FlagOneWay) && !s.hasReverseEdge(spec.Source, spec.Target) {
		result.Warnings = append(result.Warnings, msgNoReverseEdge)
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// CreateEdge validates and appends a new edge. It is the only synchronously
// failing operation: an invalid spec returns an INVALID_EDGE error whose
// message joins all validation errors, and performs no mutation.
func (s *Session) CreateEdge(spec EdgeSpec) (layout.Edge, error) {
	result := s.ValidateEdgeCreation(spec)
	if !result.IsValid {
		return layout.Edge{}, errors.New(errors.ErrCodeInvalidEdge, "%s", strings.Join(result.Errors, "; "))
	}

	src, dst := layout.HandlesFor(spec.Direction)
	edge := layout.Edge{
		ID:           layout.EdgeID(spec.Source, spec.Direction, spec.Target),
		Source:       spec.Source,
		Target:       spec.Target,
		Direction:    spec.Direction,
		Flags:        append([]string(nil), spec.Flags...),
		Description:  spec.Description,
		SourceHandle: src,
		TargetHandle: dst,
	}

	s.edges = append(s.edges, edge)
	s.pendingNewEdges = append(s.pendingNewEdges, edge)
	s.commit("create_edge")
	return edge, nil
}

// DeleteEdge removes the named edge and records its ID for the next save.
// Unknown edge IDs are ignored.
func (s *Session) DeleteEdge(edgeID string) {
	for i := range s.edges {
		if s.edges[i].ID == edgeID {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			s.pendingDeletedIDs = append(s.pendingDeletedIDs, edgeID)
			s.commit("delete_edge")
			return
		}
	}
}

// UpdateEdge merges partial fields into the named edge. Later updates to
// the same edge overlay earlier ones in the pending change-set. Unknown
// edge IDs are ignored.
func (s *Session) UpdateEdge(edgeID string, update EdgeUpdate) {
	for i := range s.edges {
		e := &s.edges[i]
		if e.ID != edgeID {
			continue
		}
		if update.Direction != nil {
			e.Direction = *update.Direction
			e.SourceHandle, e.TargetHandle = layout.HandlesFor(*update.Direction)
		}
		if update.Flags != nil {
			e.Flags = append([]string(nil), update.Flags...)
		}
		if update.Description != nil {
			e.Description = *update.Description
		}
		s.pendingEdgeUpdates[edgeID] = s.pendingEdgeUpdates[edgeID].Merge(update)
		s.commit("update_edge")
		return
	}
}

// UpdateRoom merges partial fields into the named node's display data and
// flags the node as unsaved. Unknown room IDs are ignored.
func (s *Session) UpdateRoom(roomID string, update RoomUpdate) {
	i, ok := s.nodeAt(roomID)
	if !ok {
		return
	}
	data := &s.nodes[i].Data
	if update.Name != nil {
		data.Name = *update.Name
	}
	if update.Description != nil {
		data.Description = *update.Description
	}
	if update.Zone != nil {
		data.Zone = *update.Zone
	}
	if update.SubZone != nil {
		data.SubZone = *update.SubZone
	}
	if update.Environment != nil {
		data.Environment = *update.Environment
	}
	data.HasUnsavedChanges = true
	s.pendingRoomUpdates[roomID] = s.pendingRoomUpdates[roomID].Merge(update)
	s.commit("update_room")
}

// =============================================================================
// History
// =============================================================================

// Undo steps back one history entry and restores that snapshot. A no-op at
// the oldest entry. The unsaved flag tracks whether the restored state is
// the initial snapshot.
func (s *Session) Undo() {
	snap, ok := s.hist.undo()
	if !ok {
		return
	}
	s.restore(snap)
	observability.Session().OnMutation(s.id, "undo")
}

// Redo steps forward one history entry. A no-op at the newest entry.
func (s *Session) Redo() {
	snap, ok := s.hist.redo()
	if !ok {
		return
	}
	s.restore(snap)
	observability.Session().OnMutation(s.id, "redo")
}

// restore replaces current state with a copy of the snapshot - history
// entries must never alias live state.
func (s *Session) restore(snap snapshot) {
	s.nodes = layout.CloneNodes(snap.nodes)
	s.edges = layout.CloneEdges(snap.edges)
	s.dirty = !s.hist.atOrigin()
}

// =============================================================================
// Save / Reset
// =============================================================================

// Save assembles the pending change-set and hands it to the persistence
// collaborator. On success all pending collections are cleared atomically
// and the unsaved flags drop. On failure the error propagates unchanged and
// pending state is preserved, so a retried save resubmits the same
// change-set. With no saver configured, Save is a no-op.
//
// Overlapping Save calls are not deduplicated; the caller serializes saves.
func (s *Session) Save(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}

	observability.Session().OnSaveStart(ctx, s.id)
	start := time.Now()

	cs := s.buildChangeSet()
	err := s.saver(ctx, cs)
	observability.Session().OnSaveComplete(ctx, s.id, time.Since(start), err)
	if err != nil {
		return err
	}

	s.clearPending()
	s.dirty = false
	for i := range s.nodes {
		s.nodes[i].Data.HasUnsavedChanges = false
	}
	return nil
}

// Reset discards all pending mutations and history, restoring the session
// to its original initial node/edge arrays.
func (s *Session) Reset() {
	s.nodes = layout.CloneNodes(s.initialNodes)
	s.edges = layout.CloneEdges(s.initialEdges)
	s.hist.reset(takeSnapshot(s.nodes, s.edges))
	s.clearPending()
	s.dirty = false
	observability.Session().OnMutation(s.id, "reset")
}

// =============================================================================
// Internal Helpers
// =============================================================================

// commit snapshots the state after a mutation and flags the session dirty.
func (s *Session) commit(op string) {
	s.hist.push(takeSnapshot(s.nodes, s.edges))
	s.dirty = true
	observability.Session().OnMutation(s.id, op)
}

func (s *Session) nodeAt(id string) (int, bool) {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// hasReverseEdge reports whether any edge runs target → source.
func (s *Session) hasReverseEdge(source, target string) bool {
	for i := range s.edges {
		if s.edges[i].Source == target && s.edges[i].Target == source {
			return true
		}
	}
	return false
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

// buildChangeSet copies the pending collections into a ChangeSet.
func (s *Session) buildChangeSet() ChangeSet {
	cs := ChangeSet{
		NodePositions:  make(map[string]layout.Position, len(s.pendingPositions)),
		NewEdges:       layout.CloneEdges(s.pendingNewEdges),
		DeletedEdgeIDs: append([]string(nil), s.pendingDeletedIDs...),
		EdgeUpdates:    make(map[string]EdgeUpdate, len(s.pendingEdgeUpdates)),
		RoomUpdates:    make(map[string]RoomUpdate, len(s.pendingRoomUpdates)),
	}
	for id, p := range s.pendingPositions {
		cs.NodePositions[id] = p
	}
	for id, u := range s.pendingEdgeUpdates {
		cs.EdgeUpdates[id] = u
	}
	for id, u := range s.pendingRoomUpdates {
		cs.RoomUpdates[id] = u
	}
	return cs
}

func (s *Session) clearPending() {
	s.pendingPositions = make(map[string]layout.Position)
	s.pendingNewEdges = nil
	s.pendingDeletedIDs = nil
	s.pendingEdgeUpdates = make(map[string]EdgeUpdate)
	s.pendingRoomUpdates = make(map[string]RoomUpdate)
}
