package layout

import (
	"fmt"

	"github.com/tobiaswren/mapforge/pkg/world"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node kinds.
const (
	KindRoom         = "room"
	KindIntersection = "intersection"
)

// Layout algorithms.
const (
	AlgorithmGrid  = "grid"
	AlgorithmForce = "force"
)

// Handle labels name the eight-point compass anchor on a node where an edge
// visually attaches. They carry a source-/target- prefix so a renderer can
// distinguish the two ends of the same edge.
const (
	HandleSourceTop         = "source-top"
	HandleSourceBottom      = "source-bottom"
	HandleSourceLeft        = "source-left"
	HandleSourceRight       = "source-right"
	HandleSourceTopLeft     = "source-top-left"
	HandleSourceTopRight    = "source-top-right"
	HandleSourceBottomLeft  = "source-bottom-left"
	HandleSourceBottomRight = "source-bottom-right"

	HandleTargetTop         = "target-top"
	HandleTargetBottom      = "target-bottom"
	HandleTargetLeft        = "target-left"
	HandleTargetRight       = "target-right"
	HandleTargetTopLeft     = "target-top-left"
	HandleTargetTopRight    = "target-top-right"
	HandleTargetBottomLeft  = "target-bottom-left"
	HandleTargetBottomRight = "target-bottom-right"
)

// handlePair is the visual anchor assignment for one direction.
type handlePair struct {
	source string
	target string
}

// directionHandles maps exit directions to their visual anchors.
// Unrecognized directions fall back to top→bottom.
var directionHandles = map[world.Direction]handlePair{
	world.North:     {HandleSourceTop, HandleTargetBottom},
	world.South:     {HandleSourceBottom, HandleTargetTop},
	world.East:      {HandleSourceRight, HandleTargetLeft},
	world.West:      {HandleSourceLeft, HandleTargetRight},
	world.Northeast: {HandleSourceTopRight, HandleTargetBottomLeft},
	world.Northwest: {HandleSourceTopLeft, HandleTargetBottomRight},
	world.Southeast: {HandleSourceBottomRight, HandleTargetTopLeft},
	world.Southwest: {HandleSourceBottomLeft, HandleTargetTopRight},
	world.Up:        {HandleSourceTop, HandleTargetBottom},
	world.Down:      {HandleSourceBottom, HandleTargetTop},
}

// HandlesFor returns the source/target handle labels for a direction.
func HandlesFor(dir world.Direction) (source, target string) {
	if h, ok := directionHandles[dir]; ok {
		return h.source, h.target
	}
	return HandleSourceTop, HandleTargetBottom
}

// =============================================================================
// Position
// =============================================================================

// Position is a 2D placement in layout space.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// =============================================================================
// Node
// =============================================================================

// NodeData mirrors a room's display fields plus two editor-only flags.
// IsCurrentLocation is derived externally and never mutated by this engine;
// HasUnsavedChanges is set by the edit session when the node's position or
// properties change.
type NodeData struct {
	Name              string   `json:"name,omitempty" bson:"name,omitempty"`
	Description       string   `json:"description,omitempty" bson:"description,omitempty"`
	Plane             string   `json:"plane,omitempty" bson:"plane,omitempty"`
	Zone              string   `json:"zone,omitempty" bson:"zone,omitempty"`
	SubZone           string   `json:"sub_zone,omitempty" bson:"sub_zone,omitempty"`
	Environment       string   `json:"environment,omitempty" bson:"environment,omitempty"`
	MapX              *float64 `json:"map_x,omitempty" bson:"map_x,omitempty"`
	MapY              *float64 `json:"map_y,omitempty" bson:"map_y,omitempty"`
	IsCurrentLocation bool     `json:"is_current_location,omitempty" bson:"is_current_location,omitempty"`
	HasUnsavedChanges bool     `json:"has_unsaved_changes,omitempty" bson:"has_unsaved_changes,omitempty"`
}

// Node is the visual representation of a room.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Kind     string   `json:"kind" bson:"kind"` // "room" or "intersection"
	Position Position `json:"position" bson:"position"`
	Data     NodeData `json:"data" bson:"data"`
}

// StoredCoordinates returns the node's persisted placement as an option type.
func (n *Node) StoredCoordinates() world.Coordinates {
	if n.Data.MapX == nil || n.Data.MapY == nil {
		return world.Coordinates{}
	}
	return world.Coordinates{X: *n.Data.MapX, Y: *n.Data.MapY, Valid: true}
}

// =============================================================================
// Edge
// =============================================================================

// Edge is the visual representation of an exit between two nodes.
// IDs are deterministic: "<source>-<direction>-<target>", so identical
// (source, direction, target) triples always collide and duplicates are
// detectable without extra bookkeeping.
type Edge struct {
	ID           string          `json:"id" bson:"id"`
	Source       string          `json:"source" bson:"source"`
	Target       string          `json:"target" bson:"target"`
	Direction    world.Direction `json:"direction" bson:"direction"`
	Flags        []string        `json:"flags,omitempty" bson:"flags,omitempty"`
	Description  string          `json:"description,omitempty" bson:"description,omitempty"`
	SourceHandle string          `json:"source_handle" bson:"source_handle"`
	TargetHandle string          `json:"target_handle" bson:"target_handle"`
}

// EdgeID derives the deterministic edge identifier for a triple.
func EdgeID(source string, dir world.Direction, target string) string {
	return fmt.Sprintf("%s-%s-%s", source, dir, target)
}

// HasFlag reports whether the edge carries the named flag.
func (e *Edge) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// =============================================================================
// Copy Helpers
// =============================================================================

// CloneNodes returns a deep copy of a node slice. Pointer fields inside
// NodeData are re-allocated so snapshot history can never alias live state.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		if n.Data.MapX != nil {
			x := *n.Data.MapX
			out[i].Data.MapX = &x
		}
		if n.Data.MapY != nil {
			y := *n.Data.MapY
			out[i].Data.MapY = &y
		}
	}
	return out
}

// CloneEdges returns a deep copy of an edge slice.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = e
		if e.Flags != nil {
			out[i].Flags = append([]string(nil), e.Flags...)
		}
	}
	return out
}

// NodeIndex builds an ID → slice-index lookup for a node slice.
func NodeIndex(nodes []Node) map[string]int {
	m := make(map[string]int, len(nodes))
	for i, n := range nodes {
		m[n.ID] = i
	}
	return m
}
