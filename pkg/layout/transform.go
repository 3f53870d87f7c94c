package layout

import (
	"maps"
	"slices"
	"strings"

	"github.com/tobiaswren/mapforge/pkg/world"
)

// =============================================================================
// Room → Node Transformation
// =============================================================================

// RoomToNode maps a single room to its visual node. The node kind is
// "intersection" if the room's environment equals "intersection" or its
// sub-zone contains that substring, else "room". Stored coordinates become
// the initial position when both axes are present; otherwise the node sits
// at the origin until a layout engine places it.
func RoomToNode(r *world.Room, currentRoomID string) Node {
	kind := KindRoom
	if r.Environment == KindIntersection || strings.Contains(r.SubZone, KindIntersection) {
		kind = KindIntersection
	}

	var pos Position
	if coords := r.StoredCoordinates(); coords.Valid {
		pos = Position{X: coords.X, Y: coords.Y}
	}

	return Node{
		ID:       r.ID,
		Kind:     kind,
		Position: pos,
		Data: NodeData{
			Name:              r.Name,
			Description:       r.Description,
			Plane:             r.Plane,
			Zone:              r.Zone,
			SubZone:           r.SubZone,
			Environment:       r.Environment,
			MapX:              r.MapX,
			MapY:              r.MapY,
			IsCurrentLocation: r.ID == currentRoomID,
		},
	}
}

// RoomsToNodes maps every room to a node, then resolves placement: nodes
// carrying stored coordinates keep them, and the remainder is arranged by
// the grid engine. Stored-coordinate nodes are never displaced.
//
// cfg may be nil, in which case [DefaultGridConfig] is used for the
// needs-layout subset.
func RoomsToNodes(rooms []world.Room, currentRoomID string, cfg *GridConfig) []Node {
	placed := make([]Node, 0, len(rooms))
	unplaced := make([]Node, 0, len(rooms))

	for i := range rooms {
		n := RoomToNode(&rooms[i], currentRoomID)
		if n.StoredCoordinates().Valid {
			placed = append(placed, n)
		} else {
			unplaced = append(unplaced, n)
		}
	}

	if cfg == nil {
		def := DefaultGridConfig()
		cfg = &def
	}
	unplaced = ApplyGrid(unplaced, *cfg)

	return append(placed, unplaced...)
}

// EdgesFromRooms emits one edge per resolvable exit. Exits that are absent
// or whose target does not name a room in the input collection are dropped
// silently - malformed world data must never fail the transform.
func EdgesFromRooms(rooms []world.Room) []Edge {
	present := make(map[string]bool, len(rooms))
	for i := range rooms {
		present[rooms[i].ID] = true
	}

	var edges []Edge
	for i := range rooms {
		r := &rooms[i]
		// Sorted direction order keeps output deterministic across runs.
		for _, dir := range slices.Sorted(maps.Keys(r.Exits)) {
			exit := r.Exits[dir]
			target, ok := exit.Target()
			if !ok || !present[target] {
				continue
			}
			src, dst := HandlesFor(dir)
			edges = append(edges, Edge{
				ID:           EdgeID(r.ID, dir, target),
				Source:       r.ID,
				Target:       target,
				Direction:    dir,
				Flags:        exit.Flags,
				Description:  exit.Description,
				SourceHandle: src,
				TargetHandle: dst,
			})
		}
	}
	return edges
}
