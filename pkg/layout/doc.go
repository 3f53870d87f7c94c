// Package layout turns a room graph into a positioned node/edge diagram.
//
// The package has three stages, all pure and stateless:
//
//  1. Transform: [RoomToNode], [RoomsToNodes], and [EdgesFromRooms] convert
//     domain rooms with directional exits into visual nodes and edges.
//     Exits whose target room is missing are dropped silently.
//  2. Grid placement: [ApplyGrid] assigns deterministic row/column positions,
//     optionally grouped by zone or sub-zone. Nodes carrying stored
//     coordinates are never displaced.
//  3. Force placement: [ApplyForce] runs an iterative physics simulation -
//     spring attraction along edges, inverse-square charge repulsion between
//     all pairs, a dominant collision correction when nodes overlap, and a
//     centering pull - producing a crossing-reduced, overlap-free layout
//     within a fixed iteration budget.
//
// All computation is synchronous and single-threaded. The force engine's
// iteration count is the sole cost knob: callers with a frame budget choose
// Iterations accordingly.
//
// # Usage
//
//	nodes := layout.RoomsToNodes(w.Rooms, currentRoomID, nil)
//	edges := layout.EdgesFromRooms(w.Rooms)
//	nodes = layout.ApplyForce(nodes, edges, layout.DefaultForceConfig())
//
// A computed layout serializes to a [Document] for rendering or storage.
package layout
