// Package editor implements interactive edit sessions over a laid-out
// room graph: node moves, edge creation/deletion/update, room property
// updates, bounded undo/redo, and change-set persistence.
//
// # Architecture
//
// A Session owns a mutable copy of the node/edge arrays produced by the
// layout package. Every mutation pushes a full snapshot onto a bounded
// history (50 entries by default; the oldest is evicted when the cap is
// exceeded) and accumulates a minimal pending change-set alongside.
// Undo and redo move a cursor through the history and restore snapshots;
// they never touch the pending change-set.
//
// Persistence is delegated: the session assembles a ChangeSet and hands
// it to a caller-provided Saver. On success the pending collections are
// cleared; on failure they are preserved so a retried save resubmits the
// same change-set.
//
// # Usage
//
//	sess := editor.New(nodes, edges, editor.Options{Saver: saver})
//	sess.UpdateNodePosition("temple", layout.Position{X: 120, Y: 40})
//	edge, err := sess.CreateEdge(editor.EdgeSpec{
//	    Source:    "temple",
//	    Target:    "market",
//	    Direction: world.East,
//	})
//	if err != nil {
//	    // validation failed, nothing was mutated
//	}
//	sess.Undo()
//	if err := sess.Save(ctx); err != nil {
//	    // pending changes preserved, safe to retry
//	}
//
// Sessions are not safe for concurrent use; the embedding host serializes
// calls.
package editor
