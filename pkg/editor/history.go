package editor

import "github.com/tobiaswren/mapforge/pkg/layout"

// DefaultHistoryLimit is the bounded undo/redo depth.
const DefaultHistoryLimit = 50

// snapshot is one full copy of session state for undo/redo.
type snapshot struct {
	nodes []layout.Node
	edges []layout.Edge
}

func takeSnapshot(nodes []layout.Node, edges []layout.Edge) snapshot {
	return snapshot{
		nodes: layout.CloneNodes(nodes),
		edges: layout.CloneEdges(edges),
	}
}

// history is a bounded linear undo/redo stack implemented as a ring buffer:
// pushing past capacity evicts the oldest entry in O(1) amortized time
// instead of shifting the backing slice.
//
// Entries are full snapshots. The index points at the current state; undo
// and redo move it without modifying entries. Pushing after undos truncates
// the "future" first - branching redo history is not supported.
type history struct {
	entries []snapshot // ring storage, len == capacity once full
	limit   int
	start   int // ring offset of the oldest entry
	count   int // live entries
	index   int // logical position of current state, 0..count-1
}

// newHistory creates a history seeded with the initial snapshot at index 0.
func newHistory(limit int, initial snapshot) *history {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	h := &history{entries: make([]snapshot, limit), limit: limit}
	h.entries[0] = initial
	h.count = 1
	return h
}

// slot maps a logical position to a ring offset.
func (h *history) slot(logical int) int {
	return (h.start + logical) % h.limit
}

// push appends a snapshot after the current index, truncating any undone
// future entries, and evicts the oldest entry when the cap is exceeded.
func (h *history) push(s snapshot) {
	h.count = h.index + 1 // drop future

	if h.count == h.limit {
		h.start = (h.start + 1) % h.limit
		h.count--
		h.index--
	}

	h.entries[h.slot(h.count)] = s
	h.count++
	h.index = h.count - 1
}

// undo moves back one entry. Returns false at the oldest entry.
func (h *history) undo() (snapshot, bool) {
	if h.index == 0 {
		return snapshot{}, false
	}
	h.index--
	return h.entries[h.slot(h.index)], true
}

// redo moves forward one entry. Returns false at the newest entry.
func (h *history) redo() (snapshot, bool) {
	if h.index >= h.count-1 {
		return snapshot{}, false
	}
	h.index++
	return h.entries[h.slot(h.index)], true
}

// atOrigin reports whether the current state is the initial snapshot.
// Note this is positional: after the cap evicts the true initial snapshot,
// index 0 names the oldest surviving entry.
func (h *history) atOrigin() bool { return h.index == 0 }

// current returns the snapshot at the index.
func (h *history) current() snapshot { return h.entries[h.slot(h.index)] }

// reset discards everything and re-seeds with the given snapshot.
func (h *history) reset(initial snapshot) {
	h.start = 0
	h.count = 1
	h.index = 0
	h.entries[0] = initial
}
