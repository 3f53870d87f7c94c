package layout

import "math"

// =============================================================================
// Grid Layout Engine
// =============================================================================

// GridConfig configures deterministic grid placement.
type GridConfig struct {
	CellWidth         float64 `json:"cell_width,omitempty" toml:"cell_width"`
	CellHeight        float64 `json:"cell_height,omitempty" toml:"cell_height"`
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty" toml:"horizontal_spacing"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty" toml:"vertical_spacing"`
	GroupByZone       bool    `json:"group_by_zone,omitempty" toml:"group_by_zone"`
	GroupBySubZone    bool    `json:"group_by_sub_zone,omitempty" toml:"group_by_sub_zone"`
}

// DefaultGridConfig returns the standard grid configuration:
// 120×120 cells, 50×50 spacing, grouped by sub-zone.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		CellWidth:         120,
		CellHeight:        120,
		HorizontalSpacing: 50,
		VerticalSpacing:   50,
		GroupBySubZone:    true,
	}
}

// GridPosition computes the grid placement for one node.
//
// Placement priority:
//  1. Stored coordinates win unconditionally - grid layout never overrides
//     an explicit placement.
//  2. With GroupBySubZone and a sub-zone set, the node is ranked among
//     same-sub-zone nodes and arranged in a square-ish grid.
//  3. With GroupByZone and a zone set, the same restricted to same-zone nodes.
//  4. Otherwise the node is placed by its index in the full node list.
//
// The square grid uses columns = ceil(sqrt(subsetSize)), row = rank/columns,
// col = rank mod columns, scaled by cell size plus spacing.
func GridPosition(node *Node, index int, all []Node, cfg GridConfig) Position {
	if coords := node.StoredCoordinates(); coords.Valid {
		return Position{X: coords.X, Y: coords.Y}
	}

	rank, size := index, len(all)
	switch {
	case cfg.GroupBySubZone && node.Data.SubZone != "":
		rank, size = rankWithin(node, all, func(n *Node) string { return n.Data.SubZone })
	case cfg.GroupByZone && node.Data.Zone != "":
		rank, size = rankWithin(node, all, func(n *Node) string { return n.Data.Zone })
	}

	columns := int(math.Ceil(math.Sqrt(float64(size))))
	if columns < 1 {
		columns = 1
	}
	row := rank / columns
	col := rank % columns

	return Position{
		X: float64(col) * (cfg.CellWidth + cfg.HorizontalSpacing),
		Y: float64(row) * (cfg.CellHeight + cfg.VerticalSpacing),
	}
}

// rankWithin finds the node's rank among nodes sharing the same group key,
// and the size of that group. The node itself is always a member, so the
// returned size is at least 1.
func rankWithin(node *Node, all []Node, key func(*Node) string) (rank, size int) {
	want := key(node)
	for i := range all {
		if key(&all[i]) != want {
			continue
		}
		if all[i].ID == node.ID {
			rank = size
		}
		size++
	}
	return rank, size
}

// ApplyGrid places every node through [GridPosition], returning a new list.
// Empty input yields empty output. For a fixed node order and config the
// output is identical on every call.
func ApplyGrid(nodes []Node, cfg GridConfig) []Node {
	out := CloneNodes(nodes)
	for i := range out {
		out[i].Position = GridPosition(&out[i], i, nodes, cfg)
	}
	return out
}
