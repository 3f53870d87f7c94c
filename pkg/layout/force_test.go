package layout

import (
	"math"
	"testing"
)

func TestApplyForceEmpty(t *testing.T) {
	if got := ApplyForce(nil, nil, DefaultForceConfig()); got != nil {
		t.Errorf("empty input should return nil, got %v", got)
	}
}

func TestApplyForceReturnsAllNodes(t *testing.T) {
	tests := []struct {
		name       string
		iterations int
		nodeCount  int
	}{
		{"ZeroIterations", 0, 5},
		{"FewIterations", 20, 3},
		{"DefaultBudget", 400, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := gridNodes(tt.nodeCount)
			cfg := DefaultForceConfig()
			cfg.Iterations = tt.iterations

			out := ApplyForce(nodes, nil, cfg)
			if len(out) != tt.nodeCount {
				t.Fatalf("nodes = %d, want %d", len(out), tt.nodeCount)
			}

			want := make(map[string]bool, tt.nodeCount)
			for _, n := range nodes {
				want[n.ID] = true
			}
			for _, n := range out {
				if !want[n.ID] {
					t.Errorf("unexpected node id %q in output", n.ID)
				}
				if math.IsNaN(n.Position.X) || math.IsNaN(n.Position.Y) {
					t.Errorf("node %s has NaN position", n.ID)
				}
			}
		})
	}
}

func TestApplyForceSeparatesCoincidentNodes(t *testing.T) {
	// Both nodes deliberately placed at the same point. After the collision
	// correction has run they must not be left coincident.
	nodes := []Node{
		{ID: "a", Position: Position{X: 100, Y: 100}},
		{ID: "b", Position: Position{X: 100, Y: 100}},
	}

	cfg := DefaultForceConfig()
	cfg.Iterations = 20

	out := ApplyForce(nodes, nil, cfg)
	dx := out[0].Position.X - out[1].Position.X
	dy := out[0].Position.Y - out[1].Position.Y
	if math.Hypot(dx, dy) <= 0 {
		t.Errorf("coincident nodes were not separated: %+v vs %+v", out[0].Position, out[1].Position)
	}
}

func TestApplyForceSpacesOverlappingNodes(t *testing.T) {
	// A chain of nodes all seeded within MinDistance of each other should
	// end up separated by a healthy margin.
	nodes := []Node{
		{ID: "a", Position: Position{X: 1, Y: 0}},
		{ID: "b", Position: Position{X: 2, Y: 0}},
		{ID: "c", Position: Position{X: 3, Y: 0}},
	}
	edges := []Edge{
		{ID: "a-north-b", Source: "a", Target: "b", Direction: "north"},
		{ID: "b-north-c", Source: "b", Target: "c", Direction: "north"},
	}

	out := ApplyForce(nodes, edges, DefaultForceConfig())

	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			dx := out[i].Position.X - out[j].Position.X
			dy := out[i].Position.Y - out[j].Position.Y
			if d := math.Hypot(dx, dy); d < 10 {
				t.Errorf("nodes %s and %s still overlapping: distance %.2f", out[i].ID, out[j].ID, d)
			}
		}
	}
}

func TestApplyForceDanglingEdges(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b", Position: Position{X: 300, Y: 0}}}
	edges := []Edge{
		{ID: "a-north-ghost", Source: "a", Target: "ghost", Direction: "north"},
		{ID: "ghost-south-b", Source: "ghost", Target: "b", Direction: "south"},
	}

	// Must not panic; dangling edges are simply excluded.
	out := ApplyForce(nodes, edges, DefaultForceConfig())
	if len(out) != 2 {
		t.Fatalf("nodes = %d, want 2", len(out))
	}
}

func TestApplyForceLinkedNodesSettleNearLinkDistance(t *testing.T) {
	nodes := []Node{
		{ID: "a", Position: Position{X: -500, Y: 0}},
		{ID: "b", Position: Position{X: 500, Y: 0}},
	}
	edges := []Edge{{ID: "a-east-b", Source: "a", Target: "b", Direction: "east"}}

	cfg := DefaultForceConfig()
	cfg.Iterations = 800

	out := ApplyForce(nodes, edges, cfg)
	dx := out[0].Position.X - out[1].Position.X
	dy := out[0].Position.Y - out[1].Position.Y
	d := math.Hypot(dx, dy)

	// The spring, charge, and centering forces balance somewhere between
	// MinDistance and a loose multiple of LinkDistance.
	if d < cfg.MinDistance/2 || d > cfg.LinkDistance*3 {
		t.Errorf("linked pair settled at distance %.1f, want within [%.1f, %.1f]",
			d, cfg.MinDistance/2, cfg.LinkDistance*3)
	}
}

func TestApplyForceFirstNodeAnchorsAtOrigin(t *testing.T) {
	// The first node is treated as already positioned even at the origin,
	// so with zero iterations it must stay exactly there.
	nodes := []Node{{ID: "anchor"}, {ID: "other"}}
	cfg := DefaultForceConfig()
	cfg.Iterations = 0

	out := ApplyForce(nodes, nil, cfg)
	if out[0].Position != (Position{}) {
		t.Errorf("anchor moved to %+v during seeding", out[0].Position)
	}
	if out[1].Position == (Position{}) {
		t.Error("second origin node should have been spiral-seeded away from the origin")
	}
}
