package layout

import "math"

// =============================================================================
// Force-Directed Layout Engine
// =============================================================================

// goldenAngle is π(3−√5). It spreads spiral-seeded nodes so no two start
// on the same ray.
const goldenAngle = 2.3999632297286533

// ForceConfig configures the force simulation.
type ForceConfig struct {
	// LinkDistance is the rest length of the spring force along edges.
	LinkDistance float64 `json:"link_distance,omitempty" toml:"link_distance"`
	// ChargeStrength is the pairwise charge. Configured negative so the
	// inverse-square term always pushes nodes apart.
	ChargeStrength float64 `json:"charge_strength,omitempty" toml:"charge_strength"`
	// CenterStrength pulls every node toward the origin, preventing drift.
	CenterStrength float64 `json:"center_strength,omitempty" toml:"center_strength"`
	// Iterations is the fixed simulation budget. This is the sole
	// cost/latency knob; no internal yielding or chunking is performed.
	Iterations int `json:"iterations,omitempty" toml:"iterations"`
	// Damping scales velocity at integration time (< 1 stabilizes).
	Damping float64 `json:"damping,omitempty" toml:"damping"`
	// MinDistance is the separation below which collision correction
	// replaces charge repulsion.
	MinDistance float64 `json:"min_distance,omitempty" toml:"min_distance"`
	// NodeRadius is the visual radius, used by renderers sharing this config.
	NodeRadius float64 `json:"node_radius,omitempty" toml:"node_radius"`
	// CollisionStrength scales the overlap-correction force.
	CollisionStrength float64 `json:"collision_strength,omitempty" toml:"collision_strength"`
}

// DefaultForceConfig returns the standard force simulation parameters.
func DefaultForceConfig() ForceConfig {
	return ForceConfig{
		LinkDistance:      200,
		ChargeStrength:    -1200,
		CenterStrength:    0.05,
		Iterations:        400,
		Damping:           0.85,
		MinDistance:       120,
		NodeRadius:        50,
		CollisionStrength: 2.0,
	}
}

// vec is a per-node position or velocity accumulator.
type vec struct{ x, y float64 }

// ApplyForce runs the force simulation and returns nodes with final
// positions. Empty input returns immediately. Edges whose endpoints are
// missing from the node set are ignored; they never fail the simulation.
//
// The simulation is a force-relaxation method: velocities are recomputed
// from scratch each iteration (no momentum), which converges to a readable
// non-overlapping layout within the fixed iteration budget. Convergence at
// close range is driven by the collision-correction branch, which dominates
// the smooth inverse-square repulsion whenever two nodes are closer than
// MinDistance.
func ApplyForce(nodes []Node, edges []Edge, cfg ForceConfig) []Node {
	if len(nodes) == 0 {
		return nil
	}

	pos := seedPositions(nodes, cfg)
	index := NodeIndex(nodes)

	// Pre-resolve edges to index pairs, dropping dangling references.
	type link struct{ s, t int }
	links := make([]link, 0, len(edges))
	for _, e := range edges {
		s, okS := index[e.Source]
		t, okT := index[e.Target]
		if okS && okT {
			links = append(links, link{s, t})
		}
	}

	vel := make([]vec, len(nodes))
	for iter := 0; iter < cfg.Iterations; iter++ {
		for i := range vel {
			vel[i] = vec{}
		}

		// Spring attraction along edges: pulls endpoints together when
		// farther than LinkDistance, pushes apart when closer.
		for _, l := range links {
			dx := pos[l.t].x - pos[l.s].x
			dy := pos[l.t].y - pos[l.s].y
			d := math.Max(math.Hypot(dx, dy), 1)
			f := (d - cfg.LinkDistance) * 0.1
			ux, uy := dx/d, dy/d
			vel[l.s].x += ux * f
			vel[l.s].y += uy * f
			vel[l.t].x -= ux * f
			vel[l.t].y -= uy * f
		}

		// Pairwise repulsion with collision correction at close range.
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				dx := pos[j].x - pos[i].x
				dy := pos[j].y - pos[i].y
				if dx == 0 && dy == 0 {
					// Coincident pair: separate along a deterministic
					// direction so the collision term can take hold.
					dx = 0.01 * float64(j-i)
					dy = 0.01
				}
				d := math.Max(math.Hypot(dx, dy), 0.1)
				ux, uy := dx/d, dy/d

				if d < cfg.MinDistance {
					push := (cfg.MinDistance - d) * cfg.CollisionStrength
					vel[i].x -= ux * push
					vel[i].y -= uy * push
					vel[j].x += ux * push
					vel[j].y += uy * push
				} else {
					rep := cfg.ChargeStrength / (d*d + 1)
					vel[i].x += ux * rep
					vel[i].y += uy * rep
					vel[j].x -= ux * rep
					vel[j].y -= uy * rep
				}
			}
		}

		// Centering pull toward the origin.
		for i := range nodes {
			vel[i].x -= pos[i].x * cfg.CenterStrength
			vel[i].y -= pos[i].y * cfg.CenterStrength
		}

		for i := range nodes {
			pos[i].x += vel[i].x * cfg.Damping
			pos[i].y += vel[i].y * cfg.Damping
		}
	}

	out := CloneNodes(nodes)
	for i := range out {
		out[i].Position = Position{X: pos[i].x, Y: pos[i].y}
	}
	return out
}

// seedPositions initializes the simulation. Nodes already holding a
// meaningful position keep it; the rest are seeded along an expanding
// spiral so the repulsion terms don't stall on a stack of coincident
// points. The first node is always treated as already positioned, even at
// the origin - re-spiraling a deliberately origin-placed node would move
// the one anchor the rest of the layout settles around.
func seedPositions(nodes []Node, cfg ForceConfig) []vec {
	pos := make([]vec, len(nodes))
	n := float64(len(nodes))
	for i := range nodes {
		p := nodes[i].Position
		if i == 0 || p.X != 0 || p.Y != 0 {
			pos[i] = vec{p.X, p.Y}
			continue
		}
		angle := float64(i) * goldenAngle / math.Sqrt(n)
		radius := math.Sqrt(float64(i)) * 1.5 * cfg.MinDistance
		pos[i] = vec{radius * math.Cos(angle), radius * math.Sin(angle)}
	}
	return pos
}
