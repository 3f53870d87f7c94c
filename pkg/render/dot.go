// Package render turns layout documents into visual artifacts.
//
// # Overview
//
// The package produces Graphviz DOT source from a laid-out document and
// renders it to SVG or PNG in process. Node positions computed by the
// layout package are pinned (neato's "!" suffix), so Graphviz draws edges
// and labels without re-placing anything.
//
// # Usage
//
//	dot := render.ToDOT(doc, render.Options{Detailed: true})
//	svg, err := render.SVG(ctx, dot)
//	png, err := render.PNG(ctx, dot)
//
// Exit flags affect edge styling: hidden exits are dashed, locked exits
// are drawn in red, and one-way exits keep their arrowhead while mutual
// exits are drawn plain to reduce clutter.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tobiaswren/mapforge/pkg/layout"
	"github.com/tobiaswren/mapforge/pkg/world"
)

// dotScale converts layout pixels to Graphviz points (72 per inch).
const dotScale = 72.0

// Options configures DOT generation.
type Options struct {
	// Detailed labels edges with their direction and nodes with their
	// zone. When false, nodes show only their name.
	Detailed bool

	// Theme selects the color scheme: "light" (default) or "dark".
	Theme string
}

// ToDOT converts a layout document to Graphviz DOT with pinned positions.
// The output renders with neato; [SVG] and [PNG] handle that implicitly.
func ToDOT(doc *layout.Document, opts Options) string {
	dark := opts.Theme == "dark"

	var buf bytes.Buffer
	buf.WriteString("digraph world {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=true;\n")
	if dark {
		buf.WriteString("  bgcolor=\"#1e1e2e\";\n")
		buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"#313244\", fontcolor=white, color=\"#6c7086\", fontsize=12, margin=\"0.1,0.05\"];\n")
		buf.WriteString("  edge [color=\"#6c7086\", fontcolor=\"#a6adc8\", fontsize=10];\n")
	} else {
		buf.WriteString("  bgcolor=\"transparent\";\n")
		buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.1,0.05\"];\n")
		buf.WriteString("  edge [fontsize=10];\n")
	}
	buf.WriteString("\n")

	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for i := range doc.Edges {
		e := &doc.Edges[i]
		attrs := edgeAttrs(e, opts)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeAttrs builds the attribute list for one node. Layout Y grows
// downward while Graphviz Y grows upward, so Y is negated.
func nodeAttrs(n *layout.Node, opts Options) []string {
	pos := fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.Position.X/dotScale, -n.Position.Y/dotScale)

	if n.Kind == layout.KindIntersection {
		return []string{pos, "shape=point", "width=0.12", `label=""`}
	}

	label := n.ID
	if n.Data.Name != "" {
		label = n.Data.Name
	}
	if opts.Detailed && n.Data.Zone != "" {
		label += "\n" + n.Data.Zone
	}
	attrs := []string{fmt.Sprintf("label=%q", label), pos}

	if n.Data.IsCurrentLocation {
		attrs = append(attrs, "fillcolor=gold", "fontcolor=black")
	}
	if n.Data.HasUnsavedChanges {
		attrs = append(attrs, "color=orange", "penwidth=2")
	}
	return attrs
}

// edgeAttrs builds the attribute list for one edge from its exit flags.
func edgeAttrs(e *layout.Edge, opts Options) []string {
	var attrs []string
	if opts.Detailed {
		attrs = append(attrs, fmt.Sprintf("label=%q", string(e.Direction)))
	}
	if e.HasFlag(world.FlagHidden) {
		attrs = append(attrs, "style=dashed")
	}
	if e.HasFlag(world.FlagLocked) {
		attrs = append(attrs, "color=firebrick")
	}
	if !e.HasFlag(world.FlagOneWay) {
		attrs = append(attrs, "arrowhead=none")
	}
	return attrs
}
