package render

import (
	"strings"
	"testing"

	"github.com/tobiaswren/mapforge/pkg/layout"
	"github.com/tobiaswren/mapforge/pkg/world"
)

func testDocument() *layout.Document {
	return &layout.Document{
		Algorithm: layout.AlgorithmGrid,
		Nodes: []layout.Node{
			{ID: "temple", Kind: layout.KindRoom, Position: layout.Position{X: 0, Y: 0}, Data: layout.NodeData{Name: "Temple Square", Zone: "midgaard"}},
			{ID: "market", Kind: layout.KindRoom, Position: layout.Position{X: 170, Y: 0}, Data: layout.NodeData{Name: "Market"}},
			{ID: "cross", Kind: layout.KindIntersection, Position: layout.Position{X: 85, Y: 170}},
		},
		Edges: []layout.Edge{
			{ID: "temple-east-market", Source: "temple", Target: "market", Direction: world.East},
			{ID: "temple-south-cross", Source: "temple", Target: "cross", Direction: world.South, Flags: []string{world.FlagOneWay, world.FlagHidden}},
		},
	}
}

func TestToDOTPinsPositions(t *testing.T) {
	dot := ToDOT(testDocument(), Options{})

	if !strings.Contains(dot, "layout=neato") {
		t.Error("DOT should select the neato engine for pinned positions")
	}
	// X/72, -Y/72 with two decimals.
	if !strings.Contains(dot, `pos="0.00,-0.00!"`) && !strings.Contains(dot, `pos="0.00,0.00!"`) {
		t.Errorf("missing pinned origin position in:\n%s", dot)
	}
	if !strings.Contains(dot, `pos="2.36,`) {
		t.Errorf("missing scaled position for market (170/72=2.36) in:\n%s", dot)
	}
}

func TestToDOTNodeStyling(t *testing.T) {
	doc := testDocument()
	doc.Nodes[0].Data.IsCurrentLocation = true
	doc.Nodes[1].Data.HasUnsavedChanges = true

	dot := ToDOT(doc, Options{})

	if !strings.Contains(dot, `label="Temple Square"`) {
		t.Error("room nodes should be labeled by name")
	}
	if !strings.Contains(dot, "fillcolor=gold") {
		t.Error("current location should be highlighted")
	}
	if !strings.Contains(dot, "color=orange") {
		t.Error("unsaved nodes should be outlined")
	}
	if !strings.Contains(dot, "shape=point") {
		t.Error("intersections should render as points")
	}
}

func TestToDOTEdgeStyling(t *testing.T) {
	dot := ToDOT(testDocument(), Options{Detailed: true})

	if !strings.Contains(dot, `"temple" -> "market"`) {
		t.Error("missing temple->market edge")
	}
	if !strings.Contains(dot, `label="east"`) {
		t.Error("detailed mode should label edges with their direction")
	}
	if !strings.Contains(dot, "style=dashed") {
		t.Error("hidden exits should be dashed")
	}
	// The mutual edge drops its arrowhead, the one-way edge keeps it.
	if !strings.Contains(dot, "arrowhead=none") {
		t.Error("mutual exits should be drawn without arrowheads")
	}
}

func TestToDOTDarkTheme(t *testing.T) {
	dot := ToDOT(testDocument(), Options{Theme: "dark"})
	if !strings.Contains(dot, `bgcolor="#1e1e2e"`) {
		t.Error("dark theme should set a dark background")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="8.5in" height="11in" viewBox="0.00 0.00 612.00 792.00">content</svg>`)
	out := normalizeViewBox(in)

	want := `viewBox="0 0 612.00 792.00" width="612" height="792"`
	if !strings.Contains(string(out), want) {
		t.Errorf("normalized SVG = %s, want it to contain %s", out, want)
	}

	// SVG without a viewBox passes through untouched.
	plain := []byte(`<svg>x</svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("pass-through failed: %s", got)
	}
}
