package editor

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/tobiaswren/mapforge/pkg/errors"
	"github.com/tobiaswren/mapforge/pkg/layout"
	"github.com/tobiaswren/mapforge/pkg/world"
)

// testGraph is a three-room graph with one bidirectional temple↔market link.
func testGraph() ([]layout.Node, []layout.Edge) {
	nodes := []layout.Node{
		{ID: "temple", Kind: layout.KindRoom, Position: layout.Position{X: 0, Y: 0}, Data: layout.NodeData{Name: "Temple Square", Zone: "midgaard"}},
		{ID: "market", Kind: layout.KindRoom, Position: layout.Position{X: 170, Y: 0}, Data: layout.NodeData{Name: "Market", Zone: "midgaard"}},
		{ID: "alley", Kind: layout.KindRoom, Position: layout.Position{X: 0, Y: 170}, Data: layout.NodeData{Name: "Dark Alley", Zone: "midgaard"}},
	}
	edges := []layout.Edge{
		{ID: layout.EdgeID("temple", world.East, "market"), Source: "temple", Target: "market", Direction: world.East, SourceHandle: layout.HandleSourceRight, TargetHandle: layout.HandleTargetLeft},
		{ID: layout.EdgeID("market", world.West, "temple"), Source: "market", Target: "temple", Direction: world.West, SourceHandle: layout.HandleSourceLeft, TargetHandle: layout.HandleTargetRight},
	}
	return nodes, edges
}

func nodeByID(t *testing.T, s *Session, id string) layout.Node {
	t.Helper()
	for _, n := range s.Nodes() {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %q not found", id)
	return layout.Node{}
}

func TestNewSessionCopiesInput(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})

	// Mutating the caller's slices must not leak into the session.
	nodes[0].Position.X = 9999
	edges[0].Source = "corrupted"

	if got := nodeByID(t, s, "temple").Position.X; got != 0 {
		t.Errorf("session node position = %v, want 0", got)
	}
	if got := s.Edges()[0].Source; got != "temple" {
		t.Errorf("session edge source = %q, want temple", got)
	}
	if s.Dirty() {
		t.Error("fresh session should not be dirty")
	}
	if s.ID() == "" {
		t.Error("session should have an ID")
	}
}

func TestUpdateNodePosition(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})

	s.UpdateNodePosition("temple", layout.Position{X: 300, Y: 450})

	n := nodeByID(t, s, "temple")
	if n.Position.X != 300 || n.Position.Y != 450 {
		t.Errorf("position = %+v, want {300 450}", n.Position)
	}
	if !n.Data.HasUnsavedChanges {
		t.Error("moved node should be flagged unsaved")
	}
	if !s.Dirty() {
		t.Error("session should be dirty after a move")
	}
	cs := s.PendingChanges()
	if got := cs.NodePositions["temple"]; got != (layout.Position{X: 300, Y: 450}) {
		t.Errorf("pending position = %+v, want {300 450}", got)
	}
}

func TestUpdateNodePositionUnknownIDIgnored(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})

	s.UpdateNodePosition("nowhere", layout.Position{X: 1, Y: 1})

	if s.Dirty() {
		t.Error("unknown node ID should not dirty the session")
	}
	if !s.PendingChanges().IsEmpty() {
		t.Error("unknown node ID should not record pending changes")
	}
}

func TestValidateEdgeCreation(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})

	tests := []struct {
		name         string
		spec         EdgeSpec
		wantValid    bool
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:      "ValidWithReverse",
			spec:      EdgeSpec{Source: "temple", Target: "market", Direction: world.North},
			wantValid: true,
		},
		{
			name:       "MissingTarget",
			spec:       EdgeSpec{Source: "temple", Target: "missing-id", Direction: world.North},
			wantValid:  false,
			wantErrors: []string{"Target room does not exist"},
			// No edges exist toward a missing room, so the reverse warning fires too.
			wantWarnings: []string{"No reverse edge found. Consider creating a bidirectional connection."},
		},
		{
			name:         "MissingSource",
			spec:         EdgeSpec{Source: "missing-id", Target: "market", Direction: world.North},
			wantValid:    false,
			wantErrors:   []string{"Source room does not exist"},
			wantWarnings: []string{"No reverse edge found. Consider creating a bidirectional connection."},
		},
		{
			name:       "DuplicateDirection",
			spec:       EdgeSpec{Source: "temple", Target: "market", Direction: world.East},
			wantValid:  false,
			wantErrors: []string{"An edge with this direction already exists"},
		},
		{
			name:         "NoReverseWarns",
			spec:         EdgeSpec{Source: "temple", Target: "alley", Direction: world.South},
			wantValid:    true,
			wantWarnings: []string{"No reverse edge found. Consider creating a bidirectional connection."},
		},
		{
			name:      "OneWaySuppressesWarning",
			spec:      EdgeSpec{Source: "temple", Target: "alley", Direction: world.South, Flags: []string{world.FlagOneWay}},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ValidateEdgeCreation(tt.spec)
			if got.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v", got.IsValid, tt.wantValid)
			}
			if !reflect.DeepEqual(got.Errors, tt.wantErrors) {
				t.Errorf("Errors = %v, want %v", got.Errors, tt.wantErrors)
			}
			if !reflect.DeepEqual(got.Warnings, tt.wantWarnings) {
				t.Errorf("Warnings = %v, want %v", got.Warnings, tt.wantWarnings)
			}
		})
	}
}

func TestCreateEdge(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})

	edge, err := s.CreateEdge(EdgeSpec{Source: "temple", Target: "alley", Direction: world.South, Flags: []string{world.FlagOneWay}})
	if err != nil {
		t.Fatalf("CreateEdge failed: %v", err)
	}
	if edge.ID != "temple-south-alley" {
		t.Errorf("edge ID = %q, want temple-south-alley", edge.ID)
	}
	if edge.SourceHandle != layout.HandleSourceBottom || edge.TargetHandle != layout.HandleTargetTop {
		t.Errorf("handles = %q/%q, want source-bottom/target-top", edge.SourceHandle, edge.TargetHandle)
	}
	if len(s.Edges()) != 3 {
		t.Errorf("edge count = %d, want 3", len(s.Edges()))
	}
	cs := s.PendingChanges()
	if len(cs.NewEdges) != 1 || cs.NewEdges[0].ID != edge.ID {
		t.Errorf("pending new edges = %+v, want the created edge", cs.NewEdges)
	}
}

func TestCreateEdgeInvalidMutatesNothing(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})

	_, err := s.CreateEdge(EdgeSpec{Source: "temple", Target: "missing-id", Direction: world.North})
	if err == nil {
		t.Fatal("expected error for missing target")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidEdge {
		t.Errorf("code = %q, want INVALID_EDGE", errors.GetCode(err))
	}
	if !strings.Contains(err.Error(), "Target room does not exist") {
		t.Errorf("error %q should contain the validation message", err.Error())
	}

	if len(s.Edges()) != 2 {
		t.Errorf("edge count = %d, want 2 (unchanged)", len(s.Edges()))
	}
	if s.Dirty() {
		t.Error("failed create should not dirty the session")
	}
	if !s.PendingChanges().IsEmpty() {
		t.Error("failed create should not record pending changes")
	}

	// Undo after the failed create is a no-op, not a rollback of phantom state.
	s.Undo()
	if len(s.Edges()) != 2 {
		t.Error("undo after failed create changed the edge set")
	}
}

func TestDeleteEdge(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})

	s.DeleteEdge("temple-east-market")

	if len(s.Edges()) != 1 {
		t.Fatalf("edge count = %d, want 1", len(s.Edges()))
	}
	cs := s.PendingChanges()
	if !reflect.DeepEqual(cs.DeletedEdgeIDs, []string{"temple-east-market"}) {
		t.Errorf("pending deleted IDs = %v", cs.DeletedEdgeIDs)
	}

	// Unknown ID is ignored.
	s.DeleteEdge("no-such-edge")
	if len(s.PendingChanges().DeletedEdgeIDs) != 1 {
		t.Error("unknown edge ID should not be recorded")
	}
}

func TestUpdateEdgeMergesPartials(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})

	north := world.North
	desc := "a narrow stair"
	s.UpdateEdge("temple-east-market", EdgeUpdate{Direction: &north})
	s.UpdateEdge("temple-east-market", EdgeUpdate{Description: &desc})

	var got layout.Edge
	for _, e := range s.Edges() {
		if e.Source == "temple" && e.Target == "market" {
			got = e
		}
	}
	if got.Direction != world.North {
		t.Errorf("direction = %q, want north", got.Direction)
	}
	if got.SourceHandle != layout.HandleSourceTop || got.TargetHandle != layout.HandleTargetBottom {
		t.Errorf("handles = %q/%q, want source-top/target-bottom after direction change", got.SourceHandle, got.TargetHandle)
	}
	if got.Description != desc {
		t.Errorf("description = %q, want %q", got.Description, desc)
	}

	// Both partials collapse into one pending entry.
	cs := s.PendingChanges()
	u, ok := cs.EdgeUpdates["temple-east-market"]
	if !ok {
		t.Fatal("expected a pending edge update")
	}
	if u.Direction == nil || *u.Direction != world.North {
		t.Error("merged update lost the direction field")
	}
	if u.Description == nil || *u.Description != desc {
		t.Error("merged update lost the description field")
	}
}

func TestUpdateRoom(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})

	name := "Grand Temple"
	env := "indoor"
	s.UpdateRoom("temple", RoomUpdate{Name: &name})
	s.UpdateRoom("temple", RoomUpdate{Environment: &env})

	n := nodeByID(t, s, "temple")
	if n.Data.Name != name || n.Data.Environment != env {
		t.Errorf("data = %+v, want name/environment updated", n.Data)
	}
	if n.Data.Zone != "midgaard" {
		t.Error("untouched field should be preserved")
	}
	if !n.Data.HasUnsavedChanges {
		t.Error("updated room should be flagged unsaved")
	}

	u := s.PendingChanges().RoomUpdates["temple"]
	if u.Name == nil || u.Environment == nil || u.Zone != nil {
		t.Errorf("merged room update = %+v, want name+environment only", u)
	}
}

func TestUndoRedoRestoresState(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})
	before := s.Nodes()

	s.UpdateNodePosition("temple", layout.Position{X: 500, Y: 500})
	s.Undo()

	if !reflect.DeepEqual(s.Nodes(), before) {
		t.Error("undo did not restore the pre-move state")
	}
	if s.Dirty() {
		t.Error("back at the initial snapshot the session should not be dirty")
	}

	s.Redo()
	if got := nodeByID(t, s, "temple").Position; got != (layout.Position{X: 500, Y: 500}) {
		t.Errorf("redo position = %+v, want {500 500}", got)
	}
	if !s.Dirty() {
		t.Error("session should be dirty again after redo")
	}
}

func TestUndoAtBoundaryIsNoop(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})
	before := s.Nodes()

	s.Undo()
	s.Undo()

	if !reflect.DeepEqual(s.Nodes(), before) {
		t.Error("undo on a fresh session changed state")
	}
	s.Redo()
	if !reflect.DeepEqual(s.Nodes(), before) {
		t.Error("redo on a fresh session changed state")
	}
}

func TestUndoDoesNotTouchPendingChanges(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})

	s.UpdateNodePosition("temple", layout.Position{X: 500, Y: 500})
	s.Undo()

	cs := s.PendingChanges()
	if len(cs.NodePositions) != 1 {
		t.Error("undo should leave the pending change-set intact")
	}
}

func TestHistoryCapEvictsOldest(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{HistoryLimit: 5})

	for i := 1; i <= 10; i++ {
		s.UpdateNodePosition("temple", layout.Position{X: float64(i), Y: 0})
	}
	for i := 0; i < 20; i++ {
		s.Undo()
	}

	// Capacity 5 holds positions 6..10 after ten moves; the oldest
	// reachable state is x=6, not the initial x=0.
	if got := nodeByID(t, s, "temple").Position.X; got != 6 {
		t.Errorf("oldest reachable position = %v, want 6", got)
	}
}

func TestSaveClearsPendingOnSuccess(t *testing.T) {
	nodes, edges := testGraph()
	var saved []ChangeSet
	s := New(nodes, edges, Options{Saver: func(_ context.Context, cs ChangeSet) error {
		saved = append(saved, cs)
		return nil
	}})

	s.UpdateNodePosition("temple", layout.Position{X: 42, Y: 7})
	s.DeleteEdge("market-west-temple")

	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("saver called %d times, want 1", len(saved))
	}
	if saved[0].NodePositions["temple"] != (layout.Position{X: 42, Y: 7}) {
		t.Errorf("saved positions = %+v", saved[0].NodePositions)
	}
	if !reflect.DeepEqual(saved[0].DeletedEdgeIDs, []string{"market-west-temple"}) {
		t.Errorf("saved deleted IDs = %v", saved[0].DeletedEdgeIDs)
	}

	if !s.PendingChanges().IsEmpty() {
		t.Error("pending change-set should be empty after a successful save")
	}
	if s.Dirty() {
		t.Error("session should be clean after a successful save")
	}
	if nodeByID(t, s, "temple").Data.HasUnsavedChanges {
		t.Error("node unsaved flag should drop after a successful save")
	}
}

func TestSaveFailurePreservesPending(t *testing.T) {
	nodes, edges := testGraph()
	calls := 0
	s := New(nodes, edges, Options{Saver: func(_ context.Context, cs ChangeSet) error {
		calls++
		if calls == 1 {
			return fmt.Errorf("backend unavailable")
		}
		return nil
	}})

	s.UpdateNodePosition("temple", layout.Position{X: 42, Y: 7})

	if err := s.Save(context.Background()); err == nil {
		t.Fatal("expected first save to fail")
	}
	if s.PendingChanges().IsEmpty() {
		t.Fatal("failed save must preserve pending changes")
	}
	if !s.Dirty() {
		t.Error("session should stay dirty after a failed save")
	}

	// Retry submits the same change-set and succeeds.
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !s.PendingChanges().IsEmpty() {
		t.Error("retry success should clear pending changes")
	}
}

func TestSaveWithoutSaverIsNoop(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})

	s.UpdateNodePosition("temple", layout.Position{X: 1, Y: 1})
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save without saver errored: %v", err)
	}
	// No saver means nothing was persisted; pending state is untouched.
	if s.PendingChanges().IsEmpty() {
		t.Error("save without a saver should not clear pending changes")
	}
}

func TestReset(t *testing.T) {
	nodes, edges := testGraph()
	s := New(nodes, edges, Options{})
	initial := s.Nodes()

	s.UpdateNodePosition("temple", layout.Position{X: 500, Y: 500})
	_, _ = s.CreateEdge(EdgeSpec{Source: "temple", Target: "alley", Direction: world.South, Flags: []string{world.FlagOneWay}})

	s.Reset()

	if !reflect.DeepEqual(s.Nodes(), initial) {
		t.Error("reset did not restore initial nodes")
	}
	if len(s.Edges()) != 2 {
		t.Errorf("edge count after reset = %d, want 2", len(s.Edges()))
	}
	if s.Dirty() {
		t.Error("session should be clean after reset")
	}
	if !s.PendingChanges().IsEmpty() {
		t.Error("reset should discard pending changes")
	}
	s.Undo()
	if !reflect.DeepEqual(s.Nodes(), initial) {
		t.Error("undo after reset should be a no-op")
	}
}
