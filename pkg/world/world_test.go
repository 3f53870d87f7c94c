package world

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExitValueUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ExitValue
		wantErr bool
	}{
		{
			name:  "Null",
			input: `null`,
			want:  ExitValue{Kind: ExitAbsent},
		},
		{
			name:  "BareString",
			input: `"temple-square"`,
			want:  ExitValue{Kind: ExitTargetID, TargetID: "temple-square"},
		},
		{
			name:  "Detailed",
			input: `{"target": "vault", "flags": ["locked", "hidden"], "description": "A heavy door."}`,
			want: ExitValue{
				Kind:        ExitDetailed,
				TargetID:    "vault",
				Flags:       []string{"locked", "hidden"},
				Description: "A heavy door.",
			},
		},
		{
			name:  "DetailedUnknownFlags",
			input: `{"target": "sewer", "flags": ["slippery"]}`,
			want:  ExitValue{Kind: ExitDetailed, TargetID: "sewer", Flags: []string{"slippery"}},
		},
		{
			name:    "Invalid",
			input:   `42`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ExitValue
			err := got.UnmarshalJSON([]byte(tt.input))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalJSON: %v", err)
			}

			if got.Kind != tt.want.Kind {
				t.Errorf("kind = %v, want %v", got.Kind, tt.want.Kind)
			}
			if got.TargetID != tt.want.TargetID {
				t.Errorf("target = %q, want %q", got.TargetID, tt.want.TargetID)
			}
			if got.Description != tt.want.Description {
				t.Errorf("description = %q, want %q", got.Description, tt.want.Description)
			}
			if len(got.Flags) != len(tt.want.Flags) {
				t.Fatalf("flags = %v, want %v", got.Flags, tt.want.Flags)
			}
			for i := range got.Flags {
				if got.Flags[i] != tt.want.Flags[i] {
					t.Errorf("flags[%d] = %q, want %q", i, got.Flags[i], tt.want.Flags[i])
				}
			}
		})
	}
}

func TestExitValueTarget(t *testing.T) {
	if _, ok := (ExitValue{}).Target(); ok {
		t.Error("absent exit should have no target")
	}
	if target, ok := (ExitValue{Kind: ExitTargetID, TargetID: "a"}).Target(); !ok || target != "a" {
		t.Errorf("target = %q, %v, want a, true", target, ok)
	}
	if _, ok := (ExitValue{Kind: ExitDetailed}).Target(); ok {
		t.Error("detailed exit without target should have no target")
	}
}

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		dir  Direction
		want Direction
	}{
		{North, South},
		{Southwest, Northeast},
		{Up, Down},
		{Direction("portal"), ""},
	}
	for _, tt := range tests {
		if got := tt.dir.Opposite(); got != tt.want {
			t.Errorf("Opposite(%s) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestStoredCoordinates(t *testing.T) {
	var r Room
	if r.StoredCoordinates().Valid {
		t.Error("room without coordinates should be invalid")
	}

	x := 120.0
	r.MapX = &x
	if r.StoredCoordinates().Valid {
		t.Error("room with only one axis should be invalid")
	}

	r.SetStoredCoordinates(120, -40)
	coords := r.StoredCoordinates()
	if !coords.Valid || coords.X != 120 || coords.Y != -40 {
		t.Errorf("coords = %+v, want {120 -40 true}", coords)
	}
}

func TestReadWorld(t *testing.T) {
	input := `{
		"name": "test-world",
		"rooms": [
			{
				"id": "A",
				"name": "Temple Square",
				"zone": "midgaard",
				"exits": {"north": "B", "east": null}
			},
			{
				"id": "B",
				"exits": {"south": {"target": "A", "flags": ["one_way"]}},
				"map_x": 100,
				"map_y": 200
			}
		]
	}`

	w, err := ReadWorld(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadWorld: %v", err)
	}

	if len(w.Rooms) != 2 {
		t.Fatalf("rooms = %d, want 2", len(w.Rooms))
	}

	a, ok := w.Room("A")
	if !ok {
		t.Fatal("room A not found")
	}
	if target, ok := a.Exits[North].Target(); !ok || target != "B" {
		t.Errorf("A north target = %q, %v, want B, true", target, ok)
	}
	if _, ok := a.Exits[East].Target(); ok {
		t.Error("A east should be absent")
	}

	b, ok := w.Room("B")
	if !ok {
		t.Fatal("room B not found")
	}
	if !b.Exits[South].HasFlag(FlagOneWay) {
		t.Error("B south should carry one_way flag")
	}
	coords := b.StoredCoordinates()
	if !coords.Valid || coords.X != 100 || coords.Y != 200 {
		t.Errorf("B coords = %+v, want {100 200 true}", coords)
	}
}

func TestWriteWorldFileRoundTrip(t *testing.T) {
	w := &World{
		Name: "rt",
		Rooms: []Room{
			{ID: "A", Exits: map[Direction]ExitValue{North: {Kind: ExitTargetID, TargetID: "B"}}},
			{ID: "B"},
		},
	}

	path := filepath.Join(t.TempDir(), "world.json")
	if err := WriteWorldFile(w, path); err != nil {
		t.Fatalf("WriteWorldFile: %v", err)
	}

	got, err := ReadWorldFile(path)
	if err != nil {
		t.Fatalf("ReadWorldFile: %v", err)
	}
	if len(got.Rooms) != 2 {
		t.Errorf("rooms = %d, want 2", len(got.Rooms))
	}
	if target, ok := got.Rooms[0].Exits[North].Target(); !ok || target != "B" {
		t.Errorf("round-trip lost exit target: %q, %v", target, ok)
	}
}

func TestReadWorldFileNotFound(t *testing.T) {
	if _, err := ReadWorldFile(filepath.Join(os.TempDir(), "does-not-exist.json")); err == nil {
		t.Error("expected error for nonexistent file")
	}
}
