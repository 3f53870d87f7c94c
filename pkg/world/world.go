package world

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// ExitValue - Tagged Union
// =============================================================================

// ExitKind discriminates the three shapes an exit can take in world data.
type ExitKind int

const (
	// ExitAbsent means the direction has no exit (null or missing value).
	ExitAbsent ExitKind = iota
	// ExitTargetID means the exit is a bare destination room ID.
	ExitTargetID
	// ExitDetailed means the exit is an object with target, flags, and
	// an optional description.
	ExitDetailed
)

// ExitValue is a tagged union over the shapes an exit takes in persisted
// world data: absent, a bare target ID string, or a detailed object.
//
// The zero value is an absent exit. Use [ExitValue.Target] to resolve the
// destination regardless of shape.
type ExitValue struct {
	Kind        ExitKind
	TargetID    string   // set when Kind == ExitTargetID or ExitDetailed
	Flags       []string // set when Kind == ExitDetailed
	Description string   // set when Kind == ExitDetailed
}

// Target resolves the destination room ID for any exit shape.
// Returns "", false for absent exits or detailed exits without a target.
func (e ExitValue) Target() (string, bool) {
	if e.Kind == ExitAbsent || e.TargetID == "" {
		return "", false
	}
	return e.TargetID, true
}

// HasFlag reports whether the exit carries the named flag.
func (e ExitValue) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// detailedExit is the JSON object shape of a detailed exit.
type detailedExit struct {
	Target      string   `json:"target"`
	Flags       []string `json:"flags,omitempty"`
	Description string   `json:"description,omitempty"`
}

// UnmarshalJSON decodes the three accepted exit shapes: null, a bare
// string, or a detailed object. Any other shape is an error.
func (e *ExitValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = ExitValue{Kind: ExitAbsent}
		return nil
	}

	var target string
	if err := json.Unmarshal(data, &target); err == nil {
		*e = ExitValue{Kind: ExitTargetID, TargetID: target}
		return nil
	}

	var detail detailedExit
	if err := json.Unmarshal(data, &detail); err != nil {
		return fmt.Errorf("exit value must be null, string, or object: %w", err)
	}
	*e = ExitValue{
		Kind:        ExitDetailed,
		TargetID:    detail.Target,
		Flags:       detail.Flags,
		Description: detail.Description,
	}
	return nil
}

// MarshalJSON encodes the exit in its most compact faithful shape.
func (e ExitValue) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case ExitAbsent:
		return []byte("null"), nil
	case ExitTargetID:
		return json.Marshal(e.TargetID)
	default:
		return json.Marshal(detailedExit{
			Target:      e.TargetID,
			Flags:       e.Flags,
			Description: e.Description,
		})
	}
}

// =============================================================================
// Coordinates - Explicit Option Type
// =============================================================================

// Coordinates is an optional stored map position. Valid is true only when
// both axes were present and non-null in the source data.
type Coordinates struct {
	X     float64
	Y     float64
	Valid bool
}

// =============================================================================
// Room
// =============================================================================

// Room is one location in the world graph. IDs are globally unique.
//
// MapX/MapY mirror the persisted nullable columns; use [Room.StoredCoordinates]
// for the option-typed view.
type Room struct {
	ID          string                   `json:"id" bson:"id"`
	Name        string                   `json:"name,omitempty" bson:"name,omitempty"`
	Description string                   `json:"description,omitempty" bson:"description,omitempty"`
	Plane       string                   `json:"plane,omitempty" bson:"plane,omitempty"`
	Zone        string                   `json:"zone,omitempty" bson:"zone,omitempty"`
	SubZone     string                   `json:"sub_zone,omitempty" bson:"sub_zone,omitempty"`
	Environment string                   `json:"environment,omitempty" bson:"environment,omitempty"`
	Exits       map[Direction]ExitValue  `json:"exits,omitempty" bson:"exits,omitempty"`
	MapX        *float64                 `json:"map_x,omitempty" bson:"map_x,omitempty"`
	MapY        *float64                 `json:"map_y,omitempty" bson:"map_y,omitempty"`
}

// StoredCoordinates returns the room's persisted placement as an option type.
// The result is valid only when both axes are present.
func (r *Room) StoredCoordinates() Coordinates {
	if r.MapX == nil || r.MapY == nil {
		return Coordinates{}
	}
	return Coordinates{X: *r.MapX, Y: *r.MapY, Valid: true}
}

// SetStoredCoordinates records a deliberate placement on the room.
func (r *Room) SetStoredCoordinates(x, y float64) {
	r.MapX = &x
	r.MapY = &y
}

// =============================================================================
// World
// =============================================================================

// World is an ordered collection of rooms. Order matters: layout engines are
// deterministic over the room order, so files round-trip stably.
type World struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Rooms []Room `json:"rooms" bson:"rooms"`
}

// Room returns the room with the given ID and true, or nil and false.
func (w *World) Room(id string) (*Room, bool) {
	for i := range w.Rooms {
		if w.Rooms[i].ID == id {
			return &w.Rooms[i], true
		}
	}
	return nil, false
}

// RoomIDs returns the room IDs in collection order.
func (w *World) RoomIDs() []string {
	ids := make([]string, len(w.Rooms))
	for i, r := range w.Rooms {
		ids[i] = r.ID
	}
	return ids
}

// =============================================================================
// Serialization API
// =============================================================================

// ReadWorld decodes a JSON world from an io.Reader.
// Use ReadWorldFile for files or pass bytes.NewReader for in-memory data.
func ReadWorld(r io.Reader) (*World, error) {
	var w World
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("decode world: %w", err)
	}
	return &w, nil
}

// ReadWorldFile reads a JSON file and returns the decoded world.
func ReadWorldFile(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadWorld(f)
}

// WriteWorld writes a world as indented JSON to an io.Writer.
func WriteWorld(w *World, out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(w); err != nil {
		return fmt.Errorf("encode world: %w", err)
	}
	return nil
}

// WriteWorldFile writes a world to a JSON file with 0644 permissions.
func WriteWorldFile(w *World, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteWorld(w, f)
}
