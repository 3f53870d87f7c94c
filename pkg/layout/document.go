package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Document - Layout Serialization Format
// =============================================================================

// Document is the serialization format for a computed layout. It is the
// hand-off between layout computation and downstream consumers (renderer,
// edit session hosts, storage).
type Document struct {
	// Algorithm records which engine produced the positions
	// ("grid" or "force"); informational only.
	Algorithm string `json:"algorithm,omitempty" bson:"algorithm,omitempty"`
	Nodes     []Node `json:"nodes" bson:"nodes"`
	Edges     []Edge `json:"edges,omitempty" bson:"edges,omitempty"`
}

// MarshalDocument serializes a Document to pretty-printed JSON bytes.
func MarshalDocument(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDocument deserializes JSON bytes into a Document.
// Edges referencing nodes absent from the document are dropped silently;
// partially specified data must stay loadable.
func UnmarshalDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	index := NodeIndex(d.Nodes)
	kept := d.Edges[:0]
	for _, e := range d.Edges {
		if _, okS := index[e.Source]; !okS {
			continue
		}
		if _, okT := index[e.Target]; !okT {
			continue
		}
		kept = append(kept, e)
	}
	d.Edges = kept

	return d, nil
}

// WriteDocumentFile writes a Document to a JSON file with 0644 permissions.
func WriteDocumentFile(d Document, path string) error {
	data, err := MarshalDocument(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadDocumentFile reads a Document from a JSON file.
func ReadDocumentFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalDocument(data)
}
