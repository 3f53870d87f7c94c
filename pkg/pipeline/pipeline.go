// Package pipeline provides the load → transform → layout → render pipeline.
//
// This package implements the complete flow from a world file to rendered
// artifacts, usable by both CLI and API entry points. Centralizing it keeps
// caching and default handling consistent across entry points.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read and decode the world file
//  2. Transform: Convert rooms and exits to visual nodes and edges
//  3. Layout: Place nodes with the grid or force algorithm
//  4. Render: Generate output in various formats (SVG, PNG, DOT, JSON)
//
// The layout and render stages are cached; layouts are pure functions of
// world content and configuration, so cache keys are content hashes.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    WorldPath: "midgaard.json",
//	    Algorithm: layout.AlgorithmForce,
//	    Formats:   []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tobiaswren/mapforge/pkg/errors"
	"github.com/tobiaswren/mapforge/pkg/layout"
	"github.com/tobiaswren/mapforge/pkg/store"
	"github.com/tobiaswren/mapforge/pkg/world"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidAlgorithms is the set of supported layout algorithms.
var ValidAlgorithms = map[string]bool{
	layout.AlgorithmGrid:  true,
	layout.AlgorithmForce: true,
}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for one pipeline run.
// The struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	WorldPath   string `json:"world_path,omitempty"`
	WorldID     string `json:"world_id,omitempty"` // defaults to the file basename
	CurrentRoom string `json:"current_room,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"` // bypass the layout/render cache

	// Layout options
	Algorithm string             `json:"algorithm,omitempty"`
	Grid      layout.GridConfig  `json:"grid,omitempty"`
	Force     layout.ForceConfig `json:"force,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Theme    string   `json:"theme,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	Store  store.Store `json:"-"` // overlays persisted positions when set

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.WorldPath == "" {
		return errors.New(errors.ErrCodeInvalidPath, "world path is required")
	}
	if o.WorldID == "" {
		base := filepath.Base(o.WorldPath)
		o.WorldID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := errors.ValidateWorldID(o.WorldID); err != nil {
		return err
	}

	if o.Algorithm == "" {
		o.Algorithm = layout.AlgorithmGrid
	}
	if !ValidAlgorithms[o.Algorithm] {
		return errors.New(errors.ErrCodeInvalidLayout, "unknown layout algorithm %q", o.Algorithm)
	}
	if o.Grid == (layout.GridConfig{}) {
		o.Grid = layout.DefaultGridConfig()
	}
	if o.Force == (layout.ForceConfig{}) {
		o.Force = layout.DefaultForceConfig()
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", f)
		}
	}

	o.validated = true
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// World is the decoded world.
	World *world.World

	// WorldHash is the content hash of the world file.
	WorldHash string

	// Document is the laid-out node/edge document.
	Document *layout.Document

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RoomCount  int
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits per pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}
