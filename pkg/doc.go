// Package pkg provides the core libraries for Mapforge map rendering and editing.
//
// # Overview
//
// Mapforge turns MUD world files (rooms, zones, and exits) into laid-out,
// renderable maps, and lets users edit room placement and connections
// through bounded-undo sessions. The pkg directory is organized into
// five main areas:
//
//  1. [world] - World file model (rooms, exits, directions)
//  2. [layout] - Graph transformation and layout engines (grid, force)
//  3. [editor] - Edit sessions with undo/redo and change-set tracking
//  4. [render] - DOT generation and Graphviz rasterization
//  5. [pipeline] - Orchestration (load → transform → layout → render)
//
// # Architecture
//
// The typical data flow through Mapforge:
//
//	World JSON file
//	         ↓
//	    [world] package (decode rooms and exits)
//	         ↓
//	    [layout] package (nodes, edges, grid/force placement)
//	         ↓
//	    [render] package (DOT, SVG, PNG)
//	         ↓
//	    SVG/PNG/DOT/JSON output
//
// Editing runs alongside rendering: an [editor] session wraps a computed
// layout, accumulates a change-set, and persists it through a [store]
// backend. Persisted positions overlay the world on the next load.
//
// # Quick Start
//
// Run the full pipeline:
//
//	import (
//	    "context"
//	    "github.com/tobiaswren/mapforge/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    WorldPath: "midgaard.json",
//	    Formats:   []string{"svg"},
//	})
//
// Open an edit session over the computed layout:
//
//	sess := editor.New(result.Document.Nodes, result.Document.Edges, editor.Options{
//	    Saver: store.Saver(st, "midgaard"),
//	})
//	sess.UpdateNodePosition("temple", layout.Position{X: 120, Y: 240})
//	err := sess.Save(ctx)
//
// # Main Packages
//
// [world] - The world file model: rooms with zones, planes, and typed exits.
// Exits accept both bare target strings and structured objects with flags.
//
// [layout] - Transformation of rooms into visual nodes and edges, including
// synthetic intersection nodes for dense junctions, plus the grid and
// force-directed placement engines.
//
// [editor] - Edit sessions: position moves, edge creation with validation,
// room and edge updates, snapshot-based undo/redo, and pending change-sets.
//
// [store] - Change-set persistence. FileStore for single-user CLI editing,
// RedisStore for shared low-latency deployments, MongoStore for durable
// multi-user deployments.
//
// [cache] - Content-addressed caching of layouts and rendered artifacts
// with per-kind TTLs and retry helpers for transient failures.
//
// [render] - DOT generation with pinned positions and theming, and
// in-process Graphviz rasterization to SVG and PNG.
//
// [pipeline] - The complete load → transform → layout → render pipeline
// used by both the CLI and the HTTP API.
//
// [errors] - Structured errors with stable machine-readable codes.
//
// [observability] - Hook points for instrumenting transforms, layouts,
// cache traffic, and session activity.
//
// [world]: https://pkg.go.dev/github.com/tobiaswren/mapforge/pkg/world
// [layout]: https://pkg.go.dev/github.com/tobiaswren/mapforge/pkg/layout
// [editor]: https://pkg.go.dev/github.com/tobiaswren/mapforge/pkg/editor
// [store]: https://pkg.go.dev/github.com/tobiaswren/mapforge/pkg/store
// [cache]: https://pkg.go.dev/github.com/tobiaswren/mapforge/pkg/cache
// [render]: https://pkg.go.dev/github.com/tobiaswren/mapforge/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/tobiaswren/mapforge/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/tobiaswren/mapforge/pkg/errors
// [observability]: https://pkg.go.dev/github.com/tobiaswren/mapforge/pkg/observability
package pkg
