package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tobiaswren/mapforge/pkg/cache"
	"github.com/tobiaswren/mapforge/pkg/errors"
	"github.com/tobiaswren/mapforge/pkg/layout"
	"github.com/tobiaswren/mapforge/pkg/observability"
	"github.com/tobiaswren/mapforge/pkg/render"
	"github.com/tobiaswren/mapforge/pkg/world"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely share one Runner
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete load → transform → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	w, worldHash, err := r.LoadWorld(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.World = w
	result.WorldHash = worldHash
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.RoomCount = len(w.Rooms)

	opts.Logger.Info("loaded world",
		"world", opts.WorldID,
		"rooms", len(w.Rooms),
		"duration", result.Stats.LoadTime)

	// Stage 2+3: Transform and layout
	layoutStart := time.Now()
	doc, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, w, worldHash, opts)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(doc.Nodes)
	result.Stats.EdgeCount = len(doc.Edges)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"algorithm", opts.Algorithm,
		"nodes", len(doc.Nodes),
		"edges", len(doc.Edges),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWorld reads the world file and returns it with its content hash.
// When a Store is configured, persisted positions overlay the rooms' stored
// coordinates before layout, so saved editor moves survive restarts.
func (r *Runner) LoadWorld(ctx context.Context, opts Options) (*world.World, string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(opts.WorldPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "world file %q", opts.WorldPath)
		}
		return nil, "", errors.Wrap(errors.ErrCodePersistence, err, "read world file %q", opts.WorldPath)
	}

	w, err := world.ReadWorld(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidWorld, err, "parse world file %q", opts.WorldPath)
	}

	if opts.Store != nil {
		positions, err := opts.Store.LoadPositions(ctx, opts.WorldID)
		if err != nil {
			return nil, "", err
		}
		for i := range w.Rooms {
			if pos, ok := positions[w.Rooms[i].ID]; ok {
				w.Rooms[i].SetStoredCoordinates(pos.X, pos.Y)
			}
		}
	}

	return w, cache.Hash(data), nil
}

// ComputeLayoutWithCacheInfo transforms the world and places its nodes,
// with caching, and reports whether the cache was hit.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, w *world.World, worldHash string, opts Options) (*layout.Document, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.LayoutKey(worldHash, cache.LayoutKeyOpts{
		Algorithm:  opts.Algorithm,
		ConfigHash: r.configHash(opts),
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := layout.UnmarshalDocument(data); err == nil {
				return &cached, true, nil
			}
			// Corrupt entry: fall through and recompute.
		}
	}

	doc, err := r.computeLayout(ctx, w, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := layout.MarshalDocument(*doc); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}
	return doc, false, nil
}

// computeLayout runs the transform and placement stages uncached.
func (r *Runner) computeLayout(ctx context.Context, w *world.World, opts Options) (*layout.Document, error) {
	transformStart := time.Now()
	observability.Layout().OnTransformStart(ctx, len(w.Rooms))

	nodes := layout.RoomsToNodes(w.Rooms, opts.CurrentRoom, &opts.Grid)
	edges := layout.EdgesFromRooms(w.Rooms)

	observability.Layout().OnTransformComplete(ctx, len(nodes), len(edges), time.Since(transformStart))

	layoutStart := time.Now()
	observability.Layout().OnLayoutStart(ctx, opts.Algorithm, len(nodes))

	var err error
	switch opts.Algorithm {
	case layout.AlgorithmGrid:
		nodes = layout.ApplyGrid(nodes, opts.Grid)
	case layout.AlgorithmForce:
		nodes = layout.ApplyForce(nodes, edges, opts.Force)
	default:
		err = errors.New(errors.ErrCodeInvalidLayout, "unknown layout algorithm %q", opts.Algorithm)
	}
	observability.Layout().OnLayoutComplete(ctx, opts.Algorithm, time.Since(layoutStart), err)
	if err != nil {
		return nil, err
	}

	return &layout.Document{
		Algorithm: opts.Algorithm,
		Nodes:     nodes,
		Edges:     edges,
	}, nil
}

// RenderWithCacheInfo renders artifacts for all requested formats, with
// per-format caching, and reports whether every format was served from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *layout.Document, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	docData, err := layout.MarshalDocument(*doc)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(docData)

	artifacts := make(map[string][]byte)
	allCached := true
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{Format: format, Theme: opts.Theme})
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := r.renderFormats(ctx, doc, docData, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{Format: format, Theme: opts.Theme})
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// renderFormats produces every requested format uncached. The DOT source is
// built once and shared by the svg/png/dot outputs.
func (r *Runner) renderFormats(ctx context.Context, doc *layout.Document, docData []byte, opts Options) (map[string][]byte, error) {
	dot := render.ToDOT(doc, render.Options{Detailed: opts.Detailed, Theme: opts.Theme})

	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatDOT:
			out[format] = []byte(dot)
		case FormatJSON:
			out[format] = docData
		case FormatSVG:
			svg, err := render.SVG(ctx, dot)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
			}
			out[format] = svg
		case FormatPNG:
			png, err := render.PNG(ctx, dot)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "render png")
			}
			out[format] = png
		}
	}
	return out, nil
}

// configHash hashes the active algorithm's configuration for cache keying.
func (r *Runner) configHash(opts Options) string {
	var data []byte
	switch opts.Algorithm {
	case layout.AlgorithmForce:
		data, _ = json.Marshal(opts.Force)
	default:
		data, _ = json.Marshal(opts.Grid)
	}
	return cache.Hash(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
