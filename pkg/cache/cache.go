// Package cache provides content-addressed caching for layout and render
// results.
//
// Force layouts are the expensive step (hundreds of simulation iterations
// over every node pair), so the pipeline caches computed documents keyed by
// the world content hash plus the layout configuration. Rendered artifacts
// (SVG, PNG, DOT) are cached one level further down, keyed by the layout
// hash plus render options.
//
// Two implementations are provided: FileCache for CLI usage and NullCache
// for disabling caching entirely.
package cache

import (
	"context"
	"time"
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per cached layer.
const (
	// TTLWorld covers parsed world snapshots.
	TTLWorld = 1 * time.Hour

	// TTLLayout covers computed layout documents. Layouts are pure
	// functions of world content and config, so they can live long.
	TTLLayout = 24 * time.Hour

	// TTLArtifact covers rendered SVG/PNG/DOT output.
	TTLArtifact = 7 * 24 * time.Hour
)

// =============================================================================
// Keyers
// =============================================================================

// LayoutKeyOpts distinguishes layout cache entries computed with different
// algorithms or tuning.
type LayoutKeyOpts struct {
	Algorithm  string
	ConfigHash string
}

// ArtifactKeyOpts distinguishes render cache entries.
type ArtifactKeyOpts struct {
	Format string
	Theme  string
}

// Keyer generates cache keys for the cacheable layers.
type Keyer interface {
	// WorldKey keys a parsed world snapshot by ID and content hash.
	WorldKey(worldID, contentHash string) string

	// LayoutKey keys a computed layout document.
	LayoutKey(worldHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generation strategy.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

func (k *DefaultKeyer) WorldKey(worldID, contentHash string) string {
	return "world:" + worldID + ":" + contentHash
}

func (k *DefaultKeyer) LayoutKey(worldHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", worldHash, opts.Algorithm, opts.ConfigHash)
}

func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts.Format, opts.Theme)
}

var _ Keyer = (*DefaultKeyer)(nil)
