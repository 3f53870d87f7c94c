package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, so
// several worlds or users can share one cache directory or Redis database
// without key collisions.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all generated keys.
// A nil inner keyer falls back to the default strategy.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) WorldKey(worldID, contentHash string) string {
	return k.prefix + k.inner.WorldKey(worldID, contentHash)
}

func (k *ScopedKeyer) LayoutKey(worldHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(worldHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

var _ Keyer = (*ScopedKeyer)(nil)
