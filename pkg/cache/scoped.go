package cache

// ScopedKeyer wraps a Keyer with a prefix for isolation.
// This is useful when several deployments (or users of the API server)
// share one Redis instance and must not see each other's entries.
//
// Example usage:
//
//	// Per-environment keys on a shared Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(matrixHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(matrixHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(keyboardHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(keyboardHash, opts)
}
