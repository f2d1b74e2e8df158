package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments (or a
// test run) can share one Redis or MongoDB without seeing each other's
// entries.
//
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

// HTTPKey implements Keyer.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// IndexKey implements Keyer.
func (k *ScopedKeyer) IndexKey(url string) string {
	return k.prefix + k.inner.IndexKey(url)
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(source, key string) string {
	return k.prefix + k.inner.ArtifactKey(source, key)
}

// EstimateKey implements Keyer.
func (k *ScopedKeyer) EstimateKey(indexHash string, opts EstimateKeyOpts) string {
	return k.prefix + k.inner.EstimateKey(indexHash, opts)
}
