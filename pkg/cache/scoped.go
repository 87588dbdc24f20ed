package cache

// ScopedKeyer prefixes every key of an inner Keyer. The server uses it to
// keep instances that share a Redis database apart:
//
//	keyer := cache.NewScopedKeyer(nil, "stickerwall:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// AssetKey returns the prefixed asset key.
func (k *ScopedKeyer) AssetKey(locator string) string {
	return k.prefix + k.inner.AssetKey(locator)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(opts)
}
