package cache

// ScopedKeyer wraps a Keyer with a prefix, for example to keep the caches
// of several family files or servers apart in one Redis database:
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "kintower:")
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) GraphKey(contentHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(contentHash, opts)
}

func (k *ScopedKeyer) LayoutKey(familyHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(familyHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
