package cache

// ScopedKeyer wraps a Keyer with a prefix. The CLI scopes keys by build
// version so that a new compiler never reads solutions of an old one.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
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

// SolutionKey generates a prefixed solution key.
func (k *ScopedKeyer) SolutionKey(documentHash string, opts SolutionKeyOpts) string {
	return k.prefix + k.inner.SolutionKey(documentHash, opts)
}
