package cache

import "github.com/matzehuels/genomechart/pkg/genomics"

// ScopedKeyer wraps a Keyer with a prefix. The CLI scopes keys by build
// version so that payload format changes never read stale entries; servers
// may additionally scope by tenant.
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

// PayloadKey generates a prefixed payload key.
func (k *ScopedKeyer) PayloadKey(setID string, w genomics.Window, opts PayloadKeyOpts) string {
	return k.prefix + k.inner.PayloadKey(setID, w, opts)
}
