package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several tools or
// environments sharing one backend (typically Redis) do not collide.
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

// HistoryKey generates a prefixed history key.
func (k *ScopedKeyer) HistoryKey(provider, ref string, opts HistoryKeyOpts) string {
	return k.prefix + k.inner.HistoryKey(provider, ref, opts)
}

// TagsKey generates a prefixed tag list key.
func (k *ScopedKeyer) TagsKey(provider, repository string) string {
	return k.prefix + k.inner.TagsKey(provider, repository)
}
