package cache

// Keyer derives cache keys for the cacheable artifacts of an analysis:
// external database responses, motif quantification matrices, and
// rendered diagrams.
type Keyer interface {
	// HTTPKey keys a cached response from an external service.
	HTTPKey(namespace, key string) string
	// MatrixKey keys a motif quantification of a glycan list against a
	// motif library version.
	MatrixKey(libraryVersion string, glycans []string) string
	// RenderKey keys a rendered diagram of one glycan.
	RenderKey(sequence, format string, labels bool) string
}

// DefaultKeyer hashes key material into stable namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// HTTPKey generates a key for an external service response.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return hashKey("http:"+namespace, key)
}

// MatrixKey generates a key for a quantification matrix.
func (k *DefaultKeyer) MatrixKey(libraryVersion string, glycans []string) string {
	return hashKey("matrix", libraryVersion, glycans)
}

// RenderKey generates a key for a rendered diagram.
func (k *DefaultKeyer) RenderKey(sequence, format string, labels bool) string {
	return hashKey("render", sequence, format, labels)
}

// ScopedKeyer prefixes every key produced by an inner Keyer, isolating
// key spaces when several analyses share one backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps a keyer with a prefix. A nil inner keyer defaults
// to the standard one.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed response key.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// MatrixKey generates a prefixed matrix key.
func (k *ScopedKeyer) MatrixKey(libraryVersion string, glycans []string) string {
	return k.prefix + k.inner.MatrixKey(libraryVersion, glycans)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(sequence, format string, labels bool) string {
	return k.prefix + k.inner.RenderKey(sequence, format, labels)
}
