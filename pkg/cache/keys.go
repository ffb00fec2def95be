package cache

// Keyer builds cache keys.
type Keyer interface {
	// FrameKey identifies one encoded frame of a scene.
	FrameKey(sceneHash string, opts FrameKeyOpts) string
}

// FrameKeyOpts are the render inputs besides the scene itself.
type FrameKeyOpts struct {
	Time   string            `json:"time"`
	Values map[string]string `json:"values,omitempty"`
	Format string            `json:"format"`
	Width  int               `json:"width"`
	Height int               `json:"height"`

	// Assets fingerprints the asset files, so edited glyphs or hands
	// invalidate earlier frames.
	Assets string `json:"assets,omitempty"`
}

// DefaultKeyer produces "frame:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FrameKey hashes the scene hash and options. Map keys in Values are
// encoded in sorted order, so equal options always give equal keys.
func (DefaultKeyer) FrameKey(sceneHash string, opts FrameKeyOpts) string {
	return frameDigest(sceneHash, opts)
}

// ScopedKeyer prefixes every key of an inner Keyer, separating namespaces
// that share one backend (for example, several servers on one Redis).
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer means the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// FrameKey generates a prefixed frame key.
func (k *ScopedKeyer) FrameKey(sceneHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(sceneHash, opts)
}
