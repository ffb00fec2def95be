// Package asset resolves logical asset names to decoded images.
//
// A [Store] searches one or more read-only roots (any fs.FS; os.DirFS in the
// CLI) and caches decoded images by resolved path for its lifetime. The cache
// is guarded by a mutex, so a Store can be shared across concurrent renders.
//
// Lookups are fail-fast: a name with no candidate yields an
// ASSET_NOT_FOUND error. Whether that aborts anything is the caller's call;
// the renderer treats it as a per-widget soft failure.
package asset

import (
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/wfstudio/wfrender/pkg/errors"
	"github.com/wfstudio/wfrender/pkg/observability"
)

// Store resolves asset names against its roots and caches decoded images.
type Store struct {
	roots  []fs.FS
	logger *log.Logger

	mu      sync.RWMutex
	images  map[string]*image.NRGBA // resolved key -> decoded image
	aliases map[string]string       // requested name -> resolved key
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output about loads.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRoot appends a fallback root searched after the primary one.
func WithRoot(fsys fs.FS) Option {
	return func(s *Store) {
		if fsys != nil {
			s.roots = append(s.roots, fsys)
		}
	}
}

// New creates a Store over src.
func New(src fs.FS, opts ...Option) *Store {
	s := &Store{
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		images:  make(map[string]*image.NRGBA),
		aliases: make(map[string]string),
	}
	if src != nil {
		s.roots = append(s.roots, src)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDir creates a Store rooted at an OS directory.
func NewDir(dir string, opts ...Option) *Store {
	return New(os.DirFS(dir), opts...)
}

// Resolve returns the decoded image for name. The name is tried as given
// and then by its base name, in each root in order.
func (s *Store) Resolve(name string) (*image.NRGBA, error) {
	if err := errors.ValidateAssetName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	if key, ok := s.aliases[name]; ok {
		img := s.images[key]
		s.mu.RUnlock()
		observability.Assets().OnAssetHit(key)
		return img, nil
	}
	s.mu.RUnlock()

	root, p, ok := s.locate(candidates(name)...)
	if !ok {
		observability.Assets().OnAssetMiss(name)
		return nil, errors.New(errors.ErrCodeAssetNotFound, "asset not found: %s", name)
	}
	return s.load(name, root, p)
}

// ResolveIn probes dir for base with case variants of the base name and of
// the ".png" extension: base.png, base.PNG, lower.png, lower.PNG, UPPER.png,
// UPPER.PNG. It returns the image and the path that matched.
func (s *Store) ResolveIn(dir, base string) (*image.NRGBA, string, error) {
	joined := path.Join(dir, base)
	if err := errors.ValidateAssetName(joined); err != nil {
		return nil, "", err
	}
	// Probe results are aliased apart from literal names.
	name := "probe:" + joined

	s.mu.RLock()
	if key, ok := s.aliases[name]; ok {
		img := s.images[key]
		s.mu.RUnlock()
		observability.Assets().OnAssetHit(key)
		return img, keyPath(key), nil
	}
	s.mu.RUnlock()

	var probes []string
	for _, v := range caseVariants(base) {
		probes = append(probes, path.Join(clean(dir), v))
	}
	root, p, ok := s.locate(probes...)
	if !ok {
		observability.Assets().OnAssetMiss(joined)
		return nil, "", errors.New(errors.ErrCodeAssetNotFound, "asset not found: %s (in %s)", base, dir)
	}
	img, err := s.load(name, root, p)
	if err != nil {
		return nil, "", err
	}
	return img, p, nil
}

// FindDir returns the first candidate that exists as a directory in any root.
func (s *Store) FindDir(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if c == "" || errors.ValidateAssetName(c) != nil {
			continue
		}
		p := clean(c)
		for _, root := range s.roots {
			if info, err := fs.Stat(root, p); err == nil && info.IsDir() {
				return p, true
			}
		}
	}
	return "", false
}

// Invalidate drops the cached image for name, whether name is a requested
// name or a resolved path. It reports whether anything was dropped.
func (s *Store) Invalidate(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := false
	if key, ok := s.aliases[name]; ok {
		s.dropLocked(key)
		dropped = true
	}
	for key := range s.images {
		if keyPath(key) == clean(name) {
			s.dropLocked(key)
			dropped = true
		}
	}
	return dropped
}

// Clear drops every cached image.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = make(map[string]*image.NRGBA)
	s.aliases = make(map[string]string)
}

// Len returns the number of cached decoded images.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

func (s *Store) dropLocked(key string) {
	delete(s.images, key)
	for alias, k := range s.aliases {
		if k == key {
			delete(s.aliases, alias)
		}
	}
}

// locate returns the first (root, path) among probes that is a regular file.
func (s *Store) locate(probes ...string) (int, string, bool) {
	for i, root := range s.roots {
		for _, p := range probes {
			if !fs.ValidPath(p) {
				continue
			}
			if info, err := fs.Stat(root, p); err == nil && !info.IsDir() {
				return i, p, true
			}
		}
	}
	return 0, "", false
}

// load decodes root/p, caching it under its resolved key and aliasing name.
func (s *Store) load(name string, root int, p string) (*image.NRGBA, error) {
	key := cacheKey(root, p)

	s.mu.RLock()
	img, ok := s.images[key]
	s.mu.RUnlock()
	if ok {
		s.mu.Lock()
		s.aliases[name] = key
		s.mu.Unlock()
		observability.Assets().OnAssetHit(p)
		return img, nil
	}

	start := time.Now()
	img, err := decode(s.roots[root], p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssetNotFound, err, "decode %s", p)
	}
	elapsed := time.Since(start)

	s.mu.Lock()
	if cached, ok := s.images[key]; ok {
		img = cached
	} else {
		s.images[key] = img
	}
	s.aliases[name] = key
	s.mu.Unlock()

	s.logger.Debug("decoded asset", "path", p, "size", img.Rect.Size(), "duration", elapsed)
	observability.Assets().OnAssetLoad(p, elapsed)
	return img, nil
}

func decode(fsys fs.FS, p string) (*image.NRGBA, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}

// candidates lists the paths tried for a requested name: the cleaned name,
// then its base name.
func candidates(name string) []string {
	p := clean(name)
	out := []string{p}
	if b := path.Base(p); b != p {
		out = append(out, b)
	}
	return out
}

// caseVariants returns base with ".png"/".PNG" and lower/upper variants of
// the base name, without duplicates, original spelling first.
func caseVariants(base string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range []string{base, strings.ToLower(base), strings.ToUpper(base)} {
		for _, ext := range []string{".png", ".PNG"} {
			v := b + ext
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func clean(name string) string {
	p := path.Clean("/" + name)
	return strings.TrimPrefix(p, "/")
}

func cacheKey(root int, p string) string {
	return fmt.Sprintf("%d:%s", root, p)
}

func keyPath(key string) string {
	if _, p, ok := strings.Cut(key, ":"); ok {
		return p
	}
	return key
}
