package glyph

import (
	"io"
	"path"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/wfstudio/wfrender/pkg/asset"
	"github.com/wfstudio/wfrender/pkg/errors"
)

// Loader resolves glyph sets through an asset store and caches them by
// (kind, font). It is safe for concurrent use.
type Loader struct {
	store  *asset.Store
	logger *log.Logger

	mu      sync.RWMutex
	sets    map[string]*Set
	builtin map[string]*Set
}

// NewLoader returns a Loader reading from store. A nil store serves
// registered sets only.
func NewLoader(store *asset.Store, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Loader{
		store:   store,
		logger:  logger,
		sets:    make(map[string]*Set),
		builtin: make(map[string]*Set),
	}
}

// Register makes set available under name without touching the asset
// store. A registered set is used only when no search folder exists, so
// a font folder on disk overrides a builtin of the same name.
func (l *Loader) Register(name string, set *Set) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.builtin[name] = set
}

// SearchPaths returns the folders tried for a widget kind and font, in order:
// widgets/<kind>/<font>, widgets/<kind>, fonts/<font>, <font>.
func SearchPaths(kind, font string) []string {
	var out []string
	if kind != "" && font != "" {
		out = append(out, path.Join("widgets", kind, font))
	}
	if kind != "" {
		out = append(out, path.Join("widgets", kind))
	}
	if font != "" {
		out = append(out, path.Join("fonts", font), font)
	}
	return out
}

// Load returns the glyph set for a widget kind and font name.
//
// Folders are searched first; a registered set of the same font name is
// the fallback. It fails with ASSET_NOT_FOUND when neither exists and with
// MALFORMED_GLYPH_SET when the folder holds none of the known tokens.
// Individual missing tokens are not errors; Lookup simply misses.
func (l *Loader) Load(kind, font string) (*Set, error) {
	key := kind + "\x00" + font

	l.mu.RLock()
	if set, ok := l.sets[key]; ok {
		l.mu.RUnlock()
		return set, nil
	}
	builtin, hasBuiltin := l.builtin[font]
	l.mu.RUnlock()

	dirs := SearchPaths(kind, font)
	var dir string
	var ok bool
	if l.store != nil {
		dir, ok = l.store.FindDir(dirs...)
	}
	if !ok {
		if hasBuiltin {
			return builtin, nil
		}
		return nil, errors.New(errors.ErrCodeAssetNotFound, "no glyph folder for %s/%s (tried %v)", kind, font, dirs)
	}

	set := NewSet(font)
	set.Dir = dir
	for _, sym := range Table() {
		img, p, err := l.store.ResolveIn(dir, sym.Token)
		if err != nil {
			if !errors.Is(err, errors.ErrCodeAssetNotFound) {
				l.logger.Warn("skipping glyph", "dir", dir, "token", sym.Token, "err", err)
			}
			continue
		}
		set.Add(sym, img, p)
	}
	if set.Len() == 0 {
		return nil, errors.New(errors.ErrCodeMalformedGlyphSet, "glyph folder %s has no glyph images", dir)
	}
	l.logger.Debug("loaded glyph set", "kind", kind, "font", font, "dir", dir, "glyphs", set.Len())

	l.mu.Lock()
	l.sets[key] = set
	l.mu.Unlock()
	return set, nil
}

// Clear drops every cached folder-backed set. Registered sets are kept.
func (l *Loader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sets = make(map[string]*Set)
}
