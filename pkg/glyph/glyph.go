// Package glyph loads the per-character image sets that digit widgets are
// drawn with.
//
// A glyph set is a folder of PNG files named after tokens: the digits "0"
// through "9" plus a fixed symbol table (colon, slash, degree, percent, C, F,
// AM, PM, period, A, P, M, dash). Each token maps to the text it renders;
// note that "degree" renders the letter "o", as in "25oC".
package glyph

import (
	"image"
	"sort"
)

// Symbol maps a glyph file token to the text it stands for.
type Symbol struct {
	Token string
	Text  string
}

// Digits are the numeric tokens; each token is its own text.
var Digits = []Symbol{
	{"0", "0"}, {"1", "1"}, {"2", "2"}, {"3", "3"}, {"4", "4"},
	{"5", "5"}, {"6", "6"}, {"7", "7"}, {"8", "8"}, {"9", "9"},
}

// Symbols is the fixed symbol table, in lookup order.
var Symbols = []Symbol{
	{"colon", ":"},
	{"slash", "/"},
	{"degree", "o"},
	{"percent", "%"},
	{"C", "C"},
	{"F", "F"},
	{"AM", "AM"},
	{"PM", "PM"},
	{"period", "."},
	{"A", "A"},
	{"P", "P"},
	{"M", "M"},
	{"dash", "-"},
}

// Table returns digits followed by symbols.
func Table() []Symbol {
	out := make([]Symbol, 0, len(Digits)+len(Symbols))
	out = append(out, Digits...)
	return append(out, Symbols...)
}

// Glyph is one loaded character image.
type Glyph struct {
	Symbol
	Image *image.NRGBA
	Path  string // asset path the image was loaded from; empty for builtin sets
}

// Width returns the glyph's advance in pixels.
func (g *Glyph) Width() int { return g.Image.Rect.Dx() }

// Set is a named collection of glyphs keyed by the text they render.
// A Set is immutable once returned by a Loader.
type Set struct {
	Name string
	Dir  string // folder the set was loaded from

	glyphs map[string]*Glyph
}

// NewSet returns an empty set. Use Add to populate sets built in memory.
func NewSet(name string) *Set {
	return &Set{Name: name, glyphs: make(map[string]*Glyph)}
}

// Add registers img as the glyph for sym. A later Add for the same text
// replaces the earlier one.
func (s *Set) Add(sym Symbol, img *image.NRGBA, path string) {
	s.glyphs[sym.Text] = &Glyph{Symbol: sym, Image: img, Path: path}
}

// Lookup returns the glyph rendering text (usually a single character).
func (s *Set) Lookup(text string) (*Glyph, bool) {
	if s == nil {
		return nil, false
	}
	g, ok := s.glyphs[text]
	return g, ok
}

// Width returns the advance of the glyph for text.
func (s *Set) Width(text string) (int, bool) {
	g, ok := s.Lookup(text)
	if !ok {
		return 0, false
	}
	return g.Width(), true
}

// Len returns the number of glyphs in the set.
func (s *Set) Len() int { return len(s.glyphs) }

// Glyphs returns the set's glyphs ordered by text.
func (s *Set) Glyphs() []*Glyph {
	out := make([]*Glyph, 0, len(s.glyphs))
	for _, g := range s.glyphs {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}
