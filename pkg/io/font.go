package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/wfstudio/wfrender/pkg/errors"
)

// FontEntry describes one glyph set in a font.json manifest.
type FontEntry struct {
	Name   string `json:"name"`
	BPP    int    `json:"bpp"`
	Format string `json:"format"`
}

// FontManifest is the list of glyph sets a watch face ships.
type FontManifest struct {
	Fonts []FontEntry
}

// Lookup returns the entry called name.
func (m *FontManifest) Lookup(name string) (FontEntry, bool) {
	for _, f := range m.Fonts {
		if f.Name == name {
			return f, true
		}
	}
	return FontEntry{}, false
}

// Add appends a 16-bit PNG entry for name unless one exists. It reports
// whether the manifest changed.
func (m *FontManifest) Add(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := m.Lookup(name); ok {
		return false
	}
	m.Fonts = append(m.Fonts, FontEntry{Name: name, BPP: 16, Format: "png"})
	return true
}

// Names returns the entry names in manifest order.
func (m *FontManifest) Names() []string {
	out := make([]string, len(m.Fonts))
	for i, f := range m.Fonts {
		out[i] = f.Name
	}
	return out
}

type manifestDoc struct {
	Item []FontEntry `json:"item"`
}

// ReadFontManifest decodes a font.json manifest from r. Three layouts are
// accepted:
//
//	[{"name":"g13","bpp":16,"format":"png"}]
//	{"item":[{"name":"g13","bpp":16,"format":"png"}]}
//	{"g13":{"bpp":16,"format":"png"}}
//
// Entries without a name are dropped. Dictionary entries take their key as
// name when they have none and are ordered by name.
func ReadFontManifest(r io.Reader) (*FontManifest, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedGlyphSet, err, "decode font manifest")
	}

	var list []FontEntry
	if err := json.Unmarshal(raw, &list); err == nil {
		return &FontManifest{Fonts: named(list)}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errors.New(errors.ErrCodeMalformedGlyphSet, "font manifest must be an array or object")
	}
	if items, ok := obj["item"]; ok {
		if err := json.Unmarshal(items, &list); err == nil {
			return &FontManifest{Fonts: named(list)}, nil
		}
	}

	names := make([]string, 0, len(obj))
	for k := range obj {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		var e FontEntry
		if err := json.Unmarshal(obj[k], &e); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedGlyphSet, err, "font %q", k)
		}
		if e.Name == "" {
			e.Name = k
		}
		list = append(list, e)
	}
	return &FontManifest{Fonts: list}, nil
}

// ImportFontManifest reads a manifest from disk.
func ImportFontManifest(path string) (*FontManifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFontManifest(f)
}

// WriteFontManifest writes m in the compact {"item":[...]} layout the
// watch firmware expects.
func WriteFontManifest(w io.Writer, m *FontManifest) error {
	doc := manifestDoc{Item: m.Fonts}
	if doc.Item == nil {
		doc.Item = []FontEntry{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportFontManifest writes m to path.
func ExportFontManifest(path string, m *FontManifest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteFontManifest(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func named(list []FontEntry) []FontEntry {
	out := list[:0]
	for _, e := range list {
		if e.Name != "" {
			out = append(out, e)
		}
	}
	return out
}
