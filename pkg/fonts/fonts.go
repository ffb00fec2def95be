// Package fonts provides glyph sets that ship inside the binary.
//
// The builtin sets are rasterized from golang.org/x/image bitmap faces, so a
// scene can reference font "basic" without any glyph folder on disk.
package fonts

import (
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wfstudio/wfrender/pkg/glyph"
)

// BasicName is the font name the builtin set is registered under.
const BasicName = "basic"

// BasicScale is the integer upscale applied to the 7x13 face, giving
// 21x39 glyphs.
const BasicScale = 3

var (
	basic     *glyph.Set
	basicOnce sync.Once
)

// Basic returns the builtin white glyph set. The result is cached after
// first computation.
func Basic() *glyph.Set {
	basicOnce.Do(func() {
		basic = Rasterize(BasicName, basicfont.Face7x13, BasicScale, color.White)
	})
	return basic
}

// Register installs every builtin set into l.
func Register(l *glyph.Loader) {
	l.Register(BasicName, Basic())
}

// Rasterize draws every token of the glyph table with face and returns
// them as a set. Each glyph is as wide as its advance and as tall as the
// face's line, then upscaled by scale with nearest-neighbour sampling.
func Rasterize(name string, face font.Face, scale int, c color.Color) *glyph.Set {
	if scale < 1 {
		scale = 1
	}
	m := face.Metrics()
	height := (m.Ascent + m.Descent).Ceil()
	src := image.NewUniform(c)

	set := glyph.NewSet(name)
	for _, sym := range glyph.Table() {
		width := font.MeasureString(face, sym.Text).Ceil()
		if width <= 0 || height <= 0 {
			continue
		}
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		d := font.Drawer{
			Dst:  img,
			Src:  src,
			Face: face,
			Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
		}
		d.DrawString(sym.Text)
		if scale > 1 {
			img = imaging.Resize(img, width*scale, height*scale, imaging.NearestNeighbor)
		}
		set.Add(sym, img, "")
	}
	return set
}
