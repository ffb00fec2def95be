package render

import (
	"image"

	"github.com/wfstudio/wfrender/pkg/asset"
	"github.com/wfstudio/wfrender/pkg/compose"
	"github.com/wfstudio/wfrender/pkg/errors"
	"github.com/wfstudio/wfrender/pkg/glyph"
	"github.com/wfstudio/wfrender/pkg/scene"
)

// MissingAdvance is how far the cursor moves past a character that has no
// glyph image.
const MissingAdvance = 10

// Placement is one character of a laid-out digit string.
type Placement struct {
	Text  string
	X, Y  int
	Width int // advance; MissingAdvance when Glyph is nil
	Glyph *glyph.Glyph
}

// Layout is the horizontal arrangement of a digit string inside its box.
type Layout struct {
	Start      int
	Cursor     int // x after the last advance
	Placements []Placement
}

// Width returns the total advance of the laid-out string.
func (l Layout) Width() int { return l.Cursor - l.Start }

// LayoutDigits places each character of value in box according to align.
// set may be nil, in which case every character is a miss.
func LayoutDigits(set *glyph.Set, value string, box scene.Rect, align scene.Align) Layout {
	runes := []rune(value)
	placements := make([]Placement, 0, len(runes))
	total := 0
	for _, r := range runes {
		p := Placement{Text: string(r), Y: box.Y, Width: MissingAdvance}
		if g, ok := set.Lookup(p.Text); ok {
			p.Glyph = g
			p.Width = g.Width()
		}
		total += p.Width
		placements = append(placements, p)
	}

	start := box.X
	switch align {
	case scene.AlignCenter:
		start = box.X + floorDiv(box.W-total, 2)
	case scene.AlignRight:
		start = box.X + box.W - total
	}

	x := start
	for i := range placements {
		placements[i].X = x
		x += placements[i].Width
	}
	return Layout{Start: start, Cursor: x, Placements: placements}
}

// floorDiv divides rounding toward negative infinity, so overflowing
// strings shift consistently left when centered.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// HourAngle is the hour hand's clockwise angle from 12 o'clock in degrees.
func HourAngle(c scene.Clock) float64 {
	return (float64(c.Hour%12) + float64(c.Minute)/60) * 30
}

// MinuteAngle is the minute hand's clockwise angle in degrees.
func MinuteAngle(c scene.Clock) float64 {
	return (float64(c.Minute) + float64(c.Second)/60) * 6
}

// SecondAngle is the second hand's clockwise angle in degrees.
func SecondAngle(c scene.Clock) float64 {
	return float64(c.Second) * 6
}

// HandAngle returns the angle for slot at c.
func HandAngle(slot scene.HandSlot, c scene.Clock) float64 {
	switch slot {
	case scene.SlotHour:
		return HourAngle(c)
	case scene.SlotMinute:
		return MinuteAngle(c)
	default:
		return SecondAngle(c)
	}
}

// WidgetRenderer draws single widgets onto a canvas.
type WidgetRenderer struct {
	assets *asset.Store
	glyphs *glyph.Loader
}

// NewWidgetRenderer returns a WidgetRenderer resolving images through
// assets and glyph sets through glyphs.
func NewWidgetRenderer(assets *asset.Store, glyphs *glyph.Loader) *WidgetRenderer {
	return &WidgetRenderer{assets: assets, glyphs: glyphs}
}

// DrawDigits lays out value in w's box and pastes each found glyph at
// the cursor. Characters without a glyph are skipped. An empty value draws
// nothing and does not touch the glyph loader.
func (r *WidgetRenderer) DrawDigits(c *compose.Canvas, w *scene.DigitWidget, value string) (Layout, error) {
	if value == "" {
		return LayoutDigits(nil, "", w.Box, w.Align), nil
	}
	set, err := r.glyphs.Load(w.Kind.String(), w.Font)
	if err != nil {
		return Layout{}, err
	}
	l := LayoutDigits(set, value, w.Box, w.Align)
	for _, p := range l.Placements {
		if p.Glyph != nil {
			compose.Paste(c, p.Glyph.Image, p.X, p.Y)
		}
	}
	return l, nil
}

// DrawHands rotates each present sub-hand of w to its angle at t. Sub-hands
// are independent: a missing image skips only that hand, and the first
// failure is returned after the others are drawn.
func (r *WidgetRenderer) DrawHands(c *compose.Canvas, w *scene.HandsWidget, t scene.Clock) error {
	var first error
	for _, sh := range w.Hands() {
		img, err := r.assets.Resolve(sh.Hand.Image)
		if err != nil {
			if first == nil {
				first = errors.Wrap(errors.GetCode(err), err, "%s hand", sh.Slot)
			}
			continue
		}
		compose.RotatePivotAnchor(c, img, pivotOf(sh.Hand, img), anchorOf(sh.Hand, c), HandAngle(sh.Slot, t))
	}
	return first
}

func pivotOf(h *scene.Hand, img image.Image) image.Point {
	if h.Pivot != nil {
		return *h.Pivot
	}
	b := img.Bounds()
	return image.Pt(b.Dx()/2, b.Dy()/2)
}

func anchorOf(h *scene.Hand, c *compose.Canvas) image.Point {
	if h.Anchor != nil {
		return *h.Anchor
	}
	return c.Center()
}
