package compose

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Paste alpha-composites img onto c with its top-left corner at (x, y).
// Pixels falling outside the canvas are dropped.
func Paste(c *Canvas, img image.Image, x, y int) {
	if img == nil {
		return
	}
	b := img.Bounds()
	dst := image.Rect(x, y, x+b.Dx(), y+b.Dy()).Intersect(c.img.Rect)
	if dst.Empty() {
		return
	}
	sp := b.Min.Add(dst.Min.Sub(image.Pt(x, y)))
	draw.Draw(c.img, dst, img, sp, draw.Over)
}

// RotatePivotAnchor rotates img clockwise by degrees about pivot (in img's
// own pixel space) and composites it so the pivot lands on anchor.
func RotatePivotAnchor(c *Canvas, img image.Image, pivot, anchor image.Point, degrees float64) {
	if img == nil {
		return
	}
	padded, _ := padAroundPivot(img, pivot)
	rotated := rotateClockwise(padded, degrees)
	rb := rotated.Bounds()
	x := int(math.Floor(float64(anchor.X) - float64(rb.Dx())/2))
	y := int(math.Floor(float64(anchor.Y) - float64(rb.Dy())/2))
	Paste(c, rotated, x, y)
}

// padAroundPivot places img on a transparent buffer of size
// 2*max(cx, w-cx) by 2*max(cy, h-cy) so that pivot sits at the buffer's
// center. It returns the buffer and the offset img was drawn at.
func padAroundPivot(img image.Image, pivot image.Point) (*image.NRGBA, image.Point) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	padX := max(pivot.X, w-pivot.X)
	padY := max(pivot.Y, h-pivot.Y)
	buf := image.NewNRGBA(image.Rect(0, 0, 2*padX, 2*padY))
	off := image.Pt(padX-pivot.X, padY-pivot.Y)
	draw.Draw(buf, image.Rectangle{Min: off, Max: off.Add(b.Size())}, img, b.Min, draw.Over)
	return buf, off
}

// rotateClockwise rotates img about its center with an expanding bounding
// box. imaging rotates counter-clockwise, so the angle is negated.
func rotateClockwise(img *image.NRGBA, degrees float64) *image.NRGBA {
	if degrees == 0 {
		return img
	}
	return imaging.Rotate(img, -degrees, color.Transparent)
}

// Fill resizes img to exactly cover c, ignoring aspect ratio, and
// composites it at (0,0).
func Fill(c *Canvas, img image.Image) {
	if img == nil {
		return
	}
	w, h := c.Width(), c.Height()
	if w == 0 || h == 0 {
		return
	}
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		Paste(c, img, 0, 0)
		return
	}
	Paste(c, imaging.Resize(img, w, h, imaging.CatmullRom), 0, 0)
}

// Downscale returns a new canvas holding c resampled to width x height with
// a Lanczos filter. c is not modified.
func Downscale(c *Canvas, width, height int) *Canvas {
	if width <= 0 || height <= 0 {
		return NewCanvas(0, 0)
	}
	return &Canvas{img: imaging.Resize(c.img, width, height, imaging.Lanczos)}
}
