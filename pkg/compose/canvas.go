package compose

import (
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"

	"github.com/wfstudio/wfrender/pkg/errors"
)

// Default canvas size of the IDW20 display.
const (
	DefaultWidth  = 320
	DefaultHeight = 385
)

// Output formats accepted by Encode.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// Canvas is a fixed-size straight-alpha RGBA raster. It is never resized
// after creation; compositing operations are its only mutators.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas returns a fully transparent canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Canvas{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Bounds returns the canvas rectangle, always anchored at (0,0).
func (c *Canvas) Bounds() image.Rectangle { return c.img.Rect }

// Center returns the canvas center using integer division.
func (c *Canvas) Center() image.Point {
	return image.Pt(c.Width()/2, c.Height()/2)
}

// At returns the straight-alpha color at (x, y). Points outside the canvas
// are transparent.
func (c *Canvas) At(x, y int) color.NRGBA {
	return c.img.NRGBAAt(x, y)
}

// Image returns the canvas as an image.Image. Callers must not modify it
// through a type assertion.
func (c *Canvas) Image() image.Image { return c.img }

// Pix returns a copy of the raw pixel buffer (4 bytes per pixel, row-major).
func (c *Canvas) Pix() []byte {
	out := make([]byte, len(c.img.Pix))
	copy(out, c.img.Pix)
	return out
}

// Encode writes the canvas to w in the given format ("png" or "jpeg").
func (c *Canvas) Encode(w io.Writer, format string) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	return imaging.Encode(w, c.img, f)
}

// ParseFormat maps a format name to the imaging encoder format.
func ParseFormat(format string) (imaging.Format, error) {
	switch format {
	case "", FormatPNG:
		return imaging.PNG, nil
	case FormatJPEG, "jpg":
		return imaging.JPEG, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q (must be png or jpeg)", format)
}

// ContentType returns the MIME type of an output format.
func ContentType(format string) string {
	if format == FormatJPEG || format == "jpg" {
		return "image/jpeg"
	}
	return "image/png"
}
