// Package compose implements the raster algebra behind watch-face rendering:
// a fixed-size [Canvas], alpha compositing of images onto it, and the
// pivot-preserving rotate-and-paste used for analog hands.
//
// Canvases hold straight (non-premultiplied) alpha in an *image.NRGBA. All
// compositing uses Porter-Duff "over".
//
// # Pivot rotation
//
// [RotatePivotAnchor] turns an image about a point in its own pixel space
// and places that point on a canvas coordinate:
//
//  1. Pad the image onto a transparent square-ish buffer whose exact center is
//     the pivot: max(cx, w-cx) on each side horizontally, max(cy, h-cy)
//     vertically.
//  2. Rotate the buffer about its center, expanding the bounds so nothing
//     is cropped.
//  3. Paste the result so its center lands on the anchor.
//
// At 0 degrees the pivot lands exactly on the anchor, and at any angle the
// pivot is the fixed point of the rotation.
package compose
