// Package scene defines the watch-face scene model consumed by the renderer.
//
// A [Document] is a background image name plus an ordered list of widgets.
// Order is paint order: the first widget is drawn first and later widgets
// occlude earlier ones where they overlap.
//
// Widgets are a closed set of variants:
//   - [DigitWidget]: a glyph-based readout of one [Kind] inside a bounding box
//   - [HandsWidget]: the analog hour/minute/second hands (at most one per document)
//
// A [State] carries the per-render inputs: the wall-clock time and the display
// string of every readout kind. State never lives inside a Document; callers
// own it and pass it to each render.
//
// # Validation
//
// [Document.Validate] reports structural problems as MALFORMED_SCENE errors
// from the errors package. Renderers call it before touching a canvas, so a
// malformed document never produces a partial frame.
package scene
