// Package render draws watch-face scenes.
//
// # Overview
//
// A [Renderer] takes a [scene.Document] and a [scene.State] and returns a
// fresh [compose.Canvas]:
//
//	r := render.New(asset.NewDir("assets"), render.WithLogger(logger))
//	c, err := r.Render(doc, scene.NewState(scene.ClockOf(time.Now())))
//
// The background is stretched over the whole canvas, then widgets are
// painted in document order so later widgets occlude earlier ones.
//
// # Widgets
//
// Digit widgets draw their kind's display string as a row of glyph images
// (see [LayoutDigits]). A character without a glyph advances the cursor by
// [MissingAdvance] pixels and draws nothing. Overflowing strings are drawn
// past the box.
//
// The hands widget rotates each sub-hand about its pivot and places the
// pivot on its anchor; angles come from [HourAngle], [MinuteAngle] and
// [SecondAngle].
//
// # Failures
//
// Structural problems in the document and out-of-range clocks are returned
// before anything is drawn. Everything else (missing images, empty glyph
// folders) is logged and the affected element skipped.
package render
