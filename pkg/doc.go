// Package pkg provides the core libraries for rendering watch-face scenes.
//
// # Overview
//
// A watch face is a JSON scene (iwf.json) naming a background image, digit
// widgets drawn from bitmap glyph sets and an optional set of analog hands.
// The pkg directory turns a scene and a render state into an encoded frame:
//
//	iwf.json + assets folder
//	         ↓
//	    [io] package (decode scene and font manifest)
//	         ↓
//	    [scene] package (document model, kinds, clock, state)
//	         ↓
//	    [render] package (background, digit widgets, hands)
//	         ↓
//	    [compose] package (canvas, paste, rotate, encode)
//	         ↓
//	    PNG/JPEG frame
//
// # Quick Start
//
//	store := asset.NewDir("faces/sport")
//	r := render.New(store)
//	doc, _ := io.ImportScene("faces/sport/iwf.json")
//	canvas, _ := r.Render(doc, scene.NewState(scene.Clock{Hour: 10, Minute: 8, Second: 36}))
//	f, _ := os.Create("frame.png")
//	canvas.Encode(f, compose.FormatPNG)
//
// Most callers go through [pipeline] instead, which adds option parsing,
// output resizing and frame caching.
//
// # Packages
//
// [scene] - Document, widgets, value kinds, clock and render state.
//
// [io] - Reading and writing iwf.json scenes and font.json manifests.
//
// [asset] - Name-checked, cached image loading from an fs.FS.
//
// [glyph] - Glyph sets: one image per token, loaded from a font folder.
//
// [fonts] - Builtin glyph sets available without any assets.
//
// [compose] - The RGBA canvas and the paste, rotate and resize primitives.
//
// [render] - Drawing a scene onto a canvas.
//
// [pipeline] - State building, rendering, encoding and caching for one or
// many frames.
//
// [cache] - Frame caches (file, Redis, none) and key derivation.
//
// [scenestore] - Saved scenes for the preview server (memory, file, MongoDB).
//
// [observability] - Hooks for render, asset, cache and HTTP events.
//
// [errors] - Coded errors shared by every package.
//
// [buildinfo] - Version information set at link time.
//
// [scene]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/scene
// [io]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/io
// [asset]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/asset
// [glyph]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/glyph
// [fonts]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/fonts
// [compose]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/compose
// [render]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/cache
// [scenestore]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/scenestore
// [observability]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/observability
// [errors]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/wfstudio/wfrender/pkg/buildinfo
package pkg
