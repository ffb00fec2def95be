// Package io reads and writes the watch-face files: the iwf.json scene and
// the font.json glyph-set manifest.
//
// # Scene Format
//
// A scene is a JSON object. The renderer reads two keys; everything else
// (name, author, deviceId, preview, compress, ...) is kept verbatim in
// [scene.Document.Meta]:
//
//	{
//	  "name": "customiwf",
//	  "bkground": "files0.png",
//	  "item": [
//	    {"widget": "custom", "type": "time", "x": 24, "y": 261, "w": 173, "h": 51,
//	     "align": "left", "font": "g13", "fontnum": 11},
//	    {"widget": "watch", "type": "time", "hour": "hour.png",
//	     "hourcenterx": 5, "hourcentery": 20, "houranchorx": 160, "houranchory": 193}
//	  ]
//	}
//
// Digit items carry "widget":"custom" and one of the fifteen kinds as
// "type". The hands item is "widget":"watch","type":"time" with up to three
// images ("hour", "minute", "second") and optional pivot ("*centerx/y") and
// anchor ("*anchorx/y") coordinates using the prefixes hour, min and sec.
// Attributes the renderer does not use (fgcolor, fontnum, style, ...) are
// kept in the widget's Extra map and written back on export.
//
// # Import
//
// Use [ImportScene] to read a scene from a file path, or [ReadScene] to read
// from any io.Reader:
//
//	doc, err := io.ImportScene("iwf.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both return a validated document; structural problems are reported as
// MALFORMED_SCENE errors naming the offending item.
//
// # Export
//
// [WriteScene] and [ExportScene] write a document back, indented by four
// spaces as the editor does. [WriteFontManifest] writes font.json compactly.
//
// # Font Manifest
//
// [ReadFontManifest] accepts a bare array of entries, an {"item": [...]}
// object or an object keyed by font name.
package io
