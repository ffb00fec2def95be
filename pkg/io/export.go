package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wfstudio/wfrender/pkg/scene"
)

// WriteScene encodes doc as an iwf.json scene and writes it to w.
// Meta and widget Extra attributes are written back, so a document read
// with [ReadScene] round-trips; typed fields take precedence over
// same-named Extra keys. Unsupported items follow the widgets.
func WriteScene(w io.Writer, doc *scene.Document) error {
	out := make(map[string]any, len(doc.Meta)+2)
	for k, v := range doc.Meta {
		out[k] = v
	}
	if doc.Background != "" {
		out[keyBackground] = doc.Background
	}
	items := make([]map[string]any, 0, len(doc.Widgets)+len(doc.Unsupported))
	for i, wd := range doc.Widgets {
		switch wd := wd.(type) {
		case *scene.DigitWidget:
			items = append(items, digitItem(wd))
		case *scene.HandsWidget:
			items = append(items, handsItem(wd))
		default:
			return fmt.Errorf("item %d: unsupported widget %T", i, wd)
		}
	}
	for _, it := range doc.Unsupported {
		items = append(items, copyExtra(it))
	}
	out[keyItems] = items

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportScene writes doc to a scene file at path.
// This is a convenience wrapper around [WriteScene] for file-based output.
func ExportScene(path string, doc *scene.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteScene(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func digitItem(w *scene.DigitWidget) map[string]any {
	m := copyExtra(w.Extra)
	m[keyWidget] = widgetCustom
	m[keyType] = w.Kind.String()
	m["x"], m["y"], m["w"], m["h"] = w.Box.X, w.Box.Y, w.Box.W, w.Box.H
	m["align"] = w.Align.String()
	if w.Font != "" {
		m["font"] = w.Font
	}
	return m
}

func handsItem(w *scene.HandsWidget) map[string]any {
	m := copyExtra(w.Extra)
	m[keyWidget] = widgetWatch
	m[keyType] = watchTime
	for _, sh := range w.Hands() {
		keys := handKeys[sh.Slot]
		m[keys[0]] = sh.Hand.Image
		if p := sh.Hand.Pivot; p != nil {
			m[keys[1]], m[keys[2]] = p.X, p.Y
		}
		if a := sh.Hand.Anchor; a != nil {
			m[keys[3]], m[keys[4]] = a.X, a.Y
		}
	}
	return m
}

func copyExtra(extra map[string]any) map[string]any {
	m := make(map[string]any, len(extra)+8)
	for k, v := range extra {
		m[k] = v
	}
	return m
}
