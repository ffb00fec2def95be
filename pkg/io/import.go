package io

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"github.com/wfstudio/wfrender/pkg/errors"
	"github.com/wfstudio/wfrender/pkg/scene"
)

// Scene-file keys interpreted by the reader. Every other key is kept in
// Document.Meta or the widget's Extra.
const (
	keyBackground = "bkground"
	keyItems      = "item"
	keyWidget     = "widget"
	keyType       = "type"

	widgetCustom = "custom"
	widgetWatch  = "watch"
	watchTime    = "time"
)

var digitKeys = []string{keyWidget, keyType, "x", "y", "w", "h", "align", "font"}

// handKeys lists the scene-file keys of each sub-hand: image, pivot x/y,
// anchor x/y.
var handKeys = map[scene.HandSlot][5]string{
	scene.SlotHour:   {"hour", "hourcenterx", "hourcentery", "houranchorx", "houranchory"},
	scene.SlotMinute: {"minute", "mincenterx", "mincentery", "minanchorx", "minanchory"},
	scene.SlotSecond: {"second", "seccenterx", "seccentery", "secanchorx", "secanchory"},
}

// ReadScene decodes an iwf.json scene from r.
//
// The input is a JSON object with an optional "bkground" image name and an
// "item" array. Items with "widget":"custom" and a known kind in "type"
// become digit widgets; "widget":"watch","type":"time" is the hands widget.
// Items with any other widget are kept in Document.Unsupported and not
// drawn. A custom item of unknown kind, a non-integer coordinate or an
// unknown alignment is a MALFORMED_SCENE error naming the item index. The
// decoded document is validated before it is returned.
func ReadScene(r io.Reader) (*scene.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedScene, err, "decode scene")
	}

	doc := &scene.Document{Meta: make(map[string]any)}
	for k, v := range raw {
		if k != keyBackground && k != keyItems {
			doc.Meta[k] = v
		}
	}

	if v, ok := raw[keyBackground]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeMalformedScene, "%s must be a string, got %T", keyBackground, v)
		}
		doc.Background = s
	}

	if v, ok := raw[keyItems]; ok && v != nil {
		items, ok := v.([]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeMalformedScene, "%s must be an array, got %T", keyItems, v)
		}
		for i, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				return nil, errors.New(errors.ErrCodeMalformedScene, "item %d: must be an object, got %T", i, it)
			}
			if !supported(obj) {
				doc.Unsupported = append(doc.Unsupported, obj)
				continue
			}
			w, err := readWidget(obj)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeMalformedScene, err, "item %d", i)
			}
			doc.Widgets = append(doc.Widgets, w)
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ImportScene reads a scene file from disk.
// This is a convenience wrapper around [ReadScene] for file-based input.
func ImportScene(path string) (*scene.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeSceneNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadScene(f)
}

// ItemLabel names a raw scene item by its widget and type keys, as in
// "watch/time".
func ItemLabel(item map[string]any) string {
	widget, _ := item[keyWidget].(string)
	typ, _ := item[keyType].(string)
	return widget + "/" + typ
}

func supported(obj map[string]any) bool {
	widget, _ := obj[keyWidget].(string)
	typ, _ := obj[keyType].(string)
	return widget == widgetCustom || (widget == widgetWatch && typ == watchTime)
}

func readWidget(obj map[string]any) (scene.Widget, error) {
	widget, _ := obj[keyWidget].(string)
	typ, _ := obj[keyType].(string)

	switch {
	case widget == widgetCustom:
		return readDigit(obj, typ)
	case widget == widgetWatch && typ == watchTime:
		return readHands(obj)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported widget %q/%q", widget, typ)
}

func readDigit(obj map[string]any, typ string) (*scene.DigitWidget, error) {
	kind, ok := scene.ParseKind(typ)
	if !ok {
		if s := scene.SuggestKind(typ); s != "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown kind %q (did you mean %q?)", typ, s)
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown kind %q", typ)
	}

	w := &scene.DigitWidget{Kind: kind}
	var err error
	for _, f := range []struct {
		key string
		dst *int
	}{{"x", &w.Box.X}, {"y", &w.Box.Y}, {"w", &w.Box.W}, {"h", &w.Box.H}} {
		if *f.dst, _, err = intField(obj, f.key); err != nil {
			return nil, err
		}
	}

	align, err := stringField(obj, "align")
	if err != nil {
		return nil, err
	}
	if w.Align, ok = scene.ParseAlign(align); !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown align %q", align)
	}
	if w.Font, err = stringField(obj, "font"); err != nil {
		return nil, err
	}
	w.Extra = extra(obj, digitKeys)
	return w, nil
}

func readHands(obj map[string]any) (*scene.HandsWidget, error) {
	w := &scene.HandsWidget{}
	known := []string{keyWidget, keyType}
	for slot, keys := range handKeys {
		known = append(known, keys[:]...)
		name, err := stringField(obj, keys[0])
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}
		h := &scene.Hand{Image: name}
		if h.Pivot, err = pointField(obj, keys[1], keys[2]); err != nil {
			return nil, err
		}
		if h.Anchor, err = pointField(obj, keys[3], keys[4]); err != nil {
			return nil, err
		}
		switch slot {
		case scene.SlotHour:
			w.Hour = h
		case scene.SlotMinute:
			w.Minute = h
		case scene.SlotSecond:
			w.Second = h
		}
	}
	w.Extra = extra(obj, known)
	return w, nil
}

// pointField reads an optional point. Either coordinate alone falls back
// to nil so the renderer's default applies to both.
func pointField(obj map[string]any, kx, ky string) (*image.Point, error) {
	x, okx, err := intField(obj, kx)
	if err != nil {
		return nil, err
	}
	y, oky, err := intField(obj, ky)
	if err != nil {
		return nil, err
	}
	if !okx || !oky {
		return nil, nil
	}
	return &image.Point{X: x, Y: y}, nil
}

// intField reads an optional integer. Integral floats such as 24.0 are
// accepted; fractional values are rejected.
func intField(obj map[string]any, key string) (int, bool, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %T", key, v)
	}
	if i, err := n.Int64(); err == nil {
		return int(i), true, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, false, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %s", key, n)
	}
	return int(f), true, nil
}

func stringField(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidInput, "%s must be a string, got %T", key, v)
	}
	return s, nil
}

func extra(obj map[string]any, known []string) map[string]any {
	skip := make(map[string]bool, len(known))
	for _, k := range known {
		skip[k] = true
	}
	var out map[string]any
	for k, v := range obj {
		if skip[k] {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}
