package io

import (
	"bytes"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wfstudio/wfrender/pkg/errors"
	"github.com/wfstudio/wfrender/pkg/scene"
)

const sampleScene = `{
    "version": 1,
    "name": "customiwf",
    "deviceId": "IDW20",
    "bluetooth": false,
    "bkground": "files0.png",
    "item": [
        {"widget": "custom", "type": "time", "x": 24, "y": 261, "w": 173, "h": 51,
         "fgcolor": "0xFFFFFFFF", "align": "left", "font": "g13", "fontnum": 11},
        {"widget": "custom", "type": "weather", "x": 200, "y": 85, "w": 64, "h": 16,
         "align": "center", "style": 2, "font": "g23"},
        {"widget": "watch", "type": "time", "x": 0, "y": 0, "w": 320, "h": 385,
         "hour": "hour.png", "hourcenterx": 5, "hourcentery": 20, "houranchorx": 160, "houranchory": 193,
         "second": "sec.png"}
    ]
}`

func TestReadScene(t *testing.T) {
	doc, err := ReadScene(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatalf("ReadScene: %v", err)
	}
	if doc.Background != "files0.png" {
		t.Errorf("Background = %q", doc.Background)
	}
	if doc.Name() != "customiwf" || doc.Meta["deviceId"] != "IDW20" || doc.Meta["bluetooth"] != false {
		t.Errorf("Meta = %v", doc.Meta)
	}
	if _, ok := doc.Meta["item"]; ok {
		t.Error("item should not be kept in Meta")
	}
	if len(doc.Widgets) != 3 {
		t.Fatalf("len(Widgets) = %d, want 3", len(doc.Widgets))
	}

	tw := doc.Widgets[0].(*scene.DigitWidget)
	want := scene.Rect{X: 24, Y: 261, W: 173, H: 51}
	if tw.Kind != scene.KindTime || tw.Box != want || tw.Align != scene.AlignLeft || tw.Font != "g13" {
		t.Errorf("time widget = %+v", tw)
	}
	if tw.Extra["fgcolor"] != "0xFFFFFFFF" || tw.Extra["fontnum"] != json.Number("11") {
		t.Errorf("time Extra = %v", tw.Extra)
	}
	if _, ok := tw.Extra["x"]; ok {
		t.Error("typed keys leaked into Extra")
	}

	if ww := doc.Widgets[1].(*scene.DigitWidget); ww.Align != scene.AlignCenter || ww.Kind != scene.KindWeather {
		t.Errorf("weather widget = %+v", ww)
	}

	hw := doc.Widgets[2].(*scene.HandsWidget)
	if hw.Hour == nil || hw.Hour.Image != "hour.png" {
		t.Fatalf("hour hand = %+v", hw.Hour)
	}
	if *hw.Hour.Pivot != image.Pt(5, 20) || *hw.Hour.Anchor != image.Pt(160, 193) {
		t.Errorf("hour pivot %v anchor %v", hw.Hour.Pivot, hw.Hour.Anchor)
	}
	if hw.Minute != nil {
		t.Error("minute hand should be absent")
	}
	if hw.Second == nil || hw.Second.Pivot != nil || hw.Second.Anchor != nil {
		t.Errorf("second hand = %+v, want defaults", hw.Second)
	}
	if hw.Extra["w"] != json.Number("320") {
		t.Errorf("hands Extra = %v", hw.Extra)
	}
}

func TestReadSceneMalformed(t *testing.T) {
	tests := []struct {
		name, input, contains string
	}{
		{"not json", `{`, ""},
		{"items not array", `{"item": {}}`, "array"},
		{"unknown kind", `{"item": [{"widget": "custom", "type": "heartrat"}]}`, `did you mean "heartrate"`},
		{"custom without type", `{"item": [{"widget": "image"}, {"widget": "custom"}]}`, "item 1"},
		{"fractional x", `{"item": [{"widget": "custom", "type": "day", "x": 1.5}]}`, "integer"},
		{"string y", `{"item": [{"widget": "custom", "type": "day", "y": "3"}]}`, "number"},
		{"bad align", `{"item": [{"widget": "custom", "type": "day", "align": "justify"}]}`, "align"},
		{"two hands", `{"item": [{"widget": "watch", "type": "time"}, {"widget": "watch", "type": "time"}]}`, "at most one"},
		{"traversal", `{"bkground": "../../secret.png"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadScene(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeMalformedScene) {
				t.Fatalf("err = %v, want MALFORMED_SCENE", err)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("err = %q, want it to contain %q", err, tt.contains)
			}
		})
	}
}

func TestReadSceneKeepsUnsupported(t *testing.T) {
	const input = `{"item": [
		{"widget": "image", "type": "x", "x": 3},
		{"widget": "custom", "type": "day"},
		{"widget": "watch", "type": "date"}
	]}`
	doc, err := ReadScene(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadScene: %v", err)
	}
	if len(doc.Widgets) != 1 {
		t.Fatalf("widgets = %d, want 1", len(doc.Widgets))
	}
	if len(doc.Unsupported) != 2 {
		t.Fatalf("unsupported = %d, want 2", len(doc.Unsupported))
	}
	if got := ItemLabel(doc.Unsupported[0]); got != "image/x" {
		t.Errorf("ItemLabel = %q, want image/x", got)
	}
	if got := ItemLabel(doc.Unsupported[1]); got != "watch/date" {
		t.Errorf("ItemLabel = %q, want watch/date", got)
	}

	var buf bytes.Buffer
	if err := WriteScene(&buf, doc); err != nil {
		t.Fatalf("WriteScene: %v", err)
	}
	again, err := ReadScene(&buf)
	if err != nil {
		t.Fatalf("ReadScene: %v", err)
	}
	if !reflect.DeepEqual(doc, again) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", again, doc)
	}
}

func TestReadSceneIntegralFloat(t *testing.T) {
	doc, err := ReadScene(strings.NewReader(`{"item": [{"widget": "custom", "type": "day", "x": 24.0}]}`))
	if err != nil {
		t.Fatalf("ReadScene: %v", err)
	}
	if doc.Widgets[0].(*scene.DigitWidget).Box.X != 24 {
		t.Error("24.0 should decode as 24")
	}
}

func TestSceneRoundTrip(t *testing.T) {
	doc, err := ReadScene(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatalf("ReadScene: %v", err)
	}
	path := filepath.Join(t.TempDir(), "iwf.json")
	if err := ExportScene(path, doc); err != nil {
		t.Fatalf("ExportScene: %v", err)
	}
	again, err := ImportScene(path)
	if err != nil {
		t.Fatalf("ImportScene: %v", err)
	}
	if !reflect.DeepEqual(doc, again) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", again, doc)
	}

	data, _ := os.ReadFile(path)
	if !bytes.Contains(data, []byte("\n    \"")) {
		t.Error("scene should be indented by four spaces")
	}
}

func TestWriteSceneTypedFieldsWin(t *testing.T) {
	doc := &scene.Document{Widgets: []scene.Widget{
		&scene.DigitWidget{Kind: scene.KindStep, Box: scene.Rect{X: 1}, Extra: map[string]any{"x": 99, "fontnum": 10}},
	}}
	var buf bytes.Buffer
	if err := WriteScene(&buf, doc); err != nil {
		t.Fatalf("WriteScene: %v", err)
	}
	var out struct {
		Item []map[string]any `json:"item"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	it := out.Item[0]
	if it["x"] != float64(1) || it["fontnum"] != float64(10) || it["widget"] != "custom" || it["type"] != "step" {
		t.Errorf("item = %v", it)
	}
	if _, ok := it["font"]; ok {
		t.Error("empty font should be omitted")
	}
}

func TestImportSceneMissing(t *testing.T) {
	_, err := ImportScene(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeSceneNotFound) {
		t.Errorf("err = %v, want SCENE_NOT_FOUND", err)
	}
}

func TestReadFontManifest(t *testing.T) {
	want := []string{"g13", "g14"}
	inputs := map[string]string{
		"list": `[{"name":"g13","bpp":16,"format":"png"},{"name":"g14","bpp":16,"format":"png"},{"bpp":16}]`,
		"item": `{"item":[{"name":"g13","bpp":16,"format":"png"},{"name":"g14","bpp":16,"format":"png"}]}`,
		"dict": `{"g14":{"bpp":16,"format":"png"},"g13":{"name":"g13","bpp":16,"format":"png"}}`,
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			m, err := ReadFontManifest(strings.NewReader(input))
			if err != nil {
				t.Fatalf("ReadFontManifest: %v", err)
			}
			if !reflect.DeepEqual(m.Names(), want) {
				t.Errorf("Names = %v, want %v", m.Names(), want)
			}
			if e, ok := m.Lookup("g14"); !ok || e.BPP != 16 || e.Format != "png" {
				t.Errorf("Lookup(g14) = %+v, %v", e, ok)
			}
		})
	}

	for _, bad := range []string{`"g13"`, `{"g13": 5}`, `nope`} {
		if _, err := ReadFontManifest(strings.NewReader(bad)); !errors.Is(err, errors.ErrCodeMalformedGlyphSet) {
			t.Errorf("ReadFontManifest(%s) err = %v, want MALFORMED_GLYPH_SET", bad, err)
		}
	}
}

func TestWriteFontManifest(t *testing.T) {
	m := &FontManifest{}
	if !m.Add("g13") || m.Add("g13") || m.Add("") {
		t.Error("Add should insert once and ignore empty names")
	}
	var buf bytes.Buffer
	if err := WriteFontManifest(&buf, m); err != nil {
		t.Fatalf("WriteFontManifest: %v", err)
	}
	if got, want := buf.String(), `{"item":[{"name":"g13","bpp":16,"format":"png"}]}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	buf.Reset()
	if err := WriteFontManifest(&buf, &FontManifest{}); err != nil {
		t.Fatalf("WriteFontManifest: %v", err)
	}
	if buf.String() != `{"item":[]}` {
		t.Errorf("empty manifest = %s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "font.json")
	if err := ExportFontManifest(path, m); err != nil {
		t.Fatalf("ExportFontManifest: %v", err)
	}
	back, err := ImportFontManifest(path)
	if err != nil || !reflect.DeepEqual(back.Names(), []string{"g13"}) {
		t.Errorf("ImportFontManifest = %v, %v", back, err)
	}
}

func TestImportFontManifestMissing(t *testing.T) {
	_, err := ImportFontManifest(filepath.Join(t.TempDir(), "font.json"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}
