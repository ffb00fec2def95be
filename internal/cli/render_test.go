package cli

import (
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/wfstudio/wfrender/pkg/scene"
)

func TestParseValues(t *testing.T) {
	got, err := parseValues([]string{"heartrate=99", " Battery =85%", "weather=25oC", "step="})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"heartrate": "99", "battery": "85%", "weather": "25oC", "step": ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseValues = %v, want %v", got, want)
	}

	for _, bad := range []string{"heartrate", "=5"} {
		if _, err := parseValues([]string{bad}); err == nil {
			t.Errorf("parseValues(%q) should fail", bad)
		}
	}
	if v, err := parseValues(nil); v != nil || err != nil {
		t.Errorf("parseValues(nil) = %v, %v", v, err)
	}
}

func TestParseTimes(t *testing.T) {
	got := parseTimes(" 03:00, ,09:00:30,")
	if want := []string{"03:00", "09:00:30"}; !reflect.DeepEqual(got, want) {
		t.Errorf("parseTimes = %v, want %v", got, want)
	}
	if parseTimes("") != nil {
		t.Error("parseTimes(\"\") should be nil")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, input, format, suffix, want string
	}{
		{"", "faces/pulse/iwf.json", "png", "", "pulse.png"},
		{"", "iwf.json", "png", "", "iwf.png"},
		{"", "faces/pulse.json", "jpeg", "", "pulse.jpg"},
		{"out/frame.png", "iwf.json", "png", "", "out/frame.png"},
		{"out/frame.png", "iwf.json", "png", "03:00:00", "out/frame_030000.png"},
		{"", "faces/pulse/iwf.json", "jpeg", "10:08", "pulse_1008.jpg"},
		{"frames/f", "iwf.json", "png", "", "frames/f.png"},
	}
	for _, tt := range tests {
		got := outputPath(tt.output, tt.input, tt.format, tt.suffix)
		if got != filepath.FromSlash(tt.want) && got != tt.want {
			t.Errorf("outputPath(%q, %q, %q, %q) = %q, want %q", tt.output, tt.input, tt.format, tt.suffix, got, tt.want)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]string{"a.png": "png", "a.JPG": "jpeg", "a.jpeg": "jpeg", "a.gif": "", "a": ""} {
		if got := formatFromPath(path); got != want {
			t.Errorf("formatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestPreviewPath(t *testing.T) {
	doc := &scene.Document{Meta: map[string]any{"preview": "shots/thumb.png"}}
	if got, want := previewPath(doc, "faces/a/iwf.json"), filepath.Join("faces", "a", "thumb.png"); got != want {
		t.Errorf("previewPath = %q, want %q", got, want)
	}
	if got, want := previewPath(&scene.Document{}, "iwf.json"), defaultPreviewFile; got != want {
		t.Errorf("previewPath without meta = %q, want %q", got, want)
	}
}

const builtinScene = `{
    "name": "builtin",
    "item": [
        {"widget": "custom", "type": "time", "x": 40, "y": 150, "w": 240, "h": 39, "align": "center", "font": "basic"}
    ]
}`

func writeScene(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "iwf.json")
	if err := os.WriteFile(path, []byte(builtinScene), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderCommand(t *testing.T) {
	c, _ := testCLI(t)
	input := writeScene(t)
	out := filepath.Join(t.TempDir(), "frame.png")

	if err := execute(c, "render", input, "-o", out, "--time", "10:08:00", "--value", "heartrate=72"); err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 385 {
		t.Errorf("frame size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRenderCommandBatch(t *testing.T) {
	c, _ := testCLI(t)
	input := writeScene(t)
	dir := t.TempDir()

	if err := execute(c, "render", input, "-o", filepath.Join(dir, "f.png"), "--times", "03:00,09:30", "--workers", "2"); err != nil {
		t.Fatalf("render --times: %v", err)
	}
	for _, name := range []string{"f_0300.png", "f_0930.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRenderCommandErrors(t *testing.T) {
	c, _ := testCLI(t)
	input := writeScene(t)
	tests := [][]string{
		{"render", input, "--time", "25:00"},
		{"render", input, "--value", "heartrat=5"},
		{"render", input, "--format", "gif"},
		{"render", filepath.Join(t.TempDir(), "missing.json")},
	}
	for _, args := range tests {
		if err := execute(c, append(args, "-o", filepath.Join(t.TempDir(), "x.png"))...); err == nil {
			t.Errorf("%v should fail", args)
		}
	}
}

func TestPreviewCommand(t *testing.T) {
	c, _ := testCLI(t)
	input := writeScene(t)

	if err := execute(c, "preview", input); err != nil {
		t.Fatalf("preview: %v", err)
	}
	f, err := os.Open(filepath.Join(filepath.Dir(input), defaultPreviewFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 272 || cfg.Height != 324 {
		t.Errorf("preview size = %dx%d, want 272x324", cfg.Width, cfg.Height)
	}
}

func TestGlyphsCommand(t *testing.T) {
	c, _ := testCLI(t)
	out := filepath.Join(t.TempDir(), "sample.png")

	if err := execute(c, "glyphs", "basic", "--kind", "heartrate", "--sample", "128", "-o", out, "--assets", t.TempDir()); err != nil {
		t.Fatalf("glyphs: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("sample not written: %v", err)
	}

	if err := execute(c, "glyphs", "basic", "--sample", "1"); err == nil {
		t.Error("--sample without --kind should fail")
	}

	if err := execute(c, "glyphs", "--assets", t.TempDir()); err != nil {
		t.Errorf("listing fonts without a manifest: %v", err)
	}
}
