package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/wfstudio/wfrender/pkg/asset"
	"github.com/wfstudio/wfrender/pkg/cache"
	"github.com/wfstudio/wfrender/pkg/pipeline"
	"github.com/wfstudio/wfrender/pkg/render"
	"github.com/wfstudio/wfrender/pkg/scenestore"
)

const testScene = `{
    "name": "pulse",
    "item": [
        {"widget": "custom", "type": "heartrate", "x": 10, "y": 10, "w": 50, "h": 20, "align": "left", "font": "hr"}
    ]
}`

var red = color.NRGBA{R: 255, A: 255}

func pngFile(t *testing.T, w, h int, c color.NRGBA) *fstest.MapFile {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return &fstest.MapFile{Data: buf.Bytes()}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fsys := fstest.MapFS{
		"fonts/hr/9.png": pngFile(t, 8, 12, red),
		"fonts/hr/1.png": pngFile(t, 4, 12, red),
	}
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(render.New(asset.New(fsys)), fc, nil, nil)
	srv := New(runner, scenestore.NewMemoryStore(), nil)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	decodeJSON(t, resp, &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestSceneLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/scenes", "application/json", strings.NewReader(testScene))
	if err != nil {
		t.Fatal(err)
	}
	var created sceneSummary
	decodeJSON(t, resp, &created)
	if resp.StatusCode != http.StatusCreated || created.ID == "" || created.Name != "pulse" {
		t.Fatalf("create = %d %+v", resp.StatusCode, created)
	}
	if loc := resp.Header.Get("Location"); loc != "/scenes/"+created.ID {
		t.Errorf("Location = %q", loc)
	}

	resp, err = http.Get(ts.URL + "/scenes")
	if err != nil {
		t.Fatal(err)
	}
	var list []sceneSummary
	decodeJSON(t, resp, &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	resp, err = http.Get(ts.URL + "/scenes/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	decodeJSON(t, resp, &raw)
	if raw["name"] != "pulse" {
		t.Errorf("stored scene = %v", raw)
	}

	resp, err = http.Get(ts.URL + "/scenes/" + created.ID + "/render.png?time=10:08&heartrate=91")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("render = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != pipeline.DefaultWidth || b.Dy() != pipeline.DefaultHeight {
		t.Errorf("frame size = %v", b)
	}
	if got := color.NRGBAModel.Convert(img.At(10, 10)).(color.NRGBA); got != red {
		t.Errorf("glyph pixel = %v, want red", got)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/scenes/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/scenes/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	var eb errorBody
	decodeJSON(t, resp, &eb)
	if resp.StatusCode != http.StatusNotFound || eb.Error != "SCENE_NOT_FOUND" {
		t.Errorf("get after delete = %d %+v", resp.StatusCode, eb)
	}
}

func TestRenderBody(t *testing.T) {
	ts := newTestServer(t)

	url := ts.URL + "/render.jpg?time=03:00:00&preview=true"
	resp, err := http.Post(url, "application/json", strings.NewReader(testScene))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/jpeg" {
		t.Fatalf("render = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	cfg, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != pipeline.DefaultPreviewWidth || cfg.Height != pipeline.DefaultPreviewHeight {
		t.Errorf("preview size = %dx%d", cfg.Width, cfg.Height)
	}
	if resp.Header.Get("X-Frame-Cache") != "miss" {
		t.Errorf("first render cache = %q", resp.Header.Get("X-Frame-Cache"))
	}

	resp2, err := http.Post(url, "application/json", strings.NewReader(testScene))
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.Header.Get("X-Frame-Cache") != "hit" {
		t.Errorf("second render cache = %q", resp2.Header.Get("X-Frame-Cache"))
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		url    string
		body   string
		status int
		code   string
	}{
		{"bad time", "/render.png?time=25:00", testScene, 400, "INVALID_TIME"},
		{"bad format", "/render.gif", testScene, 400, "INVALID_FORMAT"},
		{"unknown value", "/render.png?time=10:00&heartrat=9", testScene, 400, "INVALID_INPUT"},
		{"bad bool", "/render.png?preview=maybe", testScene, 400, "INVALID_INPUT"},
		{"huge output", "/render.png?time=10:00&width=200000&height=200000", testScene, 400, "INVALID_INPUT"},
		{"malformed scene", "/render.png", `{"item": [{"widget": "custom", "type": "altitude"}]}`, 400, "MALFORMED_SCENE"},
		{"not json", "/render.png", `nope`, 400, "MALFORMED_SCENE"},
		{"bad id", "/scenes/xyz/render.png", "", 400, "INVALID_INPUT"},
		{"missing id", "/scenes/7d444840-9dc0-11d1-b245-5ffdce74fad2/render.png", "", 404, "SCENE_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			var err error
			if tt.body != "" {
				resp, err = http.Post(ts.URL+tt.url, "application/json", strings.NewReader(tt.body))
			} else {
				resp, err = http.Get(ts.URL + tt.url)
			}
			if err != nil {
				t.Fatal(err)
			}
			var eb errorBody
			decodeJSON(t, resp, &eb)
			if resp.StatusCode != tt.status || string(eb.Error) != tt.code {
				t.Errorf("got %d %s (%s), want %d %s", resp.StatusCode, eb.Error, eb.Message, tt.status, tt.code)
			}
		})
	}
}

func TestRenderETag(t *testing.T) {
	ts := newTestServer(t)

	etag := func(query string) string {
		t.Helper()
		resp, err := http.Post(ts.URL+"/render.png?time=10:08:00"+query, "application/json", strings.NewReader(testScene))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("render%s = %d", query, resp.StatusCode)
		}
		return resp.Header.Get("ETag")
	}

	base := etag("&heartrate=91")
	if base == "" {
		t.Fatal("missing ETag")
	}
	if again := etag("&heartrate=91"); again != base {
		t.Errorf("same frame ETag changed: %s vs %s", base, again)
	}
	for _, q := range []string{"&heartrate=92", "&heartrate=91&width=160&height=192"} {
		if got := etag(q); got == base {
			t.Errorf("ETag for %q should differ from %s", q, base)
		}
	}
}

func TestRenderSkipsUnsupportedItems(t *testing.T) {
	ts := newTestServer(t)
	body := `{"item": [
		{"widget": "image", "type": "logo", "x": 0, "y": 0},
		{"widget": "custom", "type": "heartrate", "x": 10, "y": 10, "w": 50, "h": 20, "align": "left", "font": "hr"}
	]}`
	resp, err := http.Post(ts.URL+"/render.png?time=10:08:00&heartrate=91", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
}
