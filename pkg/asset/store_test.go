package asset

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/wfstudio/wfrender/pkg/errors"
)

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
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
	return buf.Bytes()
}

func file(data []byte) *fstest.MapFile { return &fstest.MapFile{Data: data} }

func TestResolve(t *testing.T) {
	fsys := fstest.MapFS{
		"files0.png":     file(pngBytes(t, 4, 3, color.NRGBA{R: 255, A: 255})),
		"hands/hour.png": file(pngBytes(t, 10, 40, color.NRGBA{B: 255, A: 255})),
	}
	s := New(fsys)

	img, err := s.Resolve("files0.png")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if img.Rect.Dx() != 4 || img.Rect.Dy() != 3 {
		t.Errorf("size = %v, want 4x3", img.Rect.Size())
	}

	// Leading slash is tolerated.
	if _, err := s.Resolve("/hands/hour.png"); err != nil {
		t.Errorf("Resolve(/hands/hour.png): %v", err)
	}

	// Base name fallback for paths that do not exist as given.
	if _, err := s.Resolve("/home/someone/Desktop/files0.png"); err != nil {
		t.Errorf("basename fallback failed: %v", err)
	}

	_, err = s.Resolve("missing.png")
	if !errors.Is(err, errors.ErrCodeAssetNotFound) {
		t.Errorf("Resolve(missing) code = %v, want ASSET_NOT_FOUND", errors.GetCode(err))
	}

	_, err = s.Resolve("../escape.png")
	if !errors.Is(err, errors.ErrCodeInvalidAssetName) {
		t.Errorf("Resolve(../escape) code = %v, want INVALID_ASSET_NAME", errors.GetCode(err))
	}
}

func TestResolveFallbackRoot(t *testing.T) {
	primary := fstest.MapFS{"a.png": file(pngBytes(t, 1, 1, color.NRGBA{A: 255}))}
	fallback := fstest.MapFS{
		"a.png": file(pngBytes(t, 2, 2, color.NRGBA{A: 255})),
		"b.png": file(pngBytes(t, 3, 3, color.NRGBA{A: 255})),
	}
	s := New(primary, WithRoot(fallback))

	a, err := s.Resolve("a.png")
	if err != nil || a.Rect.Dx() != 1 {
		t.Errorf("primary root should win: %v %v", a, err)
	}
	b, err := s.Resolve("b.png")
	if err != nil || b.Rect.Dx() != 3 {
		t.Errorf("fallback root should serve b.png: %v", err)
	}
}

func TestResolveCaches(t *testing.T) {
	fsys := fstest.MapFS{"bg.png": file(pngBytes(t, 2, 2, color.NRGBA{A: 255}))}
	s := New(fsys)

	first, err := s.Resolve("bg.png")
	if err != nil {
		t.Fatal(err)
	}
	// Removing the file does not affect a warm cache.
	delete(fsys, "bg.png")
	second, err := s.Resolve("bg.png")
	if err != nil {
		t.Fatalf("cached Resolve: %v", err)
	}
	if first != second {
		t.Error("cached Resolve should return the same image")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	if !s.Invalidate("bg.png") {
		t.Error("Invalidate should report a dropped entry")
	}
	if _, err := s.Resolve("bg.png"); !errors.Is(err, errors.ErrCodeAssetNotFound) {
		t.Errorf("after Invalidate the store should re-probe: %v", err)
	}
}

func TestInvalidateReplacesAsset(t *testing.T) {
	fsys := fstest.MapFS{"hand.png": file(pngBytes(t, 2, 2, color.NRGBA{A: 255}))}
	s := New(fsys)
	if _, err := s.Resolve("hand.png"); err != nil {
		t.Fatal(err)
	}

	fsys["hand.png"] = file(pngBytes(t, 5, 5, color.NRGBA{A: 255}))
	img, _ := s.Resolve("hand.png")
	if img.Rect.Dx() != 2 {
		t.Error("warm cache should still serve the old image")
	}

	s.Invalidate("hand.png")
	img, err := s.Resolve("hand.png")
	if err != nil || img.Rect.Dx() != 5 {
		t.Errorf("after Invalidate expected the new 5x5 image, got %v %v", img.Rect, err)
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d", s.Len())
	}
}

func TestResolveInCaseVariants(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		base  string
		want  string
	}{
		{"exact lower", []string{"g/0.png"}, "0", "g/0.png"},
		{"upper extension", []string{"g/colon.PNG"}, "colon", "g/colon.PNG"},
		{"upper base", []string{"g/PERCENT.png"}, "percent", "g/PERCENT.png"},
		{"upper both", []string{"g/DASH.PNG"}, "dash", "g/DASH.PNG"},
		{"lower base", []string{"g/am.png"}, "AM", "g/am.png"},
		{"original spelling first", []string{"g/AM.png", "g/am.png"}, "AM", "g/AM.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for _, f := range tt.files {
				fsys[f] = file(pngBytes(t, 3, 5, color.NRGBA{A: 255}))
			}
			s := New(fsys)
			_, got, err := s.ResolveIn("g", tt.base)
			if err != nil {
				t.Fatalf("ResolveIn: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveIn matched %q, want %q", got, tt.want)
			}
		})
	}

	s := New(fstest.MapFS{"g/1.png": file(pngBytes(t, 1, 1, color.NRGBA{A: 255}))})
	if _, _, err := s.ResolveIn("g", "2"); !errors.Is(err, errors.ErrCodeAssetNotFound) {
		t.Errorf("ResolveIn(missing) code = %v", errors.GetCode(err))
	}
}

func TestFindDir(t *testing.T) {
	fsys := fstest.MapFS{
		"widgets/step/0.png": file(pngBytes(t, 1, 1, color.NRGBA{A: 255})),
		"fonts/g21/0.png":    file(pngBytes(t, 1, 1, color.NRGBA{A: 255})),
	}
	s := New(fsys)

	dir, ok := s.FindDir("widgets/step/g21", "widgets/step", "fonts/g21", "g21")
	if !ok || dir != "widgets/step" {
		t.Errorf("FindDir = %q, %v; want widgets/step", dir, ok)
	}

	dir, ok = s.FindDir("widgets/time/g13", "widgets/time", "fonts/g21")
	if !ok || dir != "fonts/g21" {
		t.Errorf("FindDir = %q, %v; want fonts/g21", dir, ok)
	}

	// Files are not directories.
	if _, ok := s.FindDir("widgets/step/0.png"); ok {
		t.Error("FindDir should not match files")
	}
	if _, ok := s.FindDir("", "../x"); ok {
		t.Error("FindDir should skip empty and invalid candidates")
	}
}

func TestConcurrentResolve(t *testing.T) {
	fsys := fstest.MapFS{}
	names := []string{"a.png", "b.png", "c.png", "d.png"}
	for _, n := range names {
		fsys[n] = file(pngBytes(t, 8, 8, color.NRGBA{G: 255, A: 255}))
	}
	s := New(fsys)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := s.Resolve(names[(i+j)%len(names)]); err != nil {
					t.Errorf("Resolve: %v", err)
				}
				if j%7 == 0 {
					s.Invalidate(names[i%len(names)])
				}
			}
		}(i)
	}
	wg.Wait()
}
