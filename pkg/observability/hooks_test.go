package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Render hooks
	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, "customiwf")
	r.OnRenderComplete(ctx, "customiwf", 4, time.Millisecond, nil)
	r.OnWidgetSkipped("heartrate", errors.New("missing"))

	// Asset hooks
	a := NoopAssetHooks{}
	a.OnAssetLoad("files0.png", time.Millisecond)
	a.OnAssetHit("files0.png")
	a.OnAssetMiss("nope.png")

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "frame")
	c.OnCacheMiss(ctx, "frame")
	c.OnCacheSet(ctx, "frame", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/healthz")
	h.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Assets().(NoopAssetHooks); !ok {
		t.Error("Assets() should return NoopAssetHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	customAssets := &testAssetHooks{}
	SetAssetHooks(customAssets)
	if Assets() != customAssets {
		t.Error("SetAssetHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
	if _, ok := Assets().(NoopAssetHooks); !ok {
		t.Error("Reset() should restore NoopAssetHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testRenderHooks{}
	SetRenderHooks(custom)

	// Setting nil should be ignored
	SetRenderHooks(nil)

	if Render() != custom {
		t.Error("SetRenderHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testRenderHooks struct{ NoopRenderHooks }
type testAssetHooks struct{ NoopAssetHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
