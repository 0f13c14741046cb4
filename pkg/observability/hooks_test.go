package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopComposerHooks{}
	p.OnPlotStart(ctx, "peaks", "BlocksTrack")
	p.OnPlotComplete(ctx, "peaks", "epiviz-json-blocks-track", 10, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "rows")
	c.OnCacheMiss(ctx, "cols")
	c.OnCacheSet(ctx, "rows", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/charts")
	h.OnResponse(ctx, "GET", "/charts", 200, time.Millisecond)
}

type testComposerHooks struct {
	NoopComposerHooks
	starts int
}

func (h *testComposerHooks) OnPlotStart(context.Context, string, string) { h.starts++ }

type testCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *testCacheHooks) OnCacheHit(context.Context, string) { h.hits++ }

type testHTTPHooks struct {
	NoopHTTPHooks
	requests int
}

func (h *testHTTPHooks) OnRequest(context.Context, string, string) { h.requests++ }

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Composer().(NoopComposerHooks); !ok {
		t.Error("Composer() should return NoopComposerHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	composer := &testComposerHooks{}
	cache := &testCacheHooks{}
	server := &testHTTPHooks{}
	SetComposerHooks(composer)
	SetCacheHooks(cache)
	SetHTTPHooks(server)

	ctx := context.Background()
	Composer().OnPlotStart(ctx, "peaks", "")
	Cache().OnCacheHit(ctx, "rows")
	HTTP().OnRequest(ctx, "GET", "/")

	if composer.starts != 1 || cache.hits != 1 || server.requests != 1 {
		t.Errorf("hooks not called: %d %d %d", composer.starts, cache.hits, server.requests)
	}

	SetComposerHooks(nil)
	if Composer() != ComposerHooks(composer) {
		t.Error("SetComposerHooks(nil) should keep the registered hooks")
	}

	Reset()
	if _, ok := Composer().(NoopComposerHooks); !ok {
		t.Error("Reset() should restore NoopComposerHooks")
	}
}
