// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about chart
// composition, payload cache operations, and display server requests. The
// library itself depends on no observability backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetComposerHooks(&myComposerHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Composer().OnPlotStart(ctx, name, chartType)
//	// ... register, query, assemble ...
//	observability.Composer().OnPlotComplete(ctx, name, tag, rows, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Composer Hooks
// =============================================================================

// ComposerHooks receives events from chart composition.
type ComposerHooks interface {
	// OnPlotStart is called before a data source is registered. chartType
	// is empty when the manager's default is used.
	OnPlotStart(ctx context.Context, name, chartType string)

	// OnPlotComplete is called when a plot call returns. tag is empty on
	// failure.
	OnPlotComplete(ctx context.Context, name, tag string, rows int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from payload cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit. part is the payload part ("rows", "cols").
	OnCacheHit(ctx context.Context, part string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, part string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, part string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the display server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopComposerHooks is a no-op implementation of ComposerHooks.
type NoopComposerHooks struct{}

func (NoopComposerHooks) OnPlotStart(context.Context, string, string) {}
func (NoopComposerHooks) OnPlotComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	composerHooks ComposerHooks = NoopComposerHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetComposerHooks registers custom composer hooks.
// This should be called once at application startup.
func SetComposerHooks(h ComposerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		composerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Composer returns the registered composer hooks.
func Composer() ComposerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return composerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	composerHooks = NoopComposerHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
