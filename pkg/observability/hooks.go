// Package observability lets callers watch the client's HTTP traffic and
// cache activity without the client depending on a logging or metrics
// backend.
//
// Hooks are process-wide. The defaults do nothing; the CLI installs
// logger-backed hooks when run with --verbose:
//
//	observability.SetHTTPHooks(myHTTPHooks{})
//	observability.SetCacheHooks(myCacheHooks{})
//
// Emitters fetch the current hooks at the call site:
//
//	observability.HTTP().OnRequest(ctx, "GET", host, path)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// CacheHooks receives image cache events. Keys are the cache keys built by
// cache.ImageKey.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string)
	OnCacheMiss(ctx context.Context, key string)
	// OnCacheSet reports a stored image of size bytes.
	OnCacheSet(ctx context.Context, key string, size int)
}

// HTTPHooks receives events for requests to the PlantUML server, including
// the form-auth login. Paths carry the encoded diagram token.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	// OnResponse is called for every answer, whatever its status.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError is called when no answer arrived: dial failures, timeouts,
	// cancelled contexts, truncated bodies.
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// Boxed so atomic.Pointer can hold interface values.
type (
	cacheBox struct{ h CacheHooks }
	httpBox  struct{ h HTTPHooks }
)

var (
	cacheHooks atomic.Pointer[cacheBox]
	httpHooks  atomic.Pointer[httpBox]
)

func init() { Reset() }

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.Store(&cacheBox{h})
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.Store(&httpBox{h})
	}
}

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return cacheHooks.Load().h }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.Load().h }

// Reset restores the no-op hooks.
func Reset() {
	cacheHooks.Store(&cacheBox{NoopCacheHooks{}})
	httpHooks.Store(&httpBox{NoopHTTPHooks{}})
}
