package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plantuml/pkg/observability"
)

// logHooks traces client activity at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "status", status, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "error", err)
}

func (h logHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", shortKey(key))
}

func (h logHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", shortKey(key))
}

func (h logHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache store", "key", shortKey(key), "bytes", size)
}

// registerLogHooks routes HTTP and cache events to l.
func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetHTTPHooks(h)
	observability.SetCacheHooks(h)
}

func shortKey(key string) string {
	const n = 18
	if len(key) <= n {
		return key
	}
	return key[:n]
}
