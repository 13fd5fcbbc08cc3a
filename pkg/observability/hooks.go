// Package observability lets keyforge report what it is doing without
// depending on a metrics backend.
//
// The pipeline, the caches and the API server call the accessors
// [Pipeline], [Cache] and [HTTP] at the points worth measuring: ingesting a
// corpus, placing characters, rendering, cache lookups and HTTP requests.
// Until something is registered those calls land on no-op receivers.
//
// Binaries pick the backend. The serve command installs [Prometheus]:
//
//	reg := prometheus.NewRegistry()
//	observability.NewPrometheus(reg).Install()
//	defer observability.Reset()
//
// Any other backend only needs to satisfy the three interfaces below and be
// passed to the Set functions before work starts. Library packages never
// register hooks themselves.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks observes the ingest, layout and render stages.
type PipelineHooks interface {
	// source is "text", "words" or "rows"; size is the alphabet size.
	OnIngestStart(ctx context.Context, source string)
	OnIngestComplete(ctx context.Context, source string, size int, duration time.Duration, err error)

	// nodes counts the search nodes the strategy visited.
	OnLayoutStart(ctx context.Context, strategy string, size int)
	OnLayoutComplete(ctx context.Context, strategy string, nodes int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks observes layout and artifact cache traffic. keyType is
// "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks observes API traffic. route is the chi route pattern, so
// /v1/keyboards/{name} is one series however many keyboards exist.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	// OnError fires for responses that carry an error body.
	OnError(ctx context.Context, method, route string, err error)
}

// NoopPipelineHooks discards pipeline events. Embed it to implement a subset.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnIngestStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnIngestComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)    {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards API events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// registered holds the active hooks; guarded by mu.
var (
	mu         sync.RWMutex
	registered = defaults()
)

type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

func defaults() hookSet {
	return hookSet{NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}
}

// SetPipelineHooks installs h. A nil h leaves the current hooks in place.
func SetPipelineHooks(h PipelineHooks) {
	if h == nil {
		return
	}
	mu.Lock()
	registered.pipeline = h
	mu.Unlock()
}

// SetCacheHooks installs h. A nil h leaves the current hooks in place.
func SetCacheHooks(h CacheHooks) {
	if h == nil {
		return
	}
	mu.Lock()
	registered.cache = h
	mu.Unlock()
}

// SetHTTPHooks installs h. A nil h leaves the current hooks in place.
func SetHTTPHooks(h HTTPHooks) {
	if h == nil {
		return
	}
	mu.Lock()
	registered.http = h
	mu.Unlock()
}

// Pipeline returns the active pipeline hooks.
func Pipeline() PipelineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return registered.pipeline
}

// Cache returns the active cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return registered.cache
}

// HTTP returns the active API hooks.
func HTTP() HTTPHooks {
	mu.RLock()
	defer mu.RUnlock()
	return registered.http
}

// Reset puts the no-op hooks back. Tests and the serve command call it
// after installing a backend.
func Reset() {
	mu.Lock()
	registered = defaults()
	mu.Unlock()
}
