// Package observability lets the pipeline, generator, cache and API server
// report events without depending on a metrics backend.
//
// Each event category has a hook interface with a no-op default. A binary
// that wants instrumentation installs its own implementation once at
// startup; the API server installs Prometheus-backed hooks and the CLI keeps
// the defaults:
//
//	observability.SetPipelineHooks(metrics)
//	observability.SetCacheHooks(metrics)
//
// Library code fetches the current hooks at the call site:
//
//	observability.Pipeline().OnLayoutStart(ctx, topic, len(g.Nodes))
//	res := layout.Compute(g, maxLevels)
//	observability.Pipeline().OnLayoutComplete(ctx, topic, maxLevels, time.Since(start), nil)
//
// Hooks are read on every event, so implementations must be safe for
// concurrent use.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the layout and render pipeline.
type PipelineHooks interface {
	// Layout events
	OnLayoutStart(ctx context.Context, topic string, nodeCount int)
	OnLayoutComplete(ctx context.Context, topic string, maxLevels int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Generate Hooks
// =============================================================================

// GenerateHooks receives events from concept graph generation.
type GenerateHooks interface {
	OnGenerateStart(ctx context.Context, topic string, depth int)
	OnGenerateComplete(ctx context.Context, topic string, nodeCount int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	// OnCacheSet reports a write of size bytes.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events for requests handled by the API server.
// Route is the matched route pattern, not the raw path, to keep label
// cardinality bounded.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks discards pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)    {}

// NoopGenerateHooks discards generation events.
type NoopGenerateHooks struct{}

func (NoopGenerateHooks) OnGenerateStart(context.Context, string, int)                          {}
func (NoopGenerateHooks) OnGenerateComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards request events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

// slot holds the registered implementation of one hook interface.
type slot[T any] struct {
	p   atomic.Pointer[T]
	def T
}

func (s *slot[T]) load() T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return s.def
}

func (s *slot[T]) store(v T) { s.p.Store(&v) }
func (s *slot[T]) reset()    { s.p.Store(nil) }

var (
	pipelineSlot = slot[PipelineHooks]{def: NoopPipelineHooks{}}
	generateSlot = slot[GenerateHooks]{def: NoopGenerateHooks{}}
	cacheSlot    = slot[CacheHooks]{def: NoopCacheHooks{}}
	httpSlot     = slot[HTTPHooks]{def: NoopHTTPHooks{}}
)

// SetPipelineHooks installs h for layout and render events. A nil h is
// ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.store(h)
	}
}

// SetGenerateHooks installs h for generation events.
func SetGenerateHooks(h GenerateHooks) {
	if h != nil {
		generateSlot.store(h)
	}
}

// SetCacheHooks installs h for cache events.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.store(h)
	}
}

// SetHTTPHooks installs h for API request events.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.store(h)
	}
}

func Pipeline() PipelineHooks { return pipelineSlot.load() }
func Generate() GenerateHooks { return generateSlot.load() }
func Cache() CacheHooks       { return cacheSlot.load() }
func HTTP() HTTPHooks         { return httpSlot.load() }

// Reset puts the no-op defaults back, mostly for tests.
func Reset() {
	pipelineSlot.reset()
	generateSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
