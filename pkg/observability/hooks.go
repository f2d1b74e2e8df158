// Package observability lets callers watch what the estimator is doing
// without the library knowing who is watching.
//
// Three event families exist: pipeline progress (index loading and one
// resolve per profile), cache traffic, and outbound HTTP. Each family is an
// interface with a no-op implementation; the process registers real hooks
// once at startup and library code emits through the getters:
//
//	observability.Pipeline().OnIndexLoadStart(ctx, src.String())
//	// ... fetch and parse ...
//	observability.Pipeline().OnIndexLoadComplete(ctx, src.String(), records, took, err)
//
// The CLI registers a spinner and debug loggers; tests register recorders.
// Several pipeline observers can share the slot through [MultiPipeline].
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the estimation pipeline.
type PipelineHooks interface {
	OnIndexLoadStart(ctx context.Context, source string)
	OnIndexLoadComplete(ctx context.Context, source string, records int, duration time.Duration, err error)

	// One start/complete pair per profile. Cache hits skip both.
	OnResolveStart(ctx context.Context, profile string, roots int)
	OnResolveComplete(ctx context.Context, profile string, packages int, bytes int64, duration time.Duration)
}

// CacheHooks receives cache traffic. kind is the key family, such as
// "index" or "estimate".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// HTTPHooks receives outbound request events. OnError is for transport
// failures; non-2xx statuses arrive through OnResponse.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks ignores every event. Embed it to implement a subset.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnIndexLoadStart(context.Context, string) {}
func (NoopPipelineHooks) OnIndexLoadComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnResolveStart(context.Context, string, int) {}
func (NoopPipelineHooks) OnResolveComplete(context.Context, string, int, int64, time.Duration) {
}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// MultiPipeline forwards every event to each of hs in order. Nil entries
// are skipped.
func MultiPipeline(hs ...PipelineHooks) PipelineHooks {
	var m multiPipeline
	for _, h := range hs {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

type multiPipeline []PipelineHooks

func (m multiPipeline) OnIndexLoadStart(ctx context.Context, source string) {
	for _, h := range m {
		h.OnIndexLoadStart(ctx, source)
	}
}

func (m multiPipeline) OnIndexLoadComplete(ctx context.Context, source string, records int, d time.Duration, err error) {
	for _, h := range m {
		h.OnIndexLoadComplete(ctx, source, records, d, err)
	}
}

func (m multiPipeline) OnResolveStart(ctx context.Context, profile string, roots int) {
	for _, h := range m {
		h.OnResolveStart(ctx, profile, roots)
	}
}

func (m multiPipeline) OnResolveComplete(ctx context.Context, profile string, packages int, bytes int64, d time.Duration) {
	for _, h := range m {
		h.OnResolveComplete(ctx, profile, packages, bytes, d)
	}
}

// slot holds one registered hook set. Readers never block writers.
type slot[T any] struct {
	v    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return s.noop
}

func (s *slot[T]) set(h T) { s.v.Store(&h) }

func (s *slot[T]) reset() { s.v.Store(nil) }

var (
	pipelineHooks = slot[PipelineHooks]{noop: NoopPipelineHooks{}}
	cacheHooks    = slot[CacheHooks]{noop: NoopCacheHooks{}}
	httpHooks     = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetPipelineHooks registers h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineHooks.set(h)
	}
}

// SetCacheHooks registers h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.set(h)
	}
}

// SetHTTPHooks registers h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.set(h)
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineHooks.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheHooks.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Reset restores all hooks to their no-op defaults.
func Reset() {
	pipelineHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
