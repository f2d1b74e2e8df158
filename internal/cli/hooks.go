package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacksize/pkg/observability"
)

// spinnerHooks narrates pipeline progress on a spinner.
type spinnerHooks struct {
	observability.NoopPipelineHooks
	spinner *Spinner
}

func (h spinnerHooks) OnIndexLoadStart(_ context.Context, source string) {
	h.spinner.SetMessage("Loading package index from " + source + "...")
}

func (h spinnerHooks) OnResolveStart(_ context.Context, profile string, _ int) {
	h.spinner.SetMessage("Resolving " + profile + "...")
}

// logPipelineHooks logs per-profile resolution at debug level.
type logPipelineHooks struct {
	observability.NoopPipelineHooks
	logger *log.Logger
}

func (h logPipelineHooks) OnResolveComplete(_ context.Context, profile string, packages int, bytes int64, d time.Duration) {
	h.logger.Debug("resolved", "profile", profile, "packages", packages, "bytes", bytes, "duration", d.Round(time.Microsecond))
}

// logHTTPHooks logs every outbound request at debug level.
type logHTTPHooks struct {
	logger *log.Logger
}

func (h logHTTPHooks) OnRequest(context.Context, string, string, string) {}

func (h logHTTPHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h logHTTPHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http failed", "method", method, "host", host, "path", path, "err", err)
}

// logCacheHooks logs cache traffic at debug level.
type logCacheHooks struct {
	logger *log.Logger
}

func (h logCacheHooks) OnCacheHit(_ context.Context, kind string) {
	h.logger.Debug("cache hit", "kind", kind)
}

func (h logCacheHooks) OnCacheMiss(_ context.Context, kind string) {
	h.logger.Debug("cache miss", "kind", kind)
}

func (h logCacheHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.logger.Debug("cache set", "kind", kind, "bytes", size)
}

// installHooks routes pipeline, HTTP and cache events to the CLI logger.
func (c *CLI) installHooks() {
	observability.SetPipelineHooks(logPipelineHooks{logger: c.Logger})
	observability.SetHTTPHooks(logHTTPHooks{logger: c.Logger})
	observability.SetCacheHooks(logCacheHooks{logger: c.Logger})
}
