package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports pipeline, cache, and HTTP events as debug log lines.
// The CLI registers it when --verbose is set; the server registers it always.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger. A nil logger falls back to
// the charmbracelet default logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnPrepareStart(_ context.Context, nodeCount int) {
	h.Logger.Debug("prepare started", "nodes", nodeCount)
}

func (h *LogHooks) OnPrepareComplete(_ context.Context, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("prepare failed", "nodes", nodeCount, "error", err)
		return
	}
	h.Logger.Debug("prepare complete", "nodes", nodeCount, "took", d)
}

func (h *LogHooks) OnThresholdStart(_ context.Context, token string) {
	h.Logger.Debug("threshold started", "threshold", token)
}

func (h *LogHooks) OnThresholdComplete(_ context.Context, token string, edges int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("threshold failed", "threshold", token, "error", err)
		return
	}
	h.Logger.Debug("threshold complete", "threshold", token, "edges", edges, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.Logger.Debug("render started", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("render failed", "format", format, "error", err)
		return
	}
	h.Logger.Debug("render complete", "format", format, "bytes", size, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "path", path, "status", status, "took", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
