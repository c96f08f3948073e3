package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log
// lines. Failures are logged as errors.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger, or to the default logger
// when nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnAlignStart(_ context.Context, strategy string, objects int) {
	h.Logger.Debug("align start", "strategy", strategy, "objects", objects)
}

func (h *LogHooks) OnAlignComplete(_ context.Context, strategy string, placed, unresolved int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("align failed", "strategy", strategy, "err", err)
		return
	}
	h.Logger.Debug("align done", "strategy", strategy, "placed", placed, "unresolved", unresolved, "duration", d)
}

func (h *LogHooks) OnAuditStart(_ context.Context, objects int) {
	h.Logger.Debug("audit start", "objects", objects)
}

func (h *LogHooks) OnAuditComplete(_ context.Context, records int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("audit failed", "err", err)
		return
	}
	h.Logger.Debug("audit done", "records", records, "duration", d)
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
	h.Logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ LayoutHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ HTTPHooks   = (*LogHooks)(nil)
)
