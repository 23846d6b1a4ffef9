package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, errors at warn.
// It implements all hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnCompileStart(_ context.Context, runID string, segments, fixtures int) {
	h.logger.Debug("compile start", "run", runID, "segments", segments, "fixtures", fixtures)
}

func (h *LogHooks) OnCompileComplete(_ context.Context, runID string, variables, constraints int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("compile failed", "run", runID, "duration", d, "err", err)
		return
	}
	h.logger.Debug("compile done", "run", runID, "variables", variables, "constraints", constraints, "duration", d)
}

func (h *LogHooks) OnSolveStart(_ context.Context, runID, engine string) {
	h.logger.Debug("solve start", "run", runID, "engine", engine)
}

func (h *LogHooks) OnSolveComplete(_ context.Context, runID, engine, status string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("solve failed", "run", runID, "engine", engine, "status", status, "duration", d, "err", err)
		return
	}
	h.logger.Debug("solve done", "run", runID, "engine", engine, "status", status, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ ServerHooks   = (*LogHooks)(nil)
)
