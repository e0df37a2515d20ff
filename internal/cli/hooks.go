package cli

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/observability"
)

var registerHooksOnce sync.Once

// registerDebugHooks routes pipeline, cache and HTTP events to the logger
// at debug level. Hooks are process-wide, so this runs at most once.
func registerDebugHooks(logger *log.Logger) {
	registerHooksOnce.Do(func() {
		h := &debugHooks{logger: logger.WithPrefix("hooks")}
		observability.SetLayoutHooks(h)
		observability.SetCacheHooks(h)
		observability.SetHTTPHooks(h)
	})
}

// debugHooks implements every observability hook interface by logging.
type debugHooks struct {
	logger *log.Logger
}

func (h *debugHooks) OnLoad(_ context.Context, people, unions, diagnostics int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "error", err, "duration", d)
		return
	}
	h.logger.Debug("load", "people", people, "unions", unions, "diagnostics", diagnostics, "duration", d)
}

func (h *debugHooks) OnLayoutStart(_ context.Context, visible int) {
	h.logger.Debug("layout start", "roots", visible)
}

func (h *debugHooks) OnLayoutComplete(_ context.Context, nodes, edges int, d time.Duration) {
	h.logger.Debug("layout complete", "nodes", nodes, "edges", edges, "duration", d)
}

func (h *debugHooks) OnToggle(_ context.Context, id string, expanded bool) {
	h.logger.Debug("toggle", "id", id, "expanded", expanded)
}

func (h *debugHooks) OnFocus(_ context.Context, id string, opened int) {
	h.logger.Debug("focus", "id", id, "opened", opened)
}

func (h *debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *debugHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *debugHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}
