package ggfx

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/ggfx/backend/cpu"
	"github.com/gogpu/ggfx/backend/wgpu"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for ggfx and its built-in backends.
// Other registered backends receive the logger current when they are
// selected. By default, ggfx produces no log output. Pass nil to disable
// logging.
//
// Log levels used by ggfx:
//   - [slog.LevelDebug]: passes, programs and buffer sizes
//   - [slog.LevelInfo]: backend selected, GPU adapter opened
//   - [slog.LevelWarn]: CPU fallback and demotion
//
// Example:
//
//	ggfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	cpu.SetLogger(l)
	wgpu.SetLogger(l)
}

// Logger returns the current logger used by ggfx.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to a backend if it implements the
// loggerSetter interface.
func propagateLogger(b Backend, l *slog.Logger) {
	if ls, ok := b.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
