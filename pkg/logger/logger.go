// Package logger provides the structured, levelled logger built on log/slog.
//
// Handlers and services should log through WithCtx so every line carries the
// request_id injected by the request logging middleware:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order accepted", "order_id", id, "vendor_id", vendorID)
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/campusprint/printhub/config"
)

var L *slog.Logger

func init() {
	L = slog.New(baseHandler())
	slog.SetDefault(L)
}

// baseHandler is JSON in production (for log aggregators) and text otherwise.
func baseHandler() slog.Handler {
	if config.IsProduction() {
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Attach fans every subsequent record out to h as well as stdout.
func Attach(h slog.Handler) {
	L = slog.New(fanout{baseHandler(), h})
	slog.SetDefault(L)
}

type ctxKey struct{}

// WithCtx returns the per-request logger stored by InjectLogger, or the base
// logger when the context carries none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
