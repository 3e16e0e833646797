package logging

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
)

// teeHandler sends each record to every handler whose level accepts it.
type teeHandler struct {
	handlers []slog.Handler
}

// newFanoutHandler drops nil handlers and only wraps when more than one
// remains.
func newFanoutHandler(handlers ...slog.Handler) slog.Handler {
	live := lo.Compact(handlers)
	switch len(live) {
	case 0:
		return slog.DiscardHandler
	case 1:
		return live[0]
	default:
		return &teeHandler{handlers: live}
	}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return lo.SomeBy(h.handlers, func(handler slog.Handler) bool {
		return handler.Enabled(ctx, level)
	})
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{handlers: lo.Map(h.handlers, func(handler slog.Handler, _ int) slog.Handler {
		return handler.WithAttrs(attrs)
	})}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{handlers: lo.Map(h.handlers, func(handler slog.Handler, _ int) slog.Handler {
		return handler.WithGroup(name)
	})}
}

// TeeLogger returns a logger writing to base and to every extra handler.
// The pipeline uses it to mirror a topic's records into its own log file.
func TeeLogger(base *slog.Logger, handlers ...slog.Handler) *slog.Logger {
	if base != nil {
		handlers = append([]slog.Handler{base.Handler()}, handlers...)
	}
	return slog.New(newFanoutHandler(handlers...))
}
