package libretro

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
)

// retroLevel mirrors enum retro_log_level.
type retroLevel int

const (
	retroLevelDebug retroLevel = iota
	retroLevelInfo
	retroLevelWarn
	retroLevelError
)

// retroLevelOf maps an slog level onto the four libretro levels. Anything
// below info is debug.
func retroLevelOf(l slog.Level) retroLevel {
	switch {
	case l >= slog.LevelError:
		return retroLevelError
	case l >= slog.LevelWarn:
		return retroLevelWarn
	case l >= slog.LevelInfo:
		return retroLevelInfo
	default:
		return retroLevelDebug
	}
}

// retroHandler is an slog.Handler that formats records as text and passes
// each line to emit. The frontend adds its own timestamp and level, so
// those are left out of the line.
type retroHandler struct {
	emit  func(retroLevel, string)
	text  slog.Handler
	buf   *bytes.Buffer
	mu    *sync.Mutex
	level slog.Leveler
}

func newRetroHandler(emit func(retroLevel, string), level slog.Leveler) *retroHandler {
	buf := &bytes.Buffer{}
	text := slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	})
	return &retroHandler{
		emit:  emit,
		text:  text,
		buf:   buf,
		mu:    &sync.Mutex{},
		level: level,
	}
}

func (h *retroHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *retroHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.text.Handle(ctx, r); err != nil {
		return err
	}
	h.emit(retroLevelOf(r.Level), strings.TrimSuffix(h.buf.String(), "\n"))
	return nil
}

func (h *retroHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.text = h.text.WithAttrs(attrs)
	return &c
}

func (h *retroHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.text = h.text.WithGroup(name)
	return &c
}
