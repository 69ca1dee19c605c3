package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// SetupPrettySlog returns a human-readable slog logger for local runs.
// dev/prod environments use the JSON handler instead.
func SetupPrettySlog() *slog.Logger {
	return slog.New(newPrettyHandler(slog.LevelDebug))
}

type prettyHandler struct {
	level slog.Level
	attrs []slog.Attr
	mu    *sync.Mutex
	out   *os.File
}

func newPrettyHandler(level slog.Level) *prettyHandler {
	return &prettyHandler{
		level: level,
		mu:    &sync.Mutex{},
		out:   os.Stdout,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(r.Time.Format(time.TimeOnly))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.WriteString(b.String())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &prettyHandler{level: h.level, attrs: merged, mu: h.mu, out: h.out}
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	// groups are flattened, attribute keys keep their own names
	return h
}
