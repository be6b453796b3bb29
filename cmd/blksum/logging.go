package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
)

// timingHandler is a minimal, colored slog.Handler for blksum's debug
// toggle: one line per record, level-colored, with an optional elapsed
// marker. It intentionally does not attempt the structured-attribute
// rendering a service-facing logger needs, since the only consumer here
// is a developer watching a terminal.
type timingHandler struct {
	w        io.Writer
	level    slog.Level
	useColor bool
	start    time.Time
}

func newTimingHandler(w io.Writer, level slog.Level, useColor bool) *timingHandler {
	return &timingHandler{w: w, level: level, useColor: useColor, start: time.Now()}
}

func (h *timingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *timingHandler) Handle(_ context.Context, r slog.Record) error {
	elapsed := r.Time.Sub(h.start)

	levelStr := r.Level.String()
	if h.useColor {
		levelStr = levelColor(r.Level)(levelStr)
	}

	line := fmt.Sprintf("[%8.3fs] %s %s", elapsed.Seconds(), levelStr, r.Message)
	r.Attrs(func(a slog.Attr) bool {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})
	line += "\n"

	_, err := io.WriteString(h.w, line)
	return err
}

func (h *timingHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *timingHandler) WithGroup(name string) slog.Handler       { return h }

func levelColor(level slog.Level) func(a ...interface{}) string {
	switch {
	case level >= slog.LevelError:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case level >= slog.LevelWarn:
		return color.New(color.FgYellow).SprintFunc()
	case level >= slog.LevelInfo:
		return color.New(color.FgBlue).SprintFunc()
	default:
		return color.New(color.FgMagenta).SprintFunc()
	}
}
