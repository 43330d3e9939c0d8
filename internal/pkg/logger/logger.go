package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// stickyHandler implements slog.Handler with the slsksticky text format:
// 2025/10/15 21:52:15 SLSKSTICKY [INFO] [Component] message key=value
type stickyHandler struct {
	opts      slog.HandlerOptions
	attrs     []slog.Attr
	w         io.Writer
	component string
}

func newStickyHandler(w io.Writer, opts *slog.HandlerOptions) *stickyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &stickyHandler{opts: *opts, w: w}
}

// Enabled reports whether the handler handles records at the given level
func (h *stickyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and outputs the log record
func (h *stickyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	buf.WriteString(r.Time.Format("2006/01/02 15:04:05"))
	buf.WriteString(" SLSKSTICKY [")
	buf.WriteString(levelString(r.Level))
	buf.WriteString("]")

	if h.component != "" {
		buf.WriteString(" [")
		buf.WriteString(strings.ToUpper(h.component[:1]) + h.component[1:])
		buf.WriteString("]")
	}

	buf.WriteString(" ")
	buf.WriteString(r.Message)

	writeAttr := func(a slog.Attr) {
		buf.WriteString(" ")
		buf.WriteString(a.Key)
		buf.WriteString("=")
		buf.WriteString(fmt.Sprint(a.Value.Any()))
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	for _, a := range h.attrs {
		writeAttr(a)
	}

	buf.WriteString("\n")
	_, err := h.w.Write([]byte(buf.String()))
	return err
}

// WithAttrs returns a new handler with the given attributes.
// A "component" attribute is lifted into the bracketed prefix.
func (h *stickyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &stickyHandler{
		opts:      h.opts,
		w:         h.w,
		component: h.component,
		attrs:     append([]slog.Attr(nil), h.attrs...),
	}
	for _, a := range attrs {
		if a.Key == "component" {
			next.component = a.Value.String()
			continue
		}
		next.attrs = append(next.attrs, a)
	}
	return next
}

// WithGroup is accepted but groups are flattened in this format
func (h *stickyHandler) WithGroup(string) slog.Handler {
	return h
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

// New creates a new logger instance
func New(cfg Config) *Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates a logger writing to the given writer
func NewWithWriter(cfg Config, w io.Writer) *Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = newStickyHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// With returns a new logger with the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component returns a logger tagged with a component name
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}
