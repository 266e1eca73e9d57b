// Package logx installs the process-wide slog logger. Records are written
// one per line as "LEVEL message key=value ...", with the level colored when
// the output is a terminal.
package logx

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

// LevelFromFlags returns the level selected by the verbosity flags:
//   - vv: [slog.LevelDebug]
//   - v: [slog.LevelInfo]
//   - q: [slog.LevelError]
//   - (default: [slog.LevelWarn])
//
// The flags are evaluated in that order.
func LevelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// SetDefault makes a Handler writing to w the default slog handler.
func SetDefault(level slog.Leveler, w io.Writer) {
	slog.SetDefault(slog.New(NewHandler(termenv.NewOutput(w), level)))
}

// Handler is a slog.Handler for command-line output.
type Handler struct {
	out    *termenv.Output
	level  slog.Leveler
	prefix string // preformatted attributes from WithAttrs
	group  string
	mu     *sync.Mutex
}

// NewHandler returns a handler writing records at or above level to out.
func NewHandler(out *termenv.Output, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{out: out, level: level, mu: &sync.Mutex{}}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(h.levelString(r.Level))
	sb.WriteByte(' ')
	sb.WriteString(r.Message)
	sb.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	for _, a := range attrs {
		writeAttr(&sb, h.group, a)
	}
	c := *h
	c.prefix += sb.String()
	return &c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group = qualify(h.group, name)
	return &c
}

func (h *Handler) levelString(level slog.Level) string {
	s := h.out.String(level.String())
	switch {
	case level >= slog.LevelError:
		s = s.Foreground(h.out.Color("1")).Bold()
	case level >= slog.LevelWarn:
		s = s.Foreground(h.out.Color("3"))
	case level >= slog.LevelInfo:
		s = s.Foreground(h.out.Color("4"))
	default:
		s = s.Faint()
	}
	return s.String()
}

func qualify(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

func writeAttr(sb *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		g := group
		if a.Key != "" {
			g = qualify(group, a.Key)
		}
		for _, ga := range a.Value.Group() {
			writeAttr(sb, g, ga)
		}
		return
	}

	sb.WriteByte(' ')
	sb.WriteString(qualify(group, a.Key))
	sb.WriteByte('=')
	sb.WriteString(formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	if v.Kind() == slog.KindTime {
		return v.Time().Format(time.RFC3339)
	}
	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
