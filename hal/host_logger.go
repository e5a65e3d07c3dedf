//go:build !tinygo

package hal

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// hostLogger turns firmware log lines into slog records. A leading "component: "
// prefix becomes an attribute.
type hostLogger struct {
	log *slog.Logger
}

func newHostLogger(w io.Writer, level slog.Level) *hostLogger {
	var h slog.Handler
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		h = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return &hostLogger{log: slog.New(h)}
}

func (l *hostLogger) WriteLineString(s string) {
	if comp, msg, ok := strings.Cut(s, ": "); ok && comp != "" && !strings.ContainsAny(comp, " \t") {
		l.log.Info(msg, "component", comp)
		return
	}
	l.log.Info(s)
}

func (l *hostLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }
