package ui

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type Logger struct {
	Debug bool
	l     *log.Logger
}

func NewLogger(debug bool) *Logger {
	return NewLoggerTo(os.Stderr, debug)
}

func NewLoggerTo(w io.Writer, debug bool) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           log.InfoLevel,
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	}

	return &Logger{Debug: debug, l: l}
}

// Format strings may carry a trailing newline; the handler adds its own.
func (l *Logger) Debugf(format string, args ...any) {
	l.l.Debugf(strings.TrimRight(format, "\n"), args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.l.Infof(strings.TrimRight(format, "\n"), args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.l.Warnf(strings.TrimRight(format, "\n"), args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.l.Errorf(strings.TrimRight(format, "\n"), args...)
}
