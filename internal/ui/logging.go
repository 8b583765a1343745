package ui

import (
	"fmt"
	"io"
	"os"
)

type Logger struct {
	Debug bool
	Out   io.Writer
}

func NewLogger(debug bool) *Logger {
	return &Logger{Debug: debug, Out: os.Stdout}
}

// Discard returns a logger that prints nothing.
func Discard() *Logger {
	return &Logger{Out: io.Discard}
}

func (l *Logger) out() io.Writer {
	if l.Out == nil {
		return os.Stdout
	}
	return l.Out
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.Debug {
		_, _ = fmt.Fprintf(l.out(), "[DEBUG] "+format, args...)
	}
}

func (l *Logger) Infof(format string, args ...any) {
	_, _ = fmt.Fprintf(l.out(), "[INFO] "+format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(l.out(), "[ERROR] "+format, args...)
}
