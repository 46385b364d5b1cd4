package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultLogFile is used when a log file is required but none was configured.
const DefaultLogFile = "hn-over-ssh.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	out          io.Writer = os.Stderr
	file         *os.File
	logger       = newLogger(os.Stderr)
	tracer       = newTracer(os.Stderr)
)

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           log.InfoLevel,
	})
}

func newTracer(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           log.DebugLevel,
		Formatter:       log.JSONFormatter,
	})
}

// Configure sets the log destination. An empty path logs to stderr.
// Directories are created automatically when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	closeFileLocked()
	out = os.Stderr
	if strings.TrimSpace(path) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		} else if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "unable to open log file: %v\n", err)
		} else {
			file = f
			out = f
		}
	}
	logger = newLogger(out)
	tracer = newTracer(out)
}

// SetOutput redirects all logging to w. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	closeFileLocked()
	out = w
	logger = newLogger(w)
	tracer = newTracer(w)
}

// Close releases the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeFileLocked()
	out = os.Stderr
	logger = newLogger(os.Stderr)
	tracer = newTracer(os.Stderr)
}

func closeFileLocked() {
	if file != nil {
		file.Close()
		file = nil
	}
}

func current() (*log.Logger, *log.Logger, bool) {
	mu.Lock()
	defer mu.Unlock()
	return logger, tracer, traceEnabled
}

// Error logs err. Nil errors are ignored.
func Error(err error, keyvals ...interface{}) {
	if err == nil {
		return
	}
	l, _, _ := current()
	l.Error(err.Error(), keyvals...)
}

// Info logs an informational message.
func Info(msg string, keyvals ...interface{}) {
	l, _, _ := current()
	l.Info(msg, keyvals...)
}

// Warn logs a warning.
func Warn(msg string, keyvals ...interface{}) {
	l, _, _ := current()
	l.Warn(msg, keyvals...)
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether trace entries are being written.
func TraceEnabled() bool {
	_, _, enabled := current()
	return enabled
}

// Trace writes a JSON entry for event when tracing is enabled.
func Trace(event string, payload interface{}) {
	_, t, enabled := current()
	if !enabled {
		return
	}
	if payload == nil {
		t.Debug(event)
		return
	}
	t.Debug(event, "payload", payload)
}
