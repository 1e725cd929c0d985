package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger defines the logging interface
type Logger interface {
	LogInfo(ctx context.Context, msg string, attrs ...any)
	LogError(ctx context.Context, msg string, err error, attrs ...any)
	LogWarning(ctx context.Context, msg string, attrs ...any)
	WithRequestID(requestID string) Logger
	WithComponent(component string) Logger
}

// StructuredLogger implements the Logger interface
type StructuredLogger struct {
	*slog.Logger
}

// NewLogger creates a new structured logger writing JSON to stderr.
// Stdout is left to command output.
func NewLogger() Logger {
	return NewLoggerTo(os.Stderr, slog.LevelInfo)
}

// NewLoggerTo creates a structured logger writing JSON to w.
func NewLoggerTo(w io.Writer, level slog.Level) Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &StructuredLogger{
		Logger: slog.New(handler),
	}
}

// NewNopLogger discards everything.
func NewNopLogger() Logger {
	return NewLoggerTo(io.Discard, slog.LevelError)
}

// WithRequestID adds a request ID to the logger context
func (l *StructuredLogger) WithRequestID(requestID string) Logger {
	return &StructuredLogger{
		Logger: l.Logger.With("request_id", requestID),
	}
}

// WithComponent scopes the logger to one part of the shell
func (l *StructuredLogger) WithComponent(component string) Logger {
	return &StructuredLogger{
		Logger: l.Logger.With("component", component),
	}
}

// LogError logs an error with context
func (l *StructuredLogger) LogError(ctx context.Context, msg string, err error, attrs ...any) {
	errText := "<nil>"
	if err != nil {
		errText = err.Error()
	}
	allAttrs := append([]any{"error", errText}, attrs...)
	l.Logger.ErrorContext(ctx, msg, allAttrs...)
}

// LogInfo logs an info message with context
func (l *StructuredLogger) LogInfo(ctx context.Context, msg string, attrs ...any) {
	l.Logger.InfoContext(ctx, msg, attrs...)
}

// LogWarning logs a warning message with context
func (l *StructuredLogger) LogWarning(ctx context.Context, msg string, attrs ...any) {
	l.Logger.WarnContext(ctx, msg, attrs...)
}

// Writer turns every line written to it into one log record. It is used
// to forward the output streams of a child process.
type Writer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	logLine func(line string)
}

// NewInfoWriter logs each line at info level under msg.
func NewInfoWriter(l Logger, msg string, attrs ...any) *Writer {
	return &Writer{logLine: func(line string) {
		l.LogInfo(context.Background(), msg, append([]any{"line", line}, attrs...)...)
	}}
}

// NewWarningWriter logs each line at warning level under msg.
func NewWarningWriter(l Logger, msg string, attrs ...any) *Writer {
	return &Writer{logLine: func(line string) {
		l.LogWarning(context.Background(), msg, append([]any{"line", line}, attrs...)...)
	}}
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		idx := bytes.IndexByte(w.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := string(w.buf.Next(idx + 1))
		w.emit(line)
	}
	return len(p), nil
}

// Flush logs whatever is left without a trailing newline.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *Writer) emit(line string) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}
	w.logLine(line)
}
