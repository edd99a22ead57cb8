package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Logger is the levelled logger shared by the engine, storage and handlers.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SimpleLogger writes key=value lines through the standard log package.
type SimpleLogger struct {
	level       Level
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	warnLogger  *log.Logger
}

// New builds a logger writing to out (stdout when nil).
func New(out io.Writer, level Level) *SimpleLogger {
	if out == nil {
		out = os.Stdout
	}
	flags := log.Ldate | log.Ltime
	return &SimpleLogger{
		level:       level,
		infoLogger:  log.New(out, "INFO: ", flags),
		errorLogger: log.New(out, "ERROR: ", flags),
		debugLogger: log.New(out, "DEBUG: ", flags),
		warnLogger:  log.New(out, "WARN: ", flags),
	}
}

// NewFile logs to both stdout and the given file. The returned closer
// releases the file.
func NewFile(path string, level Level) (*SimpleLogger, io.Closer, error) {
	if path == "" {
		return New(os.Stdout, level), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(io.MultiWriter(os.Stdout, f), level), f, nil
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *SimpleLogger {
	return New(io.Discard, LevelError+1)
}

func (l *SimpleLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.level <= LevelInfo {
		l.infoLogger.Print(format(msg, keysAndValues))
	}
}

func (l *SimpleLogger) Error(msg string, keysAndValues ...interface{}) {
	if l.level <= LevelError {
		l.errorLogger.Print(format(msg, keysAndValues))
	}
}

func (l *SimpleLogger) Debug(msg string, keysAndValues ...interface{}) {
	if l.level <= LevelDebug {
		l.debugLogger.Print(format(msg, keysAndValues))
	}
}

func (l *SimpleLogger) Warn(msg string, keysAndValues ...interface{}) {
	if l.level <= LevelWarn {
		l.warnLogger.Print(format(msg, keysAndValues))
	}
}

func format(msg string, kv []interface{}) string {
	if len(kv) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, "%v", kv[i])
		}
	}
	return b.String()
}
