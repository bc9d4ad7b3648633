// Package logging provides the leveled logger used across the builder.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	// LevelError only logs errors
	LevelError LogLevel = iota
	// LevelWarn logs warnings and errors
	LevelWarn
	// LevelInfo logs general information, warnings and errors
	LevelInfo
	// LevelDebug logs detailed debug information and all above
	LevelDebug
)

var levelNames = map[LogLevel]string{
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
}

// ParseLevel maps a level name to a LogLevel.
func ParseLevel(name string) (LogLevel, bool) {
	for level, n := range levelNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return level, true
		}
	}
	return LevelInfo, false
}

// Logger writes prefixed, leveled messages. Loggers derived with WithPrefix
// share the level of their parent.
type Logger struct {
	state  *levelState
	prefix string
	logger *log.Logger
}

type levelState struct {
	mu    sync.RWMutex
	level LogLevel
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the process logger. EEVB_LOG_LEVEL sets its initial level.
func GetLogger() *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stdout, "eevb")
		if level, ok := ParseLevel(os.Getenv("EEVB_LOG_LEVEL")); ok {
			defaultLogger.SetLevel(level)
		}
	})
	return defaultLogger
}

// New creates a logger writing to w at INFO level.
func New(w io.Writer, prefix string) *Logger {
	return &Logger{
		state:  &levelState{level: LevelInfo},
		prefix: prefix,
		logger: log.New(w, "", 0),
	}
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	l := New(io.Discard, "")
	l.SetLevel(LevelError - 1)
	return l
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.level = level
}

// Level returns the current logging level.
func (l *Logger) Level() LogLevel {
	l.state.mu.RLock()
	defer l.state.mu.RUnlock()
	return l.state.level
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level > l.Level() {
		return
	}

	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] %s", levelNames[level], msg)
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s: %s", levelNames[level], l.prefix, msg)
	}
	if err := l.logger.Output(3, line); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write log message: %v\n", err)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// WithPrefix creates a logger sharing this logger's output and level.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{
		state:  l.state,
		prefix: prefix,
		logger: l.logger,
	}
}
