// pkg/logging/logging.go - console logging for the winadmin tools.
//
// The console Logger prints timestamped, coloured lines the way an operator
// reads them in a console window. When a Session is attached every line is
// also recorded as a structured event in the session's log directory.

package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	// Define log levels.
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a configuration string onto a LogLevel. Unknown values yield LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
)

// Logger writes console messages and mirrors them into an optional Session.
type Logger struct {
	mu       sync.RWMutex
	out      *log.Logger
	errOut   *log.Logger
	logLevel LogLevel
	colors   bool
	session  *Session
	now      func() time.Time
}

// New creates a new Logger writing to stdout, with errors on stderr.
// verbose raises the level to LevelDebug.
func New(verbose bool) *Logger {
	colors := term.IsTerminal(int(os.Stdout.Fd()))
	if colors {
		colors = enableColors()
	}

	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	return &Logger{
		out:      log.New(os.Stdout, "", 0),
		errOut:   log.New(os.Stderr, "", 0),
		logLevel: level,
		colors:   colors,
		now:      time.Now,
	}
}

// SetOutput sends every message, errors included, to w and disables colours.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.SetOutput(w)
	l.errOut.SetOutput(w)
	l.colors = false
}

// SetLevel changes the most verbose level that is printed.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logLevel = level
}

// Level returns the current level.
func (l *Logger) Level() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logLevel
}

// AttachSession records all subsequent messages in s as well.
func (l *Logger) AttachSession(s *Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session = s
}

func (l *Logger) emit(level LogLevel, color, format string, v ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	msg := fmt.Sprintf(format, v...)
	if l.session != nil {
		// The session keeps everything, regardless of the console level.
		_ = l.session.Log(level, msg, nil)
	}
	if level > l.logLevel {
		return
	}

	dst := l.out
	if level == LevelError {
		dst = l.errOut
	}
	ts := l.now().Format("2006-01-02 15:04:05")
	if l.colors && color != "" {
		dst.Printf("%s[%s] %s%s", color, ts, msg, colorReset)
		return
	}
	dst.Printf("[%s] %s", ts, msg)
}

// Printf prints a regular message.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.emit(LevelInfo, "", format, v...)
}

// Info prints an informational message.
func (l *Logger) Info(format string, v ...interface{}) {
	l.Printf(format, v...)
}

// Success prints a success message in green.
func (l *Logger) Success(format string, v ...interface{}) {
	l.emit(LevelInfo, colorGreen, format, v...)
}

// Error prints an error message in red.
func (l *Logger) Error(format string, v ...interface{}) {
	l.emit(LevelError, colorRed, format, v...)
}

// Warning prints a warning message in yellow.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.emit(LevelWarn, colorYellow, format, v...)
}

// Debug prints a debug message in blue.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.emit(LevelDebug, colorBlue, format, v...)
}
