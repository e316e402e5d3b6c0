// Package logging is a small leveled, categorised logger. Lines look like
//
//	2025-12-06T10:45:00 [WARN] [pipe] malformed message name=tabline:process_status error=...
//
// Logging is a no-op until Init (or SetOutput) is called, so the tab line
// never writes diagnostics onto the surface it renders to.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Category groups related messages.
type Category string

const (
	CatHost   Category = "host"   // host events and effects
	CatAlert  Category = "alert"  // alert tracker transitions
	CatSync   Category = "sync"   // sibling snapshot exchange
	CatPipe   Category = "pipe"   // inbound addressed messages
	CatRender Category = "render" // line composition
	CatConfig Category = "config" // configuration loading and reloads
	CatDaemon Category = "daemon" // message bus
	CatTmux   Category = "tmux"   // tmux backend
)

type logger struct {
	mu       sync.Mutex
	w        io.Writer
	closer   io.Closer
	minLevel Level
}

var std = &logger{minLevel: LevelInfo}

// Init starts logging to path through tea.LogToFile. The returned function
// closes the file.
func Init(path string, level Level) (func(), error) {
	f, err := tea.LogToFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	std.mu.Lock()
	std.w = f
	std.closer = f
	std.minLevel = level
	std.mu.Unlock()
	return func() {
		std.mu.Lock()
		defer std.mu.Unlock()
		if std.closer != nil {
			_ = std.closer.Close()
		}
		std.w, std.closer = nil, nil
	}, nil
}

// SetOutput sends log lines to w (nil disables logging).
func SetOutput(w io.Writer, level Level) {
	std.mu.Lock()
	std.w = w
	std.closer = nil
	std.minLevel = level
	std.mu.Unlock()
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs msg with err attached as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if std.w == nil || level < std.minLevel {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", time.Now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(std.w, b.String())
}

// Stderr is a convenience for CLI commands that want diagnostics on the
// terminal rather than in a file.
func Stderr(level Level) {
	SetOutput(os.Stderr, level)
}
