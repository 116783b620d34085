// Package log provides structured logging for backoffice.
// It writes leveled, categorized lines to a file and is only active when
// enabled via --debug or BACKOFFICE_DEBUG. Every line is also published on a
// broker so the debug overlay can show it live.
package log

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/backoffice/internal/pubsub"
)

// Level represents log severity.
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

// ParseLevel maps "debug", "info", "warn" or "error" (any case) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelDebug, fmt.Errorf("unknown log level %q", s)
}

// Category groups related log messages.
type Category string

const (
	CatForm      Category = "form"      // Form controller transitions
	CatAPI       Category = "api"       // HTTP requests to the back office API
	CatOptions   Category = "options"   // Option set loading
	CatUI        Category = "ui"        // UI component updates
	CatConfig    Category = "config"    // Configuration loading/saving
	CatCache     Category = "cache"     // cache operations
	CatDevServer Category = "devserver" // Local REST backend
	CatWatcher   Category = "watcher"   // Config file watcher events
)

// Logger writes entries to a writer and republishes them on a broker.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	closer   io.Closer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
	now      func() time.Time
}

var defaultLogger *Logger

// install replaces the global logger and returns its cleanup.
func install(w io.Writer, c io.Closer, minLevel Level) func() {
	l := &Logger{
		writer:   w,
		closer:   c,
		enabled:  true,
		minLevel: minLevel,
		broker:   pubsub.NewBroker[string](),
		now:      time.Now,
	}
	defaultLogger = l
	return func() {
		l.broker.Close()
		if l.closer != nil {
			_ = l.closer.Close()
		}
	}
}

// InitWithTeaLog opens path through tea.LogToFile and logs everything from
// minLevel up to it. The returned cleanup closes the file.
func InitWithTeaLog(path string, prefix string, minLevel Level) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}
	return install(f, f, minLevel), nil
}

// InitWriter points the global logger at w. Used by tests.
func InitWriter(w io.Writer, minLevel Level) func() {
	return install(w, nil, minLevel)
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := defaultLogger; l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
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

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := defaultLogger
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	entry := formatEntry(l.now(), level, cat, msg, fields)
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	l.broker.Publish(pubsub.CreatedEvent, entry)
}

// formatEntry renders one line:
//
//	2026-10-18T10:45:00 [ERROR] [form] submission failed form=contact error="stale version"
func formatEntry(ts time.Time, level Level, cat Category, msg string, fields []any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", ts.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		b.WriteByte(' ')
		fmt.Fprint(&b, fields[i])
		b.WriteByte('=')
		if i+1 == len(fields) {
			b.WriteString("<missing>")
			break
		}
		b.WriteString(fieldValue(fields[i+1]))
	}
	b.WriteByte('\n')
	return b.String()
}

// fieldValue quotes values that would otherwise break key=value parsing.
func fieldValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " =\"\n\t") {
		return strconv.Quote(s)
	}
	return s
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[string]

// NewListener subscribes to log entries until ctx is cancelled. It returns
// nil when logging was never initialized.
func NewListener(ctx context.Context) *LogListener {
	if defaultLogger == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, defaultLogger.broker)
}
