// Package log provides structured logging for vimg.
// Entries carry a level, a category and key=value fields. They are written to
// an optional file (--debug / --log-file) and always published on a broker so
// the status bar can show warnings and errors to the user.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/vimg/internal/pubsub"
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

// ParseLevel maps a level name (case-insensitive) to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelDebug, fmt.Errorf("unknown log level %q", name)
}

// Category groups related log messages.
type Category string

const (
	CatMode       Category = "mode"       // Mode transitions
	CatCommand    Category = "command"    // Command parsing and dispatch
	CatStatus     Category = "status"     // Status module evaluation
	CatExternal   Category = "external"   // Shell commands run with !
	CatManipulate Category = "manipulate" // Brightness/contrast pipeline
	CatFiles      Category = "files"      // File list, marks, working directory
	CatThumbnail  Category = "thumbnail"  // Thumbnail generation
	CatWatcher    Category = "watcher"    // File watcher events
	CatCache      Category = "cache"      // In-memory cache operations
	CatHistory    Category = "history"    // Command line history store
	CatKeys       Category = "keys"       // Key binding resolution
	CatConfig     Category = "config"     // Configuration loading/saving
	CatUI         Category = "ui"         // UI component updates
	CatWorker     Category = "worker"     // Worker pools
)

// Entry is a single published log record.
type Entry struct {
	Time     time.Time
	Level    Level
	Category Category
	Message  string
	Line     string // formatted line including fields
}

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[Entry]
}

var (
	defaultLogger = &Logger{
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[Entry](),
	}
	once sync.Once
)

// Init opens path for appending and directs log output to it.
// Returns a cleanup function to close the log file.
func Init(path string) (func(), error) {
	var initErr error
	once.Do(func() {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: user supplied log path
		if err != nil {
			initErr = err
			return
		}
		defaultLogger.mu.Lock()
		defaultLogger.file = f
		defaultLogger.writer = f
		defaultLogger.mu.Unlock()
	})
	if initErr != nil {
		return nil, initErr
	}
	return func() {
		defaultLogger.mu.Lock()
		defer defaultLogger.mu.Unlock()
		if defaultLogger.file != nil {
			_ = defaultLogger.file.Close()
			defaultLogger.file = nil
			defaultLogger.writer = nil
		}
	}, nil
}

// InitWithTeaLog uses tea.LogToFile for initialization.
func InitWithTeaLog(path string, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}
	restore := SetOutput(f)
	return func() {
		restore()
		_ = f.Close()
	}, nil
}

// SetOutput directs formatted lines to w and returns a function restoring the
// previous writer. A nil writer disables file output; publishing continues.
func SetOutput(w io.Writer) func() {
	defaultLogger.mu.Lock()
	prev := defaultLogger.writer
	defaultLogger.writer = w
	defaultLogger.mu.Unlock()
	return func() {
		defaultLogger.mu.Lock()
		defaultLogger.writer = prev
		defaultLogger.mu.Unlock()
	}
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	defaultLogger.mu.Lock()
	defaultLogger.enabled = enabled
	defaultLogger.mu.Unlock()
}

// SetMinLevel sets the minimum level written to the output.
func SetMinLevel(level Level) {
	defaultLogger.mu.Lock()
	defaultLogger.minLevel = level
	defaultLogger.mu.Unlock()
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

func format(now time.Time, level Level, cat Category, msg string, fields []any) string {
	// Format: 2025-12-06T10:45:00 [ERROR] [command] message key=value key2=value2
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", now.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	return b.String()
}

func log(level Level, cat Category, msg string, fields ...any) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()

	if !defaultLogger.enabled {
		return
	}

	now := time.Now()
	line := format(now, level, cat, msg, fields)

	if defaultLogger.writer != nil && level >= defaultLogger.minLevel {
		_, _ = io.WriteString(defaultLogger.writer, line+"\n")
	}

	defaultLogger.broker.Publish(pubsub.LoggedEvent, Entry{
		Time:     now,
		Level:    level,
		Category: cat,
		Message:  msg,
		Line:     line,
	})
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[Entry]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[Entry]

// Subscribe returns a channel of log entries published after the call.
func Subscribe(ctx context.Context) <-chan LogEvent {
	return defaultLogger.broker.Subscribe(ctx)
}

// NewListener creates a listener for entries at info level and above.
// Debug entries never reach its buffer, so bursts of them cannot crowd out
// warnings. The listener is cleaned up when the context is cancelled.
func NewListener(ctx context.Context) *LogListener {
	return pubsub.NewFilteredListener(ctx, defaultLogger.broker, func(e LogEvent) bool {
		return e.Payload.Level >= LevelInfo
	})
}
