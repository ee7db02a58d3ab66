// Package logger holds the process-wide zerolog logger.
//
// Call Init once during startup, then Get from anywhere. Components that
// want a tagged logger use With.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu       sync.Mutex
	instance zerolog.Logger
	ready    bool
)

// Init builds the global logger. level is one of trace, debug, info, warn,
// error (anything else means info). When pretty is true output goes through
// a console writer instead of raw JSON. A second call replaces the logger,
// which keeps tests simple.
func Init(level string, pretty bool, out io.Writer) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	zerolog.TimeFieldFormat = time.RFC3339Nano
	if out == nil {
		out = os.Stdout
	}
	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl := parseLevel(level)
	zerolog.SetGlobalLevel(lvl)

	instance = zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	ready = true
	return instance
}

// Get returns the global logger. Before Init it returns a logger writing to
// stderr so early failures are still visible.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !ready {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return instance
}

// With returns the global logger tagged with a component name.
func With(component string) zerolog.Logger {
	return Get().With().Str("component", component).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
