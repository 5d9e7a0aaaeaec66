// Package debug holds the process-wide switch for verbose codec logging.
package debug

import (
	"os"
	"strings"
	"sync/atomic"
)

var enabled atomic.Bool

func init() {
	// Tests and library callers never go through a config load.
	InitFromEnv()
}

// Enabled reports whether per-operation debug logging is on.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled turns per-operation debug logging on or off.
func SetEnabled(value bool) {
	enabled.Store(value)
}

// InitFromEnv enables debug logging when DEBUG=true or LOG_LEVEL=debug (the
// B64_ prefixed forms are honoured too) and disables it otherwise.
func InitFromEnv() {
	SetEnabled(envSet())
}

// InitFromLogLevel enables debug logging for the "debug" log level, unless an
// environment variable has already decided.
func InitFromLogLevel(logLevel string) {
	if envPresent() {
		return
	}
	SetEnabled(strings.EqualFold(logLevel, "debug"))
}

func envSet() bool {
	for _, name := range []string{"DEBUG", "B64_DEBUG"} {
		if strings.EqualFold(os.Getenv(name), "true") {
			return true
		}
	}
	for _, name := range []string{"LOG_LEVEL", "B64_LOG_LEVEL"} {
		if strings.EqualFold(os.Getenv(name), "debug") {
			return true
		}
	}
	return false
}

func envPresent() bool {
	for _, name := range []string{"DEBUG", "B64_DEBUG", "LOG_LEVEL", "B64_LOG_LEVEL"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
