// Package debug provides conditional debug logging for lazyfilter.
//
// Debug logging is enabled by setting the LAZYFILTER_DEBUG environment
// variable. The TUI owns the terminal, so the entry point redirects the
// output to a file with SetOutput:
//
//	LAZYFILTER_DEBUG=1 lazyfilter --demo
//
// When disabled (default), all functions are no-ops.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

// EnvVar enables debug logging when set
const EnvVar = "LAZYFILTER_DEBUG"

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv(EnvVar) != "" {
		enabled = true
		logger = log.New(os.Stderr, "[LAZYFILTER_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	return enabled
}

// SetEnabled turns debug logging on or off
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[LAZYFILTER_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output, typically to the tea.LogToFile handle
func SetOutput(w io.Writer) {
	if logger == nil {
		logger = log.New(w, "[LAZYFILTER_DEBUG] ", log.Ltime|log.Lmicroseconds)
		return
	}
	logger.SetOutput(w)
}

// Log writes a printf-style debug message
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogIf writes a debug message only if cond is true
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes how long name took
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogEnterExit logs entry now and exit with timing when the returned
// function runs:
//
//	defer debug.LogEnterExit("loadCatalog")()
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}
