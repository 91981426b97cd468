// Package logger provides verbose logging for the Tutorforge CLI.
// When verbose mode is enabled via the --verbose flag, stage banners and
// diagnostics are printed to stderr so users can follow a conversion run.
// Errors are printed regardless of verbosity.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	verbose bool
	prefix  string
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetPrefix sets a tag written before every line, e.g. "[http] ".
func SetPrefix(p string) {
	mu.Lock()
	defer mu.Unlock()
	prefix = p
}

func write(always bool, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose || always {
		fmt.Fprintf(output, prefix+format, args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "[DEBUG] "+format+"\n", args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	write(false, "\n=== %s ===\n", name)
}

// Stage prints the banner of a pipeline stage for a run.
func Stage(runID, stage string, iteration int) {
	if iteration > 0 {
		write(false, "\n=== %s [%s] iteration %d ===\n", stage, runID, iteration)
		return
	}
	write(false, "\n=== %s [%s] ===\n", stage, runID)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "[INFO] "+format+"\n", args...)
}

// Warn prints a warning message if verbose mode is enabled.
// Best-effort degradations are reported here.
func Warn(format string, args ...any) {
	write(false, "[WARN] "+format+"\n", args...)
}

// Error prints an error message, even when verbose mode is disabled.
func Error(format string, args ...any) {
	write(true, "[ERROR] "+format+"\n", args...)
}
