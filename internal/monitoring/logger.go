// Package monitoring carries the process-wide diagnostic logger. The
// converter writes its data to stdout, so diagnostics stay quiet unless a
// caller turns them on.
package monitoring

import (
	"log"
	"os"
)

// Logf is the package-level diagnostic logger. It defaults to a no-op so
// library output stays clean; enable it with Verbose or swap it with
// SetLogger.
var Logf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// Verbose routes diagnostics to stderr.
func Verbose() {
	Logf = log.New(os.Stderr, "cjseq: ", 0).Printf
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
