// Package debug provides opt-in trace logging for the cleaning
// pipeline. Tracing is off unless Enable is called, so trace calls on
// the hot path cost a single atomic load.
package debug

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

// Enable turns trace output on for the rest of the process.
func Enable() {
	enabled.Store(true)
}

// Enabled reports whether tracing is on.
func Enabled() bool {
	return enabled.Load()
}

// Tracef prints one timestamped trace line.
func Tracef(format string, args ...interface{}) {
	if !enabled.Load() {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	log.Printf("[%s] %s", timestamp, fmt.Sprintf(format, args...))
}

// Timing logs the duration of an operation. Call the returned function
// when the operation completes.
func Timing(operation string) func() {
	if !enabled.Load() {
		return func() {}
	}

	start := time.Now()
	Tracef("Starting: %s", operation)

	return func() {
		Tracef("Completed: %s (took %v)", operation, time.Since(start))
	}
}
