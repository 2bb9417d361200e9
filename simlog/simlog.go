// Package simlog is the engine's logging sink: a package-level io.Writer
// destination plus a rate-limited warning path for NumericalWarning-class
// messages, which §7 of the specification requires to never abort a run but
// must not flood the log either.
package simlog

import (
	"fmt"
	"io"
	"sync"
)

var (
	mu     sync.Mutex
	writer io.Writer
)

// SetOutput sets the log output destination. A nil writer falls back to
// stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	writer = w
}

// Logf writes a formatted log line unconditionally.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	mu.Lock()
	w := writer
	mu.Unlock()
	if w != nil {
		fmt.Fprintln(w, msg)
	} else {
		fmt.Println(msg)
	}
}

// limiter rate-limits warnings by key: the first occurrence and then every
// 100th are logged, the rest are counted silently.
type limiter struct {
	mu     sync.Mutex
	counts map[string]int
}

var warnLimiter = &limiter{counts: make(map[string]int)}

const warnLogEvery = 100

// Warnf logs a rate-limited warning under the given key. Call sites pass a
// stable key per warning class (e.g. "smoothing.nonconvergence",
// "preinteraction.neighbor_overflow") so that unrelated warnings don't share
// a budget.
func Warnf(key, format string, args ...interface{}) {
	warnLimiter.mu.Lock()
	warnLimiter.counts[key]++
	n := warnLimiter.counts[key]
	warnLimiter.mu.Unlock()

	if n == 1 || n%warnLogEvery == 0 {
		Logf("[warn:%s x%d] %s", key, n, fmt.Sprintf(format, args...))
	}
}

// WarnCount returns the number of times Warnf has been called for key,
// used by tests that assert on non-convergence counts (§8).
func WarnCount(key string) int {
	warnLimiter.mu.Lock()
	defer warnLimiter.mu.Unlock()
	return warnLimiter.counts[key]
}

// ResetCounts clears all rate-limiter state. Intended for test isolation.
func ResetCounts() {
	warnLimiter.mu.Lock()
	defer warnLimiter.mu.Unlock()
	warnLimiter.counts = make(map[string]int)
}
