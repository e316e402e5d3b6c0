// Package perf records how long renders and host round trips take. Set
// TABLINE_PERF=1 to append timings to perf.log in the state directory.
package perf

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/b/tabline/pkg/paths"
)

var (
	mu       sync.Mutex
	out      io.Writer
	enabled  = os.Getenv("TABLINE_PERF") == "1"
	openOnce sync.Once
)

func writer() io.Writer {
	openOnce.Do(func() {
		if !enabled || out != nil {
			return
		}
		if _, err := paths.EnsureStateDir(); err != nil {
			enabled = false
			return
		}
		f, err := os.OpenFile(paths.StatePath("perf.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			enabled = false
			return
		}
		out = f
	})
	return out
}

// SetOutput enables timing and sends it to w; nil disables it.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	openOnce.Do(func() {})
	out = w
	enabled = w != nil
}

// Timer measures one named operation.
type Timer struct {
	name  string
	start time.Time
}

// Start begins timing name.
func Start(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop logs and returns the elapsed time.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Log("%s: %v", t.name, elapsed)
	return elapsed
}

// Track times fn.
func Track(name string, fn func()) time.Duration {
	t := Start(name)
	fn()
	return t.Stop()
}

// Log writes a timestamped line to the perf log.
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "%s: %s\n", time.Now().Format("15:04:05.000"), fmt.Sprintf(format, args...))
}

// IsEnabled reports whether timings are being recorded.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}
