// Package eventlog records drowsiness events: a plain append-only text
// log for quick inspection, and a sqlite store for the dashboard and
// later analysis. Sinks never fail the detection loop; write errors are
// logged and dropped.
package eventlog

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sleepdriver/go-sleepdriver/internal/log"
)

// timestampLayout matches the historical log format so existing parsing
// scripts keep working.
const timestampLayout = "2006-01-02 15:04:05"

// Writer appends one line per drowsiness event to a text file.
type Writer struct {
	path string
	mu   sync.Mutex
}

// NewWriter creates a text event log at path. The file is created on
// the first event, not here, so a session with no incidents leaves no
// file behind.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Record appends a drowsiness event line with the given timestamp.
func (w *Writer) Record(at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Error("event log open failed", "path", w.path, "error", err)
		return
	}
	defer f.Close()

	line := fmt.Sprintf("%s - Drowsiness detected\n", at.Format(timestampLayout))
	if _, err := f.WriteString(line); err != nil {
		log.Error("event log write failed", "path", w.path, "error", err)
	}
}
