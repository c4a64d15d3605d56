package mesh

import (
	"io"
	"log"
	"sync"
)

// LogWriters holds the io.Writers for each logging stream.
type LogWriters struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

var (
	mu          sync.RWMutex
	opsLogger   *log.Logger
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters configures all three logging streams at once.
// Pass nil for any writer to disable that stream. All streams start disabled.
func SetLogWriters(w LogWriters) {
	mu.Lock()
	defer mu.Unlock()
	opsLogger = newLogger("[mesh] ", w.Ops)
	diagLogger = newLogger("[mesh] ", w.Diag)
	traceLogger = newLogger("[mesh] ", w.Trace)
}

// newLogger creates a *log.Logger for a given writer, or returns nil if w is nil.
func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs to the ops stream (contract violations, batch lifecycle).
func Opsf(format string, args ...interface{}) {
	mu.RLock()
	l := opsLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// Diagf logs to the diag stream (stage timings, mask sizes, fallbacks taken).
func Diagf(format string, args ...interface{}) {
	mu.RLock()
	l := diagLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// Tracef logs to the trace stream (per-vertex numerics, eigen fallbacks).
func Tracef(format string, args ...interface{}) {
	mu.RLock()
	l := traceLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// Stage tags every line it logs with the pipeline stage that emitted it,
// e.g. "[mesh] voxel: 12 of 40 cells guessed". A batch stage usually carries
// its run ID as well.
type Stage string

// Opsf logs to the ops stream under s.
func (s Stage) Opsf(format string, args ...interface{}) {
	Opsf(string(s)+": "+format, args...)
}

// Diagf logs to the diag stream under s.
func (s Stage) Diagf(format string, args ...interface{}) {
	Diagf(string(s)+": "+format, args...)
}

// Tracef logs to the trace stream under s.
func (s Stage) Tracef(format string, args ...interface{}) {
	Tracef(string(s)+": "+format, args...)
}
