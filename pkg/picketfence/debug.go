package picketfence

import (
	"io"
	"log"
	"sync/atomic"
)

// LogWriters holds the destination of each logging stream. A nil writer
// disables its stream.
type LogWriters struct {
	// Ops receives actionable warnings, e.g. skipped overlay lines
	Ops io.Writer

	// Diag receives per-image diagnostics such as the estimated axes
	Diag io.Writer

	// Trace receives per-stage telemetry
	Trace io.Writer
}

type streams struct {
	ops   *log.Logger
	diag  *log.Logger
	trace *log.Logger
}

var logs atomic.Pointer[streams]

// SetLogWriters configures all three logging streams at once.
func SetLogWriters(w LogWriters) {
	logs.Store(&streams{
		ops:   newLogger(w.Ops),
		diag:  newLogger(w.Diag),
		trace: newLogger(w.Trace),
	})
}

func newLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, "[picketfence] ", log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs to the ops stream.
func Opsf(format string, args ...interface{}) {
	if s := logs.Load(); s != nil && s.ops != nil {
		s.ops.Printf(format, args...)
	}
}

// Diagf logs to the diag stream.
func Diagf(format string, args ...interface{}) {
	if s := logs.Load(); s != nil && s.diag != nil {
		s.diag.Printf(format, args...)
	}
}

// Tracef logs to the trace stream.
func Tracef(format string, args ...interface{}) {
	if s := logs.Load(); s != nil && s.trace != nil {
		s.trace.Printf(format, args...)
	}
}
