package stretcher

import "log/slog"

// DiagnosticKind identifies a buffer flow-control condition.
type DiagnosticKind int

const (
	// DiagnosticUnderrun reports a Pull that found a channel's ring buffer
	// empty. The call is truncated, never retried.
	DiagnosticUnderrun DiagnosticKind = iota

	// DiagnosticOverrun reports a drain whose engine output did not fit in
	// the ring buffers. Excess samples are dropped, never grown into.
	DiagnosticOverrun
)

// String returns the diagnostic kind name.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagnosticUnderrun:
		return "underrun"
	case DiagnosticOverrun:
		return "overrun"
	default:
		return "unknown"
	}
}

// Diagnostic describes a single underrun or overrun event. Diagnostics are
// advisory: the stretcher keeps running and the affected call completes with
// truncated data.
type Diagnostic struct {
	// Kind is the condition that occurred.
	Kind DiagnosticKind

	// Channel is the channel that triggered an underrun, or -1 for an
	// overrun, which affects all channels in lockstep.
	Channel int

	// Requested is the sample count the operation wanted to move.
	Requested int

	// Available is the read space (underrun) or write space (overrun) at
	// the time of the event.
	Available int
}

// emitDiagnostic counts the event and hands it to the configured observer,
// falling back to structured logging.
func (s *Stretcher) emitDiagnostic(d Diagnostic) {
	switch d.Kind {
	case DiagnosticUnderrun:
		s.underruns++
	case DiagnosticOverrun:
		s.overruns++
	}

	if s.onDiagnostic != nil {
		s.onDiagnostic(d)
		return
	}

	s.logger.Warn("buffer "+d.Kind.String(),
		slog.Int("channel", d.Channel),
		slog.Int("requested", d.Requested),
		slog.Int("available", d.Available),
	)
}

// Underruns returns the number of underrun events since construction.
func (s *Stretcher) Underruns() uint64 {
	return s.underruns
}

// Overruns returns the number of overrun events since construction.
func (s *Stretcher) Overruns() uint64 {
	return s.overruns
}
