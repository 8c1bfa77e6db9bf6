// Package stretcher provides realtime audio time and pitch stretching in pure Go.
//
// The package centers on [Stretcher], a realtime-safe adapter that feeds
// fixed-size planar float blocks into a stretch engine and exposes a
// continuous stream of stretched output. The adapter owns one fixed-capacity
// ring buffer per channel, compensates the engine's start delay, and detects
// buffer underruns and overruns without ever blocking or allocating on the
// audio path.
//
// # Features
//
//   - Phase-vocoder time stretching with independent pitch and formant scaling
//   - Faster and finer analysis presets trading CPU for precision
//   - Fixed-block push/pull flow control suitable for audio render callbacks
//   - Structured, caller-observable underrun/overrun diagnostics
//   - Pure Go implementation with no CGO dependencies
//
// # Quick Start
//
//	s, err := stretcher.NewStereo(stretcher.RateCD, stretcher.QualityFaster)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.SetTempo(1.5); err != nil {
//	    log.Fatal(err)
//	}
//	s.SetMaxProcessSize(blockSize)
//
//	for block := range input {
//	    s.Push(block, blockSize)        // planar: left then right
//	    for s.SamplesAvailable() >= blockSize {
//	        s.Pull(out, blockSize)
//	        play(out)
//	    }
//	}
//
// # Block Layout
//
// Push and Pull use planar buffers: a buffer carrying n samples for c
// channels is laid out as c consecutive segments of n samples, channel 0
// first. The caller owns these buffers; the stretcher never retains or frees
// them.
//
// # Realtime Model
//
// Every operation runs to completion on the caller's goroutine with no
// locks, no blocking and no background work. A single [Stretcher] must not
// be shared between goroutines; an audio render callback is expected to
// serialize all calls.
//
// # Parameter Changes
//
// [Stretcher.SetTempo], [Stretcher.SetPitch] and [Stretcher.SetFormantScale]
// drain buffered output, reset the engine and refresh its latency figures.
// The reset discards partially processed audio, which is an accepted audible
// discontinuity; setting a parameter to its current value is a no-op.
//
// # Diagnostics
//
// Underruns (a Pull finding an empty channel) and overruns (a drain
// exceeding ring capacity) are never errors: they are counted, delivered to
// an optional [Config.OnDiagnostic] callback, and otherwise logged through
// log/slog. See [Diagnostic].
package stretcher
