package stretcher

import (
	"errors"
	"fmt"
	"log/slog"
)

// Engine is the time/pitch stretching engine behind a Stretcher.
// The engine consumes planar float blocks, buffers a ratio-dependent number
// of output samples internally, and hands them out through Retrieve.
//
// The default implementation is the phase vocoder in internal/engine; tests
// and advanced callers may supply their own through Config.Engine.
type Engine interface {
	// Process feeds sampleCount samples per channel to the engine.
	// final marks the last block of the stream.
	Process(channels [][]float32, sampleCount int, final bool)

	// Retrieve copies up to want buffered output samples per channel into
	// channels and returns the count actually copied, which is identical
	// for every channel.
	Retrieve(channels [][]float32, want int) int

	// Available returns the number of retrievable output samples per channel.
	Available() int

	// Reset discards all buffered audio and analysis state. Ratios survive
	// a reset; the max process size hint does not.
	Reset()

	// PreferredStartPad returns the lead-in the engine would like before
	// real input, in input samples. Advisory only.
	PreferredStartPad() int

	// StartDelay returns the number of leading output samples that are
	// pipeline latency rather than usable audio.
	StartDelay() int

	// SetTimeRatio sets the duration multiplier for subsequent output.
	SetTimeRatio(ratio float64)

	// TimeRatio returns the current duration multiplier.
	TimeRatio() float64

	// SetPitchScale sets the frequency multiplier for subsequent output.
	SetPitchScale(scale float64)

	// PitchScale returns the current frequency multiplier.
	PitchScale() float64

	// SetFormantScale sets the spectral envelope shift for subsequent output.
	SetFormantScale(scale float64)

	// FormantScale returns the current spectral envelope shift.
	FormantScale() float64

	// SetMaxProcessSize fixes the block size every subsequent Process call
	// will use. Must be reapplied after Reset.
	SetMaxProcessSize(size int)

	// EngineVersion identifies the analysis engine in use.
	EngineVersion() int
}

// QualityPreset selects the engine analysis preset.
type QualityPreset int

const (
	// QualityFaster is the low-latency, low-CPU preset. Suitable for
	// realtime playback on constrained hardware.
	QualityFaster QualityPreset = iota

	// QualityFiner trades CPU and latency for analysis precision.
	// Recommended for music when the host can afford it.
	QualityFiner
)

// Common errors returned by the stretcher.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid stretcher configuration")

	// ErrInvalidRatio indicates a non-positive tempo, pitch or formant ratio.
	ErrInvalidRatio = errors.New("invalid stretch ratio")
)

// Config holds stretcher configuration.
type Config struct {
	// SampleRate is the sample rate of the audio stream in Hz.
	SampleRate int

	// Channels is the number of audio channels to process.
	Channels int

	// Quality determines the engine analysis preset.
	Quality QualityPreset

	// Headroom is extra per-channel ring buffer capacity in samples, on top
	// of the fixed block size and reserve. It bounds the largest burst a
	// single drain can produce after a parameter change. Set to 0 to use
	// the default.
	Headroom int

	// Engine optionally supplies a custom stretch engine. When nil, a
	// phase vocoder matching Quality is created.
	Engine Engine

	// OnDiagnostic, when set, receives buffer underrun and overrun events
	// synchronously on the calling goroutine. When nil, events are logged
	// through Logger instead.
	OnDiagnostic func(Diagnostic)

	// Logger receives diagnostic events when OnDiagnostic is nil.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}

	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}

	if c.Headroom < 0 {
		return fmt.Errorf("%w: headroom must not be negative", ErrInvalidConfig)
	}

	return nil
}
