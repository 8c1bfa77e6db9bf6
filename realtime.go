package stretcher

import (
	"fmt"
	"log/slog"

	"github.com/tphakala/go-audio-stretcher/internal/engine"
	"github.com/tphakala/go-audio-stretcher/internal/ringbuf"
)

// Stretcher adapts a stretch engine for realtime block processing. It owns
// one fixed-capacity ring buffer and one scratch buffer per channel and
// orchestrates pushing input to the engine, draining engine output into the
// ring buffers, and pulling continuous output for the caller.
//
// All methods must be called from a single goroutine, typically an audio
// render callback. No method blocks, locks or allocates on the push/pull
// path.
type Stretcher struct {
	eng      Engine
	channels int

	// maxProcessSize is the fixed block size once set. Engine resets clear
	// the engine-side hint, so it is reapplied after every parameter change.
	maxProcessSize int

	// startPadSamples is the engine-preferred lead-in. Advisory only; start
	// padding is not injected because fixed-size processing requires every
	// block pushed to the engine to be the same length.
	startPadSamples int

	// startDelaySamples counts the remaining pipeline-latency samples to
	// discard before real output reaches the ring buffers.
	startDelaySamples int

	rings   []*ringbuf.Ring
	scratch [][]float32

	// views are reused per-call channel slices into the caller's planar
	// buffer, rebuilt in place to avoid allocation on the realtime path.
	views [][]float32

	onDiagnostic func(Diagnostic)
	logger       *slog.Logger
	underruns    uint64
	overruns     uint64
}

// Ensure the default engine satisfies the contract.
var _ Engine = (*engine.Vocoder)(nil)

// New creates a stretcher with the specified configuration.
func New(config *Config) (*Stretcher, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	eng := config.Engine
	if eng == nil {
		eng = engine.NewVocoder(config.SampleRate, config.Channels, engineQuality(config.Quality))
	}

	headroom := config.Headroom
	if headroom == 0 {
		headroom = defaultHeadroom
	}
	bufferSize := processBlockSize + bufferReserve + headroom

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Stretcher{
		eng:          eng,
		channels:     config.Channels,
		rings:        make([]*ringbuf.Ring, config.Channels),
		scratch:      make([][]float32, config.Channels),
		views:        make([][]float32, config.Channels),
		onDiagnostic: config.OnDiagnostic,
		logger:       logger,
	}
	for c := 0; c < config.Channels; c++ {
		s.rings[c] = ringbuf.NewRing(bufferSize)
		s.scratch[c] = make([]float32, bufferSize)
	}

	s.updateRatio()
	return s, nil
}

// NewRealtime creates a stretcher with default buffering for the given
// stream parameters. highQuality selects the finer analysis preset.
func NewRealtime(sampleRate, channels int, highQuality bool) (*Stretcher, error) {
	quality := QualityFaster
	if highQuality {
		quality = QualityFiner
	}

	return New(&Config{
		SampleRate: sampleRate,
		Channels:   channels,
		Quality:    quality,
	})
}

// engineQuality maps the public preset to the engine preset.
func engineQuality(q QualityPreset) engine.Quality {
	if q == QualityFiner {
		return engine.QualityFiner
	}
	return engine.QualityFaster
}

// Version returns the engine's version identifier.
func (s *Stretcher) Version() int {
	return s.eng.EngineVersion()
}

// SetTempo sets the duration multiplier. A tempo of 2.0 doubles playback
// duration (half speed). Changing the tempo drains buffered output and
// resets the engine, which causes a short audible discontinuity.
func (s *Stretcher) SetTempo(tempo float64) error {
	if tempo <= 0 {
		return fmt.Errorf("%w: tempo %v must be greater than 0", ErrInvalidRatio, tempo)
	}

	if s.eng.TimeRatio() == tempo {
		return nil
	}

	s.applyParameterChange(func() { s.eng.SetTimeRatio(tempo) })
	return nil
}

// SetPitch sets the frequency multiplier. A pitch of 2.0 shifts up one
// octave without changing duration. Changing the pitch drains buffered
// output and resets the engine.
func (s *Stretcher) SetPitch(pitch float64) error {
	if pitch <= 0 {
		return fmt.Errorf("%w: pitch %v must be greater than 0", ErrInvalidRatio, pitch)
	}

	if s.eng.PitchScale() == pitch {
		return nil
	}

	s.applyParameterChange(func() { s.eng.SetPitchScale(pitch) })
	return nil
}

// SetFormantScale sets the spectral envelope shift, independent of pitch.
// Changing the scale drains buffered output and resets the engine.
func (s *Stretcher) SetFormantScale(scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("%w: formant scale %v must be greater than 0", ErrInvalidRatio, scale)
	}

	if s.eng.FormantScale() == scale {
		return nil
	}

	s.applyParameterChange(func() { s.eng.SetFormantScale(scale) })
	return nil
}

// applyParameterChange runs the drain-then-reset cycle around a ratio
// update. Engine resets clear the max process size hint, so it is reapplied
// before the new ratio takes effect; the new ratio changes engine latency,
// so the start pad and delay are refreshed afterwards.
func (s *Stretcher) applyParameterChange(apply func()) {
	s.fetchProcessed()
	s.eng.Reset()
	if s.maxProcessSize > 0 {
		s.eng.SetMaxProcessSize(s.maxProcessSize)
	}
	apply()
	s.updateRatio()
}

// SetMaxProcessSize fixes the block size for every subsequent Push. Once
// set, the engine requires uniform block sizes; violating this afterwards is
// undefined per the engine contract and is not validated here.
func (s *Stretcher) SetMaxProcessSize(size int) {
	s.maxProcessSize = size
	s.eng.SetMaxProcessSize(size)
}

// Push feeds one planar block to the engine and drains any output that
// became available. input is interpreted as channel-count consecutive
// segments of sampleCount samples; channel c occupies
// input[c*sampleCount:(c+1)*sampleCount]. The stretcher never retains input.
func (s *Stretcher) Push(input []float32, sampleCount int) {
	for c := 0; c < s.channels; c++ {
		s.views[c] = input[c*sampleCount : (c+1)*sampleCount]
	}

	s.eng.Process(s.views, sampleCount, false)
	s.fetchProcessed()
}

// Pull reads up to sampleCount samples per channel into output, laid out
// like Push input. When a channel's ring buffer is empty the call reports an
// underrun and returns immediately; channels already filled in this call
// keep their data. Callers that need strict channel alignment should pull no
// more than SamplesAvailable reports.
func (s *Stretcher) Pull(output []float32, sampleCount int) {
	for c := 0; c < s.channels; c++ {
		available := s.rings[c].ReadSpace()
		if available == 0 {
			s.emitDiagnostic(Diagnostic{
				Kind:      DiagnosticUnderrun,
				Channel:   c,
				Requested: sampleCount,
				Available: available,
			})
			return
		}

		n := sampleCount
		if n > available {
			n = available
		}
		s.rings[c].Read(output[c*sampleCount : c*sampleCount+n])
	}
}

// SamplesAvailable returns the read space of channel 0's ring buffer.
// Advisory: in the absence of underruns all channels hold the same count.
func (s *Stretcher) SamplesAvailable() int {
	return s.rings[0].ReadSpace()
}

// PreferredStartPad returns the engine's preferred lead-in in input samples.
// Informational; the stretcher does not inject start padding.
func (s *Stretcher) PreferredStartPad() int {
	return s.startPadSamples
}

// PendingStartDelay returns the number of latency samples still to be
// discarded before real output reaches the ring buffers.
func (s *Stretcher) PendingStartDelay() int {
	return s.startDelaySamples
}

// fetchProcessed drains engine output. While start delay remains, retrieved
// samples are discarded into the scratch buffers; afterwards they are copied
// into every channel ring buffer in lockstep.
func (s *Stretcher) fetchProcessed() {
	available := s.eng.Available()
	if available <= 0 {
		return
	}

	// Discard pipeline latency exactly once per engine reset. Discarding
	// runs in scratch-sized chunks: after a parameter change at a high
	// ratio the delay can exceed the scratch capacity.
	if s.startDelaySamples > 0 {
		discard := s.startDelaySamples
		if discard > available {
			discard = available
		}
		for remaining := discard; remaining > 0; {
			n := s.retrieve(remaining)
			if n == 0 {
				break
			}
			remaining -= n
			s.startDelaySamples -= n
			available -= n
		}
		if s.startDelaySamples > 0 {
			return
		}
	}

	if available == 0 {
		return
	}

	if space := s.rings[0].WriteSpace(); space <= available {
		// Reported, not prevented: the ring buffers drop the excess and
		// all channels stay in lockstep.
		s.emitDiagnostic(Diagnostic{
			Kind:      DiagnosticOverrun,
			Channel:   -1,
			Requested: available,
			Available: space,
		})
	}

	actual := s.retrieve(available)
	for c := 0; c < s.channels; c++ {
		s.rings[c].Write(s.scratch[c][:actual])
	}
}

// retrieve pulls up to count samples per channel from the engine into the
// scratch buffers and returns the count actually retrieved.
func (s *Stretcher) retrieve(count int) int {
	if count > len(s.scratch[0]) {
		count = len(s.scratch[0])
	}
	return s.eng.Retrieve(s.scratch, count)
}

// updateRatio refreshes the start pad and start delay from the engine.
// Called at construction and after every parameter change, because ratio
// changes alter engine latency.
func (s *Stretcher) updateRatio() {
	s.startPadSamples = s.eng.PreferredStartPad()
	s.startDelaySamples = s.eng.StartDelay()
}
