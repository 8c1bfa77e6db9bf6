// Package engine implements a phase-vocoder time and pitch stretcher.
//
// The vocoder analyzes input in overlapping Hann-windowed frames, propagates
// bin phases to a ratio-dependent synthesis hop, and resynthesizes by
// overlap-add. Pitch shifting is performed as a combined time stretch
// followed by cubic Hermite resampling at the inverse pitch scale. Output is
// buffered internally until retrieved.
package engine

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/tphakala/go-audio-stretcher/internal/ringbuf"
	"github.com/tphakala/go-audio-stretcher/internal/simdops"
)

// Quality selects the analysis preset.
type Quality int

const (
	// QualityFaster uses a short analysis window for low CPU and latency.
	QualityFaster Quality = iota

	// QualityFiner uses a long analysis window for better frequency
	// resolution, trading CPU and latency.
	QualityFiner
)

// Vocoder is a streaming phase-vocoder stretch engine.
// It is not safe for concurrent use.
type Vocoder struct {
	sampleRate int
	channels   int
	quality    Quality

	fftSize          int
	hopA             int // analysis hop
	bins             int // fftSize/2 + 1 unique real-FFT coefficients
	fft              *fourier.FFT
	win              []float64
	windowSquaredSum float64

	timeRatio      float64
	pitchScale     float64
	formantScale   float64
	maxProcessSize int

	// hopCarry accumulates the fractional part of the synthesis hop so the
	// long-run output rate matches the exact ratio.
	hopCarry float64

	chans []*vocoderChannel
}

// vocoderChannel holds per-channel analysis and synthesis state.
// All channels advance in lockstep: the same frame count, the same hops and
// the same output sample counts on every call.
type vocoderChannel struct {
	input  *ringbuf.FIFO
	output *ringbuf.FIFO

	peek       []float32
	frame      []float64
	spectrum   []complex128
	synthSpec  []complex128
	synthFrame []float64
	mags       []float64
	prevPhase  []float64
	synthPhase []float64
	ola        []float64
	envelope   []float64
	emit       []float32
	resampled  []float32
	resampler  *cubicResampler
	havePrev   bool
}

// NewVocoder creates a stretch engine for the given sample rate and channel
// count. Both ratios start at 1.0 (identity).
func NewVocoder(sampleRate, channels int, quality Quality) *Vocoder {
	fftSize := fasterFFTSize
	if quality == QualityFiner {
		fftSize = finerFFTSize
	}

	v := &Vocoder{
		sampleRate:   sampleRate,
		channels:     channels,
		quality:      quality,
		fftSize:      fftSize,
		hopA:         fftSize / overlapFactor,
		bins:         fftSize/fftHermitianDivisor + 1,
		fft:          fourier.NewFFT(fftSize),
		timeRatio:    1.0,
		pitchScale:   1.0,
		formantScale: 1.0,
	}

	// Hann coefficients: gonum applies the window to a sequence in place,
	// so start from unity.
	v.win = make([]float64, fftSize)
	for i := range v.win {
		v.win[i] = 1.0
	}
	window.Hann(v.win)

	// The window is applied at both analysis and synthesis, so overlap-add
	// gain is governed by the squared window.
	squared := make([]float64, fftSize)
	for i, w := range v.win {
		squared[i] = w * w
	}
	v.windowSquaredSum = simdops.Float64Ops().Sum(squared)

	v.chans = make([]*vocoderChannel, channels)
	for c := range v.chans {
		v.chans[c] = newVocoderChannel(v)
	}

	return v
}

func newVocoderChannel(v *Vocoder) *vocoderChannel {
	return &vocoderChannel{
		input:      ringbuf.NewFIFO(defaultFIFOSize),
		output:     ringbuf.NewFIFO(defaultFIFOSize),
		peek:       make([]float32, v.fftSize),
		frame:      make([]float64, v.fftSize),
		spectrum:   make([]complex128, v.bins),
		synthSpec:  make([]complex128, v.bins),
		synthFrame: make([]float64, v.fftSize),
		mags:       make([]float64, v.bins),
		prevPhase:  make([]float64, v.bins),
		synthPhase: make([]float64, v.bins),
		ola:        make([]float64, v.fftSize),
		envelope:   make([]float64, v.bins),
		resampler:  newCubicResampler(1.0),
	}
}

// Process feeds one block of planar input to the engine. channels must hold
// at least sampleCount samples per channel. When final is true the input is
// zero-padded so buffered frames are flushed.
func (v *Vocoder) Process(channels [][]float32, sampleCount int, final bool) {
	for c, ch := range v.chans {
		ch.input.Write(channels[c][:sampleCount])
	}

	if final {
		pad := make([]float32, v.fftSize)
		for _, ch := range v.chans {
			ch.input.Write(pad)
		}
	}

	v.processFrames()
}

// Available returns the number of retrievable output samples per channel.
func (v *Vocoder) Available() int {
	return v.chans[0].output.Len()
}

// Retrieve copies up to want output samples per channel into channels and
// returns the count actually copied, identical for every channel.
func (v *Vocoder) Retrieve(channels [][]float32, want int) int {
	n := want
	if avail := v.Available(); n > avail {
		n = avail
	}
	if n <= 0 {
		return 0
	}

	for c, ch := range v.chans {
		ch.output.Read(channels[c][:n])
	}
	return n
}

// Reset discards all buffered audio and analysis state. Ratios are kept;
// the max process size hint is cleared and must be reapplied.
func (v *Vocoder) Reset() {
	v.hopCarry = 0
	v.maxProcessSize = 0
	for _, ch := range v.chans {
		ch.input.Reset()
		ch.output.Reset()
		ch.resampler.reset()
		ch.havePrev = false
		for k := range ch.prevPhase {
			ch.prevPhase[k] = 0
			ch.synthPhase[k] = 0
		}
		for i := range ch.ola {
			ch.ola[i] = 0
		}
	}
}

// SetTimeRatio sets the duration multiplier for subsequent output.
func (v *Vocoder) SetTimeRatio(ratio float64) {
	v.timeRatio = clampRatio(ratio)
}

// TimeRatio returns the current duration multiplier.
func (v *Vocoder) TimeRatio() float64 { return v.timeRatio }

// SetPitchScale sets the frequency multiplier for subsequent output.
func (v *Vocoder) SetPitchScale(scale float64) {
	v.pitchScale = clampRatio(scale)
	for _, ch := range v.chans {
		ch.resampler = newCubicResampler(1.0 / v.pitchScale)
	}
}

// PitchScale returns the current frequency multiplier.
func (v *Vocoder) PitchScale() float64 { return v.pitchScale }

// SetFormantScale sets the spectral envelope shift for subsequent output.
func (v *Vocoder) SetFormantScale(scale float64) {
	v.formantScale = clampRatio(scale)
}

// FormantScale returns the current spectral envelope shift.
func (v *Vocoder) FormantScale() float64 { return v.formantScale }

// SetMaxProcessSize hints the largest block a single Process call will
// carry. Cleared by Reset.
func (v *Vocoder) SetMaxProcessSize(size int) {
	v.maxProcessSize = size
}

// PreferredStartPad returns the lead-in the engine would like before real
// input, in input samples.
func (v *Vocoder) PreferredStartPad() int {
	return v.fftSize / 2
}

// StartDelay returns the number of leading output samples that are pipeline
// latency rather than usable audio.
func (v *Vocoder) StartDelay() int {
	// One window minus one hop of input latency, expressed at the output
	// rate via the time ratio.
	return int(math.Round(float64(v.fftSize-v.hopA) * v.timeRatio))
}

// EngineVersion identifies the analysis engine in use.
func (v *Vocoder) EngineVersion() int {
	if v.quality == QualityFiner {
		return versionFiner
	}
	return versionFaster
}

// processFrames consumes full analysis frames from the input queues.
func (v *Vocoder) processFrames() {
	stretch := v.timeRatio * v.pitchScale
	exactHop := float64(v.hopA) * stretch

	for v.chans[0].input.Len() >= v.fftSize {
		t := v.hopCarry + exactHop
		hopS := int(t)
		v.hopCarry = t - float64(hopS)

		// Overlap-add gain of the squared window at this hop density.
		gain := exactHop / v.windowSquaredSum

		for _, ch := range v.chans {
			ch.processFrame(v, hopS, gain)
		}
	}
}

// processFrame runs analysis, phase propagation and synthesis for one frame,
// emitting hopS stretched samples into the channel output queue.
func (ch *vocoderChannel) processFrame(v *Vocoder, hopS int, gain float64) {
	// Analysis: windowed frame at the current read position, then advance
	// by one analysis hop.
	ch.input.Peek(ch.peek)
	for i := 0; i < v.fftSize; i++ {
		ch.frame[i] = float64(ch.peek[i]) * v.win[i]
	}
	ch.input.Discard(v.hopA)

	ch.spectrum = v.fft.Coefficients(ch.spectrum, ch.frame)

	// Phase propagation: estimate each bin's true frequency from the phase
	// advance over one analysis hop, then advance the synthesis phase by the
	// same frequency over the synthesis hop.
	hopRatio := float64(hopS) / float64(v.hopA)
	for k := 0; k < v.bins; k++ {
		mag := cmplx.Abs(ch.spectrum[k])
		phase := cmplx.Phase(ch.spectrum[k])
		ch.mags[k] = mag

		if !ch.havePrev {
			ch.synthPhase[k] = phase
			ch.prevPhase[k] = phase
			continue
		}

		omega := 2 * math.Pi * float64(k) / float64(v.fftSize) * float64(v.hopA)
		delta := wrapPhase(phase - ch.prevPhase[k] - omega)
		advance := omega + delta
		ch.synthPhase[k] = wrapPhase(ch.synthPhase[k] + advance*hopRatio)
		ch.prevPhase[k] = phase
	}
	ch.havePrev = true

	if v.formantScale != 1.0 {
		ch.shiftFormants(v.formantScale)
	}

	// Synthesis: rebuild the spectrum from scaled phases, inverse transform
	// and window again into the overlap-add accumulator.
	for k := 0; k < v.bins; k++ {
		ch.synthSpec[k] = cmplx.Rect(ch.mags[k], ch.synthPhase[k])
	}
	ch.synthFrame = v.fft.Sequence(ch.synthFrame, ch.synthSpec)

	// gonum's inverse transform does not normalize.
	simdops.Float64Ops().Scale(ch.synthFrame, ch.synthFrame, 1.0/float64(v.fftSize))

	for i := 0; i < v.fftSize; i++ {
		ch.ola[i] += ch.synthFrame[i] * v.win[i]
	}

	if hopS <= 0 {
		return
	}

	// Emit hopS samples from the front of the accumulator, compensating the
	// overlap-add gain, then slide the accumulator. Hops beyond the window
	// length emit silence for the uncovered region.
	ch.emit = ch.emit[:0]
	for i := 0; i < hopS; i++ {
		var s float64
		if i < v.fftSize {
			s = ch.ola[i] * gain
		}
		ch.emit = append(ch.emit, float32(s))
	}

	if hopS < v.fftSize {
		copy(ch.ola, ch.ola[hopS:])
		for i := v.fftSize - hopS; i < v.fftSize; i++ {
			ch.ola[i] = 0
		}
	} else {
		for i := range ch.ola {
			ch.ola[i] = 0
		}
	}

	if v.pitchScale != 1.0 {
		ch.resampled = ch.resampler.process(ch.resampled[:0], ch.emit)
		ch.output.Write(ch.resampled)
	} else {
		ch.output.Write(ch.emit)
	}
}

// shiftFormants moves the spectral envelope by scale while preserving the
// fine harmonic structure. The envelope is estimated with a moving average
// over the magnitude spectrum.
func (ch *vocoderChannel) shiftFormants(scale float64) {
	bins := len(ch.mags)
	width := bins / envelopeWidthDivisor
	if width < 1 {
		width = 1
	}

	// Sliding-window mean of the magnitudes.
	var sum float64
	count := 0
	for k := 0; k < width && k < bins; k++ {
		sum += ch.mags[k]
		count++
	}
	for k := 0; k < bins; k++ {
		if k+width < bins {
			sum += ch.mags[k+width]
			count++
		}
		if k-width-1 >= 0 {
			sum -= ch.mags[k-width-1]
			count--
		}
		ch.envelope[k] = sum / float64(count)
	}

	// Whiten by the local envelope, then reapply the envelope sampled at
	// the scaled position.
	for k := 0; k < bins; k++ {
		src := float64(k) / scale
		var target float64
		if src < float64(bins-1) {
			lo := int(src)
			frac := src - float64(lo)
			target = ch.envelope[lo]*(1-frac) + ch.envelope[lo+1]*frac
		}
		env := ch.envelope[k]
		if env < envelopeFloor {
			env = envelopeFloor
		}
		ch.mags[k] = ch.mags[k] / env * target
	}
}

// wrapPhase maps a phase to the principal interval (-pi, pi].
func wrapPhase(p float64) float64 {
	p = math.Mod(p+math.Pi, 2*math.Pi)
	if p < 0 {
		p += 2 * math.Pi
	}
	return p - math.Pi
}

// clampRatio bounds a ratio to the range the analysis supports.
func clampRatio(r float64) float64 {
	if r < minRatio {
		return minRatio
	}
	if r > maxRatio {
		return maxRatio
	}
	return r
}
