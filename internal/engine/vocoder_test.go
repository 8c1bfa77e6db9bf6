package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 44100

// pushBlock feeds one planar block of identical content to every channel.
func pushBlock(v *Vocoder, block []float32, channels int) {
	planar := make([][]float32, channels)
	for c := range planar {
		planar[c] = block
	}
	v.Process(planar, len(block), false)
}

func sineBlock(n int, freq float64) []float32 {
	block := make([]float32, n)
	for i := range block {
		block[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / testSampleRate))
	}
	return block
}

func TestVocoder_IdentityOutputAccounting(t *testing.T) {
	v := NewVocoder(testSampleRate, 1, QualityFaster)

	block := sineBlock(1024, 440)

	// The first block fills exactly one analysis window and yields one hop.
	pushBlock(v, block, 1)
	assert.Equal(t, 256, v.Available())

	// Every further block is four hops at identity ratio.
	pushBlock(v, block, 1)
	assert.Equal(t, 256+1024, v.Available())

	pushBlock(v, block, 1)
	assert.Equal(t, 256+2048, v.Available())
}

func TestVocoder_TimeRatioScalesOutput(t *testing.T) {
	v := NewVocoder(testSampleRate, 1, QualityFaster)
	v.SetTimeRatio(2.0)

	block := sineBlock(1024, 440)
	pushBlock(v, block, 1)
	first := v.Available()
	assert.Equal(t, 512, first, "one hop stretched 2x")

	pushBlock(v, block, 1)
	assert.Equal(t, first+4*512, v.Available())
}

func TestVocoder_PitchScaleKeepsDuration(t *testing.T) {
	v := NewVocoder(testSampleRate, 1, QualityFaster)
	v.SetPitchScale(2.0)

	block := sineBlock(1024, 440)
	for i := 0; i < 8; i++ {
		pushBlock(v, block, 1)
	}

	// Pitch shifting stretches 2x then resamples by 1/2, so output count
	// tracks consumed input count within interpolator rounding. One window
	// minus one hop of lookahead stays queued.
	consumed := 8*1024 - (1024 - 256)
	assert.InDelta(t, consumed, v.Available(), 16)
}

func TestVocoder_SilenceInSilenceOut(t *testing.T) {
	v := NewVocoder(testSampleRate, 2, QualityFaster)

	silence := make([]float32, 1024)
	for i := 0; i < 4; i++ {
		pushBlock(v, silence, 2)
	}

	n := v.Available()
	require.Positive(t, n)

	out := [][]float32{make([]float32, n), make([]float32, n)}
	got := v.Retrieve(out, n)
	require.Equal(t, n, got)

	for c := range out {
		for i, s := range out[c] {
			require.Zerof(t, s, "channel %d sample %d is not silent", c, i)
		}
	}
}

func TestVocoder_IdentityPreservesAmplitude(t *testing.T) {
	v := NewVocoder(testSampleRate, 1, QualityFaster)

	block := sineBlock(1024, 440)
	for i := 0; i < 16; i++ {
		pushBlock(v, block, 1)
	}

	// Discard the start delay, then compare steady-state RMS.
	delay := v.StartDelay()
	scratch := [][]float32{make([]float32, delay)}
	require.Equal(t, delay, v.Retrieve(scratch, delay))

	n := v.Available()
	out := [][]float32{make([]float32, n)}
	v.Retrieve(out, n)

	var sumSq float64
	for _, s := range out[0] {
		sumSq += float64(s) * float64(s)
	}
	rms := math.Sqrt(sumSq / float64(n))

	// A full-scale sine has RMS 1/sqrt(2).
	assert.InDelta(t, 1/math.Sqrt2, rms, 0.05,
		"identity stretch should preserve signal level")
}

func TestVocoder_RetrieveLockstepAcrossChannels(t *testing.T) {
	v := NewVocoder(testSampleRate, 2, QualityFaster)

	block := sineBlock(1024, 440)
	pushBlock(v, block, 2)

	avail := v.Available()
	require.Positive(t, avail)

	out := [][]float32{make([]float32, avail), make([]float32, avail)}
	n := v.Retrieve(out, avail+100)
	assert.Equal(t, avail, n, "retrieve must clamp to available")
	assert.Equal(t, 0, v.Available())
}

func TestVocoder_ResetClearsBufferedAudio(t *testing.T) {
	v := NewVocoder(testSampleRate, 1, QualityFaster)
	v.SetMaxProcessSize(1024)

	pushBlock(v, sineBlock(1024, 440), 1)
	require.Positive(t, v.Available())

	v.Reset()
	assert.Equal(t, 0, v.Available())

	// After reset the engine behaves like a fresh instance.
	pushBlock(v, sineBlock(1024, 440), 1)
	assert.Equal(t, 256, v.Available())
}

func TestVocoder_StartDelayTracksTimeRatio(t *testing.T) {
	v := NewVocoder(testSampleRate, 1, QualityFaster)

	assert.Equal(t, 768, v.StartDelay(), "window minus hop at identity")
	assert.Equal(t, 512, v.PreferredStartPad())

	v.SetTimeRatio(2.0)
	assert.Equal(t, 1536, v.StartDelay())

	v.SetTimeRatio(0.5)
	assert.Equal(t, 384, v.StartDelay())
}

func TestVocoder_QualityPresets(t *testing.T) {
	faster := NewVocoder(testSampleRate, 1, QualityFaster)
	finer := NewVocoder(testSampleRate, 1, QualityFiner)

	assert.Equal(t, versionFaster, faster.EngineVersion())
	assert.Equal(t, versionFiner, finer.EngineVersion())
	assert.Greater(t, finer.StartDelay(), faster.StartDelay(),
		"finer analysis carries more latency")
}

func TestVocoder_FinalFlushesTail(t *testing.T) {
	v := NewVocoder(testSampleRate, 1, QualityFaster)

	block := sineBlock(512, 440)
	planar := [][]float32{block}

	// 512 samples alone are below one analysis window; final padding must
	// still flush them through.
	v.Process(planar, len(block), true)
	assert.Positive(t, v.Available())
}

func TestVocoder_RatioClamping(t *testing.T) {
	v := NewVocoder(testSampleRate, 1, QualityFaster)

	v.SetTimeRatio(1e9)
	assert.Equal(t, maxRatio, v.TimeRatio())

	v.SetPitchScale(1e-9)
	assert.Equal(t, minRatio, v.PitchScale())

	v.SetFormantScale(0.5)
	assert.Equal(t, 0.5, v.FormantScale())
}
