package stretcher

import (
	"github.com/tphakala/go-audio-stretcher/internal/simdops"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateSpeech is the speech recognition common sample rate.
	RateSpeech = 22050
)

// NewMono creates a single-channel stretcher with default buffering.
func NewMono(sampleRate int, quality QualityPreset) (*Stretcher, error) {
	return New(&Config{
		SampleRate: sampleRate,
		Channels:   1,
		Quality:    quality,
	})
}

// NewStereo creates a stereo stretcher with default buffering.
func NewStereo(sampleRate int, quality QualityPreset) (*Stretcher, error) {
	return New(&Config{
		SampleRate: sampleRate,
		Channels:   stereoChannels,
		Quality:    quality,
	})
}

// InterleaveStereo interleaves planar left/right channels into dst:
// dst[0]=left[0], dst[1]=right[0], dst[2]=left[1], ...
// dst must hold len(left)+len(right) samples; left and right must be the
// same length.
func InterleaveStereo(dst, left, right []float32) {
	simdops.Float32Ops().Interleave2(dst, left, right)
}

// DeinterleaveStereo splits interleaved stereo src into planar left/right.
// left and right must each hold len(src)/2 samples.
func DeinterleaveStereo(left, right, src []float32) {
	n := len(src) / stereoChannels
	for i := 0; i < n; i++ {
		left[i] = src[stereoChannels*i]
		right[i] = src[stereoChannels*i+1]
	}
}

// PlanarStereo packs planar left/right channels into the contiguous layout
// Push and Pull expect: left occupies dst[:n], right occupies dst[n:2n].
func PlanarStereo(dst, left, right []float32) {
	n := len(left)
	copy(dst[:n], left)
	copy(dst[n:n+len(right)], right)
}
