package engine

// Analysis window constants.
const (
	// overlapFactor is the ratio of window size to analysis hop.
	// 4x overlap keeps Hann-squared overlap-add artifacts below audibility.
	overlapFactor = 4

	// fasterFFTSize is the analysis window for QualityFaster.
	fasterFFTSize = 1024

	// finerFFTSize is the analysis window for QualityFiner.
	// Larger windows improve frequency resolution at the cost of CPU and latency.
	finerFFTSize = 4096

	// fftHermitianDivisor is used to calculate unique frequency bins in real FFT.
	// Due to Hermitian symmetry, a real FFT of size N has N/2 + 1 unique complex coefficients.
	fftHermitianDivisor = 2
)

// Engine version identifiers reported by EngineVersion.
const (
	versionFaster = 2
	versionFiner  = 3
)

// Ratio limits accepted by the engine setters.
const (
	minRatio = 1.0 / 256.0
	maxRatio = 256.0
)

// Formant envelope estimation constants.
const (
	// envelopeWidthDivisor sets the magnitude smoothing width relative to
	// the spectrum length. Wider smoothing tracks the envelope rather than
	// individual harmonics.
	envelopeWidthDivisor = 64

	// envelopeFloor avoids division by zero when whitening the spectrum.
	envelopeFloor = 1e-12
)

// Buffer sizing constants.
const (
	// defaultFIFOSize is the initial capacity of the per-channel input and
	// output queues in samples.
	defaultFIFOSize = 8192
)

// cubicLatencySamples is the group delay of 4-point Hermite interpolation.
const cubicLatencySamples = 2

// Hermite basis coefficients for cubic interpolation.
const (
	hermiteCoeff0_5 = 0.5
	hermiteCoeff1_5 = 1.5
	hermiteCoeff2_5 = 2.5
)
