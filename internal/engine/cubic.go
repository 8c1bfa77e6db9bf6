package engine

// cubicResampler implements streaming cubic (4-point, 3rd order) Hermite
// interpolation. The vocoder uses it to resample stretched output by the
// inverse pitch scale, which converts a combined time stretch into an
// independent pitch shift.
type cubicResampler struct {
	ratio   float64 // output samples per input sample
	phase   float64
	history [4]float32 // 4-point window for interpolation
}

// newCubicResampler creates a resampler producing ratio output samples per
// input sample.
func newCubicResampler(ratio float64) *cubicResampler {
	return &cubicResampler{ratio: ratio}
}

// process resamples input, appending interpolated samples to dst.
// It returns dst to allow appending into a reused buffer.
func (c *cubicResampler) process(dst []float32, input []float32) []float32 {
	for _, sample := range input {
		// Shift history window
		c.history[3] = c.history[2]
		c.history[2] = c.history[1]
		c.history[1] = c.history[0]
		c.history[0] = sample

		// Generate output samples
		for c.phase < 1.0 {
			dst = append(dst, c.interpolate(float32(c.phase)))
			c.phase += 1.0 / c.ratio
		}

		// Wrap phase
		c.phase -= 1.0
	}

	return dst
}

// interpolate performs cubic Hermite interpolation at fractional position x.
// Uses the formula: y = ((a*x + b)*x + c)*x + d
func (c *cubicResampler) interpolate(x float32) float32 {
	y0 := c.history[3] // oldest
	y1 := c.history[2]
	y2 := c.history[1]
	y3 := c.history[0] // newest

	// Hermite basis functions provide smooth interpolation with a
	// continuous first derivative.
	coefA := -hermiteCoeff0_5*y0 + hermiteCoeff1_5*y1 - hermiteCoeff1_5*y2 + hermiteCoeff0_5*y3
	coefB := y0 - hermiteCoeff2_5*y1 + 2*y2 - hermiteCoeff0_5*y3
	coefC := -hermiteCoeff0_5*y0 + hermiteCoeff0_5*y2
	coefD := y1

	return ((coefA*x+coefB)*x+coefC)*x + coefD
}

// reset clears interpolation state.
func (c *cubicResampler) reset() {
	c.phase = 0
	c.history = [4]float32{}
}

// latency returns the interpolator group delay in input samples.
func (c *cubicResampler) latency() int {
	return cubicLatencySamples
}
