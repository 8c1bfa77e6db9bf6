package stretcher

// Channel constants
const (
	stereoChannels = 2   // Stereo channel count (used by convenience functions)
	maxChannels    = 256 // Maximum supported channel count
)

// Ring buffer sizing constants.
//
// Per-channel capacity is processBlockSize + bufferReserve + headroom. The
// headroom must exceed the largest burst a single drain can produce after a
// parameter change; 8192 samples has proven sufficient for ratios up to the
// engine limits at typical block sizes.
const (
	// processBlockSize is the largest block a caller is expected to push.
	processBlockSize = 4096

	// bufferReserve absorbs ratio jitter between drain and pull.
	bufferReserve = 256

	// defaultHeadroom is the drain-burst headroom used when Config.Headroom
	// is zero.
	defaultHeadroom = 8192
)
