// Package ringbuf provides sample queues for realtime audio streaming.
//
// Ring is a fixed-capacity circular buffer with independent read and write
// cursors. It never grows and never blocks, which makes it safe to use from
// an audio render callback. FIFO is a growable queue used on the non-realtime
// side of the engine where allocation is acceptable.
package ringbuf

// Ring implements a fixed-capacity circular buffer for float32 samples.
// It is not safe for concurrent use; callers are expected to serialize
// access, matching a single-threaded audio callback model.
type Ring struct {
	data     []float32
	capacity int
	size     int
	readPos  int
	writePos int
}

// NewRing creates a ring buffer holding at most capacity samples.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}

	return &Ring{
		data:     make([]float32, capacity),
		capacity: capacity,
	}
}

// Write copies samples into the buffer and returns the number written.
// When the buffer lacks space the excess samples are dropped; the caller
// is responsible for detecting and reporting the overrun.
func (b *Ring) Write(samples []float32) int {
	n := len(samples)
	if n > b.capacity-b.size {
		n = b.capacity - b.size
	}
	if n <= 0 {
		return 0
	}

	// First segment: up to the physical end of the buffer.
	first := b.capacity - b.writePos
	if first > n {
		first = n
	}
	copy(b.data[b.writePos:], samples[:first])
	copy(b.data, samples[first:n])

	b.writePos = (b.writePos + n) % b.capacity
	b.size += n
	return n
}

// Read copies up to len(dst) samples out of the buffer and returns the
// number read. Fewer samples are returned when less data is available.
func (b *Ring) Read(dst []float32) int {
	n := len(dst)
	if n > b.size {
		n = b.size
	}
	if n <= 0 {
		return 0
	}

	first := b.capacity - b.readPos
	if first > n {
		first = n
	}
	copy(dst[:first], b.data[b.readPos:])
	copy(dst[first:n], b.data)

	b.readPos = (b.readPos + n) % b.capacity
	b.size -= n
	return n
}

// ReadSpace returns the number of samples available for reading.
func (b *Ring) ReadSpace() int {
	return b.size
}

// WriteSpace returns the number of samples that can be written without
// dropping data.
func (b *Ring) WriteSpace() int {
	return b.capacity - b.size
}

// Capacity returns the fixed buffer capacity.
func (b *Ring) Capacity() int {
	return b.capacity
}

// Reset discards all buffered samples.
func (b *Ring) Reset() {
	b.size = 0
	b.readPos = 0
	b.writePos = 0
}

// FIFO is a growable sample queue. It is used for the stretch engine's
// internal input and output accumulation, where occasional growth is
// preferable to dropping samples.
type FIFO struct {
	data     []float32
	size     int
	readPos  int
	writePos int
}

// NewFIFO creates a FIFO with the given initial capacity.
// Capacity is rounded up to the nearest power of 2.
func NewFIFO(capacity int) *FIFO {
	cap2 := 1
	for cap2 < capacity {
		cap2 <<= 1
	}

	return &FIFO{
		data: make([]float32, cap2),
	}
}

// Write appends samples to the queue, growing it as needed.
func (f *FIFO) Write(samples []float32) {
	needed := len(samples)
	if needed == 0 {
		return
	}

	if f.size+needed > len(f.data) {
		f.grow(f.size + needed)
	}

	first := len(f.data) - f.writePos
	if first > needed {
		first = needed
	}
	copy(f.data[f.writePos:], samples[:first])
	copy(f.data, samples[first:])

	f.writePos = (f.writePos + needed) % len(f.data)
	f.size += needed
}

// Read removes up to len(dst) samples and returns the number read.
func (f *FIFO) Read(dst []float32) int {
	n := f.Peek(dst)
	f.Discard(n)
	return n
}

// Peek copies up to len(dst) samples without removing them.
func (f *FIFO) Peek(dst []float32) int {
	n := len(dst)
	if n > f.size {
		n = f.size
	}
	if n <= 0 {
		return 0
	}

	first := len(f.data) - f.readPos
	if first > n {
		first = n
	}
	copy(dst[:first], f.data[f.readPos:])
	copy(dst[first:n], f.data)
	return n
}

// Discard removes up to n samples without reading them and returns the
// number removed.
func (f *FIFO) Discard(n int) int {
	if n > f.size {
		n = f.size
	}
	if n <= 0 {
		return 0
	}
	f.readPos = (f.readPos + n) % len(f.data)
	f.size -= n
	return n
}

// Len returns the number of queued samples.
func (f *FIFO) Len() int {
	return f.size
}

// Reset discards all queued samples.
func (f *FIFO) Reset() {
	f.size = 0
	f.readPos = 0
	f.writePos = 0
}

// grow doubles the capacity until it covers minCapacity, preserving order.
func (f *FIFO) grow(minCapacity int) {
	newCap := len(f.data)
	for newCap < minCapacity {
		newCap *= 2
	}

	newData := make([]float32, newCap)
	if f.size > 0 {
		if f.readPos < f.writePos {
			copy(newData, f.data[f.readPos:f.writePos])
		} else {
			n1 := copy(newData, f.data[f.readPos:])
			copy(newData[n1:], f.data[:f.writePos])
		}
	}

	f.data = newData
	f.readPos = 0
	f.writePos = f.size
}
