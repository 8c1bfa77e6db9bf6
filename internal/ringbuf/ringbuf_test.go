package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_WriteRead(t *testing.T) {
	b := NewRing(8)

	n := b.Write([]float32{1, 2, 3, 4})
	require.Equal(t, 4, n)
	assert.Equal(t, 4, b.ReadSpace())
	assert.Equal(t, 4, b.WriteSpace())

	dst := make([]float32, 4)
	n = b.Read(dst)
	require.Equal(t, 4, n)
	assert.Equal(t, []float32{1, 2, 3, 4}, dst)
	assert.Equal(t, 0, b.ReadSpace())
	assert.Equal(t, 8, b.WriteSpace())
}

func TestRing_Wraparound(t *testing.T) {
	b := NewRing(4)

	// Advance the cursors past the physical end of the buffer.
	b.Write([]float32{1, 2, 3})
	dst := make([]float32, 2)
	b.Read(dst)

	n := b.Write([]float32{4, 5, 6})
	require.Equal(t, 3, n)

	out := make([]float32, 4)
	n = b.Read(out)
	require.Equal(t, 4, n)
	assert.Equal(t, []float32{3, 4, 5, 6}, out)
}

func TestRing_WriteClampsToFreeSpace(t *testing.T) {
	b := NewRing(4)

	n := b.Write([]float32{1, 2, 3, 4, 5, 6})
	assert.Equal(t, 4, n, "write must clamp to capacity, not overwrite")
	assert.Equal(t, 0, b.WriteSpace())

	// The oldest samples must survive the oversized write.
	out := make([]float32, 4)
	b.Read(out)
	assert.Equal(t, []float32{1, 2, 3, 4}, out)
}

func TestRing_ReadShortWhenEmpty(t *testing.T) {
	b := NewRing(4)
	b.Write([]float32{1, 2})

	dst := make([]float32, 4)
	n := b.Read(dst)
	assert.Equal(t, 2, n)

	n = b.Read(dst)
	assert.Equal(t, 0, n)
}

func TestRing_Reset(t *testing.T) {
	b := NewRing(4)
	b.Write([]float32{1, 2, 3})
	b.Reset()

	assert.Equal(t, 0, b.ReadSpace())
	assert.Equal(t, 4, b.WriteSpace())
	assert.Equal(t, 4, b.Capacity())
}

func TestFIFO_WriteReadOrder(t *testing.T) {
	f := NewFIFO(4)

	f.Write([]float32{1, 2, 3})
	f.Write([]float32{4, 5})

	dst := make([]float32, 5)
	n := f.Read(dst)
	require.Equal(t, 5, n)
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, dst)
	assert.Equal(t, 0, f.Len())
}

func TestFIFO_GrowPreservesOrder(t *testing.T) {
	f := NewFIFO(4)

	// Move the read cursor so buffered data wraps before growth.
	f.Write([]float32{1, 2, 3})
	dst := make([]float32, 2)
	f.Read(dst)

	big := make([]float32, 64)
	for i := range big {
		big[i] = float32(i)
	}
	f.Write(big)

	require.Equal(t, 65, f.Len())
	out := make([]float32, 65)
	f.Read(out)
	assert.Equal(t, float32(3), out[0])
	assert.Equal(t, float32(63), out[64])
}

func TestFIFO_PeekDoesNotConsume(t *testing.T) {
	f := NewFIFO(8)
	f.Write([]float32{1, 2, 3})

	dst := make([]float32, 2)
	n := f.Peek(dst)
	require.Equal(t, 2, n)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []float32{1, 2}, dst)
}

func TestFIFO_Discard(t *testing.T) {
	f := NewFIFO(8)
	f.Write([]float32{1, 2, 3, 4})

	n := f.Discard(2)
	assert.Equal(t, 2, n)

	dst := make([]float32, 2)
	f.Read(dst)
	assert.Equal(t, []float32{3, 4}, dst)

	n = f.Discard(10)
	assert.Equal(t, 0, n)
}
