package simdops

import (
	"testing"

	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// BenchmarkDirectF64Scale measures direct SIMD call overhead.
func BenchmarkDirectF64Scale(b *testing.B) {
	a := make([]float64, 1024)
	dst := make([]float64, 1024)
	for i := range a {
		a[i] = float64(i) * 0.01
	}

	b.ReportAllocs()
	for b.Loop() {
		f64.Scale(dst, a, 0.5)
	}
}

// BenchmarkIndirectF64Scale measures indirect call through Ops struct.
func BenchmarkIndirectF64Scale(b *testing.B) {
	ops := For[float64]()
	a := make([]float64, 1024)
	dst := make([]float64, 1024)
	for i := range a {
		a[i] = float64(i) * 0.01
	}

	b.ReportAllocs()
	for b.Loop() {
		ops.Scale(dst, a, 0.5)
	}
}

// BenchmarkDirectF32Sum measures direct SIMD call overhead.
func BenchmarkDirectF32Sum(b *testing.B) {
	a := make([]float32, 1024)
	for i := range a {
		a[i] = float32(i) * 0.01
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = f32.Sum(a)
	}
}

// BenchmarkIndirectF32Sum measures indirect call through Ops struct.
func BenchmarkIndirectF32Sum(b *testing.B) {
	ops := For[float32]()
	a := make([]float32, 1024)
	for i := range a {
		a[i] = float32(i) * 0.01
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = ops.Sum(a)
	}
}
