package stretcher

import (
	"errors"
	"testing"
)

func TestNewMono_NewStereo(t *testing.T) {
	mono, err := NewMono(RateCD, QualityFaster)
	if err != nil {
		t.Fatalf("NewMono failed: %v", err)
	}
	if mono.channels != 1 {
		t.Errorf("NewMono channels = %d, want 1", mono.channels)
	}

	stereo, err := NewStereo(RateDAT, QualityFiner)
	if err != nil {
		t.Fatalf("NewStereo failed: %v", err)
	}
	if stereo.channels != stereoChannels {
		t.Errorf("NewStereo channels = %d, want %d", stereo.channels, stereoChannels)
	}

	if _, err := NewMono(0, QualityFaster); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewMono(0) error = %v, want ErrInvalidConfig", err)
	}
}

func TestInterleaveDeinterleaveStereo(t *testing.T) {
	left := []float32{1, 3, 5, 7}
	right := []float32{2, 4, 6, 8}

	interleaved := make([]float32, 8)
	InterleaveStereo(interleaved, left, right)

	want := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	for i := range want {
		if interleaved[i] != want[i] {
			t.Fatalf("interleaved[%d] = %f, want %f", i, interleaved[i], want[i])
		}
	}

	gotLeft := make([]float32, 4)
	gotRight := make([]float32, 4)
	DeinterleaveStereo(gotLeft, gotRight, interleaved)

	for i := range left {
		if gotLeft[i] != left[i] || gotRight[i] != right[i] {
			t.Fatalf("round trip mismatch at %d: got %f/%f, want %f/%f",
				i, gotLeft[i], gotRight[i], left[i], right[i])
		}
	}
}

func TestPlanarStereo(t *testing.T) {
	left := []float32{1, 2, 3}
	right := []float32{4, 5, 6}

	planar := make([]float32, 6)
	PlanarStereo(planar, left, right)

	want := []float32{1, 2, 3, 4, 5, 6}
	for i := range want {
		if planar[i] != want[i] {
			t.Fatalf("planar[%d] = %f, want %f", i, planar[i], want[i])
		}
	}
}
