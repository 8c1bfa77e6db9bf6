// Command stretch-wav applies time and pitch stretching to WAV audio files.
//
// Usage:
//
//	stretch-wav -tempo 1.5 input.wav output.wav
//	stretch-wav -pitch 2.0 -quality finer input.wav output.wav
//	stretch-wav -tempo 0.8 -pitch 1.2 -formant 1.0 input.wav output.wav
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	stretcher "github.com/tphakala/go-audio-stretcher"
)

const (
	// blockSize is the fixed number of samples pushed per channel per call.
	blockSize = 1024

	// maxFlushBlocks bounds the zero blocks fed to flush engine latency.
	maxFlushBlocks = 64

	// wavAudioFormatPCM is the RIFF PCM format tag.
	wavAudioFormatPCM = 1

	// outputBitDepth is the bit depth of the written file.
	outputBitDepth = 16

	minRequiredArgs = 2
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	tempo := flag.Float64("tempo", 1.0, "Duration multiplier (2.0 = twice as long, half speed)")
	pitch := flag.Float64("pitch", 1.0, "Frequency multiplier (2.0 = one octave up)")
	formant := flag.Float64("formant", 1.0, "Spectral envelope shift, independent of pitch")
	quality := flag.String("quality", "faster", "Analysis preset: faster, finer")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}

	preset := stretcher.QualityFaster
	switch *quality {
	case "faster":
	case "finer":
		preset = stretcher.QualityFiner
	default:
		return fmt.Errorf("unknown quality preset %q", *quality)
	}

	channels, sampleRate, planar, err := readWAV(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	if *verbose {
		fmt.Printf("Input: %d channels, %d Hz, %d samples per channel\n",
			channels, sampleRate, len(planar[0]))
	}

	s, err := stretcher.New(&stretcher.Config{
		SampleRate: sampleRate,
		Channels:   channels,
		Quality:    preset,
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, nil)),
	})
	if err != nil {
		return err
	}

	if err := s.SetTempo(*tempo); err != nil {
		return err
	}
	if err := s.SetPitch(*pitch); err != nil {
		return err
	}
	if err := s.SetFormantScale(*formant); err != nil {
		return err
	}
	s.SetMaxProcessSize(blockSize)

	stretched := process(s, channels, planar, *tempo)

	if *verbose {
		fmt.Printf("Output: %d samples per channel (underruns=%d overruns=%d)\n",
			len(stretched[0]), s.Underruns(), s.Overruns())
	}

	if err := writeWAV(args[1], sampleRate, stretched); err != nil {
		return fmt.Errorf("writing %s: %w", args[1], err)
	}
	return nil
}

// process pushes the planar input through the stretcher in fixed blocks and
// collects the continuous output, flushing engine latency with silence.
func process(s *stretcher.Stretcher, channels int, planar [][]float32, tempo float64) [][]float32 {
	inputLen := len(planar[0])
	expected := int(float64(inputLen) * tempo)

	out := make([][]float32, channels)
	block := make([]float32, channels*blockSize)
	pull := make([]float32, channels*blockSize)

	drain := func() {
		for {
			n := s.SamplesAvailable()
			if n == 0 {
				return
			}
			if n > blockSize {
				n = blockSize
			}
			s.Pull(pull, n)
			for c := 0; c < channels; c++ {
				out[c] = append(out[c], pull[c*n:(c+1)*n]...)
			}
		}
	}

	for off := 0; off < inputLen; off += blockSize {
		for c := 0; c < channels; c++ {
			seg := block[c*blockSize : (c+1)*blockSize]
			for i := range seg {
				if off+i < inputLen {
					seg[i] = planar[c][off+i]
				} else {
					seg[i] = 0
				}
			}
		}
		s.Push(block, blockSize)
		drain()
	}

	// Latency flush: feed silence until the expected duration is covered.
	silence := make([]float32, channels*blockSize)
	for i := 0; i < maxFlushBlocks && len(out[0]) < expected; i++ {
		s.Push(silence, blockSize)
		drain()
	}

	for c := range out {
		if len(out[c]) > expected {
			out[c] = out[c][:expected]
		}
	}
	return out
}

// readWAV decodes a WAV file into planar float32 channels.
func readWAV(path string) (channels, sampleRate int, planar [][]float32, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return 0, 0, nil, fmt.Errorf("not a valid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return 0, 0, nil, err
	}

	channels = buf.Format.NumChannels
	sampleRate = buf.Format.SampleRate
	scale := float32(int(1) << (decoder.BitDepth - 1))

	frames := len(buf.Data) / channels
	planar = make([][]float32, channels)
	for c := range planar {
		planar[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			planar[c][i] = float32(buf.Data[i*channels+c]) / scale
		}
	}
	return channels, sampleRate, planar, nil
}

// writeWAV encodes planar float32 channels as 16-bit PCM.
func writeWAV(path string, sampleRate int, planar [][]float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	channels := len(planar)
	frames := len(planar[0])

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, frames*channels),
		SourceBitDepth: outputBitDepth,
	}

	const maxInt16 = 32767
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			v := planar[c][i]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			buf.Data[i*channels+c] = int(v * maxInt16)
		}
	}

	encoder := wav.NewEncoder(f, sampleRate, outputBitDepth, channels, wavAudioFormatPCM)
	if err := encoder.Write(buf); err != nil {
		return err
	}
	return encoder.Close()
}
