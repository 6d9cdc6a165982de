package firconvert

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ocatools/firconvert/internal/pcm"
)

// DefaultSampleRate is assumed for coefficient sources that carry no rate
// of their own (JSON arrays).
const DefaultSampleRate = 48000

// DecodeWAV reads FIR coefficients from a RIFF/WAVE stream. Integer PCM
// data is normalized to [-1, 1) by the full-scale divisor of its bit depth
// (16- and 32-bit only); IEEE-float data passes through unscaled. Only the
// first channel of a multichannel file is used. Other encodings fail with
// ErrUnsupportedFormat.
func DecodeWAV(r io.ReadSeeker) (Sequence, error) {
	coeffs, sampleRate, err := pcm.Decode(r)
	if err != nil {
		return Sequence{}, err
	}
	return Sequence{Coeffs: coeffs, SampleRate: sampleRate}, nil
}

// LoadWAVFilter reads FIR coefficients from a WAV file on disk.
func LoadWAVFilter(path string) (Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sequence{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	seq, err := DecodeWAV(f)
	if err != nil {
		return Sequence{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return seq, nil
}

// LoadFilterJSON reads FIR coefficients from a JSON array of numbers. JSON
// carries no sample rate, so the caller supplies one; zero selects
// DefaultSampleRate.
func LoadFilterJSON(path string, sampleRate int) (Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sequence{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var coeffs []float64
	if err := json.Unmarshal(data, &coeffs); err != nil {
		return Sequence{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return Sequence{Coeffs: coeffs, SampleRate: sampleRate}, nil
}

// SaveFilterJSON writes the coefficients as a JSON array of numbers.
func SaveFilterJSON(path string, seq Sequence) error {
	data, err := json.Marshal(seq.Coeffs)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// LoadFilter reads FIR coefficients from a file, dispatching on extension:
// .wav decodes as RIFF/WAVE, .json as a coefficient array at sampleRate.
// Anything else fails with ErrUnsupportedFormat.
func LoadFilter(path string, sampleRate int) (Sequence, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return LoadWAVFilter(path)
	case ".json":
		return LoadFilterJSON(path, sampleRate)
	default:
		return Sequence{}, fmt.Errorf("%w: unrecognized extension on %s", ErrUnsupportedFormat, path)
	}
}
