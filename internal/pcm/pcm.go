// Package pcm decodes WAV-style PCM sample buffers into normalized
// float64 coefficient sequences.
//
// Multi-channel input is reduced to its first channel; correction filters are
// exported one file per speaker, so additional channels are duplicates or
// padding and are intentionally discarded.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// ErrUnsupportedFormat is returned for sample encodings other than 16-bit
// integer, 32-bit integer, 32-bit float and 64-bit float.
var ErrUnsupportedFormat = errors.New("pcm: unsupported sample format")

// WAV format tags from the RIFF specification.
const (
	formatPCM       = 1
	formatIEEEFloat = 3
)

// Full-scale divisors for integer PCM normalization.
const (
	int16Scale = 32768.0
	int32Scale = 2147483648.0
)

// Byte widths of the supported float encodings.
const (
	float32Bytes = 4
	float64Bytes = 8
)

// NormalizeInt converts interleaved integer PCM samples to float64
// coefficients in [-1, 1), keeping only the first channel. Supported bit
// depths are 16 and 32.
func NormalizeInt(samples []int, bitDepth, channels int) ([]float64, error) {
	var scale float64
	switch bitDepth {
	case 16:
		scale = int16Scale
	case 32:
		scale = int32Scale
	default:
		return nil, fmt.Errorf("%w: %d-bit integer", ErrUnsupportedFormat, bitDepth)
	}

	if channels < 1 {
		channels = 1
	}
	out := make([]float64, 0, len(samples)/channels)
	for i := 0; i < len(samples); i += channels {
		out = append(out, float64(samples[i])/scale)
	}
	return out, nil
}

// DecodeFloat converts raw little-endian IEEE float sample data to float64
// coefficients, keeping only the first channel. Supported bit depths are 32
// and 64; float values pass through unscaled.
func DecodeFloat(raw []byte, bitDepth, channels int) ([]float64, error) {
	var width int
	switch bitDepth {
	case 32:
		width = float32Bytes
	case 64:
		width = float64Bytes
	default:
		return nil, fmt.Errorf("%w: %d-bit float", ErrUnsupportedFormat, bitDepth)
	}

	if channels < 1 {
		channels = 1
	}
	frame := width * channels
	out := make([]float64, 0, len(raw)/frame)
	for off := 0; off+width <= len(raw); off += frame {
		if width == float32Bytes {
			bits := binary.LittleEndian.Uint32(raw[off:])
			out = append(out, float64(math.Float32frombits(bits)))
		} else {
			bits := binary.LittleEndian.Uint64(raw[off:])
			out = append(out, math.Float64frombits(bits))
		}
	}
	return out, nil
}

// Decode reads a WAV stream and returns the first channel as normalized
// float64 coefficients together with the container's sample rate.
func Decode(r io.ReadSeeker) ([]float64, int, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: not a valid WAV stream", ErrUnsupportedFormat)
	}

	sampleRate := int(d.SampleRate)
	channels := int(d.NumChans)
	bitDepth := int(d.BitDepth)

	switch d.WavAudioFormat {
	case formatPCM:
		buf, err := d.FullPCMBuffer()
		if err != nil {
			return nil, 0, fmt.Errorf("pcm: reading samples: %w", err)
		}
		coeffs, err := NormalizeInt(buf.Data, bitDepth, channels)
		if err != nil {
			return nil, 0, err
		}
		return coeffs, sampleRate, nil

	case formatIEEEFloat:
		if err := d.FwdToPCM(); err != nil {
			return nil, 0, fmt.Errorf("pcm: locating data chunk: %w", err)
		}
		raw, err := io.ReadAll(d.PCMChunk)
		if err != nil {
			return nil, 0, fmt.Errorf("pcm: reading samples: %w", err)
		}
		coeffs, err := DecodeFloat(raw, bitDepth, channels)
		if err != nil {
			return nil, 0, err
		}
		return coeffs, sampleRate, nil

	default:
		return nil, 0, fmt.Errorf("%w: WAV audio format tag %d", ErrUnsupportedFormat, d.WavAudioFormat)
	}
}

// DecodeFile opens and decodes a WAV file. See Decode.
func DecodeFile(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("pcm: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
