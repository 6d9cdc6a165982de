package firconvert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// Test tolerances
	loadTolerance = 1e-12

	// Test WAV parameters
	testWAVBitDepth = 16
	testWAVChannels = 1
)

// writeFilterWAV writes a 16-bit mono PCM WAV and returns its path.
func writeFilterWAV(t *testing.T, samples []int, sampleRate int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "filter.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, testWAVBitDepth, testWAVChannels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: testWAVChannels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: testWAVBitDepth,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

// TestLoadWAVFilter verifies WAV decoding into a normalized sequence.
func TestLoadWAVFilter(t *testing.T) {
	samples := []int{16384, -8192, 0, 32767}
	path := writeFilterWAV(t, samples, testRate48k)

	seq, err := LoadWAVFilter(path)
	require.NoError(t, err)
	assert.Equal(t, testRate48k, seq.SampleRate)
	require.Equal(t, len(samples), seq.Len())
	for i, s := range samples {
		assert.InDelta(t, float64(s)/32768.0, seq.Coeffs[i], loadTolerance, "tap %d", i)
	}
}

// TestFilterJSONRoundTrip verifies the flat JSON array artifacts.
func TestFilterJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.json")
	orig := NewSequence([]float64{0.72, -0.25, 0.0625}, testRate48k)

	require.NoError(t, SaveFilterJSON(path, orig))

	loaded, err := LoadFilterJSON(path, testRate48k)
	require.NoError(t, err)
	assert.Equal(t, orig.Coeffs, loaded.Coeffs)
	assert.Equal(t, testRate48k, loaded.SampleRate)
}

// TestLoadFilterJSON_DefaultRate verifies the sample-rate fallback.
func TestLoadFilterJSON_DefaultRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.json")
	require.NoError(t, os.WriteFile(path, []byte("[1, 0.5]"), 0o644))

	seq, err := LoadFilterJSON(path, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSampleRate, seq.SampleRate)
}

// TestLoadFilterJSON_Malformed verifies JSON error reporting.
func TestLoadFilterJSON_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644))

	_, err := LoadFilterJSON(path, testRate48k)
	assert.Error(t, err)
}

// TestLoadFilter_Dispatch verifies extension-based dispatch.
func TestLoadFilter_Dispatch(t *testing.T) {
	t.Run("wav", func(t *testing.T) {
		path := writeFilterWAV(t, []int{16384}, testRate48k)
		seq, err := LoadFilter(path, 0)
		require.NoError(t, err)
		assert.Equal(t, testRate48k, seq.SampleRate)
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "f.json")
		require.NoError(t, os.WriteFile(path, []byte("[0.5]"), 0o644))
		seq, err := LoadFilter(path, 44100)
		require.NoError(t, err)
		assert.Equal(t, 44100, seq.SampleRate)
	})

	t.Run("unsupported_extension", func(t *testing.T) {
		_, err := LoadFilter("filter.csv", 0)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

// TestLoadWAVFilter_MissingFile verifies the open-failure path.
func TestLoadWAVFilter_MissingFile(t *testing.T) {
	_, err := LoadWAVFilter(filepath.Join(t.TempDir(), "absent.wav"))
	assert.Error(t, err)
}
