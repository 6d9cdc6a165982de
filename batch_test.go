package firconvert

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBatchJSON writes a coefficient array to a temp JSON file.
func writeBatchJSON(t *testing.T, dir, name string, coeffs []float64) string {
	t.Helper()
	data, err := json.Marshal(coeffs)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// TestAnalyzeFiles verifies concurrent batch analysis with per-file results
// in input order.
func TestAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	minPhase := writeBatchJSON(t, dir, "minphase.json", []float64{1, 0.5, 0.25, 0.125})
	symmetric := writeBatchJSON(t, dir, "symmetric.json", []float64{0.25, 1, 1, 0.25})
	missing := filepath.Join(dir, "absent.json")

	paths := []string{minPhase, missing, symmetric}
	results := AnalyzeFiles(paths, BatchOptions{
		TargetLength: 2,
		VerifyPhase:  true,
	})

	require.Len(t, results, len(paths))
	for i, path := range paths {
		assert.Equal(t, path, results[i].Path, "results keep input order")
	}

	first := results[0]
	require.NoError(t, first.Err)
	assert.Equal(t, 4, first.Sequence.Len())
	assert.Equal(t, DefaultSampleRate, first.Sequence.SampleRate)
	require.NotNil(t, first.Truncation)
	assert.Equal(t, 2, first.Truncation.TargetLength)
	require.NotNil(t, first.Phase)

	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Truncation)
	assert.Nil(t, results[1].Phase)

	third := results[2]
	require.NoError(t, third.Err)
	require.NotNil(t, third.Phase)
	assert.True(t, third.Phase.Symmetry.Symmetric)
	assert.False(t, third.Phase.IsMinimumPhase)
}

// TestAnalyzeFiles_OptionalStages verifies that disabled stages stay nil.
func TestAnalyzeFiles_OptionalStages(t *testing.T) {
	dir := t.TempDir()
	path := writeBatchJSON(t, dir, "filter.json", []float64{1, 0.5})

	results := AnalyzeFiles([]string{path}, BatchOptions{})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Nil(t, results[0].Truncation)
	assert.Nil(t, results[0].Phase)
}

// TestAnalyzeFiles_EmptySequence verifies rejection of empty coefficient
// files.
func TestAnalyzeFiles_EmptySequence(t *testing.T) {
	dir := t.TempDir()
	path := writeBatchJSON(t, dir, "empty.json", []float64{})

	results := AnalyzeFiles([]string{path}, BatchOptions{})
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

// TestAnalyzeFiles_NoInput verifies the trivial empty batch.
func TestAnalyzeFiles_NoInput(t *testing.T) {
	assert.Empty(t, AnalyzeFiles(nil, BatchOptions{}))
}
