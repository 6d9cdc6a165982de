package firconvert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// Test tolerances
	verifyTolerance = 1e-9

	// Test sequence parameters
	testVerifyLength = 64
	geometricCommon  = 0.5
)

// geometricFilter is a decaying exponential h[k] = r^k, a textbook
// minimum-phase sequence: its transfer-function zeros all sit at radius r.
func geometricFilter(length int, r float64) Sequence {
	coeffs := make([]float64, length)
	for i := range coeffs {
		coeffs[i] = math.Pow(r, float64(i))
	}
	return NewSequence(coeffs, testRate48k)
}

// symmetricFilter is a triangular linear-phase sequence.
func symmetricFilter(length int) Sequence {
	coeffs := make([]float64, length)
	for i := range coeffs {
		coeffs[i] = 1 - math.Abs(float64(2*i-(length-1)))/float64(length-1)
	}
	return NewSequence(coeffs, testRate48k)
}

// TestVerify_MinimumPhaseFilter verifies the full verdict on a known
// minimum-phase sequence: all four sub-tests must agree.
func TestVerify_MinimumPhaseFilter(t *testing.T) {
	seq := geometricFilter(testVerifyLength, geometricCommon)
	v := VerifyMinimumPhase(seq, VerifyConfig{})

	assert.Equal(t, VoteYes, v.Energy.Vote, "energy concentration")
	assert.Equal(t, VoteYes, v.GroupDelay.Vote, "group delay")
	assert.Equal(t, VoteYes, v.Symmetry.Vote, "symmetry")
	assert.Equal(t, VoteYes, v.ZeroLoc.Vote, "zero location")

	assert.True(t, v.IsMinimumPhase)
	assert.Empty(t, v.Warning)
	assert.False(t, v.ZeroLoc.TruncatedPrefix)
	assert.Equal(t, 0, v.ZeroLoc.Outside)
}

// TestVerify_SymmetricFilter verifies that a linear-phase sequence is
// rejected, with the symmetry sub-test certain.
func TestVerify_SymmetricFilter(t *testing.T) {
	seq := symmetricFilter(testVerifyLength)
	v := VerifyMinimumPhase(seq, VerifyConfig{})

	assert.True(t, v.Symmetry.Symmetric)
	assert.Equal(t, VoteNo, v.Symmetry.Vote)
	assert.Equal(t, ConfidenceHigh, v.Symmetry.Confidence)

	// Group delay of a symmetric filter is exactly (N-1)/2.
	assert.Equal(t, VoteNo, v.GroupDelay.Vote)
	assert.InDelta(t, 1.0, v.GroupDelay.Ratio, 1e-6)

	assert.False(t, v.IsMinimumPhase)
	assert.NotEmpty(t, v.Warning)
}

// TestEnergyConcentration verifies the checkpoint percentages and votes.
func TestEnergyConcentration(t *testing.T) {
	t.Run("concentrated", func(t *testing.T) {
		res := EnergyConcentration(geometricFilter(testVerifyLength, geometricCommon))

		require.Contains(t, res.Checkpoints, 10)
		require.Contains(t, res.Checkpoints, 10000)
		assert.InDelta(t, 100.0, res.Checkpoints[10000], verifyTolerance,
			"checkpoint beyond the filter length covers everything")
		assert.Equal(t, VoteYes, res.Vote)
		assert.Equal(t, ConfidenceHigh, res.Confidence)
	})

	t.Run("back_loaded", func(t *testing.T) {
		// All the energy sits in the final taps.
		coeffs := make([]float64, 4000)
		coeffs[3999] = 1
		coeffs[3998] = 0.5
		res := EnergyConcentration(NewSequence(coeffs, testRate48k))

		assert.Equal(t, VoteNo, res.Vote)
		assert.InDelta(t, 0.0, res.Checkpoints[1000], verifyTolerance)
	})
}

// TestGroupDelaySubtest verifies votes and the degenerate-input path.
func TestGroupDelaySubtest(t *testing.T) {
	t.Run("impulse_has_zero_delay", func(t *testing.T) {
		coeffs := make([]float64, testVerifyLength)
		coeffs[0] = 1
		res := GroupDelay(NewSequence(coeffs, testRate48k), DefaultGroupDelayPoints)

		require.NoError(t, res.Err)
		assert.InDelta(t, 0.0, res.MeanDelay, verifyTolerance)
		assert.Equal(t, VoteYes, res.Vote)
		assert.Equal(t, ConfidenceHigh, res.Confidence)
	})

	t.Run("degenerate_input_abstains", func(t *testing.T) {
		res := GroupDelay(NewSequence([]float64{0, 0, 0}, testRate48k), DefaultGroupDelayPoints)

		assert.Error(t, res.Err)
		assert.Equal(t, VoteUnknown, res.Vote)
	})
}

// TestSymmetrySubtest verifies the tolerance boundary.
func TestSymmetrySubtest(t *testing.T) {
	t.Run("within_tolerance", func(t *testing.T) {
		res := Symmetry(NewSequence([]float64{1.0, 0.5, 0.5, 1.0005}, testRate48k))
		assert.True(t, res.Symmetric)
		assert.Equal(t, VoteNo, res.Vote)
	})

	t.Run("beyond_tolerance", func(t *testing.T) {
		res := Symmetry(NewSequence([]float64{1.0, 0.5, 0.5, 1.1}, testRate48k))
		assert.False(t, res.Symmetric)
		assert.Equal(t, VoteYes, res.Vote)
		assert.InDelta(t, 0.1, res.MaxDifference, verifyTolerance)
	})
}

// TestZeroLocations verifies root classification, the unit-impulse edge
// case, and prefix truncation reporting.
func TestZeroLocations(t *testing.T) {
	t.Run("unit_impulse_vacuously_minimum_phase", func(t *testing.T) {
		coeffs := make([]float64, 16)
		coeffs[0] = 1
		res := ZeroLocations(NewSequence(coeffs, testRate48k), DefaultMaxZeroTestLength)

		require.NoError(t, res.Err)
		assert.Equal(t, 0, res.Total)
		assert.Equal(t, VoteYes, res.Vote)
		assert.Equal(t, ConfidenceDefinitive, res.Confidence)
		assert.False(t, res.TruncatedPrefix)
	})

	t.Run("zeros_inside", func(t *testing.T) {
		res := ZeroLocations(geometricFilter(testVerifyLength, geometricCommon), DefaultMaxZeroTestLength)

		require.NoError(t, res.Err)
		assert.Equal(t, testVerifyLength-1, res.Total)
		assert.Equal(t, res.Total, res.Inside)
		assert.Equal(t, 0, res.Outside)
		assert.Equal(t, VoteYes, res.Vote)
		assert.InDelta(t, geometricCommon, res.MaxMagnitude, 1e-6)
	})

	t.Run("zero_outside", func(t *testing.T) {
		// (1 - 2z^-1): single zero at z = 2.
		res := ZeroLocations(NewSequence([]float64{1, -2}, testRate48k), DefaultMaxZeroTestLength)

		require.NoError(t, res.Err)
		assert.Equal(t, 1, res.Outside)
		assert.Equal(t, VoteNo, res.Vote)
		assert.InDelta(t, 2.0, res.MaxMagnitude, 1e-6)
	})

	t.Run("truncated_prefix", func(t *testing.T) {
		const prefixLimit = 8
		res := ZeroLocations(geometricFilter(testVerifyLength, geometricCommon), prefixLimit)

		assert.True(t, res.TruncatedPrefix)
		assert.Equal(t, prefixLimit, res.TestedLength)
		assert.Equal(t, VoteYes, res.Vote)
	})

	t.Run("all_zero_abstains", func(t *testing.T) {
		res := ZeroLocations(NewSequence([]float64{0, 0, 0}, testRate48k), DefaultMaxZeroTestLength)
		assert.Error(t, res.Err)
		assert.Equal(t, VoteUnknown, res.Vote)
	})
}

// TestAggregators verifies the vote-combination strategies.
func TestAggregators(t *testing.T) {
	yes, no, unknown := VoteYes, VoteNo, VoteUnknown

	t.Run("majority", func(t *testing.T) {
		m := MajorityVote{Quorum: 3}
		assert.True(t, m.Combine([]Vote{yes, yes, yes, no}))
		assert.True(t, m.Combine([]Vote{yes, yes, yes, yes}))
		assert.False(t, m.Combine([]Vote{yes, yes, no, no}))
		assert.False(t, m.Combine([]Vote{yes, yes, unknown, no}), "unknown is not a yes")
	})

	t.Run("unanimous", func(t *testing.T) {
		u := Unanimous{}
		assert.True(t, u.Combine([]Vote{yes, yes, yes, yes}))
		assert.True(t, u.Combine([]Vote{yes, unknown, yes, yes}), "abstentions do not block")
		assert.False(t, u.Combine([]Vote{yes, yes, yes, no}))
		assert.False(t, u.Combine([]Vote{unknown, unknown, unknown, unknown}), "no affirmative vote at all")
	})
}

// TestVerify_AggregatorPluggable verifies that the combination rule is
// substitutable: a strict unanimous rule rejects where one dissent exists.
func TestVerify_AggregatorPluggable(t *testing.T) {
	// The unit impulse of length 1 is trivially symmetric, so the symmetry
	// sub-test dissents while the other three vote yes.
	seq := NewSequence([]float64{1}, testRate48k)

	majority := VerifyMinimumPhase(seq, VerifyConfig{})
	assert.True(t, majority.IsMinimumPhase, "3 of 4 majority carries")

	strict := VerifyMinimumPhase(seq, VerifyConfig{Aggregator: Unanimous{}})
	assert.False(t, strict.IsMinimumPhase, "unanimity blocked by the symmetry dissent")
}
