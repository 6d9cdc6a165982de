package firconvert

import (
	"math"
	"math/cmplx"

	"github.com/ocatools/firconvert/internal/fftutil"
	"github.com/ocatools/firconvert/internal/polyroot"
)

// Minimum-phase verification thresholds. These calibrations are empirical
// and may need tuning per filter family; the aggregation rule is likewise
// pluggable via VerifyConfig.Aggregator.
const (
	// energyCheckpointTaps is the sample count whose cumulative energy
	// decides the energy-concentration verdict.
	energyCheckpointTaps = 1000

	// Energy percentages separating the concentration verdicts.
	energyMinPhasePercent = 95.0
	energyHighConfPercent = 99.0

	// Group-delay ratio thresholds against the linear-phase delay (N-1)/2.
	groupDelayMinPhaseRatio = 0.01
	groupDelayHighConfRatio = 0.001

	// symmetryTolerance is the maximum half-vs-reversed-half difference
	// that certifies a symmetric (linear-phase) sequence.
	symmetryTolerance = 0.001

	// Unit-circle tolerance band for root classification.
	unitCircleInner = 0.999
	unitCircleOuter = 1.001

	// DefaultGroupDelayPoints is the size of the frequency grid used by
	// the group-delay sub-test.
	DefaultGroupDelayPoints = 2048

	// DefaultMaxZeroTestLength bounds the polynomial degree handed to the
	// root finder; root-finding much beyond this length is numerically
	// unstable.
	DefaultMaxZeroTestLength = 4096
)

// Vote is a sub-test's boolean-or-unknown verdict.
type Vote int

const (
	// VoteUnknown means the sub-test could not decide and abstains.
	VoteUnknown Vote = iota

	// VoteYes means the sub-test finds the sequence minimum-phase.
	VoteYes

	// VoteNo means the sub-test finds the sequence not minimum-phase.
	VoteNo
)

// String returns the vote label.
func (v Vote) String() string {
	switch v {
	case VoteYes:
		return "minimum-phase"
	case VoteNo:
		return "not minimum-phase"
	default:
		return "unknown"
	}
}

// Confidence labels how strongly a sub-test trusts its own verdict.
type Confidence string

const (
	// ConfidenceMedium is a verdict inside the calibrated but not decisive
	// range.
	ConfidenceMedium Confidence = "medium"

	// ConfidenceHigh is a verdict well clear of the decision threshold.
	ConfidenceHigh Confidence = "high"

	// ConfidenceDefinitive marks a mathematically exhaustive test.
	ConfidenceDefinitive Confidence = "definitive"
)

// EnergyTestResult reports the energy-concentration sub-test.
type EnergyTestResult struct {
	// Checkpoints maps sample counts to the cumulative-energy percentage
	// within that many leading taps. Counts beyond the filter length use
	// the full-length percentage (100).
	Checkpoints map[int]float64

	Vote       Vote
	Confidence Confidence
}

// GroupDelayResult reports the group-delay sub-test.
type GroupDelayResult struct {
	// MeanDelay is the mean group delay in samples across the frequency
	// grid; LinearPhaseDelay is the theoretical symmetric-filter delay
	// (N-1)/2; Ratio is their quotient.
	MeanDelay        float64
	LinearPhaseDelay float64
	Ratio            float64

	Vote       Vote
	Confidence Confidence

	// Err records a numerical failure; the vote is then VoteUnknown.
	Err error
}

// SymmetryResult reports the half-vs-reversed-half comparison.
type SymmetryResult struct {
	// MaxDifference is the largest absolute difference between the first
	// half and the reversed second half.
	MaxDifference float64

	// Symmetric certifies linear phase, which excludes minimum phase.
	Symmetric bool

	Vote       Vote
	Confidence Confidence
}

// ZeroLocationResult reports the polynomial-root sub-test.
type ZeroLocationResult struct {
	// TestedLength is the prefix length handed to the root finder;
	// TruncatedPrefix is true when that prefix is shorter than the filter,
	// in which case the verdict is proven only for the prefix.
	TestedLength    int
	TruncatedPrefix bool

	// Root counts by position relative to the unit circle, with a 0.1%
	// tolerance band counted as on-circle.
	Total    int
	Inside   int
	OnCircle int
	Outside  int

	// MaxMagnitude is the largest root magnitude found.
	MaxMagnitude float64

	Vote       Vote
	Confidence Confidence

	// Err records a root-finding failure; the vote is then VoteUnknown.
	Err error
}

// Verdict combines the four sub-tests into a final decision.
type Verdict struct {
	Energy     EnergyTestResult
	GroupDelay GroupDelayResult
	Symmetry   SymmetryResult
	ZeroLoc    ZeroLocationResult

	// IsMinimumPhase is the aggregated decision.
	IsMinimumPhase bool

	// Warning is set when the decision is negative, since the destination
	// filter format requires minimum-phase responses.
	Warning string
}

// Aggregator combines sub-test votes into the final boolean. VoteUnknown
// entries are abstentions, not negatives.
type Aggregator interface {
	Combine(votes []Vote) bool
}

// MajorityVote declares minimum-phase when at least Quorum sub-tests vote
// yes. The default quorum is 3 of 4.
type MajorityVote struct {
	Quorum int
}

// Combine implements Aggregator.
func (m MajorityVote) Combine(votes []Vote) bool {
	quorum := m.Quorum
	if quorum <= 0 {
		quorum = 3
	}
	yes := 0
	for _, v := range votes {
		if v == VoteYes {
			yes++
		}
	}
	return yes >= quorum
}

// Unanimous declares minimum-phase only when every non-abstaining sub-test
// votes yes and at least one does.
type Unanimous struct{}

// Combine implements Aggregator.
func (Unanimous) Combine(votes []Vote) bool {
	yes := 0
	for _, v := range votes {
		switch v {
		case VoteNo:
			return false
		case VoteYes:
			yes++
		}
	}
	return yes > 0
}

// VerifyConfig tunes the minimum-phase verifier. The zero value selects the
// defaults.
type VerifyConfig struct {
	// Aggregator combines the sub-test votes; nil selects MajorityVote
	// with a quorum of 3.
	Aggregator Aggregator

	// GroupDelayPoints is the frequency-grid size of the group-delay
	// sub-test; zero selects DefaultGroupDelayPoints.
	GroupDelayPoints int

	// MaxZeroTestLength bounds the prefix handed to the root finder; zero
	// selects DefaultMaxZeroTestLength.
	MaxZeroTestLength int
}

// VerifyMinimumPhase runs the four minimum-phase sub-tests on seq and
// combines them into a Verdict. All sub-tests run even when an early one is
// decisive, so the verdict carries the full evidence.
func VerifyMinimumPhase(seq Sequence, cfg VerifyConfig) Verdict {
	points := cfg.GroupDelayPoints
	if points <= 0 {
		points = DefaultGroupDelayPoints
	}
	maxZeroLen := cfg.MaxZeroTestLength
	if maxZeroLen <= 0 {
		maxZeroLen = DefaultMaxZeroTestLength
	}
	agg := cfg.Aggregator
	if agg == nil {
		agg = MajorityVote{Quorum: 3}
	}

	v := Verdict{
		Energy:     EnergyConcentration(seq),
		GroupDelay: GroupDelay(seq, points),
		Symmetry:   Symmetry(seq),
		ZeroLoc:    ZeroLocations(seq, maxZeroLen),
	}

	v.IsMinimumPhase = agg.Combine([]Vote{
		v.Energy.Vote, v.GroupDelay.Vote, v.Symmetry.Vote, v.ZeroLoc.Vote,
	})
	if !v.IsMinimumPhase {
		v.Warning = "filter is linear or mixed phase; the destination format requires minimum-phase filters"
	}
	return v
}

// EnergyConcentration measures how front-loaded the filter's energy is. A
// minimum-phase filter concentrates energy at the start; the verdict checks
// the cumulative percentage within the first 1000 taps (or the whole filter
// when shorter).
func EnergyConcentration(seq Sequence) EnergyTestResult {
	profile := seq.EnergyProfile()
	n := len(seq.Coeffs)

	res := EnergyTestResult{Checkpoints: make(map[int]float64, 4)}
	for _, count := range []int{10, 100, 1000, 10000} {
		taps := count
		if taps > n {
			taps = n
		}
		res.Checkpoints[count] = energyAt(profile, taps)
	}

	decisive := energyCheckpointTaps
	if decisive > n {
		decisive = n
	}
	pct := energyAt(profile, decisive)

	switch {
	case pct > energyHighConfPercent:
		res.Vote, res.Confidence = VoteYes, ConfidenceHigh
	case pct > energyMinPhasePercent:
		res.Vote, res.Confidence = VoteYes, ConfidenceMedium
	default:
		res.Vote, res.Confidence = VoteNo, ConfidenceMedium
	}
	return res
}

// GroupDelay compares the filter's mean group delay against the theoretical
// linear-phase delay (N-1)/2. A minimum-phase filter has close to the least
// possible delay, so the ratio stays near zero.
func GroupDelay(seq Sequence, nPoints int) GroupDelayResult {
	n := len(seq.Coeffs)
	res := GroupDelayResult{LinearPhaseDelay: float64(n-1) / 2}

	delays, err := fftutil.GroupDelay(seq.Coeffs, nPoints)
	if err != nil {
		res.Err = err
		res.Vote = VoteUnknown
		return res
	}

	res.MeanDelay = fftutil.Mean(delays)
	if res.LinearPhaseDelay > 0 {
		res.Ratio = math.Abs(res.MeanDelay) / res.LinearPhaseDelay
	}

	switch {
	case res.Ratio < groupDelayHighConfRatio:
		res.Vote, res.Confidence = VoteYes, ConfidenceHigh
	case res.Ratio < groupDelayMinPhaseRatio:
		res.Vote, res.Confidence = VoteYes, ConfidenceMedium
	default:
		res.Vote, res.Confidence = VoteNo, ConfidenceMedium
	}
	return res
}

// Symmetry compares the first half of the sequence against the reversed
// second half. A symmetric FIR filter has linear phase, which excludes
// minimum phase; asymmetry is consistent with minimum phase.
func Symmetry(seq Sequence) SymmetryResult {
	coeffs := seq.Coeffs
	n := len(coeffs)

	res := SymmetryResult{Confidence: ConfidenceHigh}
	for i := 0; i < n/2; i++ {
		if d := math.Abs(coeffs[i] - coeffs[n-1-i]); d > res.MaxDifference {
			res.MaxDifference = d
		}
	}

	res.Symmetric = res.MaxDifference < symmetryTolerance
	if res.Symmetric {
		res.Vote = VoteNo
	} else {
		res.Vote = VoteYes
	}
	return res
}

// ZeroLocations finds the transfer-function zeros of the filter (roots of
// the coefficient polynomial) and classifies each against the unit circle
// with a 0.1% tolerance band. The test is mathematically exhaustive for the
// tested prefix, which is capped at maxLength taps; TruncatedPrefix reports
// when the cap applied, so callers can distinguish "proven minimum-phase"
// from "proven only for a prefix".
func ZeroLocations(seq Sequence, maxLength int) ZeroLocationResult {
	coeffs := seq.Coeffs
	res := ZeroLocationResult{TestedLength: len(coeffs), Confidence: ConfidenceDefinitive}

	if len(coeffs) > maxLength {
		res.TestedLength = maxLength
		res.TruncatedPrefix = true
		coeffs = coeffs[:maxLength]
	}

	// The polynomial H(z) = sum h_k z^-k shares its zeros with the
	// ascending-power polynomial in z^-1, so the coefficients feed the
	// root finder in filter order.
	roots, err := polyroot.Roots(coeffs)
	if err != nil {
		res.Err = err
		res.Vote = VoteUnknown
		return res
	}

	res.Total = len(roots)
	for _, r := range roots {
		mag := cmplx.Abs(r)
		if mag > res.MaxMagnitude {
			res.MaxMagnitude = mag
		}
		switch {
		case mag < unitCircleInner:
			res.Inside++
		case mag > unitCircleOuter:
			res.Outside++
		default:
			res.OnCircle++
		}
	}

	if res.Outside == 0 {
		res.Vote = VoteYes
	} else {
		res.Vote = VoteNo
	}
	return res
}
