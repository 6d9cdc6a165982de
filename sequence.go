package firconvert

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ocatools/firconvert/internal/pcm"
	"github.com/ocatools/firconvert/oca"
	"github.com/tphakala/simd/f64"
)

// Errors returned by the conversion and verification operations. Errors
// raised by subpackages are re-exported here so the full set is discoverable
// in one place and matches with errors.Is either way.
var (
	// ErrUnsupportedFormat indicates an unrecognized PCM sample encoding.
	ErrUnsupportedFormat = pcm.ErrUnsupportedFormat

	// ErrInvalidCurve indicates a degenerate or malformed correction curve.
	ErrInvalidCurve = errors.New("firconvert: invalid correction curve")

	// ErrSynthesis indicates the transform step cannot produce the
	// requested filter length.
	ErrSynthesis = errors.New("firconvert: synthesis failed")

	// ErrUnsafeTruncation indicates a truncation at risk level
	// MODERATE_RISK or worse without an explicit override.
	ErrUnsafeTruncation = errors.New("firconvert: unsafe truncation")

	// ErrLengthMismatch indicates a filter array length that does not match
	// the destination channel's expected length during injection.
	ErrLengthMismatch = oca.ErrLengthMismatch

	// ErrNonFinite indicates a NaN or infinite value in a sequence
	// destined for injection.
	ErrNonFinite = oca.ErrNonFinite
)

// Sequence is an immutable FIR coefficient sequence paired with its sample
// rate. Operations in this package never modify a Sequence after it is
// produced; analyses derive new values instead.
type Sequence struct {
	// Coeffs holds the filter taps. Callers must not mutate it.
	Coeffs []float64

	// SampleRate is the sample rate in Hz the taps were designed for.
	SampleRate int
}

// NewSequence wraps coefficients and a sample rate as a Sequence.
func NewSequence(coeffs []float64, sampleRate int) Sequence {
	return Sequence{Coeffs: coeffs, SampleRate: sampleRate}
}

// Len returns the tap count.
func (s Sequence) Len() int { return len(s.Coeffs) }

// Duration returns the filter's time span at its sample rate.
func (s Sequence) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Coeffs)) / float64(s.SampleRate) * float64(time.Second))
}

// Peak returns the largest absolute coefficient value and its index. An empty
// sequence yields (0, 0).
func (s Sequence) Peak() (value float64, index int) {
	for i, c := range s.Coeffs {
		if a := math.Abs(c); a > value {
			value = a
			index = i
		}
	}
	return value, index
}

// RMS returns the root-mean-square of the coefficients.
func (s Sequence) RMS() float64 {
	return rms(s.Coeffs)
}

// Clone returns a Sequence backed by a fresh copy of the coefficients.
func (s Sequence) Clone() Sequence {
	return Sequence{
		Coeffs:     append([]float64(nil), s.Coeffs...),
		SampleRate: s.SampleRate,
	}
}

// CheckFinite returns ErrNonFinite if any coefficient is NaN or infinite.
func (s Sequence) CheckFinite() error {
	return oca.CheckFinite(s.Coeffs)
}

// EnergyProfile returns the cumulative energy distribution of the sequence:
// element i is the percentage of total energy contained in taps [0, i]. The
// profile is non-decreasing, stays within [0, 100], and is pinned to exactly
// 100 at the last index. A zero-energy sequence yields an all-100 profile.
func (s Sequence) EnergyProfile() []float64 {
	n := len(s.Coeffs)
	if n == 0 {
		return nil
	}

	profile := make([]float64, n)
	cum := 0.0
	for i, c := range s.Coeffs {
		cum += c * c
		profile[i] = cum
	}

	total := profile[n-1]
	if total == 0 {
		for i := range profile {
			profile[i] = 100
		}
		return profile
	}

	for i := range profile {
		profile[i] = profile[i] / total * 100
	}
	profile[n-1] = 100
	return profile
}

// energyAt returns the energy percentage contained in the first taps samples
// of the profile; taps beyond the profile count as the full 100%.
func energyAt(profile []float64, taps int) float64 {
	if taps <= 0 {
		return 0
	}
	if taps >= len(profile) {
		return 100
	}
	return profile[taps-1]
}

// milestoneIndex returns the smallest index whose cumulative energy reaches
// at least pct percent.
func milestoneIndex(profile []float64, pct float64) int {
	for i, p := range profile {
		if p >= pct {
			return i
		}
	}
	return len(profile) - 1
}

// rms computes the root-mean-square of a slice, 0 for an empty slice.
func rms(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return math.Sqrt(f64.DotProduct(s, s) / float64(len(s)))
}

// String summarizes the sequence for logs.
func (s Sequence) String() string {
	peak, idx := s.Peak()
	return fmt.Sprintf("Sequence(%d taps @ %d Hz, peak %.6f at %d)", len(s.Coeffs), s.SampleRate, peak, idx)
}
