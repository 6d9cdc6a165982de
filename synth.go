package firconvert

import (
	"fmt"
	"math"

	"github.com/ocatools/firconvert/internal/fftutil"
	"github.com/ocatools/firconvert/internal/window"
	"github.com/tphakala/simd/f64"
)

// Synthesis defaults. The normalization target and taper fraction are
// conventions of the destination filter format, whose first coefficient
// typically encodes direct-path gain; both are configurable in SynthConfig.
const (
	// DefaultNormalizeTarget is the peak value the synthesized filter is
	// scaled to by default.
	DefaultNormalizeTarget = 0.72

	// DefaultTaperFraction is the fraction of the filter tail smoothed by
	// the one-sided taper.
	DefaultTaperFraction = 0.05

	// DefaultRotationThreshold is the fraction of the filter length beyond
	// which a peak is considered acausal and rotated to the front.
	DefaultRotationThreshold = 0.25

	// dB to linear amplitude conversion divisor.
	dbToAmplitudeDivisor = 20.0

	// Minimum usable transform length.
	minSynthesisTaps = 2
)

// Window selects the shape of the synthesizer's one-sided tail taper.
type Window int

const (
	// WindowLinear tapers the tail with a straight ramp (default).
	WindowLinear Window = iota

	// WindowHann tapers with a raised-cosine half.
	WindowHann

	// WindowHamming tapers with a raised-cosine half on a 0.08 pedestal.
	WindowHamming

	// WindowBlackman tapers with a Blackman half.
	WindowBlackman

	// WindowBartlett tapers with a triangular half (same as linear).
	WindowBartlett
)

// shape maps the public window choice onto the window package.
func (w Window) shape() window.Shape {
	switch w {
	case WindowHann:
		return window.Hann
	case WindowHamming:
		return window.Hamming
	case WindowBlackman:
		return window.Blackman
	case WindowBartlett:
		return window.Bartlett
	default:
		return window.Linear
	}
}

// String returns the window name as used in CLI flags.
func (w Window) String() string { return w.shape().String() }

// ParseWindow maps a window name to its Window value, defaulting to linear.
func ParseWindow(name string) Window {
	switch window.ParseShape(name) {
	case window.Hann:
		return WindowHann
	case window.Hamming:
		return WindowHamming
	case window.Blackman:
		return WindowBlackman
	case window.Bartlett:
		return WindowBartlett
	default:
		return WindowLinear
	}
}

// CausalityStrategy converts a zero-phase impulse response into an
// approximately causal one. The default PeakRotation is a heuristic; the
// interface exists so an exact minimum-phase construction (for example via
// the complex cepstrum) can be substituted without touching the rest of the
// synthesis pipeline.
type CausalityStrategy interface {
	// MakeCausal returns a causal rendering of the impulse response. It
	// must not modify its input.
	MakeCausal(impulse []float64) []float64
}

// PeakRotation is the default causality heuristic: when the largest sample
// sits beyond Threshold*N, the response is circularly rotated so the peak
// lands at index 0. This is an approximation of minimum-phase conversion,
// adequate when the zero-phase response is already concentrated.
type PeakRotation struct {
	// Threshold is the peak position, as a fraction of the filter length,
	// beyond which rotation is applied.
	Threshold float64
}

// MakeCausal implements CausalityStrategy.
func (p PeakRotation) MakeCausal(impulse []float64) []float64 {
	n := len(impulse)
	if n == 0 {
		return impulse
	}

	threshold := p.Threshold
	if threshold <= 0 {
		threshold = DefaultRotationThreshold
	}

	peakIdx := 0
	peak := 0.0
	for i, v := range impulse {
		if a := math.Abs(v); a > peak {
			peak = a
			peakIdx = i
		}
	}

	if float64(peakIdx) <= threshold*float64(n) {
		return impulse
	}

	rotated := make([]float64, n)
	for i := range rotated {
		rotated[i] = impulse[(i+peakIdx)%n]
	}
	return rotated
}

// SynthConfig holds the frequency-to-time synthesis parameters.
type SynthConfig struct {
	// Taps is the output filter length N.
	Taps int

	// SampleRate in Hz determines the Nyquist frequency of the grid.
	SampleRate int

	// Window selects the tail taper shape.
	Window Window

	// TaperFraction is the fraction of the tail tapered to zero. Zero
	// disables the taper.
	TaperFraction float64

	// NormalizeTarget is the peak value the result is scaled to. Zero
	// disables normalization.
	NormalizeTarget float64

	// Causality overrides the causality correction strategy. Nil selects
	// PeakRotation with the default threshold.
	Causality CausalityStrategy
}

// DefaultSynthConfig returns the conventional configuration for the
// destination format: linear 5% tail taper and peak normalization to 0.72.
func DefaultSynthConfig(taps, sampleRate int) SynthConfig {
	return SynthConfig{
		Taps:            taps,
		SampleRate:      sampleRate,
		Window:          WindowLinear,
		TaperFraction:   DefaultTaperFraction,
		NormalizeTarget: DefaultNormalizeTarget,
	}
}

// Validate checks the synthesis parameters.
func (c *SynthConfig) Validate() error {
	if c.Taps < minSynthesisTaps {
		return fmt.Errorf("%w: %d taps cannot drive the real transform (minimum %d)", ErrSynthesis, c.Taps, minSynthesisTaps)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrSynthesis, c.SampleRate)
	}
	if c.TaperFraction < 0 || c.TaperFraction > 0.5 {
		return fmt.Errorf("%w: taper fraction %g out of range [0, 0.5]", ErrSynthesis, c.TaperFraction)
	}
	if c.NormalizeTarget < 0 {
		return fmt.Errorf("%w: normalize target must be non-negative, got %g", ErrSynthesis, c.NormalizeTarget)
	}
	return nil
}

// Synthesize turns a correction curve into a causal FIR filter of exactly
// cfg.Taps coefficients:
//
//  1. Interpolate the curve onto a uniform grid of Taps/2+1 bins from DC to
//     Nyquist, clamping to the boundary magnitudes outside the curve's range.
//  2. Convert dB to linear amplitude and treat the result as a zero-phase
//     spectrum.
//  3. Inverse real transform to the time domain.
//  4. Apply the causality correction strategy.
//  5. Taper the tail and optionally normalize the peak.
func Synthesize(curve Curve, cfg SynthConfig) (Sequence, error) {
	if err := curve.Validate(); err != nil {
		return Sequence{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Sequence{}, err
	}

	nBins := cfg.Taps/2 + 1
	nyquist := float64(cfg.SampleRate) / 2
	gridDB := curve.sampleGrid(nBins, nyquist)

	linear := make([]float64, nBins)
	for i, db := range gridDB {
		linear[i] = math.Pow(10, db/dbToAmplitudeDivisor)
	}

	impulse, err := fftutil.InverseReal(linear, cfg.Taps)
	if err != nil {
		return Sequence{}, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	strategy := cfg.Causality
	if strategy == nil {
		strategy = PeakRotation{Threshold: DefaultRotationThreshold}
	}
	impulse = strategy.MakeCausal(impulse)

	applyTailTaper(impulse, cfg.Window, cfg.TaperFraction)

	peak := 0.0
	for _, v := range impulse {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return Sequence{}, fmt.Errorf("%w: curve produces an all-zero response", ErrInvalidCurve)
	}

	if cfg.NormalizeTarget > 0 {
		f64.Scale(impulse, impulse, cfg.NormalizeTarget/peak)
	}

	return Sequence{Coeffs: impulse, SampleRate: cfg.SampleRate}, nil
}

// applyTailTaper multiplies the trailing fraction of the impulse response by
// a falling ramp, leaving the causal head untouched. This suppresses
// truncation discontinuities at the tail.
func applyTailTaper(impulse []float64, w Window, fraction float64) {
	if fraction <= 0 {
		return
	}
	n := len(impulse)
	start := int(float64(n) * (1 - fraction))
	if start >= n {
		return
	}

	ramp := window.Ramp(w.shape(), n-start)
	for i, r := range ramp {
		impulse[start+i] *= r
	}
}
