// Package window provides taper window generation for FIR filter shaping.
package window

import "math"

// Shape selects the taper window family.
type Shape int

const (
	// Linear is a straight ramp. This is the default tail taper.
	Linear Shape = iota

	// Hann is the raised-cosine window half.
	Hann

	// Hamming is the raised-cosine window half with a 0.08 pedestal.
	// Note that a Hamming ramp does not reach zero at its end.
	Hamming

	// Blackman is the three-term Blackman window half.
	Blackman

	// Bartlett is the triangular window half, identical to Linear.
	Bartlett
)

// Hamming window coefficients.
const (
	hammingAlpha = 0.54
	hammingBeta  = 0.46
)

// Blackman window coefficients (classic, alpha = 0.16).
const (
	blackmanA0 = 0.42
	blackmanA1 = 0.50
	blackmanA2 = 0.08
)

// String returns the window name as used in CLI flags.
func (s Shape) String() string {
	switch s {
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Blackman:
		return "blackman"
	case Bartlett:
		return "bartlett"
	default:
		return "linear"
	}
}

// ParseShape maps a window name to its Shape. Unknown names fall back to
// Linear.
func ParseShape(name string) Shape {
	switch name {
	case "hann":
		return Hann
	case "hamming":
		return Hamming
	case "blackman":
		return Blackman
	case "bartlett":
		return Bartlett
	default:
		return Linear
	}
}

// Ramp generates a falling taper of the given length. The first sample is 1
// and the values decrease monotonically toward 0 at the last sample (Hamming
// ends at its pedestal value instead). A length below 2 yields a single zero
// sample, matching the limiting behavior of a ramp that must terminate at 0.
func Ramp(shape Shape, length int) []float64 {
	if length < 1 {
		return nil
	}
	ramp := make([]float64, length)
	if length == 1 {
		ramp[0] = 0
		return ramp
	}

	for i := range ramp {
		// x runs 0..1 across the ramp.
		x := float64(i) / float64(length-1)
		switch shape {
		case Hann:
			ramp[i] = 0.5 * (1 + math.Cos(math.Pi*x))
		case Hamming:
			ramp[i] = hammingAlpha + hammingBeta*math.Cos(math.Pi*x)
		case Blackman:
			ramp[i] = blackmanA0 + blackmanA1*math.Cos(math.Pi*x) + blackmanA2*math.Cos(2*math.Pi*x)
		default: // Linear, Bartlett
			ramp[i] = 1 - x
		}
	}
	return ramp
}
