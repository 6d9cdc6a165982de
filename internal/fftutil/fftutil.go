// Package fftutil wraps the gonum real-valued Fourier transforms with the
// helpers needed for filter synthesis and phase analysis: zero-phase
// reconstruction, magnitude spectra in dB, and frequency-dependent group
// delay.
package fftutil

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrSingularResponse indicates that the transfer function magnitude was too
// small everywhere on the evaluation grid to extract a phase derivative.
var ErrSingularResponse = errors.New("fftutil: transfer function is singular on the evaluation grid")

const (
	// Magnitudes below this floor are clamped before conversion to dB to
	// avoid -Inf in spectra of filters with exact nulls.
	magnitudeFloor = 1e-300

	// Denominator magnitudes below this are treated as singular bins in
	// group delay evaluation.
	singularDenominator = 1e-30

	// dB conversion factor for amplitude quantities (20*log10).
	dbPerDecade = 20.0
)

// InverseReal reconstructs n real time-domain samples from n/2+1 zero-phase
// spectrum magnitudes (imaginary parts zero), assuming conjugate symmetry.
// The result is normalized so that a forward transform reproduces the input
// bins. len(magnitude) must equal n/2+1.
func InverseReal(magnitude []float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("fftutil: transform length %d too short", n)
	}
	if len(magnitude) != n/2+1 {
		return nil, fmt.Errorf("fftutil: got %d spectrum bins, transform length %d needs %d", len(magnitude), n, n/2+1)
	}

	spectrum := make([]complex128, len(magnitude))
	for i, m := range magnitude {
		spectrum[i] = complex(m, 0)
	}

	fft := fourier.NewFFT(n)
	seq := fft.Sequence(make([]float64, n), spectrum)

	// gonum's inverse is unnormalized; scale by 1/n.
	f64.Scale(seq, seq, 1.0/float64(n))
	return seq, nil
}

// MagnitudeDB computes the magnitude spectrum of a real sequence in dB over
// len(coeffs)/2+1 uniform bins from DC to Nyquist.
func MagnitudeDB(coeffs []float64) []float64 {
	fft := fourier.NewFFT(len(coeffs))
	bins := fft.Coefficients(nil, coeffs)

	out := make([]float64, len(bins))
	for i, b := range bins {
		out[i] = dbPerDecade * math.Log10(math.Max(cmplx.Abs(b), magnitudeFloor))
	}
	return out
}

// BinFrequency returns the center frequency in Hz of bin i for a transform of
// length n at the given sample rate.
func BinFrequency(i, n, sampleRate int) float64 {
	return float64(i) * float64(sampleRate) / float64(n)
}

// MagnitudeAtDB evaluates the transfer function magnitude of an FIR filter at
// an arbitrary frequency in Hz via direct evaluation of the discrete-time
// Fourier transform, returning the result in dB. Unlike MagnitudeDB this is
// not restricted to the uniform bin grid.
func MagnitudeAtDB(coeffs []float64, freqHz float64, sampleRate int) float64 {
	omega := 2 * math.Pi * freqHz / float64(sampleRate)
	z := cmplx.Exp(complex(0, -omega))

	// Horner evaluation of H(e^-jw) = sum_k h[k] z^-k... evaluated as a
	// polynomial in z with descending index.
	var h complex128
	for k := len(coeffs) - 1; k >= 0; k-- {
		h = h*z + complex(coeffs[k], 0)
	}
	return dbPerDecade * math.Log10(math.Max(cmplx.Abs(h), magnitudeFloor))
}

// GroupDelay evaluates the group delay of an FIR filter, in samples, on a
// uniform grid of nPoints frequencies over [0, pi). It uses the standard
// identity tau(w) = Re[ DTFT(k*h[k]) / DTFT(h[k]) ], which avoids explicit
// phase unwrapping.
//
// Bins where the transfer function is numerically zero are reported as zero
// delay; if every bin is singular the input is degenerate and
// ErrSingularResponse is returned.
func GroupDelay(coeffs []float64, nPoints int) ([]float64, error) {
	if len(coeffs) == 0 || nPoints < 1 {
		return nil, ErrSingularResponse
	}

	gd := make([]float64, nPoints)
	singular := 0

	for i := range gd {
		omega := math.Pi * float64(i) / float64(nPoints)
		z := cmplx.Exp(complex(0, -omega))

		var num, den complex128
		for k := len(coeffs) - 1; k >= 0; k-- {
			den = den*z + complex(coeffs[k], 0)
			num = num*z + complex(float64(k)*coeffs[k], 0)
		}

		if cmplx.Abs(den) < singularDenominator {
			singular++
			continue
		}
		gd[i] = real(num / den)
	}

	if singular == nPoints {
		return nil, ErrSingularResponse
	}
	return gd, nil
}

// Mean returns the arithmetic mean of a slice.
func Mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return f64.Sum(s) / float64(len(s))
}
