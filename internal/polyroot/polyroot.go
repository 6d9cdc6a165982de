// Package polyroot finds the complex roots of real-coefficient polynomials.
// It is used to locate the transfer-function zeros of FIR filters, where the
// polynomial degree can reach a few thousand; the simultaneous-iteration
// solver keeps each sweep at O(n^2) which stays tractable in that range.
package polyroot

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrDegeneratePolynomial is returned when the polynomial has no usable
// coefficients (all zero or empty).
var ErrDegeneratePolynomial = errors.New("polyroot: degenerate polynomial")

// ErrNoConvergence is returned when the iteration fails to settle within the
// iteration budget. The input was numerically too ill-conditioned to factor.
var ErrNoConvergence = errors.New("polyroot: iteration did not converge")

const (
	// Iteration budget for the Durand-Kerner sweep. Convergence is
	// typically reached well under 100 sweeps even at high degree.
	maxIterations = 500

	// Relative correction size below which a sweep is considered settled.
	convergenceTol = 1e-12

	// Angular offset for the initial root estimates, keeping them off the
	// real axis where real-coefficient iterations can stall.
	initialAngleOffset = 0.5

	// Perturbation applied when two estimates collide during a sweep.
	collisionNudge = 1e-6
)

// Roots returns the roots of the polynomial
//
//	c[0]*z^(n-1) + c[1]*z^(n-2) + ... + c[n-1]
//
// with coefficients in descending power order, using Durand-Kerner
// (Weierstrass) simultaneous iteration. Leading zero coefficients are
// stripped. Trailing zero coefficients contribute exact roots at the origin;
// those are stripped as well and not reported, since they never affect
// unit-circle classification.
func Roots(coeffs []float64) ([]complex128, error) {
	lead := 0
	for lead < len(coeffs) && coeffs[lead] == 0 {
		lead++
	}
	if lead == len(coeffs) {
		return nil, ErrDegeneratePolynomial
	}

	tail := len(coeffs)
	for tail > lead && coeffs[tail-1] == 0 {
		tail--
	}

	trimmed := coeffs[lead:tail]
	degree := len(trimmed) - 1
	if degree == 0 {
		// Constant polynomial: no roots.
		return nil, nil
	}

	// Normalize to a monic polynomial.
	monic := make([]complex128, len(trimmed))
	for i, c := range trimmed {
		monic[i] = complex(c/trimmed[0], 0)
	}

	return durandKerner(monic)
}

// durandKerner iterates all roots of a monic polynomial simultaneously.
// Coefficients are in descending power order with monic[0] == 1.
func durandKerner(monic []complex128) ([]complex128, error) {
	degree := len(monic) - 1

	// Cauchy bound on root magnitude for the initial circle.
	radius := 0.0
	for _, c := range monic[1:] {
		if r := cmplx.Abs(c); r > radius {
			radius = r
		}
	}
	radius++

	roots := make([]complex128, degree)
	for k := range roots {
		angle := 2*math.Pi*float64(k)/float64(degree) + initialAngleOffset
		roots[k] = cmplx.Rect(radius, angle)
	}

	for iter := 0; iter < maxIterations; iter++ {
		maxStep := 0.0

		for k, zk := range roots {
			num := eval(monic, zk)

			den := complex(1, 0)
			for j, zj := range roots {
				if j == k {
					continue
				}
				diff := zk - zj
				if diff == 0 {
					diff = complex(collisionNudge, collisionNudge)
				}
				den *= diff
			}

			step := num / den
			roots[k] = zk - step

			if s := cmplx.Abs(step) / (1 + cmplx.Abs(roots[k])); s > maxStep {
				maxStep = s
			}
		}

		if maxStep < convergenceTol {
			return roots, nil
		}
	}

	return nil, ErrNoConvergence
}

// eval computes p(z) by Horner's method for descending-order coefficients.
func eval(coeffs []complex128, z complex128) complex128 {
	acc := coeffs[0]
	for _, c := range coeffs[1:] {
		acc = acc*z + c
	}
	return acc
}
