package firconvert

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CurvePoint is one (frequency, magnitude) sample of a correction curve.
type CurvePoint struct {
	// Frequency in Hz.
	Frequency float64

	// MagnitudeDB is the desired correction gain in dB at Frequency.
	MagnitudeDB float64
}

// Curve is a sparse frequency-response correction curve with strictly
// increasing frequencies, as exported by room measurement tools.
type Curve struct {
	Points []CurvePoint
}

// ParseCurve reads a whitespace-delimited correction curve, one
// (frequency_Hz, magnitude_dB) pair per non-empty line. Malformed lines are
// skipped rather than failing the load; only a read failure is an error.
// Validation of the resulting curve is deferred to the consumer.
func ParseCurve(r io.Reader) (Curve, error) {
	var curve Curve

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		freq, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		mag, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}

		curve.Points = append(curve.Points, CurvePoint{Frequency: freq, MagnitudeDB: mag})
	}
	if err := scanner.Err(); err != nil {
		return Curve{}, fmt.Errorf("firconvert: reading curve: %w", err)
	}

	return curve, nil
}

// LoadCurveFile opens and parses a correction curve file. See ParseCurve.
func LoadCurveFile(path string) (Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return Curve{}, fmt.Errorf("firconvert: %w", err)
	}
	defer f.Close()
	return ParseCurve(f)
}

// Validate checks that the curve can drive a synthesis: at least two points,
// non-negative frequencies, and strictly increasing frequency order.
func (c Curve) Validate() error {
	if len(c.Points) < 2 {
		return fmt.Errorf("%w: need at least 2 points, have %d", ErrInvalidCurve, len(c.Points))
	}
	if c.Points[0].Frequency < 0 {
		return fmt.Errorf("%w: negative frequency %g", ErrInvalidCurve, c.Points[0].Frequency)
	}
	for i := 1; i < len(c.Points); i++ {
		if c.Points[i].Frequency <= c.Points[i-1].Frequency {
			return fmt.Errorf("%w: frequencies not strictly increasing at point %d (%g after %g)",
				ErrInvalidCurve, i, c.Points[i].Frequency, c.Points[i-1].Frequency)
		}
	}
	return nil
}

// MagnitudeAt linearly interpolates the curve's magnitude in dB at a
// frequency. Frequencies outside the curve's range clamp to the boundary
// magnitudes (flat extrapolation) rather than extending the boundary slope,
// avoiding unbounded gain or attenuation at DC and Nyquist.
func (c Curve) MagnitudeAt(freq float64) float64 {
	pts := c.Points
	if len(pts) == 0 {
		return 0
	}
	if freq <= pts[0].Frequency {
		return pts[0].MagnitudeDB
	}
	if freq >= pts[len(pts)-1].Frequency {
		return pts[len(pts)-1].MagnitudeDB
	}

	// Find the enclosing segment.
	lo := 0
	for lo+1 < len(pts) && pts[lo+1].Frequency < freq {
		lo++
	}
	a, b := pts[lo], pts[lo+1]
	t := (freq - a.Frequency) / (b.Frequency - a.Frequency)
	return a.MagnitudeDB + t*(b.MagnitudeDB-a.MagnitudeDB)
}

// sampleGrid interpolates the curve in dB onto nBins uniform frequency bins
// spanning 0 to nyquist inclusive.
func (c Curve) sampleGrid(nBins int, nyquist float64) []float64 {
	grid := make([]float64, nBins)
	pts := c.Points
	seg := 0

	for i := range grid {
		freq := float64(i) * nyquist / float64(nBins-1)

		switch {
		case freq <= pts[0].Frequency:
			grid[i] = pts[0].MagnitudeDB
		case freq >= pts[len(pts)-1].Frequency:
			grid[i] = pts[len(pts)-1].MagnitudeDB
		default:
			// Bins are visited in increasing frequency order, so the
			// segment pointer only ever moves forward.
			for pts[seg+1].Frequency < freq {
				seg++
			}
			a, b := pts[seg], pts[seg+1]
			t := (freq - a.Frequency) / (b.Frequency - a.Frequency)
			grid[i] = a.MagnitudeDB + t*(b.MagnitudeDB-a.MagnitudeDB)
		}
	}
	return grid
}
