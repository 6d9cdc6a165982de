package firconvert

import (
	"fmt"

	"github.com/ocatools/firconvert/internal/fftutil"
)

// PointDeviation is the response error at one correction-curve point.
type PointDeviation struct {
	// Frequency in Hz and the curve's requested magnitude at it.
	Frequency   float64
	RequestedDB float64

	// MeasuredDB is the filter's actual magnitude at Frequency, and
	// DeviationDB the gain-compensated error against the request.
	MeasuredDB  float64
	DeviationDB float64
}

// SpectrumReport compares a filter's realized magnitude response against
// the correction curve it was synthesized from.
type SpectrumReport struct {
	// GainOffsetDB is the mean measured-minus-requested level across the
	// curve points. Peak normalization shifts the whole response by a
	// constant, so deviations are reported relative to this offset.
	GainOffsetDB float64

	Points []PointDeviation

	// MaxAbsDeviationDB is the worst gain-compensated error.
	MaxAbsDeviationDB float64
}

// CheckSpectrum recomputes the filter's magnitude response at each point of
// the correction curve and reports the shape error. The comparison is
// gain-invariant: a constant level shift (from normalization) does not count
// as deviation.
func CheckSpectrum(seq Sequence, curve Curve) (SpectrumReport, error) {
	if err := curve.Validate(); err != nil {
		return SpectrumReport{}, err
	}
	if seq.Len() == 0 || seq.SampleRate <= 0 {
		return SpectrumReport{}, fmt.Errorf("%w: sequence has no samples or no sample rate", ErrSynthesis)
	}

	rep := SpectrumReport{Points: make([]PointDeviation, 0, len(curve.Points))}
	nyquist := float64(seq.SampleRate) / 2

	sum := 0.0
	for _, p := range curve.Points {
		if p.Frequency > nyquist {
			continue
		}
		measured := fftutil.MagnitudeAtDB(seq.Coeffs, p.Frequency, seq.SampleRate)
		rep.Points = append(rep.Points, PointDeviation{
			Frequency:   p.Frequency,
			RequestedDB: p.MagnitudeDB,
			MeasuredDB:  measured,
		})
		sum += measured - p.MagnitudeDB
	}
	if len(rep.Points) == 0 {
		return SpectrumReport{}, fmt.Errorf("%w: no curve points below Nyquist", ErrInvalidCurve)
	}

	rep.GainOffsetDB = sum / float64(len(rep.Points))
	for i := range rep.Points {
		d := rep.Points[i].MeasuredDB - rep.Points[i].RequestedDB - rep.GainOffsetDB
		rep.Points[i].DeviationDB = d
		if d < 0 {
			d = -d
		}
		if d > rep.MaxAbsDeviationDB {
			rep.MaxAbsDeviationDB = d
		}
	}
	return rep, nil
}
