package firconvert

import (
	"fmt"
	"math"
)

// ActiveRegionFloorDB is the magnitude, relative to the filter's peak, at or
// below which samples count as silence when locating the active region.
const ActiveRegionFloorDB = -120.0

// Risk grades how much a proposed truncation would damage a filter.
type Risk int

const (
	// RiskSafe means the active region fits entirely within the target.
	RiskSafe Risk = iota

	// RiskMostlySafe means the 99% energy milestone precedes the target.
	RiskMostlySafe

	// RiskModerate means the 95% energy milestone precedes the target.
	RiskModerate

	// RiskHigh means the 90% energy milestone precedes the target.
	RiskHigh

	// RiskCatastrophic means even the 90% milestone lies at or beyond the
	// target.
	RiskCatastrophic
)

// String returns the canonical risk label.
func (r Risk) String() string {
	switch r {
	case RiskSafe:
		return "SAFE"
	case RiskMostlySafe:
		return "MOSTLY_SAFE"
	case RiskModerate:
		return "MODERATE_RISK"
	case RiskHigh:
		return "HIGH_RISK"
	default:
		return "CATASTROPHIC"
	}
}

// AllowsAutomatic reports whether the truncation may proceed without an
// explicit override.
func (r Risk) AllowsAutomatic() bool {
	return r == RiskSafe || r == RiskMostlySafe
}

// classifyRisk grades a truncation from the report's active region and
// energy milestone indices. The conditions are checked in order of
// decreasing safety; the first that holds decides the level. An empty
// active region (ActiveEnd == -1) is trivially safe.
func classifyRisk(rep TruncationReport) Risk {
	switch {
	case rep.ActiveEnd < rep.TargetLength:
		return RiskSafe
	case rep.Energy99 < rep.TargetLength:
		return RiskMostlySafe
	case rep.Energy95 < rep.TargetLength:
		return RiskModerate
	case rep.Energy90 < rep.TargetLength:
		return RiskHigh
	default:
		return RiskCatastrophic
	}
}

// TruncationReport describes the consequences of shortening a filter to a
// target length.
type TruncationReport struct {
	// OriginalLength is the filter length before truncation.
	OriginalLength int

	// TargetLength is the proposed length.
	TargetLength int

	// ActiveStart and ActiveEnd bound the region (inclusive indices) whose
	// samples exceed ActiveRegionFloorDB relative to the peak. Both are -1
	// for an all-zero filter.
	ActiveStart int
	ActiveEnd   int

	// Energy milestone indices: the number of leading taps needed to retain
	// the given percentage of the total energy.
	Energy50  int
	Energy90  int
	Energy95  int
	Energy99  int
	Energy999 int

	// EnergyRetainedPercent is the share of energy kept by the target
	// prefix; EnergyLostPercent is its complement.
	EnergyRetainedPercent float64
	EnergyLostPercent     float64

	// RMSKept and RMSDiscarded are the root-mean-square amplitudes of the
	// kept prefix and the discarded tail.
	RMSKept      float64
	RMSDiscarded float64

	// Risk grades the truncation.
	Risk Risk
}

// AnalyzeTruncation reports how safely seq can be shortened to targetLength.
// A target at or beyond the current length retains all energy and is always
// safe. The analysis never fails: an all-zero filter reports full retention
// with an empty active region.
func AnalyzeTruncation(seq Sequence, targetLength int) TruncationReport {
	coeffs := seq.Coeffs
	n := len(coeffs)

	rep := TruncationReport{
		OriginalLength: n,
		TargetLength:   targetLength,
	}

	rep.ActiveStart, rep.ActiveEnd = activeRegion(coeffs)

	profile := seq.EnergyProfile()
	rep.Energy50 = milestoneIndex(profile, 50)
	rep.Energy90 = milestoneIndex(profile, 90)
	rep.Energy95 = milestoneIndex(profile, 95)
	rep.Energy99 = milestoneIndex(profile, 99)
	rep.Energy999 = milestoneIndex(profile, 99.9)

	kept := targetLength
	if kept > n {
		kept = n
	}
	if kept < 0 {
		kept = 0
	}

	rep.EnergyRetainedPercent = energyAt(profile, kept)
	rep.EnergyLostPercent = 100 - rep.EnergyRetainedPercent
	rep.RMSKept = rms(coeffs[:kept])
	rep.RMSDiscarded = rms(coeffs[kept:])
	rep.Risk = classifyRisk(rep)

	return rep
}

// activeRegion returns the first and last indices whose magnitude exceeds
// ActiveRegionFloorDB relative to the peak, or (-1, -1) for an all-zero
// filter.
func activeRegion(coeffs []float64) (start, end int) {
	peak := 0.0
	for _, v := range coeffs {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return -1, -1
	}

	floor := peak * math.Pow(10, ActiveRegionFloorDB/20)
	start, end = -1, -1
	for i, v := range coeffs {
		if math.Abs(v) > floor {
			if start < 0 {
				start = i
			}
			end = i
		}
	}
	return start, end
}

// Truncate returns seq shortened (or zero-padded) to exactly targetLength
// coefficients. When the truncation risk forbids automatic shortening and
// force is false, Truncate returns ErrUnsafeTruncation wrapping the risk
// label; the caller can inspect the report via AnalyzeTruncation first.
func Truncate(seq Sequence, targetLength int, force bool) (Sequence, error) {
	if targetLength <= 0 {
		return Sequence{}, fmt.Errorf("%w: target length must be positive, got %d", ErrUnsafeTruncation, targetLength)
	}

	rep := AnalyzeTruncation(seq, targetLength)
	if !force && !rep.Risk.AllowsAutomatic() {
		return Sequence{}, fmt.Errorf("%w: shortening %d -> %d taps loses %.2f%% of the energy (%s)",
			ErrUnsafeTruncation, rep.OriginalLength, targetLength, rep.EnergyLostPercent, rep.Risk)
	}

	out := make([]float64, targetLength)
	copy(out, seq.Coeffs)
	return Sequence{Coeffs: out, SampleRate: seq.SampleRate}, nil
}
