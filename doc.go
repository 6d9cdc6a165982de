// Package firconvert converts long FIR room-correction filters between the
// representations used in a calibration workflow and verifies that such
// conversions do not corrupt the filter's acoustic behavior.
//
// The package covers four concerns:
//
//   - Loading filter coefficients from PCM sample buffers (WAV exports of
//     correction filters) into a normalized [Sequence].
//   - Synthesizing a causal FIR filter of a fixed tap count from a sparse
//     frequency-domain correction curve ([Synthesize]).
//   - Assessing whether truncating a long filter to a shorter tap count is
//     safe ([AnalyzeTruncation], [Truncate]).
//   - Verifying empirically that a filter is minimum phase, a property the
//     destination format requires ([VerifyMinimumPhase]).
//
// # Quick start
//
// Convert a correction curve to a 16,321-tap filter:
//
//	curve, err := firconvert.LoadCurveFile("front_left_correction.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	seq, err := firconvert.Synthesize(curve, firconvert.DefaultSynthConfig(16321, 48000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Check whether an existing filter survives truncation:
//
//	seq, err := firconvert.LoadWAVFilter("Filters for Front Left.wav")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report := firconvert.AnalyzeTruncation(seq, 16321)
//	if report.Risk.AllowsAutomatic() {
//	    seq, _ = firconvert.Truncate(seq, 16321, false)
//	}
//
// All operations are pure functions over immutable sequences; independent
// filters may be processed concurrently with no synchronization (see
// [AnalyzeFiles]).
//
// Container-file injection of finished filters lives in the oca subpackage.
package firconvert
