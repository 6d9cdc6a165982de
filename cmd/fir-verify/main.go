// Command fir-verify analyzes FIR filter files for truncation safety and
// minimum-phase behavior.
//
// Usage:
//
//	fir-verify filter.wav
//	fir-verify -target-length 2048 left.wav right.wav
//	fir-verify -rate 44100 filter.json
//
// WAV files carry their own sample rate; JSON coefficient arrays use -rate.
// Multiple files are analyzed concurrently.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ocatools/firconvert"
)

const minRequiredArgs = 1

func main() {
	targetLength := flag.Int("target-length", 0, "Report truncation safety for this length (0 disables)")
	rate := flag.Int("rate", firconvert.DefaultSampleRate, "Assumed sample rate for JSON inputs, in Hz")
	phase := flag.Bool("phase", true, "Run the minimum-phase verification")
	unanimous := flag.Bool("unanimous", false, "Require all phase sub-tests to agree instead of a 3-of-4 majority")
	flag.Parse()

	paths := flag.Args()
	if len(paths) < minRequiredArgs {
		fmt.Fprintln(os.Stderr, "usage: fir-verify [flags] filter.wav [filter2.wav ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := newLogger()
	defer logger.Sync()

	opts := firconvert.BatchOptions{
		SampleRate:   *rate,
		TargetLength: *targetLength,
		VerifyPhase:  *phase,
	}
	if *unanimous {
		opts.Verify.Aggregator = firconvert.Unanimous{}
	}

	failed := 0
	for _, res := range firconvert.AnalyzeFiles(paths, opts) {
		if res.Err != nil {
			logger.Errorw("analysis failed", "path", res.Path, "error", res.Err)
			failed++
			continue
		}
		report(logger, res)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func report(logger *zap.SugaredLogger, res firconvert.FileAnalysis) {
	logger.Infow("filter loaded",
		"path", res.Path,
		"taps", res.Sequence.Len(),
		"sample_rate", res.Sequence.SampleRate,
		"duration", res.Sequence.Duration())

	if rep := res.Truncation; rep != nil {
		logger.Infow("truncation analysis",
			"path", res.Path,
			"target_length", rep.TargetLength,
			"risk", rep.Risk.String(),
			"energy_retained_pct", rep.EnergyRetainedPercent,
			"energy_99_index", rep.Energy99,
			"energy_999_index", rep.Energy999,
			"active_start", rep.ActiveStart,
			"active_end", rep.ActiveEnd)
		if !rep.Risk.AllowsAutomatic() {
			logger.Warnw("truncation requires explicit override",
				"path", res.Path, "risk", rep.Risk.String(),
				"energy_lost_pct", rep.EnergyLostPercent)
		}
	}

	if v := res.Phase; v != nil {
		logger.Infow("minimum-phase verdict",
			"path", res.Path,
			"minimum_phase", v.IsMinimumPhase,
			"energy_vote", v.Energy.Vote.String(),
			"group_delay_vote", v.GroupDelay.Vote.String(),
			"group_delay_ratio", v.GroupDelay.Ratio,
			"symmetry_vote", v.Symmetry.Vote.String(),
			"zero_vote", v.ZeroLoc.Vote.String(),
			"zeros_outside", v.ZeroLoc.Outside,
			"zero_prefix_truncated", v.ZeroLoc.TruncatedPrefix)
		if v.Warning != "" {
			logger.Warnw(v.Warning, "path", res.Path)
		}
	}
}

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableCaller = true
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	return logger.Sugar()
}
