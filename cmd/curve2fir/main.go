// Command curve2fir synthesizes an FIR correction filter from a
// frequency/magnitude response curve.
//
// Usage:
//
//	curve2fir -taps 16384 -rate 48000 curve.txt filter.json
//	curve2fir -taps 4096 -window hann -normalize 0 curve.txt filter.json
//	curve2fir -check curve.txt filter.json    # verify realized spectrum
//
// The input is whitespace-separated "frequency_hz magnitude_db" lines;
// malformed lines are skipped. The output is a JSON array of coefficients.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ocatools/firconvert"
)

const (
	defaultTaps       = 16384
	defaultSampleRate = 48000
	minRequiredArgs   = 2

	// checkWarnDB is the realized-spectrum deviation above which the
	// -check pass warns.
	checkWarnDB = 0.5
)

func main() {
	taps := flag.Int("taps", defaultTaps, "Filter length in taps")
	rate := flag.Int("rate", defaultSampleRate, "Sample rate in Hz")
	windowName := flag.String("window", "linear", "Tail taper shape: linear, hann, hamming, blackman, bartlett")
	taper := flag.Float64("taper", firconvert.DefaultTaperFraction, "Fraction of the tail to taper (0 disables)")
	normalize := flag.Float64("normalize", firconvert.DefaultNormalizeTarget, "Peak normalization target (0 disables)")
	check := flag.Bool("check", false, "Recompute the realized spectrum against the curve after synthesis")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintln(os.Stderr, "usage: curve2fir [flags] curve.txt filter.json")
		flag.PrintDefaults()
		os.Exit(2)
	}
	curvePath, outputPath := args[0], args[1]

	logger := newLogger()
	defer logger.Sync()

	curve, err := firconvert.LoadCurveFile(curvePath)
	if err != nil {
		logger.Fatalw("loading curve", "path", curvePath, "error", err)
	}
	logger.Infow("curve loaded", "path", curvePath, "points", len(curve.Points))

	cfg := firconvert.DefaultSynthConfig(*taps, *rate)
	cfg.Window = firconvert.ParseWindow(*windowName)
	cfg.TaperFraction = *taper
	cfg.NormalizeTarget = *normalize

	seq, err := firconvert.Synthesize(curve, cfg)
	if err != nil {
		logger.Fatalw("synthesis failed", "error", err)
	}
	peak, peakIdx := seq.Peak()
	logger.Infow("filter synthesized",
		"taps", seq.Len(), "sample_rate", seq.SampleRate,
		"peak", peak, "peak_index", peakIdx)

	if *check {
		rep, err := firconvert.CheckSpectrum(seq, curve)
		if err != nil {
			logger.Fatalw("spectrum check failed", "error", err)
		}
		logger.Infow("spectrum check",
			"points", len(rep.Points),
			"gain_offset_db", rep.GainOffsetDB,
			"max_deviation_db", rep.MaxAbsDeviationDB)
		if rep.MaxAbsDeviationDB > checkWarnDB {
			logger.Warnw("realized spectrum deviates from curve",
				"max_deviation_db", rep.MaxAbsDeviationDB, "threshold_db", checkWarnDB)
		}
	}

	if err := firconvert.SaveFilterJSON(outputPath, seq); err != nil {
		logger.Fatalw("writing filter", "path", outputPath, "error", err)
	}
	logger.Infow("filter written", "path", outputPath)
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
