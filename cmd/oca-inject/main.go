// Command oca-inject replaces the per-channel FIR filters of a correction
// container with filters loaded from coefficient files.
//
// Usage:
//
//	oca-inject -output house.oca house.oca left.json right.json
//	oca-inject -no-lv -output out.oca in.oca ch0.wav ch1.wav ch2.wav
//
// Filter files map to container channels in argument order. A replacement
// must match the channel's existing filter length exactly.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ocatools/firconvert"
	"github.com/ocatools/firconvert/oca"
)

const minRequiredArgs = 2

func main() {
	output := flag.String("output", "", "Output container path (defaults to in-place)")
	noLV := flag.Bool("no-lv", false, "Do not copy replacements into low-volume filter slots")
	rate := flag.Int("rate", firconvert.DefaultSampleRate, "Assumed sample rate for JSON filter inputs, in Hz")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintln(os.Stderr, "usage: oca-inject [flags] container.oca filter0.json [filter1.json ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	containerPath, filterPaths := args[0], args[1:]
	if *output == "" {
		*output = containerPath
	}

	logger := newLogger()
	defer logger.Sync()

	container, err := oca.LoadFile(containerPath)
	if err != nil {
		logger.Fatalw("loading container", "path", containerPath, "error", err)
	}
	logger.Infow("container loaded", "path", containerPath, "channels", container.NumChannels())

	filters := make([]firconvert.Sequence, len(filterPaths))
	for i, path := range filterPaths {
		seq, err := firconvert.LoadFilter(path, *rate)
		if err != nil {
			logger.Fatalw("loading filter", "path", path, "error", err)
		}
		logger.Infow("filter loaded", "path", path, "channel", i, "taps", seq.Len())
		filters[i] = seq
	}

	stats := firconvert.InjectFilters(container, filters, !*noLV)
	for _, w := range stats.Warnings {
		logger.Warnw(w)
	}
	logger.Infow("injection complete",
		"attempted", stats.Attempted,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"skipped", stats.Skipped)
	if stats.Failed > 0 {
		logger.Fatalw("injection had failures; container not written", "failed", stats.Failed)
	}

	if err := container.SaveFile(*output); err != nil {
		logger.Fatalw("writing container", "path", *output, "error", err)
	}
	logger.Infow("container written", "path", *output)
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
