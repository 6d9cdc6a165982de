package firconvert

import (
	"fmt"
	"sync"
)

// BatchOptions controls AnalyzeFiles.
type BatchOptions struct {
	// SampleRate is assumed for sources without an intrinsic rate; zero
	// selects DefaultSampleRate.
	SampleRate int

	// TargetLength, when positive, adds a truncation analysis for that
	// length to every file.
	TargetLength int

	// VerifyPhase adds a minimum-phase verdict to every file.
	VerifyPhase bool

	// Verify tunes the phase verification when VerifyPhase is set.
	Verify VerifyConfig
}

// FileAnalysis is the per-file result of a batch run.
type FileAnalysis struct {
	Path     string
	Sequence Sequence

	// Truncation is set when BatchOptions.TargetLength is positive.
	Truncation *TruncationReport

	// Phase is set when BatchOptions.VerifyPhase is true.
	Phase *Verdict

	// Err records a load failure; the other fields are then zero.
	Err error
}

// AnalyzeFiles loads and analyzes the given filter files concurrently, one
// goroutine per file. Filters are independent, so no ordering is imposed
// between them; the result slice matches the input order. Per-file failures
// are recorded in FileAnalysis.Err rather than aborting the batch.
func AnalyzeFiles(paths []string, opts BatchOptions) []FileAnalysis {
	results := make([]FileAnalysis, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			results[i] = analyzeFile(path, opts)
		}(i, path)
	}
	wg.Wait()

	return results
}

func analyzeFile(path string, opts BatchOptions) FileAnalysis {
	res := FileAnalysis{Path: path}

	seq, err := LoadFilter(path, opts.SampleRate)
	if err != nil {
		res.Err = err
		return res
	}
	if seq.Len() == 0 {
		res.Err = fmt.Errorf("%s: empty coefficient sequence", path)
		return res
	}
	res.Sequence = seq

	if opts.TargetLength > 0 {
		rep := AnalyzeTruncation(seq, opts.TargetLength)
		res.Truncation = &rep
	}
	if opts.VerifyPhase {
		verdict := VerifyMinimumPhase(seq, opts.Verify)
		res.Phase = &verdict
	}
	return res
}
