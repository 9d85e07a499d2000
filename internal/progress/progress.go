// Package progress drives the fixed-count iteration loop shared by every
// decomposition variant, optionally rendering a progress bar (model name,
// position/total, elapsed, ETA) while it runs.
package progress

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Run executes step(i) for i in [0, iterations). If verbose is true, a
// progress bar labeled modelName is rendered to stderr while the loop runs;
// otherwise the loop runs silently. The first error returned by step
// short-circuits the remaining iterations and is returned to the caller.
func Run(iterations int, modelName string, verbose bool, step func(i int) error) error {
	bar := newBar(iterations, modelName, verbose)
	defer bar.Close()

	for i := 0; i < iterations; i++ {
		if err := step(i); err != nil {
			return err
		}
		_ = bar.Add(1)
	}
	return nil
}

func newBar(iterations int, modelName string, verbose bool) *progressbar.ProgressBar {
	if !verbose {
		return progressbar.NewOptions(iterations, progressbar.OptionSetWriter(io.Discard))
	}
	return progressbar.NewOptions(iterations,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(modelName),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
	)
}
