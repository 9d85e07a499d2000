// Package exact implements the O(N^2) all-pairs sigmoid-matching solver: on
// every iteration, every pair of samples (including each sample against
// itself) has its target-space sigmoid-matched against its original-space
// sigmoid via a symmetric gradient step. The original-space similarity is
// z-score-normalized (NormalDot) before the sigmoid match, same as the
// sampled and Barnes-Hut solvers.
//
// This is the solver of choice only for small sample counts; sampled and
// barneshut trade exactness for O(N) and O(N log N) update costs
// respectively.
package exact

import (
	"github.com/pkg/errors"

	"github.com/sigred/sigred/internal/decomposition"
	"github.com/sigred/sigred/internal/numeric"
	"github.com/sigred/sigred/internal/progress"
	"github.com/sigred/sigred/internal/randinit"
	"github.com/sigred/sigred/internal/stats"
	"github.com/sigred/sigred/internal/workerpool"
)

// FitTransform randomly initializes target in place (seeded by
// cfg.RandomState) and then mutates it over cfg.Iterations passes of the
// all-pairs update. pool may be nil, in which case every pass runs on the
// calling goroutine.
//
// target must have length divisible by targetDim, and original by
// originalDim; both slices must describe the same number of samples
// (len(target)/targetDim == len(original)/originalDim). FitTransform does not
// check this condition.
func FitTransform[Original numeric.Float, Target numeric.Float](
	cfg decomposition.IterativeConfig,
	pool *workerpool.Pool,
	target []Target,
	targetDim int,
	original []Original,
	originalDim int,
) error {
	if targetDim <= 0 {
		return errors.New("target dimension must be positive")
	}
	if originalDim <= 0 {
		return errors.New("original dimension must be positive")
	}
	if len(target)%targetDim != 0 {
		return errors.Errorf(
			"the provided target slice has length %d which is not compatible with the provided target dimension %d",
			len(target), targetDim)
	}
	if len(original)%originalDim != 0 {
		return errors.Errorf(
			"the provided original slice has length %d which is not compatible with the provided original dimension %d",
			len(original), originalDim)
	}

	randinit.Fill(pool, target, cfg.RandomState)

	mean, err := stats.Mean(pool, original, originalDim)
	if err != nil {
		return errors.Wrap(err, "computing original-space mean")
	}
	variance, err := stats.Var(pool, original, originalDim)
	if err != nil {
		return errors.Wrap(err, "computing original-space variance")
	}

	numSamples := len(original) / originalDim
	learningRate := Target(cfg.LearningRate)

	step := func(i int) {
		leftOriginal := original[i*originalDim : (i+1)*originalDim]
		leftTarget := target[i*targetDim : (i+1)*targetDim]

		for j := i; j < numSamples; j++ {
			rightOriginal := original[j*originalDim : (j+1)*originalDim]
			rightTarget := target[j*targetDim : (j+1)*targetDim]

			targetDot := numeric.Dot(leftTarget, rightTarget)
			originalDot := Target(numeric.NormalDot(leftOriginal, rightOriginal, mean, variance))

			variation := (numeric.Sigmoid(targetDot) - numeric.Sigmoid(originalDot)) * learningRate

			// When j == i, leftTarget and rightTarget alias the same
			// underlying array: the self-pair update is intentionally
			// compounded rather than skipped, matching the all-pairs sum
			// this solver approximates.
			for d := 0; d < targetDim; d++ {
				leftTmp := leftTarget[d]
				leftTarget[d] -= rightTarget[d] * variation
				rightTarget[d] -= leftTmp * variation
			}
		}
	}

	return progress.Run(cfg.Iterations, cfg.ModelName, cfg.Verbose, func(int) error {
		if pool == nil {
			for i := 0; i < numSamples; i++ {
				step(i)
			}
			return nil
		}
		pool.ParallelForAtomic(numSamples, step)
		return nil
	})
}
