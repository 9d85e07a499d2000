// Package sampled implements the O(N) sampled sigmoid-matching solver: on
// every iteration, each sample is paired with exactly one pseudo-randomly
// chosen partner (itself included) instead of every other sample, trading
// exactness for linear update cost. The original-space similarity is
// z-score-normalized (NormalDot), as in the exact and Barnes-Hut solvers, and
// then passed through a natural logarithm before the sigmoid match.
package sampled

import (
	"math"

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
// sampled update. pool may be nil, in which case every pass runs on the
// calling goroutine.
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

	numSamples := len(target) / targetDim
	if numSamples == 0 {
		return nil
	}

	mean, err := stats.Mean(pool, original, originalDim)
	if err != nil {
		return errors.Wrap(err, "computing original-space mean")
	}
	variance, err := stats.Var(pool, original, originalDim)
	if err != nil {
		return errors.Wrap(err, "computing original-space variance")
	}

	learningRate := Target(cfg.LearningRate)
	randomState := randinit.SplitMix64(cfg.RandomState)

	return progress.Run(cfg.Iterations, cfg.ModelName, cfg.Verbose, func(int) error {
		randomState = randinit.SplitMix64(randomState)

		step := func(sampleNumber int) {
			leftOriginal := original[sampleNumber*originalDim : (sampleNumber+1)*originalDim]
			leftTarget := target[sampleNumber*targetDim : (sampleNumber+1)*targetDim]

			mixed := randinit.SplitMix64(randomState + uint64(sampleNumber)*randomState)
			innerSampleNumber := int(mixed % uint64(numSamples))

			rightOriginal := original[innerSampleNumber*originalDim : (innerSampleNumber+1)*originalDim]
			rightTarget := target[innerSampleNumber*targetDim : (innerSampleNumber+1)*targetDim]

			targetDot := numeric.Dot(leftTarget, rightTarget)
			originalDot := Target(numeric.NormalDot(leftOriginal, rightOriginal, mean, variance))

			variation := numeric.Sigmoid(targetDot) - numeric.Sigmoid(Target(math.Log(float64(originalDot))))
			variation *= learningRate

			for d := 0; d < targetDim; d++ {
				newLeft := leftTarget[d] - rightTarget[d]*variation
				newRight := rightTarget[d] - leftTarget[d]*variation
				if isFinite(newLeft) {
					leftTarget[d] = newLeft
				}
				if isFinite(newRight) {
					rightTarget[d] = newRight
				}
			}
		}

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

func isFinite[T numeric.Float](v T) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
