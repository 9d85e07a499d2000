package barneshut

import (
	"github.com/pkg/errors"

	"github.com/sigred/sigred/internal/decomposition"
	"github.com/sigred/sigred/internal/numeric"
	"github.com/sigred/sigred/internal/progress"
	"github.com/sigred/sigred/internal/randinit"
	"github.com/sigred/sigred/internal/stats"
	"github.com/sigred/sigred/internal/workerpool"
)

// DefaultDepth is the grid depth used when the caller does not specify one.
const DefaultDepth = 3

// FitTransform randomly initializes target in place (seeded by
// cfg.RandomState) and then mutates it over cfg.Iterations passes of the
// Barnes-Hut approximated update. pool may be nil, in which case every pass
// runs on the calling goroutine. depth controls the quad-tree's height;
// DefaultDepth is used by callers that don't otherwise configure it.
func FitTransform[Original numeric.Float, Target numeric.Float](
	cfg decomposition.IterativeConfig,
	pool *workerpool.Pool,
	depth int,
	target []Target,
	targetDim int,
	original []Original,
	originalDim int,
) error {
	if originalDim <= 0 {
		return errors.New("original dimension must be positive")
	}
	if len(target)%targetDim != 0 {
		return errors.Errorf(
			"the provided target slice has length %d which is not compatible with the provided target dimension %d",
			len(target), targetDim)
	}
	if targetDim != 2 {
		return errors.New("currently we only support a target dimension of 2")
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

	grid, err := NewGrid[Target, Original](depth, targetDim, originalDim)
	if err != nil {
		return err
	}

	numSamples := len(original) / originalDim
	learningRate := Target(cfg.LearningRate)

	return progress.Run(cfg.Iterations, cfg.ModelName, cfg.Verbose, func(int) error {
		if err := grid.prepare(pool, target, original); err != nil {
			return err
		}

		step := func(sampleNumber int) {
			leftOriginal := original[sampleNumber*originalDim : (sampleNumber+1)*originalDim]
			leftTarget := target[sampleNumber*targetDim : (sampleNumber+1)*targetDim]

			for _, cell := range grid.farAwayLeafs(leftTarget[0], leftTarget[1]) {
				cellTargetAvg := grid.targetAverage(cell)
				cellOriginalAvg := grid.originalAverage(cell)
				gradient := grid.gradient(cell)
				population := grid.population(cell)

				targetDot := numeric.Dot(leftTarget, cellTargetAvg)
				originalDot := Target(numeric.NormalDot(leftOriginal, cellOriginalAvg, mean, variance))

				variation := numeric.Sigmoid(targetDot) - numeric.Sigmoid(originalDot)
				variation *= learningRate

				for d := 0; d < targetDim; d++ {
					leftTmp := leftTarget[d]
					leftTarget[d] -= cellTargetAvg[d] * variation * Target(population)
					gradient[d] -= leftTmp * variation
				}
			}

			for _, siblingIdx := range grid.siblings(leftTarget[0], leftTarget[1]) {
				if siblingIdx == sampleNumber {
					continue
				}
				siblingTarget := target[siblingIdx*targetDim : (siblingIdx+1)*targetDim]
				siblingOriginal := original[siblingIdx*originalDim : (siblingIdx+1)*originalDim]

				targetDot := numeric.Dot(leftTarget, siblingTarget)
				originalDot := Target(numeric.NormalDot(leftOriginal, siblingOriginal, mean, variance))

				variation := numeric.Sigmoid(targetDot) - numeric.Sigmoid(originalDot)
				variation *= learningRate

				for d := 0; d < targetDim; d++ {
					leftTmp := leftTarget[d]
					leftTarget[d] -= siblingTarget[d] * variation
					siblingTarget[d] -= leftTmp * variation
				}
			}
		}

		if pool == nil {
			for i := 0; i < numSamples; i++ {
				step(i)
			}
		} else {
			pool.ParallelForAtomic(numSamples, step)
		}

		grid.downpropagateGradient(pool)
		grid.applyGradient(pool, target)
		return nil
	})
}
