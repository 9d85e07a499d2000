// Package sigred implements Barnes-Hut sigmoid decomposition: a family of
// dimensionality-reduction algorithms that iteratively nudge a low-
// dimensional target embedding so that its pairwise similarity (passed
// through a sigmoid link function) matches the original high-dimensional
// data's pairwise similarity.
//
// Three variants are exposed, trading exactness for update cost:
//
//   - Exact: every pair of samples is compared every iteration, O(N^2).
//   - Sampled: each sample is compared against one pseudo-randomly chosen
//     partner per iteration, O(N).
//   - Barnes-Hut: each sample is compared exactly against the other samples
//     sharing its deepest grid cell, plus one population-weighted cell
//     average per ancestor layer, O(N log N) in the typical case.
//
// Every variant is generic over a single float type T shared by target and
// original alike; callers needing mixed target/original precision should
// use the internal/decomposition/* solvers directly.
package sigred

import (
	"runtime"

	"github.com/sigred/sigred/internal/decomposition"
	"github.com/sigred/sigred/internal/decomposition/barneshut"
	"github.com/sigred/sigred/internal/decomposition/exact"
	"github.com/sigred/sigred/internal/decomposition/sampled"
	"github.com/sigred/sigred/internal/numeric"
	"github.com/sigred/sigred/internal/workerpool"
)

// options accumulates configuration shared across all three constructors.
// depth is only meaningful to NewBarnesHutSigmoidDecomposition; the exact
// and sampled constructors silently ignore it, letting every variant share
// one Option type.
type options struct {
	iterOpts []decomposition.IterativeOption
	depth    int
}

// Option configures a decomposition's shared fields: random seed,
// verbosity, iteration count, learning rate, and (Barnes-Hut only) grid
// depth.
type Option func(*options)

// WithIterations overrides the default iteration count (100).
func WithIterations(iterations int) Option {
	return func(o *options) {
		o.iterOpts = append(o.iterOpts, decomposition.WithIterations(iterations))
	}
}

// WithLearningRate overrides the default learning rate (0.01).
func WithLearningRate(rate float32) Option {
	return func(o *options) {
		o.iterOpts = append(o.iterOpts, decomposition.WithLearningRate(rate))
	}
}

// WithRandomState overrides the default random seed (42).
func WithRandomState(seed uint64) Option {
	return func(o *options) {
		o.iterOpts = append(o.iterOpts, decomposition.WithConfigOptions(decomposition.WithRandomState(seed)))
	}
}

// WithVerbose overrides the default verbosity (true): whether a progress
// bar is rendered while FitTransform runs.
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		o.iterOpts = append(o.iterOpts, decomposition.WithConfigOptions(decomposition.WithVerbose(verbose)))
	}
}

// WithDepth overrides the Barnes-Hut grid's default depth (barneshut.DefaultDepth).
// Ignored by the exact and sampled constructors.
func WithDepth(depth int) Option {
	return func(o *options) { o.depth = depth }
}

func buildOptions(opts []Option) options {
	o := options{depth: barneshut.DefaultDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newPool() *workerpool.Pool {
	return workerpool.New(runtime.GOMAXPROCS(0))
}

// ExactSigmoidDecomposition fits a target embedding against every pair of
// samples, every iteration.
type ExactSigmoidDecomposition[T numeric.Float] struct {
	cfg decomposition.IterativeConfig
}

// NewExactSigmoidDecomposition builds an exact solver labeled modelName.
func NewExactSigmoidDecomposition[T numeric.Float](modelName string, opts ...Option) (*ExactSigmoidDecomposition[T], error) {
	o := buildOptions(opts)
	cfg, err := decomposition.NewIterativeConfig(modelName, o.iterOpts...)
	if err != nil {
		return nil, err
	}
	return &ExactSigmoidDecomposition[T]{cfg: cfg}, nil
}

// FitTransform mutates target in place so that its pairwise sigmoid-matched
// similarity approaches original's. A fresh worker pool sized to
// runtime.GOMAXPROCS is created for the call's duration and reused across
// every iteration.
func (d *ExactSigmoidDecomposition[T]) FitTransform(target []T, targetDim int, original []T, originalDim int) error {
	pool := newPool()
	defer pool.Close()
	return exact.FitTransform[T, T](d.cfg, pool, target, targetDim, original, originalDim)
}

// SampledSigmoidDecomposition fits a target embedding against one
// pseudo-randomly chosen partner per sample, every iteration.
type SampledSigmoidDecomposition[T numeric.Float] struct {
	cfg decomposition.IterativeConfig
}

// NewSampledSigmoidDecomposition builds a sampled solver labeled modelName.
func NewSampledSigmoidDecomposition[T numeric.Float](modelName string, opts ...Option) (*SampledSigmoidDecomposition[T], error) {
	o := buildOptions(opts)
	cfg, err := decomposition.NewIterativeConfig(modelName, o.iterOpts...)
	if err != nil {
		return nil, err
	}
	return &SampledSigmoidDecomposition[T]{cfg: cfg}, nil
}

// FitTransform randomly initializes target in place and mutates it over the
// configured number of sampled-update iterations. A fresh worker pool sized
// to runtime.GOMAXPROCS is created for the call's duration.
func (d *SampledSigmoidDecomposition[T]) FitTransform(target []T, targetDim int, original []T, originalDim int) error {
	pool := newPool()
	defer pool.Close()
	return sampled.FitTransform[T, T](d.cfg, pool, target, targetDim, original, originalDim)
}

// BarnesHutSigmoidDecomposition fits a target embedding against its
// quad-tree near/far-field neighborhood, every iteration.
type BarnesHutSigmoidDecomposition[T numeric.Float] struct {
	cfg   decomposition.IterativeConfig
	depth int
}

// NewBarnesHutSigmoidDecomposition builds a Barnes-Hut solver labeled
// modelName. Grid depth defaults to barneshut.DefaultDepth and may be
// overridden via WithDepth.
func NewBarnesHutSigmoidDecomposition[T numeric.Float](modelName string, opts ...Option) (*BarnesHutSigmoidDecomposition[T], error) {
	o := buildOptions(opts)
	cfg, err := decomposition.NewIterativeConfig(modelName, o.iterOpts...)
	if err != nil {
		return nil, err
	}
	return &BarnesHutSigmoidDecomposition[T]{cfg: cfg, depth: o.depth}, nil
}

// FitTransform randomly initializes target in place and mutates it over the
// configured number of Barnes-Hut update iterations. A fresh worker pool
// sized to runtime.GOMAXPROCS is created for the call's duration.
func (d *BarnesHutSigmoidDecomposition[T]) FitTransform(target []T, targetDim int, original []T, originalDim int) error {
	pool := newPool()
	defer pool.Close()
	return barneshut.FitTransform[T, T](d.cfg, pool, d.depth, target, targetDim, original, originalDim)
}
