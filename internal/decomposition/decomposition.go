// Package decomposition holds the configuration shared by every
// dimensionality-reduction variant (exact, sampled, Barnes-Hut): a model name
// used for logging and progress-bar labeling, a deterministic random seed,
// verbosity, and — for the iterative variants — an iteration count and
// learning rate.
//
// The original implementation expresses this sharing through a trait
// hierarchy (Decomposition, IterativeDecomposition) layered over two plain
// structs. Go has no trait inheritance, so the same sharing is expressed by
// composition: IterativeConfig embeds Config, and every accessor the traits
// provided is now just a field or a plain method on the embedding struct.
package decomposition

import "github.com/pkg/errors"

// Config is the configuration shared by every decomposition variant.
// Immutable after construction.
type Config struct {
	ModelName   string
	RandomState uint64
	Verbose     bool
}

// Option configures a Config via NewConfig.
type Option func(*Config)

// WithRandomState overrides the default random seed (42).
func WithRandomState(seed uint64) Option {
	return func(c *Config) { c.RandomState = seed }
}

// WithVerbose overrides the default verbosity (true).
func WithVerbose(verbose bool) Option {
	return func(c *Config) { c.Verbose = verbose }
}

// NewConfig builds a Config for modelName, applying opts over the defaults
// (random_state=42, verbose=true). modelName must be non-empty.
func NewConfig(modelName string, opts ...Option) (Config, error) {
	if modelName == "" {
		return Config{}, errors.New("the provided model name is empty")
	}
	c := Config{
		ModelName:   modelName,
		RandomState: 42,
		Verbose:     true,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}

// IterativeConfig is the configuration shared by every iterative
// decomposition variant: a Config plus an iteration count and learning rate.
type IterativeConfig struct {
	Config
	Iterations   int
	LearningRate float32
}

// IterativeOption configures an IterativeConfig via NewIterativeConfig.
type IterativeOption func(*IterativeConfig)

// WithIterations overrides the default iteration count (100).
func WithIterations(iterations int) IterativeOption {
	return func(c *IterativeConfig) { c.Iterations = iterations }
}

// WithLearningRate overrides the default learning rate (0.01).
func WithLearningRate(rate float32) IterativeOption {
	return func(c *IterativeConfig) { c.LearningRate = rate }
}

// WithConfigOptions threads Config-level options (random state, verbosity)
// through to the embedded Config.
func WithConfigOptions(opts ...Option) IterativeOption {
	return func(c *IterativeConfig) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}

// NewIterativeConfig builds an IterativeConfig for modelName, applying opts
// over the defaults (iterations=100, learning_rate=0.01, plus Config's
// defaults). modelName must be non-empty.
func NewIterativeConfig(modelName string, opts ...IterativeOption) (IterativeConfig, error) {
	base, err := NewConfig(modelName)
	if err != nil {
		return IterativeConfig{}, err
	}
	c := IterativeConfig{
		Config:       base,
		Iterations:   100,
		LearningRate: 0.01,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}
