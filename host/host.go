// Package host is the thin adapter a language binding sits behind: it
// accepts loosely-typed keyword arguments and a generic matrix value, picks
// the right floating dtype, and drives the sigred engine. It mirrors the
// shape of a Python/FFI extension module's glue code without depending on
// any particular host language.
package host

import (
	"github.com/pkg/errors"

	"github.com/sigred/sigred"
)

// Matrix is the adapter's stand-in for a host language's 2-D numeric array.
// Data holds the row-major backing buffer as either []float32 or []float64;
// ContiguousC must be true, mirroring numpy's C-contiguity check on the
// Rust binding this package is modeled on.
type Matrix struct {
	Data        any
	Rows        int
	Cols        int
	ContiguousC bool
}

const (
	defaultDtype              = "f32"
	defaultNumberOfDimensions = 2
)

func kwInt(kwargs map[string]any, key string, def int) int {
	switch v := kwargs[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

func kwFloat32(kwargs map[string]any, key string, def float32) float32 {
	switch v := kwargs[key].(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	default:
		return def
	}
}

func kwUint64(kwargs map[string]any, key string, def uint64) uint64 {
	switch v := kwargs[key].(type) {
	case uint64:
		return v
	case int:
		return uint64(v)
	case int64:
		return uint64(v)
	case float64:
		return uint64(v)
	default:
		return def
	}
}

func kwBool(kwargs map[string]any, key string, def bool) bool {
	if v, ok := kwargs[key].(bool); ok {
		return v
	}
	return def
}

// baseOptions translates the recognized kwargs keys into sigred.Options.
// Unrecognized keys, and keys of the wrong type, are silently ignored; only
// recognized keys with a compatible value override the shared defaults.
func baseOptions(kwargs map[string]any) []sigred.Option {
	return []sigred.Option{
		sigred.WithIterations(kwInt(kwargs, "iterations", 100)),
		sigred.WithLearningRate(kwFloat32(kwargs, "learning_rate", 0.01)),
		sigred.WithRandomState(kwUint64(kwargs, "random_state", 42)),
		sigred.WithVerbose(kwBool(kwargs, "verbose", true)),
	}
}

// checkMatrix rejects a malformed or non-contiguous matrix value. It does not
// check that the length of Data matches Rows*Cols.
func checkMatrix(matrix any) (*Matrix, error) {
	m, ok := matrix.(*Matrix)
	if !ok || !m.ContiguousC {
		return nil, errors.New("provided vector is not a contiguous vector in C orientation")
	}
	return m, nil
}

func resolveDtype(dtype string) (string, error) {
	if dtype == "" {
		dtype = defaultDtype
	}
	if dtype != "f32" && dtype != "f64" {
		return "", errors.Errorf("The data type %s is not supported.", dtype)
	}
	return dtype, nil
}

func resolveNumberOfDimensions(numberOfDimensions int) int {
	if numberOfDimensions <= 0 {
		return defaultNumberOfDimensions
	}
	return numberOfDimensions
}

// ExactAdapter is the host-facing wrapper around sigred's exact solver.
type ExactAdapter struct {
	modelName string
	opts      []sigred.Option
}

// NewExactAdapter accepts the recognized keys {iterations, learning_rate,
// random_state, verbose}; unrecognized keys are ignored and missing keys
// take their defaults.
func NewExactAdapter(modelName string, kwargs map[string]any) *ExactAdapter {
	return &ExactAdapter{modelName: modelName, opts: baseOptions(kwargs)}
}

// FitTransform dispatches on dtype, builds a target matrix of shape
// (rows, numberOfDimensions), and mutates it with the exact solver.
func (a *ExactAdapter) FitTransform(matrix any, numberOfDimensions int, dtype string) (*Matrix, error) {
	m, err := checkMatrix(matrix)
	if err != nil {
		return nil, err
	}
	dtype, err = resolveDtype(dtype)
	if err != nil {
		return nil, err
	}
	numberOfDimensions = resolveNumberOfDimensions(numberOfDimensions)

	switch dtype {
	case "f32":
		original, ok := m.Data.([]float32)
		if !ok {
			return nil, errors.New("provided vector is not a contiguous vector in C orientation")
		}
		d, err := sigred.NewExactSigmoidDecomposition[float32](a.modelName, a.opts...)
		if err != nil {
			return nil, err
		}
		target := make([]float32, m.Rows*numberOfDimensions)
		if err := d.FitTransform(target, numberOfDimensions, original, m.Cols); err != nil {
			return nil, err
		}
		return &Matrix{Data: target, Rows: m.Rows, Cols: numberOfDimensions, ContiguousC: true}, nil
	case "f64":
		original, ok := m.Data.([]float64)
		if !ok {
			return nil, errors.New("provided vector is not a contiguous vector in C orientation")
		}
		d, err := sigred.NewExactSigmoidDecomposition[float64](a.modelName, a.opts...)
		if err != nil {
			return nil, err
		}
		target := make([]float64, m.Rows*numberOfDimensions)
		if err := d.FitTransform(target, numberOfDimensions, original, m.Cols); err != nil {
			return nil, err
		}
		return &Matrix{Data: target, Rows: m.Rows, Cols: numberOfDimensions, ContiguousC: true}, nil
	default:
		return nil, errors.Errorf("The data type %s is not supported.", dtype)
	}
}

// SampledAdapter is the host-facing wrapper around sigred's sampled solver.
type SampledAdapter struct {
	modelName string
	opts      []sigred.Option
}

// NewSampledAdapter accepts the recognized keys {iterations, learning_rate,
// random_state, verbose}; unrecognized keys are ignored and missing keys
// take their defaults.
func NewSampledAdapter(modelName string, kwargs map[string]any) *SampledAdapter {
	return &SampledAdapter{modelName: modelName, opts: baseOptions(kwargs)}
}

// FitTransform dispatches on dtype, builds a target matrix of shape
// (rows, numberOfDimensions), and mutates it with the sampled solver.
func (a *SampledAdapter) FitTransform(matrix any, numberOfDimensions int, dtype string) (*Matrix, error) {
	m, err := checkMatrix(matrix)
	if err != nil {
		return nil, err
	}
	dtype, err = resolveDtype(dtype)
	if err != nil {
		return nil, err
	}
	numberOfDimensions = resolveNumberOfDimensions(numberOfDimensions)

	switch dtype {
	case "f32":
		original, ok := m.Data.([]float32)
		if !ok {
			return nil, errors.New("provided vector is not a contiguous vector in C orientation")
		}
		d, err := sigred.NewSampledSigmoidDecomposition[float32](a.modelName, a.opts...)
		if err != nil {
			return nil, err
		}
		target := make([]float32, m.Rows*numberOfDimensions)
		if err := d.FitTransform(target, numberOfDimensions, original, m.Cols); err != nil {
			return nil, err
		}
		return &Matrix{Data: target, Rows: m.Rows, Cols: numberOfDimensions, ContiguousC: true}, nil
	case "f64":
		original, ok := m.Data.([]float64)
		if !ok {
			return nil, errors.New("provided vector is not a contiguous vector in C orientation")
		}
		d, err := sigred.NewSampledSigmoidDecomposition[float64](a.modelName, a.opts...)
		if err != nil {
			return nil, err
		}
		target := make([]float64, m.Rows*numberOfDimensions)
		if err := d.FitTransform(target, numberOfDimensions, original, m.Cols); err != nil {
			return nil, err
		}
		return &Matrix{Data: target, Rows: m.Rows, Cols: numberOfDimensions, ContiguousC: true}, nil
	default:
		return nil, errors.Errorf("The data type %s is not supported.", dtype)
	}
}

// BarnesHutAdapter is the host-facing wrapper around sigred's Barnes-Hut
// solver.
type BarnesHutAdapter struct {
	modelName string
	opts      []sigred.Option
}

// NewBarnesHutAdapter accepts the recognized keys {iterations,
// learning_rate, random_state, verbose, depth}; unrecognized keys are
// ignored and missing keys take their defaults.
func NewBarnesHutAdapter(modelName string, kwargs map[string]any) *BarnesHutAdapter {
	opts := baseOptions(kwargs)
	switch kwargs["depth"].(type) {
	case int, int64, float64:
		opts = append(opts, sigred.WithDepth(kwInt(kwargs, "depth", 0)))
	}
	return &BarnesHutAdapter{modelName: modelName, opts: opts}
}

// FitTransform dispatches on dtype, builds a target matrix of shape
// (rows, numberOfDimensions), and mutates it with the Barnes-Hut solver.
// numberOfDimensions must be 2.
func (a *BarnesHutAdapter) FitTransform(matrix any, numberOfDimensions int, dtype string) (*Matrix, error) {
	m, err := checkMatrix(matrix)
	if err != nil {
		return nil, err
	}
	dtype, err = resolveDtype(dtype)
	if err != nil {
		return nil, err
	}
	numberOfDimensions = resolveNumberOfDimensions(numberOfDimensions)
	if numberOfDimensions != 2 {
		return nil, errors.New("Currently we only support 2")
	}

	switch dtype {
	case "f32":
		original, ok := m.Data.([]float32)
		if !ok {
			return nil, errors.New("provided vector is not a contiguous vector in C orientation")
		}
		d, err := sigred.NewBarnesHutSigmoidDecomposition[float32](a.modelName, a.opts...)
		if err != nil {
			return nil, err
		}
		target := make([]float32, m.Rows*numberOfDimensions)
		if err := d.FitTransform(target, numberOfDimensions, original, m.Cols); err != nil {
			return nil, err
		}
		return &Matrix{Data: target, Rows: m.Rows, Cols: numberOfDimensions, ContiguousC: true}, nil
	case "f64":
		original, ok := m.Data.([]float64)
		if !ok {
			return nil, errors.New("provided vector is not a contiguous vector in C orientation")
		}
		d, err := sigred.NewBarnesHutSigmoidDecomposition[float64](a.modelName, a.opts...)
		if err != nil {
			return nil, err
		}
		target := make([]float64, m.Rows*numberOfDimensions)
		if err := d.FitTransform(target, numberOfDimensions, original, m.Cols); err != nil {
			return nil, err
		}
		return &Matrix{Data: target, Rows: m.Rows, Cols: numberOfDimensions, ContiguousC: true}, nil
	default:
		return nil, errors.Errorf("The data type %s is not supported.", dtype)
	}
}
