package sigred

import (
	"math"
	"testing"
)

func TestNewExactSigmoidDecompositionEmptyModelName(t *testing.T) {
	if _, err := NewExactSigmoidDecomposition[float32](""); err == nil {
		t.Error("expected an error for an empty model name")
	}
}

func TestExactSigmoidDecompositionFitTransformShapeError(t *testing.T) {
	d, err := NewExactSigmoidDecomposition[float32]("exact-test", WithIterations(1), WithVerbose(false))
	if err != nil {
		t.Fatal(err)
	}
	target := make([]float32, 5)
	original := make([]float32, 8)
	if err := d.FitTransform(target, 2, original, 2); err == nil {
		t.Error("expected a shape error")
	}
}

func TestSampledSigmoidDecompositionFitTransformFinite(t *testing.T) {
	d, err := NewSampledSigmoidDecomposition[float64]("sampled-test",
		WithIterations(3), WithRandomState(7), WithVerbose(false))
	if err != nil {
		t.Fatal(err)
	}
	target := make([]float64, 10)
	original := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	if err := d.FitTransform(target, 2, original, 1); err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	for i, v := range target {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("target[%d] = %v, want finite", i, v)
		}
	}
}

func TestBarnesHutSigmoidDecompositionRejectsNonTwoTargetDim(t *testing.T) {
	d, err := NewBarnesHutSigmoidDecomposition[float32]("bh-test", WithIterations(1), WithVerbose(false))
	if err != nil {
		t.Fatal(err)
	}
	target := make([]float32, 9)
	original := make([]float32, 6)
	if err := d.FitTransform(target, 3, original, 2); err == nil {
		t.Error("expected an error for a non-2 target dimension")
	}
}

func TestBarnesHutSigmoidDecompositionHonorsWithDepth(t *testing.T) {
	d, err := NewBarnesHutSigmoidDecomposition[float32]("bh-depth-test",
		WithIterations(1), WithDepth(1), WithVerbose(false))
	if err != nil {
		t.Fatal(err)
	}
	if d.depth != 1 {
		t.Errorf("depth = %d, want 1", d.depth)
	}
	target := make([]float32, 8)
	original := []float32{0, 1, 2, 3, 4, 5, 6, 7}
	if err := d.FitTransform(target, 2, original, 2); err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
}

func TestBuildOptionsDefaultsToBarnesHutDefaultDepth(t *testing.T) {
	o := buildOptions(nil)
	if o.depth != 3 {
		t.Errorf("default depth = %d, want 3", o.depth)
	}
}
