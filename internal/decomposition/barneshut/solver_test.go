package barneshut

import (
	"math"
	"testing"

	"github.com/sigred/sigred/internal/decomposition"
)

func TestFitTransformRejectsNonTwoTargetDimension(t *testing.T) {
	cfg, err := decomposition.NewIterativeConfig("bh-test", decomposition.WithIterations(1))
	if err != nil {
		t.Fatal(err)
	}
	target := make([]float64, 9)
	original := make([]float64, 6)
	if err := FitTransform[float64, float64](cfg, nil, DefaultDepth, target, 3, original, 2); err == nil {
		t.Error("expected an error for a non-2 target dimension")
	}
}

func TestFitTransformShapeErrors(t *testing.T) {
	cfg, err := decomposition.NewIterativeConfig("bh-test", decomposition.WithIterations(1))
	if err != nil {
		t.Fatal(err)
	}

	target := make([]float64, 5)
	original := make([]float64, 8)
	if err := FitTransform[float64, float64](cfg, nil, DefaultDepth, target, 2, original, 2); err == nil {
		t.Error("expected an error for a target slice whose length is not a multiple of targetDim")
	}

	target = make([]float64, 8)
	original = make([]float64, 5)
	if err := FitTransform[float64, float64](cfg, nil, DefaultDepth, target, 2, original, 2); err == nil {
		t.Error("expected an error for an original slice whose length is not a multiple of originalDim")
	}
}

func TestFitTransformProducesFiniteDeterministicOutput(t *testing.T) {
	cfg, err := decomposition.NewIterativeConfig("bh-test",
		decomposition.WithIterations(5), decomposition.WithRandomState(11),
		decomposition.WithLearningRate(0.02), decomposition.WithVerbose(false))
	if err != nil {
		t.Fatal(err)
	}

	original := make([]float64, 0, 40)
	for i := 0; i < 20; i++ {
		v := float64(i) * 0.37
		original = append(original, v, -v)
	}

	a := make([]float64, 40)
	b := make([]float64, 40)

	if err := FitTransform[float64, float64](cfg, nil, 2, a, 2, original, 2); err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if err := FitTransform[float64, float64](cfg, nil, 2, b, 2, original, 2); err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	for i := range a {
		if math.IsNaN(a[i]) || math.IsInf(a[i], 0) {
			t.Fatalf("a[%d] = %v, want a finite value", i, a[i])
		}
		if a[i] != b[i] {
			t.Errorf("not deterministic at %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestFitTransformZeroIterationsOnlyRandomInits(t *testing.T) {
	cfg, err := decomposition.NewIterativeConfig("bh-test",
		decomposition.WithIterations(0), decomposition.WithRandomState(5), decomposition.WithVerbose(false))
	if err != nil {
		t.Fatal(err)
	}
	target := make([]float64, 16)
	original := make([]float64, 16)
	for i := range original {
		original[i] = float64(i)
	}
	if err := FitTransform[float64, float64](cfg, nil, 2, target, 2, original, 2); err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	allZero := true
	for _, v := range target {
		if v != 0 {
			allZero = false
		}
	}
	if allZero {
		t.Error("target was not randomly initialized even with zero iterations")
	}
}
