package exact

import (
	"math"
	"testing"

	"github.com/sigred/sigred/internal/decomposition"
	"github.com/sigred/sigred/internal/numeric"
)

func TestFitTransformShapeErrors(t *testing.T) {
	cfg, err := decomposition.NewIterativeConfig("exact-test", decomposition.WithIterations(1))
	if err != nil {
		t.Fatal(err)
	}

	target := make([]float64, 5)
	original := make([]float64, 6)

	if err := FitTransform[float64, float64](cfg, nil, target, 2, original, 2); err == nil {
		t.Error("expected an error for a target slice whose length is not a multiple of targetDim")
	}

	target = make([]float64, 6)
	original = make([]float64, 5)
	if err := FitTransform[float64, float64](cfg, nil, target, 2, original, 2); err == nil {
		t.Error("expected an error for an original slice whose length is not a multiple of originalDim")
	}
}

func TestFitTransformRandomlyInitializesTarget(t *testing.T) {
	cfg, err := decomposition.NewIterativeConfig("exact-test",
		decomposition.WithIterations(0), decomposition.WithRandomState(7), decomposition.WithVerbose(false))
	if err != nil {
		t.Fatal(err)
	}

	target := make([]float64, 8) // 4 samples, dim 2
	original := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	if err := FitTransform[float64, float64](cfg, nil, target, 2, original, 2); err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	allZero := true
	for _, v := range target {
		if v != 0 {
			allZero = false
		}
		if v < -1 || v >= 1 {
			t.Errorf("target value %v out of random-init bounds [-1, 1)", v)
		}
	}
	if allZero {
		t.Error("target was not randomly initialized even with zero iterations")
	}
}

func TestFitTransformDeterministicAcrossReruns(t *testing.T) {
	cfg, err := decomposition.NewIterativeConfig("exact-test",
		decomposition.WithIterations(5), decomposition.WithLearningRate(0.01), decomposition.WithVerbose(false))
	if err != nil {
		t.Fatal(err)
	}

	original := make([]float32, 0, 40)
	for i := 0; i < 20; i++ {
		v := float32(i) * 0.1
		original = append(original, v, -v)
	}

	seq := make([]float32, 40)
	par := make([]float32, 40)

	if err := FitTransform[float32, float32](cfg, nil, seq, 2, original, 2); err != nil {
		t.Fatalf("first FitTransform() error = %v", err)
	}
	if err := FitTransform[float32, float32](cfg, nil, par, 2, original, 2); err != nil {
		t.Fatalf("second FitTransform() error = %v", err)
	}
	for i := range seq {
		if seq[i] != par[i] {
			t.Errorf("deterministic re-run diverged at %d: %v != %v", i, par[i], seq[i])
		}
		if math.IsNaN(float64(seq[i])) || math.IsInf(float64(seq[i]), 0) {
			t.Errorf("seq[%d] = %v, want a finite value", i, seq[i])
		}
	}
}

// TestFitTransformPreservesExtremePairwiseOrdering mirrors spec.md's
// Scenario A: an 8x4 matrix whose row i is i*{1,2,3,4}, D_t=2, seed=42,
// iterations=10, learning_rate=0.01. Rather than re-deriving the full
// pairwise ranking (noisy with only 8 points and 2 target dimensions, and
// the spec itself only requires agreement on 6 of 8 rows), this test checks
// the one comparison that is analytically unambiguous: rows 0 and 1 are
// (tied with rows 6 and 7) the most normal-dot-similar pair of distinct rows
// in this matrix (both on the same side of the z-scoring mean), while rows 0
// and 7 are the least similar (they sit at opposite ends). With mean=3.5 per
// column and NormalDot's bilinear structure, normal_dot(i,j) is
// proportional to (i-3.5)*(j-3.5), a factor of +8.75 for rows (0,1) and
// -12.25 for rows (0,7): the original-space similarities of the two pairs
// have opposite signs.
func TestFitTransformPreservesExtremePairwiseOrdering(t *testing.T) {
	cfg, err := decomposition.NewIterativeConfig("exact-test",
		decomposition.WithIterations(10), decomposition.WithRandomState(42),
		decomposition.WithLearningRate(0.01), decomposition.WithVerbose(false))
	if err != nil {
		t.Fatal(err)
	}

	original := make([]float32, 0, 32)
	for i := 0; i < 8; i++ {
		original = append(original, float32(i*1), float32(i*2), float32(i*3), float32(i*4))
	}
	target := make([]float32, 16)

	if err := FitTransform[float32, float32](cfg, nil, target, 2, original, 4); err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	for i, v := range target {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("target[%d] = %v, want a finite value", i, v)
		}
	}

	row0 := target[0:2]
	row1 := target[2:4]
	row7 := target[14:16]

	similarDot := numeric.Dot(row0, row1)
	dissimilarDot := numeric.Dot(row0, row7)

	if similarDot <= dissimilarDot {
		t.Errorf("target dot(0,1) = %v, target dot(0,7) = %v; want dot(0,1) > dot(0,7) "+
			"(rows 0,1 are the most normal-dot-similar pair, rows 0,7 the least similar)",
			similarDot, dissimilarDot)
	}
}
