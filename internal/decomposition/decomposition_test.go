package decomposition

import "testing"

func TestNewConfigDefaults(t *testing.T) {
	c, err := NewConfig("model")
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if c.RandomState != 42 {
		t.Errorf("RandomState = %d, want 42", c.RandomState)
	}
	if !c.Verbose {
		t.Error("Verbose = false, want true")
	}
}

func TestNewConfigEmptyModelName(t *testing.T) {
	if _, err := NewConfig(""); err == nil {
		t.Error("NewConfig(\"\") should return an error")
	}
}

func TestNewConfigOptionsOverrideDefaults(t *testing.T) {
	c, err := NewConfig("model", WithRandomState(7), WithVerbose(false))
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if c.RandomState != 7 {
		t.Errorf("RandomState = %d, want 7", c.RandomState)
	}
	if c.Verbose {
		t.Error("Verbose = true, want false")
	}
}

func TestNewIterativeConfigDefaults(t *testing.T) {
	c, err := NewIterativeConfig("model")
	if err != nil {
		t.Fatalf("NewIterativeConfig() error = %v", err)
	}
	if c.Iterations != 100 {
		t.Errorf("Iterations = %d, want 100", c.Iterations)
	}
	if c.LearningRate != 0.01 {
		t.Errorf("LearningRate = %v, want 0.01", c.LearningRate)
	}
	if c.RandomState != 42 || !c.Verbose {
		t.Errorf("embedded Config defaults not applied: %+v", c.Config)
	}
}

func TestNewIterativeConfigEmptyModelName(t *testing.T) {
	if _, err := NewIterativeConfig(""); err == nil {
		t.Error("NewIterativeConfig(\"\") should return an error")
	}
}

func TestNewIterativeConfigOptionsOverrideDefaults(t *testing.T) {
	c, err := NewIterativeConfig("model",
		WithIterations(50),
		WithLearningRate(0.1),
		WithConfigOptions(WithRandomState(1), WithVerbose(false)),
	)
	if err != nil {
		t.Fatalf("NewIterativeConfig() error = %v", err)
	}
	if c.Iterations != 50 {
		t.Errorf("Iterations = %d, want 50", c.Iterations)
	}
	if c.LearningRate != 0.1 {
		t.Errorf("LearningRate = %v, want 0.1", c.LearningRate)
	}
	if c.RandomState != 1 {
		t.Errorf("RandomState = %d, want 1", c.RandomState)
	}
	if c.Verbose {
		t.Error("Verbose = true, want false")
	}
}
