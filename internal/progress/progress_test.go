package progress

import (
	"errors"
	"testing"
)

func TestRunExecutesEveryIteration(t *testing.T) {
	var count int
	err := Run(5, "Test Decomposition", false, func(i int) error {
		if i != count {
			t.Errorf("step called with i=%d, want %d", i, count)
		}
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if count != 5 {
		t.Errorf("step called %d times, want 5", count)
	}
}

func TestRunZeroIterations(t *testing.T) {
	called := false
	err := Run(0, "Test Decomposition", true, func(i int) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if called {
		t.Error("step should not be called for zero iterations")
	}
}

func TestRunShortCircuitsOnError(t *testing.T) {
	sentinel := errors.New("boom")
	var count int
	err := Run(10, "Test Decomposition", false, func(i int) error {
		count++
		if i == 3 {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Run() error = %v, want %v", err, sentinel)
	}
	if count != 4 {
		t.Errorf("step called %d times, want 4 (stop at i=3)", count)
	}
}
