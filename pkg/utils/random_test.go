package utils

import "testing"

func TestDeriveSeed(t *testing.T) {
	t.Parallel()

	a := DeriveSeed(42, 0)
	if a != DeriveSeed(42, 0) {
		t.Fatal("DeriveSeed is not deterministic")
	}
	if a == DeriveSeed(42, 1) {
		t.Error("different agents got the same seed")
	}
	if a == DeriveSeed(43, 0) {
		t.Error("different master seeds gave the same seed")
	}
	if a < 0 || DeriveSeed(-1, 7) < 0 {
		t.Error("seed must be non-negative")
	}
}

func TestRandomSeed(t *testing.T) {
	t.Parallel()

	if RandomSeed() < 0 {
		t.Error("seed must be non-negative")
	}
}
