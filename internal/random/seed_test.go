package random

import "testing"

func TestNewSourceKeepsExplicitSeed(t *testing.T) {
	rngA, seedA, err := NewSource(99)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	rngB, seedB, err := NewSource(99)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if seedA != 99 || seedB != 99 {
		t.Fatalf("expected seed 99, got %d and %d", seedA, seedB)
	}
	for i := 0; i < 10; i++ {
		if a, b := rngA.Int63(), rngB.Int63(); a != b {
			t.Fatalf("value %d differs: %d vs %d", i, a, b)
		}
	}
}

func TestNewSourceGeneratesSeed(t *testing.T) {
	_, seed, err := NewSource(0)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if seed == 0 {
		t.Fatal("expected a generated non-zero seed")
	}
}
