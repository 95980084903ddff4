package engine

import "testing"

func TestEvaluateStatus(t *testing.T) {
	tests := []struct {
		name     string
		grid     Grid
		expected Status
	}{
		{"empty grid", NewGrid(4), StatusOngoing},
		{"single empty cell", Grid{{2, 4}, {8, 0}}, StatusOngoing},
		{"full with horizontal pair", Grid{{2, 2}, {4, 8}}, StatusOngoing},
		{"full with vertical pair", Grid{{2, 4}, {2, 8}}, StatusOngoing},
		{"full without pairs", Grid{{2, 4}, {4, 2}}, StatusLost},
		{"checkerboard 4x4", Grid{
			{2, 4, 2, 4},
			{4, 2, 4, 2},
			{2, 4, 2, 4},
			{4, 2, 4, 2},
		}, StatusLost},
		{"win tile on a stuck grid", Grid{{2048, 4}, {4, 2}}, StatusWon},
		{"win tile with room left", Grid{{0, 0}, {0, 2048}}, StatusWon},
		{"diagonal pair does not count", Grid{{2, 4}, {8, 2}}, StatusLost},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := EvaluateStatus(test.grid); got != test.expected {
				t.Errorf("EvaluateStatus() = %s, want %s", got, test.expected)
			}
		})
	}
}

func TestHasAdjacentPair_IgnoresEmptyCells(t *testing.T) {
	if hasAdjacentPair(Grid{{0, 0}, {2, 4}}) {
		t.Error("two empty cells counted as a pair")
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, v := range []int{2, 4, 8, 1024, 2048, 131072} {
		if !isPowerOfTwo(v) {
			t.Errorf("isPowerOfTwo(%d) = false", v)
		}
	}
	for _, v := range []int{-2, 0, 1, 3, 6, 100} {
		if isPowerOfTwo(v) {
			t.Errorf("isPowerOfTwo(%d) = true", v)
		}
	}
}
