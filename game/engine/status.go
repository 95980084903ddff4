package engine

// EvaluateStatus derives the game status from a grid.
// Reaching the win tile short-circuits the no-moves check.
func EvaluateStatus(g Grid) Status {
	for _, row := range g {
		for _, v := range row {
			if v == WinTile {
				return StatusWon
			}
		}
	}

	if hasEmptyCell(g) || hasAdjacentPair(g) {
		return StatusOngoing
	}
	return StatusLost
}

func hasEmptyCell(g Grid) bool {
	for _, row := range g {
		for _, v := range row {
			if v == 0 {
				return true
			}
		}
	}
	return false
}

// hasAdjacentPair looks for two orthogonal neighbours holding the same tile.
// Empty cells are skipped so two zeros never count as a merge.
func hasAdjacentPair(g Grid) bool {
	size := len(g)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			v := g[r][c]
			if v == 0 {
				continue
			}
			if c+1 < size && g[r][c+1] == v {
				return true
			}
			if r+1 < size && g[r+1][c] == v {
				return true
			}
		}
	}
	return false
}

// isPowerOfTwo reports whether v is a legal tile value
func isPowerOfTwo(v int) bool {
	return v >= 2 && v&(v-1) == 0
}
