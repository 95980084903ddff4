package main

import (
	"math"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// CornerStrategy keeps the largest tiles packed toward the top-left corner.
// It looks one move ahead and scores the slid grid by a corner-weighted sum
// of tiles, the empty cells left and the points merged.
type CornerStrategy struct {
	// EmptyWeight scales the bonus for every empty cell after the move
	EmptyWeight float64
}

func NewCornerStrategy() *CornerStrategy {
	return &CornerStrategy{EmptyWeight: 0.25}
}

// NextMove returns the best direction for the grid, or "" when nothing moves
func (s *CornerStrategy) NextMove(g engine.Grid) engine.Direction {
	var best engine.Direction
	bestScore := math.Inf(-1)

	for _, dir := range engine.Directions {
		next, gained, changed := engine.Slide(g, dir)
		if !changed {
			continue
		}
		if score := s.evaluate(next, gained); score > bestScore {
			best, bestScore = dir, score
		}
	}
	return best
}

func (s *CornerStrategy) evaluate(g engine.Grid, gained int) float64 {
	weighted := 0.0
	for r, row := range g {
		for c, v := range row {
			weighted += float64(v) * math.Pow(0.5, float64(r+c))
		}
	}
	empty := float64(len(g.EmptyCells()))
	return weighted + float64(gained) + empty*s.EmptyWeight*float64(g.MaxTile())
}
