package engine

import (
	"math/rand"
	"time"
)

// RandomSource is the only source of randomness the engine uses.
// *rand.Rand satisfies it; tests inject scripted sources.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// NewRandomSource returns a time-seeded source
func NewRandomSource() RandomSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededSource returns a reproducible source
func NewSeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// spawnTile places a 2 (or, one time in ten, a 4) on a uniformly chosen empty cell.
// A full grid is left untouched and nil is returned.
func spawnTile(g Grid, src RandomSource) *SpawnedTile {
	empty := g.EmptyCells()
	if len(empty) == 0 {
		return nil
	}

	cell := empty[src.Intn(len(empty))]
	value := SpawnValue
	if src.Float64() < SpawnRareChance {
		value = SpawnValueRare
	}

	g[cell[0]][cell[1]] = value
	return &SpawnedTile{Row: cell[0], Col: cell[1], Value: value}
}
