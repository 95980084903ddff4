package engine

import (
	"fmt"
	"time"
)

// Move shifts the grid in the given direction.
//
// If no cell moves, or the game is already won or lost, nothing is mutated and the
// zero MoveOutcome is returned. An unknown direction is a caller error.
func (e *GameEngine) Move(direction Direction) (MoveOutcome, error) {
	if !direction.Valid() {
		return MoveOutcome{}, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
	if e.IsTerminal() {
		return MoveOutcome{}, nil
	}

	next, gained, changed := shiftGrid(e.state.Grid, direction)
	if !changed {
		return MoveOutcome{}, nil
	}

	e.state.Grid = next
	e.state.Score += gained
	spawned := spawnTile(e.state.Grid, e.src)
	e.state.Status = EvaluateStatus(e.state.Grid)
	e.state.MaxTile = e.state.Grid.MaxTile()
	e.state.Message = e.statusMessage(gained)

	outcome := MoveOutcome{
		Changed:    true,
		ScoreDelta: gained,
		Spawned:    spawned,
	}
	e.addMoveToHistory(direction, outcome)

	return outcome, nil
}

// CanMove reports whether moving in direction would change the grid
func (e *GameEngine) CanMove(direction Direction) bool {
	if e.IsTerminal() || !direction.Valid() {
		return false
	}
	_, _, changed := shiftGrid(e.state.Grid, direction)
	return changed
}

// GetPossibleMoves returns all directions that would change the grid
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// statusMessage picks the message shown after an accepted move
func (e *GameEngine) statusMessage(gained int) string {
	switch e.state.Status {
	case StatusWon:
		if e.config.Messages.Victory != "" {
			return fmt.Sprintf(e.config.Messages.Victory, e.state.Score)
		}
		return fmt.Sprintf("You reached %d! Final score: %d", WinTile, e.state.Score)
	case StatusLost:
		if e.config.Messages.GameOver != "" {
			return fmt.Sprintf(e.config.Messages.GameOver, e.state.Score)
		}
		return fmt.Sprintf("No more moves possible. Final score: %d", e.state.Score)
	}
	if gained > 0 {
		return fmt.Sprintf("Merged for +%d. Score: %d", gained, e.state.Score)
	}
	return fmt.Sprintf("Score: %d", e.state.Score)
}

// addMoveToHistory appends an accepted move to the game log
func (e *GameEngine) addMoveToHistory(direction Direction, outcome MoveOutcome) {
	entry := MoveHistoryEntry{
		Action:     direction,
		ScoreDelta: outcome.ScoreDelta,
		Score:      e.state.Score,
		Spawned:    outcome.Spawned,
		Status:     e.state.Status,
		Timestamp:  time.Now().Unix(),
		MoveNumber: e.state.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	e.state.MoveHistory = append(e.state.MoveHistory, entry.clone())
	e.state.TotalMoves++

	// Append to current segment history and increment its counter
	e.state.CurrentMoves = append(e.state.CurrentMoves, entry.clone())
	e.state.CurrentMovesCount++
}
