package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidGridSize  = errors.New("invalid grid size")
	ErrInvalidState     = errors.New("invalid game state")
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	Status() Status
	IsTerminal() bool
	GetScore() int
	GetGrid() Grid

	// Movement operations
	Move(direction Direction) (MoveOutcome, error)
	CanMove(direction Direction) bool
	GetPossibleMoves() []Direction
	SpawnRandomTile() *SpawnedTile

	// Configuration
	GetConfig() *GameConfig

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It owns the grid and score; callers
// that share one instance across goroutines must serialize access themselves.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	src    RandomSource
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	return NewEngineWithSource(config, NewRandomSource())
}

// NewEngineWithSource creates a new game engine drawing randomness from src
func NewEngineWithSource(config *GameConfig, src RandomSource) (*GameEngine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return newEngine(config, src), nil
}

// NewEngineWithSize creates an engine for a bare size x size grid.
// Only the lower bound applies; MaxGridSize limits config files, not the engine.
func NewEngineWithSize(size int, src RandomSource) (*GameEngine, error) {
	if size < MinGridSize {
		return nil, fmt.Errorf("%w: grid_size must be at least %d, got %d", ErrInvalidGridSize, MinGridSize, size)
	}
	config := DefaultConfig()
	config.GridSize = size
	return newEngine(config, src), nil
}

func newEngine(config *GameConfig, src RandomSource) *GameEngine {
	if src == nil {
		src = NewRandomSource()
	}
	engine := &GameEngine{
		config: config,
		src:    src,
	}
	engine.state = engine.initState()
	return engine
}

// NewEngineWithDefaults creates a new game engine with the default 4x4 configuration
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		// DefaultConfig is always valid
		panic(err)
	}
	return engine
}

// initState builds an empty grid and seeds the opening tiles
func (e *GameEngine) initState() *GameState {
	state := &GameState{
		Grid:         NewGrid(e.config.GridSize),
		Size:         e.config.GridSize,
		Status:       StatusOngoing,
		Message:      e.config.Messages.Welcome,
		ConfigName:   e.config.Name,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	for i := 0; i < InitialTileCount; i++ {
		spawnTile(state.Grid, e.src)
	}
	state.MaxTile = state.Grid.MaxTile()
	return state
}

// GetState returns a snapshot of the current game state.
// The snapshot shares nothing with the engine, so renderers may keep it.
func (e *GameEngine) GetState() *GameState {
	snapshot := *e.state
	snapshot.Grid = e.state.Grid.Clone()
	snapshot.MoveHistory = cloneHistory(e.state.MoveHistory)
	snapshot.CurrentMoves = cloneHistory(e.state.CurrentMoves)
	snapshot.PossibleMoves = e.GetPossibleMoves()
	return &snapshot
}

// SetState restores a game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("%w: state cannot be nil", ErrInvalidState)
	}
	if err := validateGrid(state.Grid, e.config.GridSize); err != nil {
		return err
	}
	if state.Score < 0 {
		return fmt.Errorf("%w: negative score %d", ErrInvalidState, state.Score)
	}

	restored := *state
	restored.Grid = state.Grid.Clone()
	restored.Size = e.config.GridSize
	restored.Status = EvaluateStatus(restored.Grid)
	restored.MaxTile = restored.Grid.MaxTile()
	restored.PossibleMoves = nil
	if restored.MoveHistory == nil {
		restored.MoveHistory = []MoveHistoryEntry{}
	}
	if restored.CurrentMoves == nil {
		restored.CurrentMoves = []MoveHistoryEntry{}
	}
	e.state = &restored
	return nil
}

// Reset starts a fresh grid with the same configuration
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = e.initState()

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal

	return e.GetState()
}

// Status returns the current game status
func (e *GameEngine) Status() Status {
	return e.state.Status
}

// IsTerminal reports whether the game is won or lost
func (e *GameEngine) IsTerminal() bool {
	return e.state.Status != StatusOngoing
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetGrid returns a copy of the current grid
func (e *GameEngine) GetGrid() Grid {
	return e.state.Grid.Clone()
}

// SpawnRandomTile places one random tile on an empty cell.
// It returns nil without mutating anything when the grid is full.
func (e *GameEngine) SpawnRandomTile() *SpawnedTile {
	spawned := spawnTile(e.state.Grid, e.src)
	if spawned != nil && spawned.Value > e.state.MaxTile {
		e.state.MaxTile = spawned.Value
	}
	return spawned
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetMoveHistory returns a copy of the complete move log
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return cloneHistory(e.state.MoveHistory)
}

// GetLastMove returns a copy of the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	last := e.state.MoveHistory[len(e.state.MoveHistory)-1].clone()
	return &last
}

func (m MoveHistoryEntry) clone() MoveHistoryEntry {
	if m.Spawned != nil {
		spawned := *m.Spawned
		m.Spawned = &spawned
	}
	return m
}

func cloneHistory(entries []MoveHistoryEntry) []MoveHistoryEntry {
	out := make([]MoveHistoryEntry, len(entries))
	for i, entry := range entries {
		out[i] = entry.clone()
	}
	return out
}

// BulkMove executes multiple moves in sequence, stopping once the game ends.
// An invalid direction aborts the sequence and returns the outcomes so far.
func (e *GameEngine) BulkMove(moves []Direction) ([]MoveOutcome, error) {
	outcomes := make([]MoveOutcome, 0, len(moves))

	for _, direction := range moves {
		if e.IsTerminal() {
			break
		}

		outcome, err := e.Move(direction)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// validateGrid checks shape and tile values of a restored grid
func validateGrid(g Grid, size int) error {
	if len(g) != size {
		return fmt.Errorf("%w: grid has %d rows, want %d", ErrInvalidState, len(g), size)
	}
	for r, row := range g {
		if len(row) != size {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidState, r, len(row), size)
		}
		for c, v := range row {
			if v != 0 && !isPowerOfTwo(v) {
				return fmt.Errorf("%w: cell (%d,%d) holds %d", ErrInvalidState, r, c, v)
			}
		}
	}
	return nil
}
