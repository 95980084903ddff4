package engine

import "fmt"

// Direction is one of the four ways the grid can be shifted
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every valid direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection converts user input into a Direction
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Status is derived from the grid after every accepted move
type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

const (
	// Validation constants
	DefaultGridSize     = 4
	MinGridSize         = 2
	MaxGridSize         = 16
	WinTile             = 2048
	MaxBulkMoves        = 50
	WebSocketBufferSize = 256

	// Spawn distribution
	SpawnValue       = 2
	SpawnValueRare   = 4
	SpawnRareChance  = 0.1
	InitialTileCount = 2
)

// Grid is a square matrix of tile values; 0 marks an empty cell
type Grid [][]int

// SpawnedTile describes the tile placed after a successful move
type SpawnedTile struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"`
}

// MoveOutcome is produced fresh by every Move call
type MoveOutcome struct {
	Changed    bool         `json:"changed"`
	ScoreDelta int          `json:"score_delta"`
	Spawned    *SpawnedTile `json:"spawned,omitempty"`
}

// GameConfig represents a game variant loaded from JSON or YAML
type GameConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	GridSize    int    `json:"grid_size" yaml:"grid_size"`
	Messages    struct {
		Welcome  string `json:"welcome" yaml:"welcome"`
		Victory  string `json:"victory" yaml:"victory"`
		GameOver string `json:"game_over" yaml:"game_over"`
		NoChange string `json:"no_change" yaml:"no_change"`
	} `json:"messages" yaml:"messages"`
}

// GameState is a snapshot of a game handed to renderers and persistence
type GameState struct {
	Grid        Grid               `json:"grid"`
	Size        int                `json:"size"`
	Score       int                `json:"score"`
	Status      Status             `json:"status"`
	MaxTile     int                `json:"max_tile"`
	Message     string             `json:"message"`
	ConfigName  string             `json:"config_name"`
	MoveHistory []MoveHistoryEntry `json:"move_history,omitempty"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves,omitempty"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper views (not required for core game logic)
	PossibleMoves []Direction `json:"possible_moves,omitempty"`
}

// MoveHistoryEntry represents a single move in the game log
type MoveHistoryEntry struct {
	Action     Direction    `json:"action"`
	ScoreDelta int          `json:"score_delta"`
	Score      int          `json:"score"`
	Spawned    *SpawnedTile `json:"spawned,omitempty"`
	Status     Status       `json:"status"`
	Timestamp  int64        `json:"timestamp"`
	MoveNumber int          `json:"move_number"`
}
