package service

import (
	"time"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// Event types emitted by game operations
const (
	EventMove     = "move"
	EventMerge    = "merge"
	EventSpawn    = "spawn"
	EventNoChange = "no_change"
	EventVictory  = "victory"
	EventGameOver = "game_over"
	EventReset    = "reset"
)

// Stop reason codes reported by BulkMove
const (
	StopVictory  = "victory"
	StopGameOver = "game_over"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success       bool                     `json:"success"`
	GameState     *engine.GameState        `json:"game_state"`
	Message       string                   `json:"message"`
	Outcome       engine.MoveOutcome       `json:"outcome"`
	Events        []GameEvent              `json:"events,omitempty"`
	Step          *StepInfo                `json:"step,omitempty"`
	LastMove      *engine.MoveHistoryEntry `json:"last_move,omitempty"`
	PossibleMoves []engine.Direction       `json:"possible_moves,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	MovesChanged   int               `json:"moves_changed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // Machine-friendly code: victory|game_over
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that ended the game
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartScore   int `json:"start_score"`
	EndScore     int `json:"end_score"`
	ScoreDelta   int `json:"score_delta"`
	StartMaxTile int `json:"start_max_tile"`
	EndMaxTile   int `json:"end_max_tile"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool               `json:"game_over"`
	Status        engine.Status      `json:"status"`
	Message       string             `json:"message,omitempty"`
	PossibleMoves []engine.Direction `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx         int                 `json:"idx"`
	Dir         engine.Direction    `json:"dir"`
	Changed     bool                `json:"changed"`
	ScoreBefore int                 `json:"score_before"`
	ScoreAfter  int                 `json:"score_after"`
	Merged      int                 `json:"merged,omitempty"`
	Spawned     *engine.SpawnedTile `json:"spawned,omitempty"`
	MaxTile     int                 `json:"max_tile"`
	Status      engine.Status       `json:"status"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string              `json:"type"` // "move", "merge", "spawn", "no_change", "victory", "game_over", "reset"
	Message   string              `json:"message"`
	Timestamp time.Time           `json:"timestamp"`
	Direction engine.Direction    `json:"direction,omitempty"`
	Tile      *engine.SpawnedTile `json:"tile,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	GridSize    int    `json:"grid_size"`
}
