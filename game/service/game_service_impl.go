package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	defaultNoChange     = "Nothing moved in that direction"
	gameOverNoChange    = "The game is over. Reset to play again"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.Mutex // guards every session read and write, including access times
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a session, used for consistent API responses
func (s *gameServiceImpl) getConfigID(sess *Session) string {
	if sess.ConfigID != "" {
		return sess.ConfigID
	}
	if sess.Config == nil {
		return "default"
	}
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == sess.Config.Name {
				return cfg.ConfigID
			}
		}
	}
	if sess.Config.Name == "" {
		return "default"
	}
	return sess.Config.Name
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// getSession looks up a session and refreshes its access time
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	if err := s.sessions.UpdateLastAccessed(sess.ID); err != nil {
		log.Debug().Err(err).Str("session_id", sess.ID).Msg("failed to update last accessed time")
	}
	return sess, nil
}

// withoutHistory drops the move logs from a snapshot returned by a mutation.
// The logs grow with every move; GetMoveHistory pages them instead.
func withoutHistory(state *engine.GameState) *engine.GameState {
	state.MoveHistory = nil
	state.CurrentMoves = nil
	return state
}

// persist saves a session, logging instead of failing the request
func (s *gameServiceImpl) persist(sessionID, operation string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Str("operation", operation).Msg("failed to persist session")
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = configName
	if sess.ConfigID == "" {
		sess.ConfigID = s.getConfigID(sess)
	}
	// A session that never reached storage would be pruned by the storage sync
	if err := s.sessions.Save(sess.ID); err != nil {
		if delErr := s.sessions.Delete(sess.ID); delErr != nil {
			log.Warn().Err(delErr).Str("session_id", sess.ID).Msg("failed to discard unsaved session")
		}
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.Info().Str("session_id", sess.ID).Str("config", sess.ConfigID).Msg("session created")
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	step, moveEvents, outcome, err := applyMove(sess, dir, 1)
	if err != nil {
		return nil, err
	}
	events = append(events, moveEvents...)

	state := withoutHistory(sess.Engine.GetState())
	result := &MoveResult{
		Success:       outcome.Changed,
		GameState:     state,
		Message:       state.Message,
		Outcome:       outcome,
		Events:        events,
		Step:          &step,
		PossibleMoves: state.PossibleMoves,
	}
	if outcome.Changed {
		result.LastMove = sess.Engine.GetLastMove()
	} else {
		result.Message = noChangeMessage(sess)
	}

	// Auto-save session after move
	if outcome.Changed || reset {
		s.persist(sess.ID, "move")
	}

	return result, nil
}

// BulkMove executes multiple moves in sequence, stopping once the game is won or lost.
// Every direction is validated before any move runs.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	requested := len(moves)
	truncated := false
	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		truncated = true
		moves = moves[:engine.MaxBulkMoves]
	}

	dirs := make([]engine.Direction, 0, len(moves))
	for i, m := range moves {
		dir, err := engine.ParseDirection(m)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		dirs = append(dirs, dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: requested,
		Events:         make([]GameEvent, 0),
		Success:        true,
	}
	if truncated {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
	}

	// Handle reset
	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	start := sess.Engine.GetState()
	result.StartScore = start.Score
	result.StartMaxTile = start.MaxTile

	// Execute moves
	for i, dir := range dirs {
		if sess.Engine.IsTerminal() {
			result.Success = false
			result.StopReasonCode = stopCode(sess.Engine.Status())
			result.StoppedReason = fmt.Sprintf("game already %s before move %d", sess.Engine.Status(), i+1)
			break
		}

		step, events, outcome, err := applyMove(sess, dir, i+1)
		if err != nil {
			return nil, err
		}
		result.MovesExecuted++
		if outcome.Changed {
			result.MovesChanged++
		}
		result.Steps = append(result.Steps, step)
		result.Events = append(result.Events, events...)

		if sess.Engine.IsTerminal() {
			result.StopReasonCode = stopCode(step.Status)
			result.StoppedOnMove = i + 1
			if i+1 < len(dirs) {
				result.StoppedReason = fmt.Sprintf("game %s on move %d; %d moves skipped", step.Status, i+1, len(dirs)-i-1)
			} else {
				result.StoppedReason = fmt.Sprintf("game %s on move %d", step.Status, i+1)
			}
			break
		}
	}

	// Finalize snapshots
	endState := withoutHistory(sess.Engine.GetState())
	result.GameState = endState
	result.EndScore = endState.Score
	result.EndMaxTile = endState.MaxTile
	result.ScoreDelta = endState.Score - result.StartScore
	result.GameOver = endState.Status != engine.StatusOngoing
	result.Status = endState.Status
	result.Message = endState.Message
	result.PossibleMoves = endState.PossibleMoves

	// Auto-save session after bulk moves
	if result.MovesChanged > 0 || reset {
		s.persist(sess.ID, "bulk_move")
	}

	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := withoutHistory(sess.Engine.Reset())

	// Auto-save session after reset
	s.persist(sess.ID, "reset")

	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return paginateHistory(sess.Engine.GetMoveHistory(), opts), nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// applyMove runs one move on a session engine and describes what happened
func applyMove(sess *Session, dir engine.Direction, idx int) (StepInfo, []GameEvent, engine.MoveOutcome, error) {
	scoreBefore := sess.Engine.GetScore()

	outcome, err := sess.Engine.Move(dir)
	if err != nil {
		return StepInfo{}, nil, outcome, err
	}

	status := sess.Engine.Status()
	state := sess.Engine.GetState()
	step := StepInfo{
		Idx:         idx,
		Dir:         dir,
		Changed:     outcome.Changed,
		ScoreBefore: scoreBefore,
		ScoreAfter:  state.Score,
		Merged:      outcome.ScoreDelta,
		Spawned:     outcome.Spawned,
		MaxTile:     state.MaxTile,
		Status:      status,
	}

	return step, extractMoveEvents(sess, dir, outcome), outcome, nil
}

// extractMoveEvents generates events from a move
func extractMoveEvents(sess *Session, dir engine.Direction, outcome engine.MoveOutcome) []GameEvent {
	now := time.Now()

	if !outcome.Changed {
		return []GameEvent{{
			Type:      EventNoChange,
			Message:   noChangeMessage(sess),
			Timestamp: now,
			Direction: dir,
		}}
	}

	state := sess.Engine.GetState()

	// Basic move event
	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved %s", dir),
		Timestamp: now,
		Direction: dir,
	}}

	if outcome.ScoreDelta > 0 {
		events = append(events, GameEvent{
			Type:      EventMerge,
			Message:   fmt.Sprintf("Merged tiles for +%d. Score: %d", outcome.ScoreDelta, state.Score),
			Timestamp: now,
			Direction: dir,
		})
	}

	if outcome.Spawned != nil {
		events = append(events, GameEvent{
			Type:      EventSpawn,
			Message:   fmt.Sprintf("New %d tile at (%d,%d)", outcome.Spawned.Value, outcome.Spawned.Row, outcome.Spawned.Col),
			Timestamp: now,
			Tile:      outcome.Spawned,
		})
	}

	// Check for game over events
	switch state.Status {
	case engine.StatusWon:
		events = append(events, GameEvent{
			Type:      EventVictory,
			Message:   state.Message,
			Timestamp: now,
		})
	case engine.StatusLost:
		events = append(events, GameEvent{
			Type:      EventGameOver,
			Message:   state.Message,
			Timestamp: now,
		})
	}

	return events
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      EventReset,
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

func noChangeMessage(sess *Session) string {
	if sess.Engine.IsTerminal() {
		return gameOverNoChange
	}
	if sess.Config != nil && sess.Config.Messages.NoChange != "" {
		return sess.Config.Messages.NoChange
	}
	return defaultNoChange
}

func stopCode(status engine.Status) string {
	if status == engine.StatusWon {
		return StopVictory
	}
	return StopGameOver
}

// paginateHistory slices a move log into one page
func paginateHistory(history []engine.MoveHistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}
