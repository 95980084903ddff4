package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    map[string]int
	seed     int64
	saveErr  error
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
		saves:    make(map[string]int),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	m.seed++
	eng, err := engine.NewEngineWithSource(config, engine.NewSeededSource(m.seed))
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

func (m *MockSessionManager) Save(id string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	m.saves[id]++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
	saved   map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	testConfig := engine.DefaultConfig()
	testConfig.Name = "test"

	small := engine.DefaultConfig()
	small.Name = "small"
	small.GridSize = 2
	small.Messages.NoChange = "Blocked"

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"classic": engine.DefaultConfig(),
			"test":    testConfig,
			"small":   small,
		},
		saved: make(map[string]*engine.GameConfig),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			GridSize:    config.GridSize,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["classic"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidConfig, err)
	}
	m.saved[name] = config
	m.configs[name] = config
	return nil
}

// newTestService wires a service over fresh mocks
func newTestService(t *testing.T) (service.GameService, *MockSessionManager, *MockConfigManager) {
	t.Helper()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	return service.NewGameService(sessions, configs), sessions, configs
}

// setGrid replaces the grid of a session created through the service
func setGrid(t *testing.T, sessions *MockSessionManager, id string, grid engine.Grid, score int) {
	t.Helper()
	sess, err := sessions.Get(id)
	if err != nil {
		t.Fatalf("session %s missing: %v", id, err)
	}
	if err := sess.Engine.SetState(&engine.GameState{Grid: grid, Score: score}); err != nil {
		t.Fatalf("failed to set state: %v", err)
	}
}

func eventTypes(events []service.GameEvent) []string {
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)

	tests := []struct {
		name       string
		configName string
		wantErr    bool
		wantConfig string
		wantSize   int
	}{
		{
			name:       "create with default config",
			configName: "",
			wantConfig: "classic",
			wantSize:   4,
		},
		{
			name:       "create with specific config",
			configName: "small",
			wantConfig: "small",
			wantSize:   2,
		},
		{
			name:       "create with invalid config",
			configName: "nonexistent",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, service.ErrConfigNotFound) {
					t.Errorf("expected ErrConfigNotFound, got %v", err)
				}
				return
			}
			if info.ConfigName != tt.wantConfig {
				t.Errorf("ConfigName = %q, want %q", info.ConfigName, tt.wantConfig)
			}
			if info.GameState.Size != tt.wantSize {
				t.Errorf("grid size = %d, want %d", info.GameState.Size, tt.wantSize)
			}
			if sessions.saves[info.ID] != 1 {
				t.Errorf("expected new session to be saved once, got %d", sessions.saves[info.ID])
			}
		})
	}
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	setGrid(t, sessions, info.ID, engine.Grid{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 0)

	result, err := svc.Move(ctx, info.ID, "left", false)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !result.Success || !result.Outcome.Changed {
		t.Fatalf("expected a changed move, got %+v", result)
	}
	if result.Outcome.ScoreDelta != 4 || result.GameState.Score != 4 {
		t.Errorf("expected +4 score, got delta=%d score=%d", result.Outcome.ScoreDelta, result.GameState.Score)
	}
	if diff := cmp.Diff([]string{service.EventMove, service.EventMerge, service.EventSpawn}, eventTypes(result.Events)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if result.Step == nil || result.Step.Dir != engine.Left || result.Step.ScoreBefore != 0 || result.Step.ScoreAfter != 4 {
		t.Errorf("unexpected step %+v", result.Step)
	}
	if len(result.PossibleMoves) == 0 {
		t.Error("expected possible moves to be reported")
	}
	if sessions.saves[info.ID] != 2 {
		t.Errorf("expected a save after the move, got %d saves", sessions.saves[info.ID])
	}
}

func TestGameService_MoveNoChange(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "small")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	setGrid(t, sessions, info.ID, engine.Grid{{2, 0}, {4, 0}}, 0)

	result, err := svc.Move(ctx, info.ID, "left", false)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if result.Success || result.Outcome.Changed {
		t.Errorf("expected no change, got %+v", result.Outcome)
	}
	if result.Message != "Blocked" {
		t.Errorf("expected the config no_change message, got %q", result.Message)
	}
	if diff := cmp.Diff([]string{service.EventNoChange}, eventTypes(result.Events)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if sessions.saves[info.ID] != 1 {
		t.Errorf("expected no save after a no-op move, got %d saves", sessions.saves[info.ID])
	}
}

func TestGameService_MoveErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := svc.Move(ctx, info.ID, "diagonal", false); !errors.Is(err, engine.ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}
	if _, err := svc.Move(ctx, "nonexistent", "up", false); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_MoveWithReset(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	setGrid(t, sessions, info.ID, engine.Grid{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}, 120)

	result, err := svc.Move(ctx, info.ID, "up", true)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if len(result.Events) == 0 || result.Events[0].Type != service.EventReset {
		t.Errorf("expected a reset event first, got %v", eventTypes(result.Events))
	}
	if result.GameState.Status != engine.StatusOngoing {
		t.Errorf("expected a fresh game, got %s", result.GameState.Status)
	}
	if result.GameState.Score > 8 {
		t.Errorf("expected score to restart, got %d", result.GameState.Score)
	}
}

func TestGameService_MoveAfterGameOver(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "small")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	setGrid(t, sessions, info.ID, engine.Grid{{2, 4}, {4, 2}}, 12)

	result, err := svc.Move(ctx, info.ID, "left", false)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if result.Success {
		t.Error("expected a lost game to reject moves")
	}
	if result.GameState.Status != engine.StatusLost {
		t.Errorf("expected lost, got %s", result.GameState.Status)
	}
	if len(result.Events) != 1 || result.Events[0].Type != service.EventNoChange {
		t.Errorf("unexpected events %v", eventTypes(result.Events))
	}
}

func TestGameService_BulkMove(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		moves     []string
		reset     bool
		wantErr   error
	}{
		{
			name:      "valid bulk moves",
			sessionID: info.ID,
			moves:     []string{"up", "right", "down", "left"},
		},
		{
			name:      "bulk moves with reset",
			sessionID: info.ID,
			moves:     []string{"up", "up"},
			reset:     true,
		},
		{
			name:      "empty moves",
			sessionID: info.ID,
			moves:     []string{},
		},
		{
			name:      "invalid session",
			sessionID: "nonexistent",
			moves:     []string{"up"},
			wantErr:   service.ErrSessionNotFound,
		},
		{
			name:      "invalid direction",
			sessionID: info.ID,
			moves:     []string{"up", "sideways"},
			wantErr:   engine.ErrInvalidDirection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.BulkMove(ctx, tt.sessionID, tt.moves, tt.reset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("BulkMove() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BulkMove() error = %v", err)
			}
			if result.RequestedMoves != len(tt.moves) {
				t.Errorf("RequestedMoves = %d, want %d", result.RequestedMoves, len(tt.moves))
			}
			if result.MovesExecuted != len(result.Steps) {
				t.Errorf("MovesExecuted = %d but %d steps", result.MovesExecuted, len(result.Steps))
			}
			if result.ScoreDelta != result.EndScore-result.StartScore {
				t.Errorf("ScoreDelta %d inconsistent with %d -> %d", result.ScoreDelta, result.StartScore, result.EndScore)
			}
		})
	}

	t.Run("invalid direction runs nothing", func(t *testing.T) {
		before, _ := svc.GetGameState(ctx, info.ID)
		_, _ = svc.BulkMove(ctx, info.ID, []string{"left", "right", "nope"}, false)
		after, _ := svc.GetGameState(ctx, info.ID)
		if before.TotalMoves != after.TotalMoves {
			t.Errorf("moves ran before the invalid direction was rejected")
		}
	})

	t.Run("stops on victory", func(t *testing.T) {
		setGrid(t, sessions, info.ID, engine.Grid{
			{1024, 1024, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
		}, 10000)

		result, err := svc.BulkMove(ctx, info.ID, []string{"left", "right", "up"}, false)
		if err != nil {
			t.Fatalf("BulkMove() error = %v", err)
		}
		if result.MovesExecuted != 1 || result.StoppedOnMove != 1 {
			t.Errorf("expected stop after move 1, got executed=%d stopped=%d", result.MovesExecuted, result.StoppedOnMove)
		}
		if result.StopReasonCode != service.StopVictory || !result.GameOver || result.Status != engine.StatusWon {
			t.Errorf("unexpected stop %q status %s", result.StopReasonCode, result.Status)
		}
		if result.ScoreDelta != 2048 || result.EndMaxTile != 2048 {
			t.Errorf("unexpected delta %d max %d", result.ScoreDelta, result.EndMaxTile)
		}
		if result.Steps[0].Merged != 2048 {
			t.Errorf("expected merge of 2048 in step, got %+v", result.Steps[0])
		}

		again, err := svc.BulkMove(ctx, info.ID, []string{"down"}, false)
		if err != nil {
			t.Fatalf("BulkMove() error = %v", err)
		}
		if again.Success || again.MovesExecuted != 0 || again.StopReasonCode != service.StopVictory {
			t.Errorf("expected a won game to refuse moves, got %+v", again)
		}
	})
}

func TestGameService_BulkMoveTruncation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	moves := make([]string, engine.MaxBulkMoves+10)
	for i := range moves {
		moves[i] = string(engine.Directions[i%len(engine.Directions)])
	}
	// The tail is never parsed once truncated
	moves[len(moves)-1] = "bogus"

	result, err := svc.BulkMove(ctx, info.ID, moves, false)
	if err != nil {
		t.Fatalf("BulkMove() error = %v", err)
	}
	if !result.Truncated || result.Limit != engine.MaxBulkMoves {
		t.Errorf("expected truncation at %d, got truncated=%v limit=%d", engine.MaxBulkMoves, result.Truncated, result.Limit)
	}
	if result.RequestedMoves != len(moves) {
		t.Errorf("RequestedMoves = %d, want %d", result.RequestedMoves, len(moves))
	}
	if result.MovesExecuted > engine.MaxBulkMoves {
		t.Errorf("executed %d moves past the limit", result.MovesExecuted)
	}
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	// Alternating left/right always moves a lone tile
	setGrid(t, sessions, info.ID, engine.Grid{
		{0, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 0)
	if _, err := svc.BulkMove(ctx, info.ID, []string{"left", "right", "left"}, false); err != nil {
		t.Fatalf("Failed to make moves: %v", err)
	}
	state, _ := svc.GetGameState(ctx, info.ID)
	total := state.TotalMoves
	if total == 0 {
		t.Fatal("expected logged moves")
	}

	tests := []struct {
		name       string
		opts       service.HistoryOptions
		wantLen    int
		wantFirst  int
		wantNext   bool
		wantPages  int
		wantPageSz int
	}{
		{
			name:       "default options",
			opts:       service.HistoryOptions{},
			wantLen:    total,
			wantFirst:  total,
			wantPages:  1,
			wantPageSz: 20,
		},
		{
			name:       "ascending page",
			opts:       service.HistoryOptions{Page: 1, Limit: 2, Order: "asc"},
			wantLen:    2,
			wantFirst:  1,
			wantNext:   total > 2,
			wantPages:  (total + 1) / 2,
			wantPageSz: 2,
		},
		{
			name:       "descending page",
			opts:       service.HistoryOptions{Page: 1, Limit: 2, Order: "desc"},
			wantLen:    2,
			wantFirst:  total,
			wantNext:   total > 2,
			wantPages:  (total + 1) / 2,
			wantPageSz: 2,
		},
		{
			name:       "limit capped",
			opts:       service.HistoryOptions{Limit: 1000},
			wantLen:    total,
			wantFirst:  total,
			wantPages:  1,
			wantPageSz: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GetMoveHistory(ctx, info.ID, tt.opts)
			if err != nil {
				t.Fatalf("GetMoveHistory() error = %v", err)
			}
			if len(result.Moves) != tt.wantLen {
				t.Fatalf("got %d moves, want %d", len(result.Moves), tt.wantLen)
			}
			if result.Moves[0].MoveNumber != tt.wantFirst {
				t.Errorf("first move number = %d, want %d", result.Moves[0].MoveNumber, tt.wantFirst)
			}
			if result.HasNext != tt.wantNext || result.TotalPages != tt.wantPages || result.PageSize != tt.wantPageSz {
				t.Errorf("unexpected pagination %+v", result)
			}
		})
	}

	t.Run("page past the end", func(t *testing.T) {
		result, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 50, Limit: 10})
		if err != nil {
			t.Fatalf("GetMoveHistory() error = %v", err)
		}
		if result.Moves == nil || len(result.Moves) != 0 {
			t.Errorf("expected an empty, non-nil page, got %v", result.Moves)
		}
	})

	t.Run("invalid session", func(t *testing.T) {
		if _, err := svc.GetMoveHistory(ctx, "nonexistent", service.HistoryOptions{}); !errors.Is(err, service.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	// Create multiple sessions
	for i := 0; i < 3; i++ {
		if _, err := svc.CreateSession(ctx, "test"); err != nil {
			t.Fatalf("Failed to create session %d: %v", i, err)
		}
	}

	sessionList, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessionList) != 3 {
		t.Errorf("ListSessions() returned %d sessions, want 3", len(sessionList))
	}
}

func TestGameService_GetAndDeleteSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "small")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.ConfigName != "small" || got.GameConfig.GridSize != 2 {
		t.Errorf("unexpected session %+v", got)
	}

	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := svc.GetSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := svc.DeleteSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	setGrid(t, sessions, info.ID, engine.Grid{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 0)
	if _, err := svc.Move(ctx, info.ID, "left", false); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}

	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if state.Score != 0 || state.CurrentMovesCount != 0 {
		t.Errorf("expected a fresh game, got score=%d current=%d", state.Score, state.CurrentMovesCount)
	}
	if state.TotalMoves != 1 {
		t.Errorf("expected cumulative history to survive, got %d", state.TotalMoves)
	}

	if _, err := svc.Reset(ctx, "nonexistent"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _, configs := newTestService(t)

	list, err := svc.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("ListConfigs() error = %v", err)
	}
	if len(list) != 3 {
		t.Errorf("expected 3 configs, got %d", len(list))
	}

	config, err := svc.LoadConfig(ctx, "small")
	if err != nil || config.GridSize != 2 {
		t.Fatalf("LoadConfig() = %+v, %v", config, err)
	}

	bad := engine.DefaultConfig()
	bad.GridSize = 1
	if err := svc.SaveConfig(ctx, "bad", bad); !errors.Is(err, service.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	good := engine.DefaultConfig()
	good.Name = "Big"
	good.GridSize = 6
	if err := svc.SaveConfig(ctx, "big", good); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	if configs.saved["big"] != good {
		t.Error("config was not handed to the config manager")
	}

	info, err := svc.CreateSession(ctx, "big")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if info.GameState.Size != 6 {
		t.Errorf("expected a 6x6 game, got %d", info.GameState.Size)
	}
}

func TestGameService_CreateSessionSaveFailure(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)
	sessions.saveErr = errors.New("disk full")

	if _, err := svc.CreateSession(ctx, "test"); err == nil {
		t.Fatal("expected CreateSession to fail when the session cannot be saved")
	}
	if len(sessions.sessions) != 0 {
		t.Errorf("unsaved session left in memory: %d sessions", len(sessions.sessions))
	}

	sessions.saveErr = nil
	if _, err := svc.CreateSession(ctx, "test"); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
}

func TestGameService_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8*50)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				var err error
				switch (g + i) % 5 {
				case 0:
					_, err = svc.GetSession(ctx, info.ID)
				case 1:
					_, err = svc.ListSessions(ctx)
				case 2:
					_, err = svc.GetGameState(ctx, info.ID)
				case 3:
					_, err = svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{})
				case 4:
					_, err = svc.Move(ctx, info.ID, string(engine.Directions[i%4]), false)
				}
				if err != nil {
					errs <- err
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent call failed: %v", err)
	}
}

func TestGameService_MoveResultOmitsHistory(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	setGrid(t, sessions, info.ID, engine.Grid{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 0)

	result, err := svc.Move(ctx, info.ID, "left", false)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if result.GameState.MoveHistory != nil || result.GameState.CurrentMoves != nil {
		t.Error("move result should not carry the move logs")
	}
	if result.GameState.TotalMoves != 1 || result.GameState.CurrentMovesCount != 1 {
		t.Errorf("move counters lost: total=%d current=%d", result.GameState.TotalMoves, result.GameState.CurrentMovesCount)
	}
	if result.LastMove == nil || result.LastMove.MoveNumber != 1 || result.LastMove.ScoreDelta != 4 {
		t.Errorf("unexpected last move %+v", result.LastMove)
	}

	state, err := svc.GetGameState(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetGameState() error = %v", err)
	}
	if len(state.MoveHistory) != 1 {
		t.Errorf("expected the full state to keep 1 history entry, got %d", len(state.MoveHistory))
	}

	reset, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if reset.MoveHistory != nil {
		t.Error("reset state should not carry the move log")
	}

	noop, err := svc.Move(ctx, info.ID, "left", false)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !noop.Success && noop.LastMove != nil {
		t.Error("a move that changed nothing should not report a last move")
	}
}
