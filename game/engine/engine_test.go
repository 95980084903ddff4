package engine

import (
	"errors"
	"testing"
)

// scriptedSource replays fixed draws so spawn positions are predictable.
// Once a script runs out it keeps returning the first empty cell and a 2.
type scriptedSource struct {
	ints   []int
	floats []float64
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.5
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

// newTestEngine builds an engine whose grid is replaced by the given one
func newTestEngine(t *testing.T, grid Grid) *GameEngine {
	t.Helper()
	e, err := NewEngineWithSize(len(grid), &scriptedSource{})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := e.SetState(&GameState{Grid: grid}); err != nil {
		t.Fatalf("Failed to set state: %v", err)
	}
	return e
}

func countTiles(g Grid) int {
	n := 0
	for _, row := range g {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

func TestNewEngine_SeedsTwoTiles(t *testing.T) {
	for _, size := range []int{2, 3, 4, 6} {
		e, err := NewEngineWithSize(size, NewSeededSource(int64(size)))
		if err != nil {
			t.Fatalf("size %d: unexpected error: %v", size, err)
		}

		state := e.GetState()
		if got := countTiles(state.Grid); got != 2 {
			t.Errorf("size %d: expected 2 initial tiles, got %d", size, got)
		}
		if state.Size != size || len(state.Grid) != size {
			t.Errorf("size %d: grid has %d rows", size, len(state.Grid))
		}
		if state.Score != 0 {
			t.Errorf("size %d: expected score 0, got %d", size, state.Score)
		}
		if state.Status != StatusOngoing {
			t.Errorf("size %d: expected ongoing, got %s", size, state.Status)
		}
		for _, row := range state.Grid {
			for _, v := range row {
				if v != 0 && v != 2 && v != 4 {
					t.Errorf("size %d: unexpected initial tile %d", size, v)
				}
			}
		}
	}
}

func TestNewEngine_DistinctSpawnCells(t *testing.T) {
	// Both draws pick index 0 of the empty list, which must be different cells
	e, err := NewEngineWithSize(4, &scriptedSource{ints: []int{0, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	grid := e.GetGrid()
	if grid[0][0] != 2 || grid[0][1] != 2 {
		t.Errorf("expected tiles at (0,0) and (0,1), got\n%s", FormatGrid(grid))
	}
}

func TestNewEngine_RejectsSmallGrid(t *testing.T) {
	for _, size := range []int{-1, 0, 1} {
		_, err := NewEngineWithSize(size, nil)
		if !errors.Is(err, ErrInvalidGridSize) {
			t.Errorf("size %d: expected ErrInvalidGridSize, got %v", size, err)
		}
	}
}

func TestNewEngine_SizeCapAppliesToConfigsOnly(t *testing.T) {
	e, err := NewEngineWithSize(MaxGridSize+4, NewSeededSource(1))
	if err != nil {
		t.Fatalf("bare engine of size %d rejected: %v", MaxGridSize+4, err)
	}
	if got := e.GetState().Size; got != MaxGridSize+4 {
		t.Errorf("expected size %d, got %d", MaxGridSize+4, got)
	}
	if CountTiles(e.GetGrid())[2]+CountTiles(e.GetGrid())[4] != InitialTileCount {
		t.Errorf("expected %d starting tiles", InitialTileCount)
	}

	config := DefaultConfig()
	config.GridSize = MaxGridSize + 1
	if _, err := NewEngineWithSource(config, nil); !errors.Is(err, ErrInvalidGridSize) {
		t.Errorf("config above the cap: expected ErrInvalidGridSize, got %v", err)
	}
}

func TestNewEngine_NilConfigUsesDefault(t *testing.T) {
	e, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.GetConfig().GridSize != DefaultGridSize {
		t.Errorf("expected default grid size %d, got %d", DefaultGridSize, e.GetConfig().GridSize)
	}
	if e.GetState().Message != DefaultConfig().Messages.Welcome {
		t.Errorf("expected welcome message, got %q", e.GetState().Message)
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	e := NewEngineWithDefaults()
	if e.GetState().Size != DefaultGridSize {
		t.Errorf("expected size %d, got %d", DefaultGridSize, e.GetState().Size)
	}
}

func TestGetState_IsSnapshot(t *testing.T) {
	e := newTestEngine(t, Grid{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 2},
	})

	snapshot := e.GetState()
	snapshot.Grid[0][0] = 1024
	snapshot.Score = 99

	if e.GetGrid()[0][0] != 2 {
		t.Error("mutating a snapshot grid leaked into the engine")
	}
	if e.GetScore() != 0 {
		t.Error("mutating a snapshot score leaked into the engine")
	}

	grid := e.GetGrid()
	grid[3][3] = 8
	if e.GetGrid()[3][3] != 2 {
		t.Error("mutating GetGrid result leaked into the engine")
	}
}

func TestSetState_Validation(t *testing.T) {
	e := NewEngineWithDefaults()

	tests := []struct {
		name  string
		state *GameState
	}{
		{"nil state", nil},
		{"wrong row count", &GameState{Grid: NewGrid(3)}},
		{"ragged row", &GameState{Grid: Grid{{0, 0, 0, 0}, {0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}}},
		{"non power of two", &GameState{Grid: Grid{{3, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}}},
		{"negative tile", &GameState{Grid: Grid{{-2, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}}},
		{"tile of one", &GameState{Grid: Grid{{1, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}}},
		{"negative score", &GameState{Grid: NewGrid(4), Score: -4}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := e.SetState(test.state); !errors.Is(err, ErrInvalidState) {
				t.Errorf("expected ErrInvalidState, got %v", err)
			}
		})
	}
}

func TestSetState_RecomputesStatus(t *testing.T) {
	e := NewEngineWithDefaults()
	err := e.SetState(&GameState{
		Grid: Grid{
			{2, 4, 2, 4},
			{4, 2, 4, 2},
			{2, 4, 2, 4},
			{4, 2, 4, 2},
		},
		Status: StatusOngoing,
		Score:  100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status() != StatusLost {
		t.Errorf("expected status derived as lost, got %s", e.Status())
	}
	if e.GetScore() != 100 {
		t.Errorf("expected score 100, got %d", e.GetScore())
	}
}

func TestReset_PreservesHistory(t *testing.T) {
	e := newTestEngine(t, Grid{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	if _, err := e.Move(Left); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := e.Reset()
	if state.Score != 0 {
		t.Errorf("expected score reset to 0, got %d", state.Score)
	}
	if countTiles(state.Grid) != 2 {
		t.Errorf("expected 2 fresh tiles, got %d", countTiles(state.Grid))
	}
	if state.TotalMoves != 1 || len(state.MoveHistory) != 1 {
		t.Errorf("expected cumulative history to survive reset, got total=%d len=%d", state.TotalMoves, len(state.MoveHistory))
	}
	if state.CurrentMovesCount != 0 || len(state.CurrentMoves) != 0 {
		t.Errorf("expected current segment cleared, got %d", state.CurrentMovesCount)
	}
}

func TestSpawnRandomTile(t *testing.T) {
	t.Run("full grid is a no-op", func(t *testing.T) {
		full := Grid{{2, 4}, {8, 16}}
		e := newTestEngine(t, full)
		if spawned := e.SpawnRandomTile(); spawned != nil {
			t.Errorf("expected nil spawn on a full grid, got %+v", spawned)
		}
		if !e.GetGrid().Equal(full) {
			t.Error("grid changed after spawning on a full grid")
		}
	})

	t.Run("picks among empty cells", func(t *testing.T) {
		e := newTestEngine(t, Grid{{2, 0}, {0, 4}})
		e.src = &scriptedSource{ints: []int{1}, floats: []float64{0.05}}

		spawned := e.SpawnRandomTile()
		if spawned == nil {
			t.Fatal("expected a spawned tile")
		}
		// Empty cells in row-major order are (0,1) and (1,0)
		if spawned.Row != 1 || spawned.Col != 0 {
			t.Errorf("expected spawn at (1,0), got (%d,%d)", spawned.Row, spawned.Col)
		}
		if spawned.Value != SpawnValueRare {
			t.Errorf("expected rare value %d, got %d", SpawnValueRare, spawned.Value)
		}
		if e.GetGrid()[1][0] != SpawnValueRare {
			t.Error("spawned tile not written to grid")
		}
	})

	t.Run("distribution", func(t *testing.T) {
		e, _ := NewEngineWithSize(MaxGridSize, NewSeededSource(42))
		fours, total := 0, 0
		for e.SpawnRandomTile() != nil {
			total++
		}
		for _, row := range e.GetGrid() {
			for _, v := range row {
				if v == 4 {
					fours++
				}
			}
		}
		// 256 cells; a 10% rate should land comfortably inside this band
		if fours == 0 || fours > total/4 {
			t.Errorf("unexpected share of 4s: %d of %d", fours, total)
		}
	})
}

func TestBulkMove(t *testing.T) {
	e := newTestEngine(t, Grid{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	outcomes, err := e.BulkMove([]Direction{Left, "sideways", Right})
	if !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Changed {
		t.Errorf("expected the first move to run before the invalid one, got %+v", outcomes)
	}
}

func TestBulkMove_StopsWhenTerminal(t *testing.T) {
	e := newTestEngine(t, Grid{
		{1024, 1024},
		{0, 0},
	})

	outcomes, err := e.BulkMove([]Direction{Left, Right, Down})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != 1 {
		t.Errorf("expected bulk move to stop after the winning move, got %d outcomes", len(outcomes))
	}
	if e.Status() != StatusWon {
		t.Errorf("expected won, got %s", e.Status())
	}
}

func TestGetLastMove(t *testing.T) {
	e := newTestEngine(t, Grid{{2, 2}, {0, 0}})
	if e.GetLastMove() != nil {
		t.Error("expected no last move on a fresh engine")
	}
	if _, err := e.Move(Left); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := e.GetLastMove()
	if last == nil || last.Action != Left || last.ScoreDelta != 4 || last.MoveNumber != 1 {
		t.Errorf("unexpected last move %+v", last)
	}
}

func TestMoveHistory_ReturnsCopies(t *testing.T) {
	e := newTestEngine(t, Grid{{2, 2}, {0, 0}})
	if _, err := e.Move(Left); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := e.GetMoveHistory()
	if len(history) != 1 || history[0].Spawned == nil {
		t.Fatalf("expected one move with a spawn, got %+v", history)
	}
	history[0].ScoreDelta = 999
	history[0].Spawned.Value = 999

	last := e.GetLastMove()
	last.Score = 999
	last.Spawned.Row = 99

	again := e.GetLastMove()
	if again.ScoreDelta != 4 || again.Score != 4 {
		t.Errorf("history entry was mutated through a returned copy: %+v", again)
	}
	if again.Spawned.Value == 999 || again.Spawned.Row == 99 {
		t.Errorf("spawned tile was mutated through a returned copy: %+v", again.Spawned)
	}
	if state := e.GetState(); state.MoveHistory[0].Spawned == again.Spawned {
		t.Error("snapshot shares the spawned tile with the engine")
	}
}
