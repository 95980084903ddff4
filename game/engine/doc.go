// Package engine provides the core game logic for the 2048 sliding-tile puzzle.
//
// The engine package implements the game mechanics including:
//   - Shifting the grid in one of four directions
//   - Merging equal neighbours, each tile at most once per move
//   - Spawning a 2 or 4 on a random empty cell after every successful move
//   - Detecting the won and lost terminal states
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is a read-only snapshot of a game,
// while GameConfig defines a variant (grid size and messages) loaded from
// JSON or YAML files.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := gameEngine.Move(engine.Left)
//	state := gameEngine.GetState()
//
// Direction Handling:
//
// All four directions share one compaction routine. The grid is first mapped
// into a canonical orientation (left is the identity, right reverses each row,
// up and down transpose it), every row is compacted, and the inverse mapping is
// applied. Down compacts toward the high-index end of each transposed row.
//
// Game Rules:
//
// The game is won as soon as a 2048 tile appears and lost when the grid is
// full and no two orthogonal neighbours hold the same value. Once the game is
// over, further moves are ignored.
package engine
