// Package validate checks game configuration files before the server loads them.
// It checks:
//   - JSON or YAML structure
//   - Required fields and the allowed grid size range
//   - Message format strings (victory and game_over need %d for the score)
//   - Playability: a fresh game on the config starts with tiles and legal moves
//   - Config IDs that are shadowed by another file with the same base name
package validate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

var configExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// Result captures the outcome of validating a single file.
// If Valid is true, Messages holds informational lines; otherwise it
// accumulates the validation errors that were found.
type Result struct {
	File     string
	Valid    bool
	Messages []string
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

func (r *Result) info(format string, args ...interface{}) {
	r.Messages = append(r.Messages, "✓ "+fmt.Sprintf(format, args...))
}

// File loads and validates a single configuration file
func File(path string) Result {
	result := Result{
		File:     filepath.Base(path),
		Valid:    true,
		Messages: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.ParseGameConfig(path, data)
	if err != nil {
		result.fail("Invalid syntax: %v", err)
		return result
	}

	checkFields(&result, config)
	if !result.Valid {
		return result
	}

	checkPlayable(&result, config)
	if !result.Valid {
		return result
	}

	result.info("Name: %s", config.Name)
	result.info("Grid: %dx%d", config.GridSize, config.GridSize)
	if config.Messages.Welcome == "" {
		result.Messages = append(result.Messages, "Note: no welcome message")
	}
	return result
}

// checkFields reports every field problem, not just the first
func checkFields(result *Result, config *engine.GameConfig) {
	if config.Name == "" {
		result.fail("name is required")
	}
	if config.Description == "" {
		result.fail("description is required")
	}
	if config.GridSize < engine.MinGridSize || config.GridSize > engine.MaxGridSize {
		result.fail("grid_size must be between %d and %d, got %d",
			engine.MinGridSize, engine.MaxGridSize, config.GridSize)
	}
	if config.Messages.Victory != "" && !strings.Contains(config.Messages.Victory, "%d") {
		result.fail("messages.victory must contain %%d for the score")
	}
	if config.Messages.GameOver != "" && !strings.Contains(config.Messages.GameOver, "%d") {
		result.fail("messages.game_over must contain %%d for the score")
	}
	if result.Valid {
		// Anything the field checks above miss
		if err := engine.ValidateGameConfig(config); err != nil {
			result.fail("%v", err)
		}
	}
}

// checkPlayable starts a seeded game and makes sure it can be played
func checkPlayable(result *Result, config *engine.GameConfig) {
	eng, err := engine.NewEngineWithSource(config, engine.NewSeededSource(1))
	if err != nil {
		result.fail("Cannot start a game: %v", err)
		return
	}

	state := eng.GetState()
	tiles := 0
	for _, count := range engine.CountTiles(state.Grid) {
		tiles += count
	}
	if tiles == 0 {
		result.fail("A new game starts with an empty grid")
	}
	if len(state.PossibleMoves) == 0 {
		result.fail("A new game starts with no possible moves")
	}
	if state.Status != engine.StatusOngoing {
		result.fail("A new game starts already %s", state.Status)
	}
	if result.Valid {
		result.info("Starting tiles: %d, possible moves: %d", tiles, len(state.PossibleMoves))
	}
}

// Dir validates every config file in dir, sorted by file name. Two files that
// share a base name resolve to one config ID; every file after the first is
// reported as shadowed.
func Dir(dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !configExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	seen := make(map[string]string)
	results := make([]Result, 0, len(files))
	for _, name := range files {
		result := File(filepath.Join(dir, name))

		id := strings.TrimSuffix(name, filepath.Ext(name))
		if first, ok := seen[id]; ok {
			result.fail("config_id %q is already provided by %s", id, first)
		} else {
			seen[id] = name
		}
		results = append(results, result)
	}
	return results, nil
}

// Report prints a concise summary of results and reports whether all are valid
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Messages {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		fmt.Fprintln(w, "❌ INVALID")
		allValid = false
		for _, msg := range result.Messages {
			if !strings.HasPrefix(msg, "✓") {
				fmt.Fprintln(w, "  ❌ "+msg)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	switch {
	case len(results) == 0:
		fmt.Fprintln(w, "No configuration files found")
	case allValid:
		fmt.Fprintln(w, "✅ All configurations are valid!")
	default:
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}
