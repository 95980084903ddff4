package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate grid size first so bare-size engines get the sentinel
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: %w: grid_size must be between %d and %d, got %d",
			ErrInvalidGridSize, MinGridSize, MaxGridSize, config.GridSize)
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate format strings
	if config.Messages.Victory != "" && !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for score")
	}
	if config.Messages.GameOver != "" && !strings.Contains(config.Messages.GameOver, "%d") {
		return fmt.Errorf("config validation: messages.game_over must contain %%d for score")
	}

	return nil
}

// ParseGameConfig decodes a configuration, choosing YAML or JSON by file extension
func ParseGameConfig(filename string, data []byte) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config '%s': %w", filename, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json config '%s': %w", filename, err)
		}
	}
	return &config, nil
}

// LoadGameConfig loads and validates a game configuration from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(filename, data)
	if err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns the built-in classic 4x4 configuration
func DefaultConfig() *GameConfig {
	config := &GameConfig{
		Name:        "Classic",
		Description: "The original 4x4 board. Reach the 2048 tile to win.",
		GridSize:    DefaultGridSize,
	}
	config.Messages.Welcome = "Join the tiles, get to the 2048 tile!"
	config.Messages.Victory = "You reached 2048! Final score: %d"
	config.Messages.GameOver = "Game over! No more moves possible. Final score: %d"
	config.Messages.NoChange = "Nothing moved in that direction"
	return config
}
