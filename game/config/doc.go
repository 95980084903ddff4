// Package config provides configuration management for 2048 game variants.
//
// The config package handles:
//   - Loading game configurations from JSON or YAML files
//   - Configuration validation
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Each file in the configs directory defines one variant:
//
//	name: Classic
//	description: The original 4x4 board
//	grid_size: 4
//	messages:
//	  welcome: Join the tiles, get to the 2048 tile!
//	  victory: "You reached 2048! Final score: %d"
//	  game_over: "Game over! Final score: %d"
//	  no_change: Nothing moved in that direction
//
// Files may use the .json, .yaml or .yml extension. A config is addressed by
// its file name without the extension.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("small")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default is classic when present, otherwise the first valid config in the
// directory, otherwise the built-in engine.DefaultConfig.
package config
