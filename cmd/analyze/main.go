// Command analyze plays seeded random-policy games on every configuration in
// a config directory and prints win rate, mean score and the distribution of
// the largest tile reached. It gives a quick feel for how hard a grid size is.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/game2048/game/config"
	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// Summary aggregates the games played on one configuration
type Summary struct {
	Games      int
	Wins       int
	Losses     int
	Unfinished int
	TotalScore int
	BestScore  int
	TotalMoves int
	MaxTiles   map[int]int
}

// WinRate is the share of games that reached the winning tile
func (s Summary) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// MeanScore is the average final score
func (s Summary) MeanScore() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalScore) / float64(s.Games)
}

// simulate plays games on cfg. Game i draws tiles from seed+i and picks each
// move uniformly among the directions that change the grid.
func simulate(cfg *engine.GameConfig, games int, seed int64, maxMoves int) (Summary, error) {
	summary := Summary{MaxTiles: make(map[int]int)}
	policy := rand.New(rand.NewSource(seed))

	for i := 0; i < games; i++ {
		eng, err := engine.NewEngineWithSource(cfg, engine.NewSeededSource(seed+int64(i)))
		if err != nil {
			return summary, err
		}

		moves := 0
		for !eng.IsTerminal() && moves < maxMoves {
			possible := eng.GetPossibleMoves()
			if len(possible) == 0 {
				break
			}
			if _, err := eng.Move(possible[policy.Intn(len(possible))]); err != nil {
				return summary, err
			}
			moves++
		}

		state := eng.GetState()
		summary.Games++
		summary.TotalMoves += moves
		summary.TotalScore += state.Score
		if state.Score > summary.BestScore {
			summary.BestScore = state.Score
		}
		summary.MaxTiles[state.MaxTile]++
		switch state.Status {
		case engine.StatusWon:
			summary.Wins++
		case engine.StatusLost:
			summary.Losses++
		default:
			summary.Unfinished++
		}
	}
	return summary, nil
}

func printSummary(w io.Writer, name string, gridSize int, s Summary) {
	fmt.Fprintf(w, "\n=== %s (%dx%d) ===\n", name, gridSize, gridSize)
	fmt.Fprintf(w, "Games: %d (won %d, lost %d, unfinished %d)\n", s.Games, s.Wins, s.Losses, s.Unfinished)
	fmt.Fprintf(w, "Win rate: %.1f%%\n", s.WinRate()*100)
	fmt.Fprintf(w, "Mean score: %.1f (best %d)\n", s.MeanScore(), s.BestScore)
	if s.Games > 0 {
		fmt.Fprintf(w, "Mean moves: %.1f\n", float64(s.TotalMoves)/float64(s.Games))
	}

	tiles := make([]int, 0, len(s.MaxTiles))
	for tile := range s.MaxTiles {
		tiles = append(tiles, tile)
	}
	sort.Ints(tiles)
	fmt.Fprintln(w, "Max tile distribution:")
	for _, tile := range tiles {
		count := s.MaxTiles[tile]
		fmt.Fprintf(w, "  %5d: %4d (%.1f%%)\n", tile, count, float64(count)*100/float64(s.Games))
	}
}

func analyze(w io.Writer, configDir string, games int, seed int64, maxMoves int) error {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fmt.Errorf("no configurations found in %s", configDir)
	}

	for _, info := range infos {
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			log.Warn().Err(err).Str("config", info.Filename).Msg("skipping config")
			continue
		}
		summary, err := simulate(cfg, games, seed, maxMoves)
		if err != nil {
			return fmt.Errorf("failed to simulate %s: %w", info.ConfigID, err)
		}
		printSummary(w, cfg.Name, cfg.GridSize, summary)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Play random games on every config and summarize the outcomes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{Name: "games", Value: 100, Usage: "Games to play per configuration"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "Seed for tiles and move choice"},
			&cli.IntFlag{Name: "max-moves", Value: 10000, Usage: "Moves after which a game counts as unfinished"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			games := int(cmd.Int("games"))
			if games <= 0 {
				return fmt.Errorf("--games must be positive, got %d", games)
			}
			return analyze(os.Stdout, cmd.String("config-dir"), games, cmd.Int64("seed"), int(cmd.Int("max-moves")))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("analyze failed")
	}
}
