// Command autoplay plays 2048 against a running game server through its REST
// API. It keeps one session (remembered in a session file between runs),
// resets it at the start of every attempt and plays with a corner-keeping
// one-move lookahead until it wins or runs out of attempts.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

type options struct {
	URL         string
	ConfigID    string
	ContinueID  string
	SessionFile string
	MaxMoves    int
	MaxAttempts int
	Delay       time.Duration
	Verbose     bool
}

// attemptResult summarizes one reset-to-finish game
type attemptResult struct {
	Moves   int
	Score   int
	MaxTile int
	Status  engine.Status
}

// resume picks the session to play: an explicit ID, then the saved one, then a new session
func resume(ctx context.Context, client *Client, opts options) error {
	savedID := opts.ContinueID
	if savedID == "" && opts.SessionFile != "" {
		if data, err := os.ReadFile(opts.SessionFile); err == nil {
			savedID = string(bytes.TrimSpace(data))
		}
	}

	if savedID != "" {
		client.sessionID = savedID
		_, err := client.GetState(ctx)
		if err == nil {
			log.Info().Str("session_id", savedID).Msg("resuming session")
			return nil
		}
		log.Warn().Err(err).Str("session_id", savedID).Msg("failed to resume session, creating a new one")
	}

	if _, err := client.CreateSession(ctx, opts.ConfigID); err != nil {
		return err
	}
	log.Info().Str("session_id", client.sessionID).Str("config", opts.ConfigID).Msg("session created")

	if opts.SessionFile != "" {
		if err := os.WriteFile(opts.SessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Warn().Err(err).Msg("failed to save session id")
		}
	}
	return nil
}

// playAttempt resets the session and moves until the game ends or maxMoves is reached
func playAttempt(ctx context.Context, client *Client, strategy *CornerStrategy, opts options) (attemptResult, error) {
	state, err := client.Reset(ctx)
	if err != nil {
		return attemptResult{}, err
	}

	moves := 0
	for state.Status == engine.StatusOngoing && moves < opts.MaxMoves {
		dir := strategy.NextMove(state.Grid)
		if dir == "" {
			break
		}

		result, err := client.Move(ctx, dir)
		if err != nil {
			return attemptResult{}, err
		}
		state = result.GameState
		moves++

		if opts.Verbose && moves%50 == 0 {
			log.Info().Int("moves", moves).Int("score", state.Score).Int("max_tile", state.MaxTile).Msg("progress")
		}
		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return attemptResult{}, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	return attemptResult{
		Moves:   moves,
		Score:   state.Score,
		MaxTile: state.MaxTile,
		Status:  state.Status,
	}, nil
}

// run plays attempts until one is won. It returns the attempts played.
func run(ctx context.Context, opts options) ([]attemptResult, bool, error) {
	client := NewClient(opts.URL)
	if err := resume(ctx, client, opts); err != nil {
		return nil, false, err
	}

	strategy := NewCornerStrategy()
	var attempts []attemptResult
	for i := 1; i <= opts.MaxAttempts; i++ {
		result, err := playAttempt(ctx, client, strategy, opts)
		if err != nil {
			return attempts, false, err
		}
		attempts = append(attempts, result)

		log.Info().
			Int("attempt", i).
			Int("moves", result.Moves).
			Int("score", result.Score).
			Int("max_tile", result.MaxTile).
			Str("status", string(result.Status)).
			Msg("attempt finished")

		if result.Status == engine.StatusWon {
			log.Info().Str("session_id", client.sessionID).Int("attempt", i).Msg("victory")
			return attempts, true, nil
		}
	}
	return attempts, false, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play 2048 through the REST API until the game is won",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Config ID for a new session (default config when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "File remembering the session between runs"},
			&cli.IntFlag{Name: "max-moves", Value: 5000, Usage: "Maximum moves per attempt"},
			&cli.IntFlag{Name: "max-attempts", Value: 10, Usage: "Maximum attempts before giving up"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between moves"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log progress every 50 moves"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := options{
				URL:         cmd.String("url"),
				ConfigID:    cmd.String("config"),
				ContinueID:  cmd.String("continue"),
				SessionFile: cmd.String("session-file"),
				MaxMoves:    int(cmd.Int("max-moves")),
				MaxAttempts: int(cmd.Int("max-attempts")),
				Delay:       cmd.Duration("delay"),
				Verbose:     cmd.Bool("verbose"),
			}
			attempts, won, err := run(ctx, opts)
			if err != nil {
				return err
			}
			if !won {
				return fmt.Errorf("failed to win after %d attempts", len(attempts))
			}
			return nil
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("autoplay stopped")
	}
}
