package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// Game drives one engine from keyboard input and redraws after every command
type Game struct {
	engine   engine.Engine
	out      *termenv.Output
	renderer *Renderer
	clear    bool
	notice   string
}

// NewGame creates a terminal game around eng, drawing to out
func NewGame(eng engine.Engine, out *termenv.Output) *Game {
	return &Game{
		engine:   eng,
		out:      out,
		renderer: NewRenderer(out),
	}
}

// Apply executes one command; quit reports whether the player asked to leave
func (g *Game) Apply(cmd Command) (quit bool, err error) {
	g.notice = ""
	switch cmd.Kind {
	case CommandQuit:
		return true, nil
	case CommandReset:
		g.engine.Reset()
		g.notice = "New game"
	case CommandMove:
		if g.engine.IsTerminal() {
			g.notice = "The game is over, press r to play again"
			return false, nil
		}
		outcome, err := g.engine.Move(cmd.Direction)
		if err != nil {
			return false, err
		}
		if !outcome.Changed {
			g.notice = g.engine.GetConfig().Messages.NoChange
			if g.notice == "" {
				g.notice = fmt.Sprintf("Nothing moves %s", cmd.Direction)
			}
		} else if outcome.ScoreDelta > 0 {
			g.notice = fmt.Sprintf("+%d", outcome.ScoreDelta)
		}
	}
	return false, nil
}

// Draw writes the current state to the output
func (g *Game) Draw() {
	if g.clear {
		g.out.ClearScreen()
	}
	fmt.Fprint(g.out, g.renderer.Render(g.engine.GetState(), g.notice))
}

// Run reads key presses from in until quit, EOF or ctx is done
func (g *Game) Run(ctx context.Context, in io.Reader) error {
	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				chunk := append([]byte(nil), buf[:n]...)
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	g.Draw()
	var pending []byte
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case chunk := <-chunks:
			var cmds []Command
			cmds, pending = DecodeKeys(append(pending, chunk...))
			for _, cmd := range cmds {
				quit, err := g.Apply(cmd)
				if err != nil {
					return err
				}
				if quit {
					return nil
				}
			}
			if len(cmds) > 0 {
				g.Draw()
			}
		}
	}
}

// Play runs an interactive game on the process terminal. When stdin is a
// terminal it is switched to raw mode for the duration of the game.
func Play(ctx context.Context, eng engine.Engine, in *os.File, out *os.File) error {
	fd := int(in.Fd())
	interactive := term.IsTerminal(fd)

	output := termenv.NewOutput(out)
	game := NewGame(eng, output)
	game.clear = interactive

	if interactive {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer func() {
			if err := term.Restore(fd, oldState); err != nil {
				log.Warn().Err(err).Msg("failed to restore terminal")
			}
		}()
		output.HideCursor()
		defer output.ShowCursor()
	}

	return game.Run(ctx, in)
}
