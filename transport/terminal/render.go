package terminal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

const (
	lineBreak    = "\r\n"
	minCellWidth = 4
	helpLine     = "arrows/wasd/hjkl move  r reset  q quit"
)

type tileColor struct {
	fg, bg string
}

var tileColors = map[int]tileColor{
	2:    {"#776e65", "#eee4da"},
	4:    {"#776e65", "#ede0c8"},
	8:    {"#f9f6f2", "#f2b179"},
	16:   {"#f9f6f2", "#f59563"},
	32:   {"#f9f6f2", "#f67c5f"},
	64:   {"#f9f6f2", "#f65e3b"},
	128:  {"#f9f6f2", "#edcf72"},
	256:  {"#f9f6f2", "#edcc61"},
	512:  {"#f9f6f2", "#edc850"},
	1024: {"#f9f6f2", "#edc53f"},
	2048: {"#f9f6f2", "#edc22e"},
}

var bigTileColor = tileColor{"#f9f6f2", "#3c3a32"}

// Renderer draws game states as colored text for a terminal
type Renderer struct {
	out *termenv.Output
}

// NewRenderer creates a renderer using the color profile of out
func NewRenderer(out *termenv.Output) *Renderer {
	return &Renderer{out: out}
}

// Render returns the grid, score line and help text. Lines end with CRLF so
// the output stays aligned while the terminal is in raw mode.
func (r *Renderer) Render(state *engine.GameState, notice string) string {
	width := len(strconv.Itoa(state.MaxTile))
	if width < minCellWidth {
		width = minCellWidth
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("2048  score %d  max %d", state.Score, state.MaxTile))
	b.WriteString(lineBreak + lineBreak)

	for _, row := range state.Grid {
		for c, v := range row {
			if c > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(r.cell(v, width))
		}
		b.WriteString(lineBreak)
	}
	b.WriteString(lineBreak)

	switch state.Status {
	case engine.StatusWon:
		b.WriteString(r.out.String("You win! Press r to play again").Foreground(r.out.Color("#edc22e")).String())
		b.WriteString(lineBreak)
	case engine.StatusLost:
		b.WriteString(r.out.String("Game over. Press r to play again").Foreground(r.out.Color("#f65e3b")).String())
		b.WriteString(lineBreak)
	}
	if notice != "" {
		b.WriteString(notice)
		b.WriteString(lineBreak)
	}
	b.WriteString(helpLine)
	b.WriteString(lineBreak)
	return b.String()
}

func (r *Renderer) cell(value, width int) string {
	if value == 0 {
		return strings.Repeat(" ", width-1) + "."
	}
	text := strconv.Itoa(value)
	padded := strings.Repeat(" ", width-len(text)) + text

	colors, ok := tileColors[value]
	if !ok {
		colors = bigTileColor
	}
	return r.out.String(padded).
		Foreground(r.out.Color(colors.fg)).
		Background(r.out.Color(colors.bg)).
		String()
}
