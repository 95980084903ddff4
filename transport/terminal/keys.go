package terminal

import "github.com/wricardo/mcp-training/game2048/game/engine"

// CommandKind identifies what a key press asks the game to do
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandMove
	CommandReset
	CommandQuit
)

// Command is one decoded key press
type Command struct {
	Kind      CommandKind
	Direction engine.Direction
}

var letterCommands = map[byte]Command{
	'w': {Kind: CommandMove, Direction: engine.Up},
	'k': {Kind: CommandMove, Direction: engine.Up},
	's': {Kind: CommandMove, Direction: engine.Down},
	'j': {Kind: CommandMove, Direction: engine.Down},
	'a': {Kind: CommandMove, Direction: engine.Left},
	'h': {Kind: CommandMove, Direction: engine.Left},
	'd': {Kind: CommandMove, Direction: engine.Right},
	'l': {Kind: CommandMove, Direction: engine.Right},
	'r': {Kind: CommandReset},
	'q': {Kind: CommandQuit},
	3:   {Kind: CommandQuit}, // ctrl-c in raw mode
}

var arrowCommands = map[byte]Command{
	'A': {Kind: CommandMove, Direction: engine.Up},
	'B': {Kind: CommandMove, Direction: engine.Down},
	'C': {Kind: CommandMove, Direction: engine.Right},
	'D': {Kind: CommandMove, Direction: engine.Left},
}

// DecodeKeys turns raw terminal input into commands. Arrow keys arrive as
// ESC [ A..D (or ESC O A..D in application mode); letters are case-insensitive.
// Unknown bytes are skipped. An escape sequence cut short at the end of buf is
// returned as rest so the caller can prepend it to the next read.
func DecodeKeys(buf []byte) (cmds []Command, rest []byte) {
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == 0x1b {
			if i+1 >= len(buf) {
				return cmds, buf[i:]
			}
			if buf[i+1] != '[' && buf[i+1] != 'O' {
				continue
			}
			if i+2 >= len(buf) {
				return cmds, buf[i:]
			}
			if cmd, ok := arrowCommands[buf[i+2]]; ok {
				cmds = append(cmds, cmd)
			}
			i += 2
			continue
		}

		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		if cmd, ok := letterCommands[b]; ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds, nil
}
