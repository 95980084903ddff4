// Package terminal plays a local 2048 game in the terminal.
//
// Keys: arrow keys, WASD or hjkl move; r starts a new game; q or ctrl-c quits.
// The grid is redrawn after every key press with tile colors picked from the
// terminal's color profile. The game owns a single engine and talks to no server.
package terminal
