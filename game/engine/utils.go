package engine

import (
	"strconv"
	"strings"
)

// FormatGrid renders a grid as right-aligned text, one row per line.
// Empty cells are shown as '.'.
func FormatGrid(g Grid) string {
	width := len(strconv.Itoa(g.MaxTile()))
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	for r, row := range g {
		for c, v := range row {
			cell := "."
			if v != 0 {
				cell = strconv.Itoa(v)
			}
			if c > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.Repeat(" ", width-len(cell)))
			b.WriteString(cell)
		}
		if r < len(g)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// CountTiles returns how many cells hold each tile value
func CountTiles(g Grid) map[int]int {
	counts := make(map[int]int)
	for _, row := range g {
		for _, v := range row {
			if v != 0 {
				counts[v]++
			}
		}
	}
	return counts
}
