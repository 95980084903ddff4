package engine

// NewGrid returns an all-empty size x size grid
func NewGrid(size int) Grid {
	grid := make(Grid, size)
	for i := range grid {
		grid[i] = make([]int, size)
	}
	return grid
}

// Size returns the side length of the grid
func (g Grid) Size() int {
	return len(g)
}

// Clone returns a deep copy
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Equal compares two grids value by value
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if !rowsEqual(g[i], other[i]) {
			return false
		}
	}
	return true
}

// EmptyCells returns the [row, col] coordinates of every empty cell in row-major order
func (g Grid) EmptyCells() [][2]int {
	var cells [][2]int
	for r, row := range g {
		for c, v := range row {
			if v == 0 {
				cells = append(cells, [2]int{r, c})
			}
		}
	}
	return cells
}

// MaxTile returns the largest value on the grid
func (g Grid) MaxTile() int {
	max := 0
	for _, row := range g {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// Sum returns the total of all tile values
func (g Grid) Sum() int {
	total := 0
	for _, row := range g {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Normalize maps the grid into the canonical orientation for d.
// Left is the identity, right reverses each row, up and down transpose.
func Normalize(g Grid, d Direction) Grid {
	switch d {
	case Right:
		return reverseRows(g)
	case Up, Down:
		return transpose(g)
	default:
		return g.Clone()
	}
}

// Denormalize is the inverse of Normalize. Every transform is self-inverse.
func Denormalize(g Grid, d Direction) Grid {
	return Normalize(g, d)
}

// fillsFromEnd reports whether compaction for d writes toward the high-index end
// of each normalized row.
func fillsFromEnd(d Direction) bool {
	return d == Down
}

// CompactLine slides the non-zero values of line toward one edge and merges equal
// neighbours. Scanning starts at the fill edge, so for [2,2,2] toward the start the
// leading pair merges: [4,2,0]. A merged tile never merges again in the same call.
func CompactLine(line []int, towardEnd bool) ([]int, int) {
	dense := make([]int, 0, len(line))
	for _, v := range line {
		if v != 0 {
			dense = append(dense, v)
		}
	}

	out := make([]int, len(line))
	score := 0

	step := 1
	read, write := 0, 0
	if towardEnd {
		step = -1
		read, write = len(dense)-1, len(line)-1
	}

	for read >= 0 && read < len(dense) {
		next := read + step
		if next < 0 || next >= len(dense) || dense[read] != dense[next] {
			out[write] = dense[read]
			read = next
		} else {
			out[write] = dense[read] * 2
			score += out[write]
			read = next + step
		}
		write += step
	}

	return out, score
}

// shiftGrid runs the compaction over every normalized row and maps the result back.
// It does not touch g.
func shiftGrid(g Grid, d Direction) (Grid, int, bool) {
	canonical := Normalize(g, d)
	towardEnd := fillsFromEnd(d)
	changed := false
	score := 0

	for r, row := range canonical {
		compacted, gained := CompactLine(row, towardEnd)
		if !rowsEqual(row, compacted) {
			changed = true
		}
		score += gained
		canonical[r] = compacted
	}

	return Denormalize(canonical, d), score, changed
}

// Slide reports what moving d would do to g before any tile spawns: the
// resulting grid, the points its merges score and whether anything moved.
// g is left untouched. An invalid direction changes nothing.
func Slide(g Grid, d Direction) (Grid, int, bool) {
	if !d.Valid() {
		return g.Clone(), 0, false
	}
	return shiftGrid(g, d)
}

func transpose(g Grid) Grid {
	out := NewGrid(len(g))
	for r, row := range g {
		for c, v := range row {
			out[c][r] = v
		}
	}
	return out
}

func reverseRows(g Grid) Grid {
	out := make(Grid, len(g))
	for r, row := range g {
		reversed := make([]int, len(row))
		for c, v := range row {
			reversed[len(row)-1-c] = v
		}
		out[r] = reversed
	}
	return out
}

func rowsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
