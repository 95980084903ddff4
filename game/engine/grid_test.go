package engine

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompactLine(t *testing.T) {
	tests := []struct {
		name      string
		input     []int
		towardEnd bool
		expected  []int
		score     int
	}{
		{"empty line", []int{0, 0, 0, 0}, false, []int{0, 0, 0, 0}, 0},
		{"no merge needed", []int{2, 4, 8, 16}, false, []int{2, 4, 8, 16}, 0},
		{"simple merge", []int{2, 2, 0, 0}, false, []int{4, 0, 0, 0}, 4},
		{"simple merge toward end", []int{2, 2, 0, 0}, true, []int{0, 0, 0, 4}, 4},
		{"merge with gap", []int{2, 0, 2, 0}, false, []int{4, 0, 0, 0}, 4},
		{"merge across gaps", []int{8, 0, 0, 8}, false, []int{16, 0, 0, 0}, 16},
		{"two merges", []int{4, 4, 8, 8}, false, []int{8, 16, 0, 0}, 24},
		{"chain does not cascade", []int{2, 2, 2, 2}, false, []int{4, 4, 0, 0}, 8},
		{"merged tile is not merged again", []int{4, 2, 2, 0}, false, []int{4, 4, 0, 0}, 4},
		{"three same values", []int{2, 2, 2, 0}, false, []int{4, 2, 0, 0}, 4},
		{"three same values toward end", []int{2, 2, 2, 0}, true, []int{0, 0, 2, 4}, 4},
		{"three same values with gap", []int{2, 0, 2, 2}, false, []int{4, 2, 0, 0}, 4},
		{"shift left", []int{0, 0, 0, 2}, false, []int{2, 0, 0, 0}, 0},
		{"shift right", []int{2, 0, 0, 0}, true, []int{0, 0, 0, 2}, 0},
		{"odd length", []int{2, 2, 4}, false, []int{4, 4, 0}, 4},
		{"toward end keeps order", []int{2, 4, 0, 0}, true, []int{0, 0, 2, 4}, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			input := append([]int(nil), test.input...)
			got, score := CompactLine(input, test.towardEnd)
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Errorf("CompactLine(%v, %v) mismatch (-want +got):\n%s", test.input, test.towardEnd, diff)
			}
			if score != test.score {
				t.Errorf("CompactLine(%v, %v) score = %d, want %d", test.input, test.towardEnd, score, test.score)
			}
			if diff := cmp.Diff(test.input, input); diff != "" {
				t.Errorf("CompactLine mutated its input:\n%s", diff)
			}
		})
	}
}

func TestNormalize_Transforms(t *testing.T) {
	g := Grid{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}

	tests := []struct {
		dir      Direction
		expected Grid
	}{
		{Left, Grid{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}},
		{Right, Grid{{3, 2, 1}, {6, 5, 4}, {9, 8, 7}}},
		{Up, Grid{{1, 4, 7}, {2, 5, 8}, {3, 6, 9}}},
		{Down, Grid{{1, 4, 7}, {2, 5, 8}, {3, 6, 9}}},
	}

	for _, test := range tests {
		t.Run(string(test.dir), func(t *testing.T) {
			if diff := cmp.Diff(test.expected, Normalize(g, test.dir)); diff != "" {
				t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		g := randomGrid(rng, 2+rng.Intn(5))
		original := g.Clone()
		for _, d := range Directions {
			back := Denormalize(Normalize(g, d), d)
			if !back.Equal(g) {
				t.Fatalf("round trip failed for %s:\n%s\n!=\n%s", d, FormatGrid(back), FormatGrid(g))
			}
		}
		if !g.Equal(original) {
			t.Fatal("Normalize mutated its input")
		}
	}
}

func TestShiftGrid_AllDirections(t *testing.T) {
	g := Grid{
		{2, 0, 0, 2},
		{0, 4, 0, 4},
		{2, 0, 0, 0},
		{2, 0, 8, 8},
	}

	tests := []struct {
		dir      Direction
		expected Grid
		score    int
	}{
		{Left, Grid{
			{4, 0, 0, 0},
			{8, 0, 0, 0},
			{2, 0, 0, 0},
			{2, 16, 0, 0},
		}, 28},
		{Right, Grid{
			{0, 0, 0, 4},
			{0, 0, 0, 8},
			{0, 0, 0, 2},
			{0, 0, 2, 16},
		}, 28},
		{Up, Grid{
			{4, 4, 8, 2},
			{2, 0, 0, 4},
			{0, 0, 0, 8},
			{0, 0, 0, 0},
		}, 4},
		{Down, Grid{
			{0, 0, 0, 0},
			{0, 0, 0, 2},
			{2, 0, 0, 4},
			{4, 4, 8, 8},
		}, 4},
	}

	for _, test := range tests {
		t.Run(string(test.dir), func(t *testing.T) {
			got, score, changed := shiftGrid(g, test.dir)
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Errorf("shiftGrid(%s) mismatch (-want +got):\n%s", test.dir, diff)
			}
			if score != test.score {
				t.Errorf("shiftGrid(%s) score = %d, want %d", test.dir, score, test.score)
			}
			if !changed {
				t.Errorf("shiftGrid(%s) reported no change", test.dir)
			}
		})
	}
}

func TestShiftGrid_DirectionSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		g := randomGrid(rng, 2+rng.Intn(4))

		leftThenReflect, leftScore, _ := shiftGrid(g, Left)
		leftThenReflect = reverseRows(leftThenReflect)
		reflectThenRight, rightScore, _ := shiftGrid(reverseRows(g), Right)

		if !leftThenReflect.Equal(reflectThenRight) || leftScore != rightScore {
			t.Fatalf("left/right symmetry broken for\n%s", FormatGrid(g))
		}

		upThenTranspose, upScore, _ := shiftGrid(g, Up)
		transposeThenLeft, leftScore2, _ := shiftGrid(transpose(g), Left)
		if !transpose(upThenTranspose).Equal(transposeThenLeft) || upScore != leftScore2 {
			t.Fatalf("up/left symmetry broken for\n%s", FormatGrid(g))
		}

		downThenTranspose, downScore, _ := shiftGrid(g, Down)
		transposeThenRight, rightScore2, _ := shiftGrid(transpose(g), Right)
		if !transpose(downThenTranspose).Equal(transposeThenRight) || downScore != rightScore2 {
			t.Fatalf("down/right symmetry broken for\n%s", FormatGrid(g))
		}
	}
}

func TestShiftGrid_MergeConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		g := randomGrid(rng, 4)
		for _, d := range Directions {
			after, score, _ := shiftGrid(g, d)

			// Merging replaces a pair by its sum, so the total is unchanged
			if after.Sum() != g.Sum() {
				t.Fatalf("%s: mass changed from %d to %d", d, g.Sum(), after.Sum())
			}

			// Each merge removes one tile and adds the merged value to the score
			merges := countTiles(g) - countTiles(after)
			if merges < 0 {
				t.Fatalf("%s: tile count grew", d)
			}
			if merges == 0 && score != 0 {
				t.Fatalf("%s: score %d without merges", d, score)
			}
			if score%2 != 0 || (merges > 0 && score < 4*merges) {
				t.Fatalf("%s: score %d inconsistent with %d merges", d, score, merges)
			}
		}
	}
}

func TestShiftGrid_DoesNotMutateInput(t *testing.T) {
	g := Grid{{2, 2}, {4, 4}}
	original := g.Clone()
	for _, d := range Directions {
		shiftGrid(g, d)
	}
	if !g.Equal(original) {
		t.Error("shiftGrid mutated its input")
	}
}

func TestSlide(t *testing.T) {
	g := Grid{
		{2, 2, 4, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 2},
	}

	got, score, changed := Slide(g, Left)
	want := Grid{
		{4, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{2, 0, 0, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Slide(left) mismatch (-want +got):\n%s", diff)
	}
	if score != 4 || !changed {
		t.Errorf("Slide(left) = score %d changed %v, want 4 true", score, changed)
	}
	if g[0][0] != 2 {
		t.Error("Slide mutated its input")
	}

	got, score, changed = Slide(g, Direction("diagonal"))
	if changed || score != 0 || !got.Equal(g) {
		t.Errorf("Slide with invalid direction should change nothing, got %v %d %v", got, score, changed)
	}
}

func TestGridHelpers(t *testing.T) {
	g := Grid{
		{2, 0, 4},
		{0, 0, 0},
		{8, 2, 0},
	}

	if g.Size() != 3 {
		t.Errorf("expected size 3, got %d", g.Size())
	}
	if g.MaxTile() != 8 {
		t.Errorf("expected max tile 8, got %d", g.MaxTile())
	}
	if g.Sum() != 16 {
		t.Errorf("expected sum 16, got %d", g.Sum())
	}
	want := [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, 2}, {2, 2}}
	if diff := cmp.Diff(want, g.EmptyCells()); diff != "" {
		t.Errorf("EmptyCells mismatch (-want +got):\n%s", diff)
	}
	if g.Equal(Grid{{2, 0, 4}}) {
		t.Error("grids of different size compared equal")
	}
}

// randomGrid fills a grid with small tiles and gaps
func randomGrid(rng *rand.Rand, size int) Grid {
	values := []int{0, 0, 2, 2, 4, 8, 16}
	g := NewGrid(size)
	for r := range g {
		for c := range g[r] {
			g[r][c] = values[rng.Intn(len(values))]
		}
	}
	return g
}
