package mcp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/service"
)

// movePreview is what one direction would do to the current grid
type movePreview struct {
	Direction  engine.Direction
	Changed    bool
	ScoreDelta int
}

// previewMoves slides the current grid in each direction without spawning
func previewMoves(state *engine.GameState) []movePreview {
	previews := make([]movePreview, 0, len(engine.Directions))
	for _, dir := range engine.Directions {
		_, gained, changed := engine.Slide(state.Grid, dir)
		if state.Status != "" && state.Status != engine.StatusOngoing {
			gained, changed = 0, false
		}
		previews = append(previews, movePreview{
			Direction:  dir,
			Changed:    changed,
			ScoreDelta: gained,
		})
	}
	return previews
}

func formatPreviews(state *engine.GameState, previews []movePreview) string {
	var b strings.Builder
	b.WriteString(engine.FormatGrid(state.Grid))
	b.WriteString("\n\nMove preview:\n")
	for _, p := range previews {
		if !p.Changed {
			fmt.Fprintf(&b, "  %-5s  no change\n", p.Direction)
			continue
		}
		fmt.Fprintf(&b, "  %-5s  +%d\n", p.Direction, p.ScoreDelta)
	}
	if state.Status != engine.StatusOngoing {
		fmt.Fprintf(&b, "\nGame is %s; no move is accepted.\n", state.Status)
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state"
	}

	var b strings.Builder
	b.WriteString(engine.FormatGrid(state.Grid))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Score: %d | Max tile: %d | Status: %s\n", state.Score, state.MaxTile, state.Status)
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	fmt.Fprintf(&b, "Moves: %d this game, %d total\n", state.CurrentMovesCount, state.TotalMoves)
	if tiles := formatTileCounts(state.Grid); tiles != "" {
		fmt.Fprintf(&b, "Tiles: %s\n", tiles)
	}
	if len(state.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Possible moves: %s\n", joinDirections(state.PossibleMoves))
	} else if state.Status == engine.StatusOngoing {
		b.WriteString("Possible moves: none\n")
	}
	return b.String()
}

// formatTileCounts lists tile values from largest to smallest, e.g. "8x1, 4x1, 2x2"
func formatTileCounts(g engine.Grid) string {
	counts := engine.CountTiles(g)
	values := make([]int, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%dx%d", v, counts[v]))
	}
	return strings.Join(parts, ", ")
}

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n",
		session.ID,
		session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.LastAccessedAt.Format("2006-01-02 15:04:05"))
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return result
}

func formatSessionList(count int, sessions []service.SessionInfo) string {
	result := fmt.Sprintf("Active Sessions (%d):\n\n", count)
	for _, s := range sessions {
		score, maxTile, status := 0, 0, engine.StatusOngoing
		if s.GameState != nil {
			score, maxTile, status = s.GameState.Score, s.GameState.MaxTile, s.GameState.Status
		}
		result += fmt.Sprintf("• %s (%s) - score %d, max tile %d, %s\n", s.ID, s.ConfigName, score, maxTile, status)
	}
	return result
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Outcome.Changed {
		if last := result.LastMove; last != nil {
			fmt.Fprintf(&b, "✓ Move #%d applied (+%d)\n", last.MoveNumber, result.Outcome.ScoreDelta)
		} else {
			fmt.Fprintf(&b, "✓ Move applied (+%d)\n", result.Outcome.ScoreDelta)
		}
		if sp := result.Outcome.Spawned; sp != nil {
			fmt.Fprintf(&b, "Spawned %d at (%d,%d)\n", sp.Value, sp.Row, sp.Col)
		}
	} else {
		b.WriteString("✗ Move changed nothing\n")
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Executed %d/%d moves (%d changed the grid)\n",
		result.MovesExecuted, result.RequestedMoves, result.MovesChanged)
	fmt.Fprintf(&b, "Score: %d -> %d (+%d)\n", result.StartScore, result.EndScore, result.ScoreDelta)
	fmt.Fprintf(&b, "Max tile: %d -> %d\n", result.StartMaxTile, result.EndMaxTile)
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}
	if result.Truncated {
		fmt.Fprintf(&b, "Only the first %d moves were run\n", result.Limit)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, step := range result.Steps {
			mark := "·"
			if step.Changed {
				mark = "✓"
			}
			fmt.Fprintf(&b, "  %s %2d %-5s score %d", mark, step.Idx, step.Dir, step.ScoreAfter)
			if step.Merged > 0 {
				fmt.Fprintf(&b, " merged %d", step.Merged)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (page %d/%d, %d moves total):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)
	if len(history.Moves) == 0 {
		b.WriteString("No moves yet\n")
		return b.String()
	}
	for _, m := range history.Moves {
		fmt.Fprintf(&b, "#%d %-5s +%d score %d", m.MoveNumber, m.Action, m.ScoreDelta, m.Score)
		if m.Spawned != nil {
			fmt.Fprintf(&b, " spawned %d at (%d,%d)", m.Spawned.Value, m.Spawned.Row, m.Spawned.Col)
		}
		if m.Status != "" && m.Status != engine.StatusOngoing {
			fmt.Fprintf(&b, " [%s]", m.Status)
		}
		b.WriteString("\n")
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore moves on page %d\n", history.Page+1)
	}
	return b.String()
}

func joinDirections(dirs []engine.Direction) string {
	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = string(d)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
