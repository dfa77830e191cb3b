package bot

import (
	"math/rand"
	"testing"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

// boardFrom parses rows top to bottom: X = Player1, O = Player2, anything else empty.
func boardFrom(t *testing.T, winLength int, rows ...string) *domain.Board {
	t.Helper()
	grid := make([][]domain.PlayerID, len(rows))
	for r, line := range rows {
		grid[r] = make([]domain.PlayerID, len(line))
		for c, ch := range line {
			switch ch {
			case 'X':
				grid[r][c] = domain.Player1
			case 'O':
				grid[r][c] = domain.Player2
			}
		}
	}
	b, err := domain.BoardFromGrid(grid, winLength)
	if err != nil {
		t.Fatalf("BoardFromGrid failed: %v", err)
	}
	return b
}

// randomPosition plays random moves until at most maxEmpty cells are left.
// Positions where somebody already won are thrown away and replayed.
func randomPosition(t *testing.T, rng *rand.Rand, rows, cols, maxEmpty int) (*domain.Board, domain.PlayerID) {
	t.Helper()
	for attempt := 0; attempt < 500; attempt++ {
		b, err := domain.NewBoard(rows, cols, domain.ToWin)
		if err != nil {
			t.Fatalf("NewBoard failed: %v", err)
		}
		player := domain.Player1
		won := false
		for rows*cols-b.PieceCount() > maxEmpty {
			moves := b.ValidMoves()
			col := moves[rng.Intn(len(moves))]
			row, _ := b.Drop(col, player)
			if b.IsTerminalWin(row, col) {
				won = true
				break
			}
			player = player.Opponent()
		}
		if !won {
			return b, player
		}
	}
	t.Fatal("could not generate a position without a winner")
	return nil, domain.Empty
}

func testEngine(t *testing.T, rows, cols, winLength int) *Engine {
	t.Helper()
	cfg := DefaultEngineConfig()
	cfg.Rows, cfg.Columns, cfg.WinLength = rows, cols, winLength
	cfg.MoveTime = 0
	e, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}
