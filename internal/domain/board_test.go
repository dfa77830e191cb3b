package domain

import (
	"errors"
	"testing"
)

func mustGrid(t *testing.T, rows ...string) *Board {
	t.Helper()
	return mustGridWin(t, ToWin, rows...)
}

func mustGridWin(t *testing.T, winLength int, rows ...string) *Board {
	t.Helper()
	grid := make([][]PlayerID, len(rows))
	for r, line := range rows {
		grid[r] = make([]PlayerID, len(line))
		for c, ch := range line {
			switch ch {
			case 'X':
				grid[r][c] = Player1
			case 'O':
				grid[r][c] = Player2
			}
		}
	}
	b, err := BoardFromGrid(grid, winLength)
	if err != nil {
		t.Fatalf("BoardFromGrid failed: %v", err)
	}
	return b
}

func TestDropFillsFromBottom(t *testing.T) {
	b := NewStandardBoard()

	row, err := b.Drop(3, Player1)
	if err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if row != Rows-1 {
		t.Fatalf("expected first piece on row %d, got %d", Rows-1, row)
	}

	row, _ = b.Drop(3, Player2)
	if row != Rows-2 {
		t.Fatalf("expected second piece on row %d, got %d", Rows-2, row)
	}
	if b.Height(3) != 2 {
		t.Errorf("expected height 2, got %d", b.Height(3))
	}
}

func TestDropErrors(t *testing.T) {
	b := NewStandardBoard()

	for _, col := range []int{-1, Columns, 100} {
		if _, err := b.Drop(col, Player1); !errors.Is(err, ErrInvalidColumn) {
			t.Errorf("column %d: expected ErrInvalidColumn, got %v", col, err)
		}
	}

	for i := 0; i < Rows; i++ {
		if _, err := b.Drop(0, Player1); err != nil {
			t.Fatalf("Drop %d failed: %v", i, err)
		}
	}
	if _, err := b.Drop(0, Player2); !errors.Is(err, ErrColumnFull) {
		t.Errorf("expected ErrColumnFull, got %v", err)
	}

	if _, err := b.Drop(1, Empty); !errors.Is(err, ErrInvalidPlayer) {
		t.Errorf("expected ErrInvalidPlayer, got %v", err)
	}
}

func TestUndoRestoresPosition(t *testing.T) {
	b := NewStandardBoard()
	b.Drop(2, Player1)
	before := b.Key()

	b.Drop(2, Player2)
	if err := b.Undo(2); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if b.Key() != before {
		t.Errorf("undo did not restore position: %s vs %s", b.Key(), before)
	}

	b.Undo(2)
	if err := b.Undo(2); !errors.Is(err, ErrColumnEmpty) {
		t.Errorf("expected ErrColumnEmpty, got %v", err)
	}
}

func TestApplyMoveLeavesOriginal(t *testing.T) {
	b := NewStandardBoard()
	next, row, err := ApplyMove(b, 4, Player2)
	if err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}
	if row != Rows-1 || next.At(row, 4) != Player2 {
		t.Fatalf("piece not placed on copy")
	}
	if b.PieceCount() != 0 {
		t.Errorf("original board was mutated")
	}

	if _, _, err := ApplyMove(b, 7, Player1); !errors.Is(err, ErrInvalidColumn) {
		t.Errorf("expected ErrInvalidColumn, got %v", err)
	}
}

func TestValidMovesAndFull(t *testing.T) {
	b := mustGridWin(t, 3,
		"X.O",
		"O.X",
	)
	moves := b.ValidMoves()
	if len(moves) != 1 || moves[0] != 1 {
		t.Fatalf("expected only column 1, got %v", moves)
	}
	if b.IsFull() {
		t.Fatal("board should not be full")
	}

	b.Drop(1, Player1)
	b.Drop(1, Player2)
	if !b.IsFull() {
		t.Error("board should be full")
	}
	if len(b.ValidMoves()) != 0 {
		t.Error("full board should have no valid moves")
	}
}

func TestBoardFromGridRejectsFloatingPieces(t *testing.T) {
	grid := [][]PlayerID{
		{0, 1},
		{0, 0},
	}
	if _, err := BoardFromGrid(grid, 2); !errors.Is(err, ErrInvalidBoard) {
		t.Errorf("expected ErrInvalidBoard, got %v", err)
	}

	ragged := [][]PlayerID{{0, 0}, {0}}
	if _, err := BoardFromGrid(ragged, 2); !errors.Is(err, ErrInvalidBoard) {
		t.Errorf("expected ErrInvalidBoard for ragged grid, got %v", err)
	}

	bad := [][]PlayerID{{0, 0}, {3, 0}}
	if _, err := BoardFromGrid(bad, 2); !errors.Is(err, ErrInvalidBoard) {
		t.Errorf("expected ErrInvalidBoard for unknown cell, got %v", err)
	}
}

func TestKeyDistinguishesPositions(t *testing.T) {
	a := NewStandardBoard()
	b := NewStandardBoard()
	a.Drop(0, Player1)
	b.Drop(0, Player2)
	if a.Key() == b.Key() {
		t.Error("different positions share a key")
	}

	c := a.Clone()
	if a.Key() != c.Key() {
		t.Error("clone has a different key")
	}
}
