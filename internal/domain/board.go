package domain

import (
	"fmt"
	"strings"
)

// Board is a gravity-drop grid. Row 0 is the top row, so pieces fill a column
// from Rows-1 upwards. Dimensions never change after construction.
type Board struct {
	Rows      int
	Columns   int
	WinLength int

	cells   [][]PlayerID
	heights []int // pieces per column
}

func NewBoard(rows, columns, winLength int) (*Board, error) {
	if rows <= 0 || columns <= 0 || winLength <= 1 {
		return nil, fmt.Errorf("%w: %dx%d with win length %d", ErrInvalidBoard, rows, columns, winLength)
	}
	if winLength > rows && winLength > columns {
		return nil, fmt.Errorf("%w: win length %d does not fit a %dx%d grid", ErrInvalidBoard, winLength, rows, columns)
	}

	cells := make([][]PlayerID, rows)
	for i := range cells {
		cells[i] = make([]PlayerID, columns)
	}

	return &Board{
		Rows:      rows,
		Columns:   columns,
		WinLength: winLength,
		cells:     cells,
		heights:   make([]int, columns),
	}, nil
}

// NewStandardBoard returns an empty 6x7 board with win length 4.
func NewStandardBoard() *Board {
	b, _ := NewBoard(Rows, Columns, ToWin)
	return b
}

// BoardFromGrid builds a board from a row-major grid (row 0 = top). It rejects
// ragged grids, unknown cell values and floating pieces.
func BoardFromGrid(grid [][]PlayerID, winLength int) (*Board, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidBoard)
	}

	b, err := NewBoard(len(grid), len(grid[0]), winLength)
	if err != nil {
		return nil, err
	}

	for r, row := range grid {
		if len(row) != b.Columns {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidBoard, r, len(row), b.Columns)
		}
		for c, cell := range row {
			if cell != Empty && !cell.Valid() {
				return nil, fmt.Errorf("%w: cell (%d,%d) holds %d", ErrInvalidBoard, r, c, cell)
			}
		}
	}

	for c := 0; c < b.Columns; c++ {
		height := 0
		for r := b.Rows - 1; r >= 0; r-- {
			if grid[r][c] == Empty {
				break
			}
			b.cells[r][c] = grid[r][c]
			height++
		}
		// everything above the stack must be empty
		for r := b.Rows - 1 - height; r >= 0; r-- {
			if grid[r][c] != Empty {
				return nil, fmt.Errorf("%w: floating piece at (%d,%d)", ErrInvalidBoard, r, c)
			}
		}
		b.heights[c] = height
	}

	return b, nil
}

func (b *Board) At(row, column int) PlayerID {
	return b.cells[row][column]
}

func (b *Board) InBounds(row, column int) bool {
	return row >= 0 && row < b.Rows && column >= 0 && column < b.Columns
}

// Height returns the number of pieces stacked in a column.
func (b *Board) Height(column int) int {
	return b.heights[column]
}

// LandingRow is the row a piece dropped into column would occupy, or -1 when
// the column is full or out of range.
func (b *Board) LandingRow(column int) int {
	if column < 0 || column >= b.Columns || b.heights[column] >= b.Rows {
		return -1
	}
	return b.Rows - 1 - b.heights[column]
}

func (b *Board) IsValidMove(column int) bool {
	return b.LandingRow(column) >= 0
}

// ValidMoves lists playable columns from left to right.
func (b *Board) ValidMoves() []int {
	moves := make([]int, 0, b.Columns)
	for c := 0; c < b.Columns; c++ {
		if b.heights[c] < b.Rows {
			moves = append(moves, c)
		}
	}
	return moves
}

func (b *Board) IsFull() bool {
	for c := 0; c < b.Columns; c++ {
		if b.heights[c] < b.Rows {
			return false
		}
	}
	return true
}

func (b *Board) PieceCount() int {
	n := 0
	for _, h := range b.heights {
		n += h
	}
	return n
}

// Drop places a piece in place and returns the row it landed on.
func (b *Board) Drop(column int, player PlayerID) (int, error) {
	if !player.Valid() {
		return -1, ErrInvalidPlayer
	}
	if column < 0 || column >= b.Columns {
		return -1, fmt.Errorf("%w: %d", ErrInvalidColumn, column)
	}
	row := b.LandingRow(column)
	if row < 0 {
		return -1, fmt.Errorf("%w: %d", ErrColumnFull, column)
	}
	b.cells[row][column] = player
	b.heights[column]++
	return row, nil
}

// Undo removes the top piece of a column, reversing the last Drop into it.
func (b *Board) Undo(column int) error {
	if column < 0 || column >= b.Columns {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, column)
	}
	if b.heights[column] == 0 {
		return fmt.Errorf("%w: %d", ErrColumnEmpty, column)
	}
	row := b.Rows - b.heights[column]
	b.cells[row][column] = Empty
	b.heights[column]--
	return nil
}

// this creates a deep copy of the board
func (b *Board) Clone() *Board {
	cells := make([][]PlayerID, b.Rows)
	for i := range b.cells {
		cells[i] = make([]PlayerID, b.Columns)
		copy(cells[i], b.cells[i])
	}
	heights := make([]int, b.Columns)
	copy(heights, b.heights)

	return &Board{
		Rows:      b.Rows,
		Columns:   b.Columns,
		WinLength: b.WinLength,
		cells:     cells,
		heights:   heights,
	}
}

// Grid returns a copy of the cells, row 0 first.
func (b *Board) Grid() [][]PlayerID {
	return b.Clone().cells
}

// Key encodes the position column by column, bottom up, e.g. "12|.|2|...".
func (b *Board) Key() string {
	var sb strings.Builder
	sb.Grow(b.Rows*b.Columns + b.Columns)
	for c := 0; c < b.Columns; c++ {
		if c > 0 {
			sb.WriteByte('|')
		}
		if b.heights[c] == 0 {
			sb.WriteByte('.')
			continue
		}
		for r := b.Rows - 1; r >= b.Rows-b.heights[c]; r-- {
			sb.WriteByte(byte('0' + b.cells[r][c]))
		}
	}
	return fmt.Sprintf("%dx%dw%d:%s", b.Rows, b.Columns, b.WinLength, sb.String())
}

func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Columns; c++ {
			switch b.cells[r][c] {
			case Player1:
				sb.WriteByte('X')
			case Player2:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ApplyMove simulates a move on a copy and gives the result to the caller.
// The original board is left untouched.
func ApplyMove(board *Board, column int, player PlayerID) (*Board, int, error) {
	next := board.Clone()
	row, err := next.Drop(column, player)
	if err != nil {
		return nil, -1, err
	}
	return next, row, nil
}

// this counts the number of disks in a specific direction
func (b *Board) CountDiskInDirection(row, column, deltaRow, deltaCol int, player PlayerID) int {
	count := 0
	r, c := row+deltaRow, column+deltaCol
	for b.InBounds(r, c) && b.cells[r][c] == player {
		count++
		r += deltaRow
		c += deltaCol
	}
	return count
}
