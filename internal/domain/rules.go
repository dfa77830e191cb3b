package domain

// Axes are the four line directions as (deltaRow, deltaCol). Row 0 is the top,
// so {-1, 1} climbs to the right and {1, 1} falls to the right.
var Axes = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{-1, 1}, // diagonal /
	{1, 1},  // diagonal \
}

// IsTerminalWin checks only the lines passing through (row, column), which is
// the last placed piece. Empty cells never win.
func (b *Board) IsTerminalWin(row, column int) bool {
	if !b.InBounds(row, column) {
		return false
	}
	player := b.cells[row][column]
	if player == Empty {
		return false
	}
	return b.wouldConnect(row, column, player)
}

// WouldWin reports whether player owning (row, column) completes a line there.
// The cell itself is not inspected, so it works for empty threat cells too.
func (b *Board) WouldWin(row, column int, player PlayerID) bool {
	if !b.InBounds(row, column) || !player.Valid() {
		return false
	}
	return b.wouldConnect(row, column, player)
}

func (b *Board) wouldConnect(row, column int, player PlayerID) bool {
	for _, axis := range Axes {
		dRow, dCol := axis[0], axis[1]
		total := 1 +
			b.CountDiskInDirection(row, column, dRow, dCol, player) +
			b.CountDiskInDirection(row, column, -dRow, -dCol, player)
		if total >= b.WinLength {
			return true
		}
	}
	return false
}

// Winner scans the whole board. Used for positions that did not come from a
// known last move, e.g. boards received from a client.
func Winner(b *Board) PlayerID {
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Columns; c++ {
			if b.cells[r][c] != Empty && b.IsTerminalWin(r, c) {
				return b.cells[r][c]
			}
		}
	}
	return Empty
}

// Status reports whether the game on b is still running.
func Status(b *Board) GameStatus {
	if Winner(b) != Empty {
		return StatusWon
	}
	if b.IsFull() {
		return StatusDraw
	}
	return StatusActive
}
