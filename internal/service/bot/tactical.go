package bot

import (
	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

// Stage names the tactical check that produced a forced move.
type Stage int

const (
	StageNone Stage = iota
	// stage 1: we win on this ply
	StageWin
	// stage 2: the opponent would win here on their next ply
	StageBlock
)

func (s Stage) String() string {
	switch s {
	case StageWin:
		return "win"
	case StageBlock:
		return "block"
	default:
		return "none"
	}
}

// TacticalResult is the answer of the one-ply tactical check.
type TacticalResult struct {
	Column int
	Stage  Stage
}

// Found reports whether a forced move exists.
func (r TacticalResult) Found() bool {
	return r.Stage != StageNone
}

// winningColumns mutates work while scanning but restores it before returning.
func winningColumns(work *domain.Board, player domain.PlayerID, firstOnly bool) []int {
	var cols []int
	for _, col := range work.ValidMoves() {
		row, err := work.Drop(col, player)
		if err != nil {
			continue
		}
		won := work.IsTerminalWin(row, col)
		work.Undo(col)
		if won {
			cols = append(cols, col)
			if firstOnly {
				break
			}
		}
	}
	return cols
}

// WinningColumns lists every column where player wins by dropping now.
func WinningColumns(board *domain.Board, player domain.PlayerID) []int {
	return winningColumns(board.Clone(), player, false)
}

// FindImmediateWin returns the leftmost column that wins for player on this ply.
func FindImmediateWin(board *domain.Board, player domain.PlayerID) (int, bool) {
	cols := winningColumns(board.Clone(), player, true)
	if len(cols) == 0 {
		return domain.NoMove, false
	}
	return cols[0], true
}

// FindImmediateBlock returns the column the opponent of player would win with
// on their next ply. It only reports a block when exactly one such column
// exists; with two or more the position is already lost and no single block
// is forced.
func FindImmediateBlock(board *domain.Board, player domain.PlayerID) (int, bool) {
	cols := winningColumns(board.Clone(), player.Opponent(), false)
	if len(cols) != 1 {
		return domain.NoMove, false
	}
	return cols[0], true
}

// Resolve runs stage 1 (own win) and then stage 2 (forced block).
func Resolve(board *domain.Board, player domain.PlayerID) TacticalResult {
	if col, ok := FindImmediateWin(board, player); ok {
		return TacticalResult{Column: col, Stage: StageWin}
	}
	if col, ok := FindImmediateBlock(board, player); ok {
		return TacticalResult{Column: col, Stage: StageBlock}
	}
	return TacticalResult{Column: domain.NoMove, Stage: StageNone}
}

// SafeColumns lists the columns after which the opponent has no immediate
// winning reply. When every column is unsafe all valid moves are returned.
func SafeColumns(board *domain.Board, player domain.PlayerID) []int {
	work := board.Clone()
	opponent := player.Opponent()
	valid := work.ValidMoves()

	safe := make([]int, 0, len(valid))
	for _, col := range valid {
		if _, err := work.Drop(col, player); err != nil {
			continue
		}
		replies := winningColumns(work, opponent, true)
		work.Undo(col)
		if len(replies) == 0 {
			safe = append(safe, col)
		}
	}

	if len(safe) == 0 {
		return valid
	}
	return safe
}
