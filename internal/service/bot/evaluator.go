package bot

import (
	"fmt"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

// Weights are the evaluator's scoring constants. The opponent's window weights
// must dominate ours so the search values a block above an equal attack.
type Weights struct {
	Four  int // own complete line
	Three int // own line missing one piece
	Two   int // own line missing two pieces

	OpponentFour  int
	OpponentThree int
	OpponentTwo   int

	Center       int // per piece, scaled by column proximity and row depth
	Connectivity int // per same-player neighbour
	Isolation    int // penalty for a piece with no same-player neighbour
	Foundation   int // per piece on the bottom row

	Fork         int // two or more immediately playable winning cells
	OpponentFork int

	EdgeOveruse   int // penalty per edge-column piece above EdgeThreshold
	EdgeThreshold int
}

func DefaultWeights() Weights {
	return Weights{
		Four:          100000,
		Three:         100,
		Two:           10,
		OpponentFour:  120000,
		OpponentThree: 130,
		OpponentTwo:   12,
		Center:        4,
		Connectivity:  2,
		Isolation:     3,
		Foundation:    2,
		Fork:          400,
		OpponentFork:  500,
		EdgeOveruse:   4,
		EdgeThreshold: 2,
	}
}

// Validate checks the qualitative ordering block > attack > positional.
func (w Weights) Validate() error {
	switch {
	case w.Four <= w.Three || w.Three <= w.Two || w.Two <= 0:
		return fmt.Errorf("%w: own window weights must satisfy four > three > two > 0", ErrInvalidWeights)
	case w.OpponentFour < w.Four || w.OpponentThree < w.Three || w.OpponentTwo < w.Two:
		return fmt.Errorf("%w: opponent window weights must not be lower than own", ErrInvalidWeights)
	case w.OpponentFork < w.Fork:
		return fmt.Errorf("%w: opponent fork weight must not be lower than own", ErrInvalidWeights)
	case w.Three <= w.Center || w.Three <= w.Connectivity || w.Three <= w.Foundation:
		return fmt.Errorf("%w: positional weights must stay below the three weight", ErrInvalidWeights)
	case w.Center < 0 || w.Connectivity < 0 || w.Isolation < 0 || w.Foundation < 0 ||
		w.Fork < 0 || w.EdgeOveruse < 0 || w.EdgeThreshold < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidWeights)
	}
	return nil
}

// WindowCounts tallies one player's windows that contain none of the
// opponent's pieces, by how many pieces they already hold.
type WindowCounts struct {
	Full  int
	Three int // WinLength-1 pieces, one empty
	Two   int // WinLength-2 pieces, two empty
}

// CountWindows scans every WinLength window on all four axes.
func CountWindows(b *domain.Board, player domain.PlayerID) WindowCounts {
	var counts WindowCounts
	opponent := player.Opponent()
	length := b.WinLength

	for _, axis := range domain.Axes {
		dRow, dCol := axis[0], axis[1]
		for r := 0; r < b.Rows; r++ {
			for c := 0; c < b.Columns; c++ {
				endRow, endCol := r+dRow*(length-1), c+dCol*(length-1)
				if !b.InBounds(endRow, endCol) {
					continue
				}

				own, empty := 0, 0
				blocked := false
				for i := 0; i < length; i++ {
					switch b.At(r+dRow*i, c+dCol*i) {
					case player:
						own++
					case opponent:
						blocked = true
					default:
						empty++
					}
					if blocked {
						break
					}
				}
				if blocked {
					continue
				}

				switch {
				case own == length:
					counts.Full++
				case own == length-1 && empty == 1:
					counts.Three++
				case own == length-2 && empty == 2:
					counts.Two++
				}
			}
		}
	}
	return counts
}

// Evaluate scores b from maximizer's point of view. It is a pure function of
// its arguments.
func Evaluate(b *domain.Board, maximizer domain.PlayerID, w Weights) int {
	opponent := maximizer.Opponent()

	own := CountWindows(b, maximizer)
	theirs := CountWindows(b, opponent)

	score := w.Four*own.Full + w.Three*own.Three + w.Two*own.Two
	score -= w.OpponentFour*theirs.Full + w.OpponentThree*theirs.Three + w.OpponentTwo*theirs.Two

	score += positional(b, maximizer, w) - positional(b, opponent, w)

	if ForkThreats(b, maximizer) >= 2 {
		score += w.Fork
	}
	if ForkThreats(b, opponent) >= 2 {
		score -= w.OpponentFork
	}

	return score
}

// positional sums the per-piece terms: center, connectivity, isolation,
// foundation and edge overuse.
func positional(b *domain.Board, player domain.PlayerID, w Weights) int {
	score := 0
	span := b.Columns - 1
	leftEdge, rightEdge := 0, 0

	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Columns; c++ {
			if b.At(r, c) != player {
				continue
			}

			// proximity in half-columns so even widths get two centre columns
			proximity := span - abs(2*c-span)
			score += w.Center * proximity * (r + 1) / (2 * b.Rows)

			neighbours := sameNeighbours(b, r, c, player)
			if neighbours == 0 {
				score -= w.Isolation
			} else {
				score += w.Connectivity * neighbours
			}

			if r == b.Rows-1 {
				score += w.Foundation
			}

			if c == 0 {
				leftEdge++
			} else if c == b.Columns-1 {
				rightEdge++
			}
		}
	}

	if excess := leftEdge - w.EdgeThreshold; excess > 0 {
		score -= w.EdgeOveruse * excess
	}
	if excess := rightEdge - w.EdgeThreshold; excess > 0 {
		score -= w.EdgeOveruse * excess
	}
	return score
}

func sameNeighbours(b *domain.Board, row, col int, player domain.PlayerID) int {
	n := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if b.InBounds(r, c) && b.At(r, c) == player {
				n++
			}
		}
	}
	return n
}

// ForkThreats counts the winning threats player could cash in soon: every
// column whose landing cell wins, plus a second threat when the cell stacked
// right above it wins as well (the opponent cannot block both).
func ForkThreats(b *domain.Board, player domain.PlayerID) int {
	threats := 0
	for c := 0; c < b.Columns; c++ {
		row := b.LandingRow(c)
		if row < 0 || !b.WouldWin(row, c, player) {
			continue
		}
		threats++
		if row > 0 && b.WouldWin(row-1, c, player) {
			threats++
		}
	}
	return threats
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
