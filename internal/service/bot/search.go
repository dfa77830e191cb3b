package bot

import (
	"context"
	"runtime"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	// WinScore is the value of a win on the next ply. Terminal scores are
	// WinScore-ply for wins and -WinScore+ply for losses, so faster wins and
	// slower losses rank first. Heuristic totals stay orders of magnitude below.
	WinScore  = 1_000_000_000
	DrawScore = 0

	infinity = 2 * WinScore

	// how many nodes between two context checks
	cancelCheckInterval = 2048
)

// MoveScore is the minimax value of one root column.
type MoveScore struct {
	Column int
	Score  int
}

// SearchResult is the outcome of the deepest fully completed iteration.
type SearchResult struct {
	Column int
	Score  int
	Depth  int
	Nodes  int64
	Scores []MoveScore // centre-out order
}

// IsForced reports whether the score is a proven win or loss.
func IsForced(score int) bool {
	return score >= WinScore-maxPly || score <= -WinScore+maxPly
}

const maxPly = 1 << 10

// Searcher runs depth-limited minimax with alpha-beta pruning. It holds no
// per-search state and is safe for concurrent use.
type Searcher struct {
	Weights  Weights
	Parallel bool
	Workers  int
}

func NewSearcher(weights Weights) *Searcher {
	return &Searcher{Weights: weights}
}

// CenterOrder lists column indexes from the centre outwards. With an even
// width the left of the two centre columns comes first.
func CenterOrder(columns int) []int {
	order := make([]int, 0, columns)
	left := (columns - 1) / 2
	right := left + 1
	for left >= 0 || right < columns {
		if left >= 0 {
			order = append(order, left)
			left--
		}
		if right < columns {
			order = append(order, right)
			right++
		}
	}
	return order
}

// searchRun is the state of one recursive search over a private board copy.
type searchRun struct {
	ctx     context.Context
	board   *domain.Board
	me      domain.PlayerID
	weights Weights
	order   []int
	nodes   int64
}

func newSearchRun(ctx context.Context, board *domain.Board, me domain.PlayerID, w Weights) *searchRun {
	return &searchRun{
		ctx:     ctx,
		board:   board.Clone(),
		me:      me,
		weights: w,
		order:   CenterOrder(board.Columns),
	}
}

// drop applies a move the search generated itself. A failure here means the
// move generator is broken.
func (s *searchRun) drop(col int, player domain.PlayerID) int {
	row, err := s.board.Drop(col, player)
	if err != nil {
		panic(err)
	}
	return row
}

func (s *searchRun) undo(col int) {
	if err := s.board.Undo(col); err != nil {
		panic(err)
	}
}

// minimax returns the value of the current position with the side given by
// maximizing to move. ply counts moves made since the root.
func (s *searchRun) minimax(depth, ply, alpha, beta int, maximizing bool) (int, error) {
	s.nodes++
	if s.nodes%cancelCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			return 0, err
		}
	}

	if s.board.IsFull() {
		return DrawScore, nil
	}
	if depth == 0 {
		return Evaluate(s.board, s.me, s.weights), nil
	}

	if maximizing {
		best := -infinity
		for _, col := range s.order {
			if !s.board.IsValidMove(col) {
				continue
			}
			row := s.drop(col, s.me)
			if s.board.IsTerminalWin(row, col) {
				s.undo(col)
				// nothing beats winning right now
				return WinScore - (ply + 1), nil
			}
			eval, err := s.minimax(depth-1, ply+1, alpha, beta, false)
			s.undo(col)
			if err != nil {
				return 0, err
			}

			best = max(best, eval)
			alpha = max(alpha, eval)
			if alpha >= beta {
				break // beta cutoff
			}
		}
		return best, nil
	}

	opponent := s.me.Opponent()
	best := infinity
	for _, col := range s.order {
		if !s.board.IsValidMove(col) {
			continue
		}
		row := s.drop(col, opponent)
		if s.board.IsTerminalWin(row, col) {
			s.undo(col)
			return -WinScore + (ply + 1), nil
		}
		eval, err := s.minimax(depth-1, ply+1, alpha, beta, true)
		s.undo(col)
		if err != nil {
			return 0, err
		}

		best = min(best, eval)
		beta = min(beta, eval)
		if alpha >= beta {
			break // alpha cutoff
		}
	}
	return best, nil
}

// scoreRoot computes the exact value of playing col at the root.
func (s *searchRun) scoreRoot(col, depth int) (int, error) {
	row := s.drop(col, s.me)
	defer s.undo(col)

	if s.board.IsTerminalWin(row, col) {
		return WinScore - 1, nil
	}
	return s.minimax(depth-1, 1, -infinity, infinity, false)
}

// BestMove picks the best column for player at the given depth, breaking ties
// toward the centre. It returns domain.NoMove when the board is full.
func (s *Searcher) BestMove(board *domain.Board, player domain.PlayerID, depth int) int {
	col, err := s.BestMoveContext(context.Background(), board, player, depth)
	if err != nil {
		// only cancellation fails a search and this context never ends
		panic(err)
	}
	return col
}

// BestMoveContext is BestMove with cancellation. A cancelled search returns
// domain.NoMove and the context's error.
func (s *Searcher) BestMoveContext(ctx context.Context, board *domain.Board, player domain.PlayerID, depth int) (int, error) {
	if depth < 1 {
		depth = 1
	}
	run := newSearchRun(ctx, board, player, s.Weights)

	bestCol := domain.NoMove
	bestScore := -infinity
	alpha := -infinity

	for _, col := range run.order {
		if !run.board.IsValidMove(col) {
			continue
		}
		row := run.drop(col, player)
		score := WinScore - 1
		if !run.board.IsTerminalWin(row, col) {
			var err error
			score, err = run.minimax(depth-1, 1, alpha, infinity, false)
			if err != nil {
				run.undo(col)
				return domain.NoMove, err
			}
		}
		run.undo(col)

		// strictly greater keeps the more central column on ties
		if bestCol == domain.NoMove || score > bestScore {
			bestScore = score
			bestCol = col
		}
		alpha = max(alpha, bestScore)
	}

	return bestCol, nil
}

// ScoreMoves returns the exact minimax value of every valid column in
// centre-out order. Every root child is searched with a full window, so the
// result does not depend on the order the children finish in.
func (s *Searcher) ScoreMoves(ctx context.Context, board *domain.Board, player domain.PlayerID, depth int) ([]MoveScore, int64, error) {
	if depth < 1 {
		depth = 1
	}

	columns := make([]int, 0, board.Columns)
	for _, col := range CenterOrder(board.Columns) {
		if board.IsValidMove(col) {
			columns = append(columns, col)
		}
	}
	scores := make([]MoveScore, len(columns))
	nodes := make([]int64, len(columns))

	if !s.Parallel || len(columns) < 2 {
		run := newSearchRun(ctx, board, player, s.Weights)
		for i, col := range columns {
			score, err := run.scoreRoot(col, depth)
			if err != nil {
				return nil, run.nodes, err
			}
			scores[i] = MoveScore{Column: col, Score: score}
		}
		return scores, run.nodes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g.SetLimit(workers)

	for i, col := range columns {
		i, col := i, col
		g.Go(func() error {
			run := newSearchRun(gctx, board, player, s.Weights)
			score, err := run.scoreRoot(col, depth)
			nodes[i] = run.nodes
			if err != nil {
				return err
			}
			scores[i] = MoveScore{Column: col, Score: score}
			return nil
		})
	}

	err := g.Wait()
	var total int64
	for _, n := range nodes {
		total += n
	}
	if err != nil {
		return nil, total, err
	}
	return scores, total, nil
}

// Search deepens from depth 1 to maxDepth until ctx expires and returns the
// result of the last fully completed depth. Depth 1 always completes, so a
// playable column comes back whenever one exists.
func (s *Searcher) Search(ctx context.Context, board *domain.Board, player domain.PlayerID, maxDepth int) (SearchResult, error) {
	result := SearchResult{Column: domain.NoMove}
	if len(board.ValidMoves()) == 0 {
		return result, nil
	}
	if maxDepth < 1 {
		maxDepth = 1
	}
	// no point searching past the last empty cell
	if empty := board.Rows*board.Columns - board.PieceCount(); maxDepth > empty {
		maxDepth = empty
	}

	for depth := 1; depth <= maxDepth; depth++ {
		iterCtx := ctx
		if depth == 1 {
			iterCtx = context.Background()
		}

		scores, nodes, err := s.ScoreMoves(iterCtx, board, player, depth)
		result.Nodes += nodes
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return result, err
		}

		best := BestScore(scores)
		result.Column = best.Column
		result.Score = best.Score
		result.Depth = depth
		result.Scores = scores

		if IsForced(best.Score) {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	return result, nil
}

// BestScore returns the highest scoring entry; on ties the earlier entry,
// which is the more central column for centre-ordered input, wins.
func BestScore(scores []MoveScore) MoveScore {
	best := MoveScore{Column: domain.NoMove, Score: -infinity}
	for _, ms := range scores {
		if best.Column == domain.NoMove || ms.Score > best.Score {
			best = ms
		}
	}
	return best
}
