package bot

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

// Reason explains where a decision came from.
type Reason string

const (
	ReasonWin      Reason = "win"
	ReasonBlock    Reason = "block"
	ReasonOnlySafe Reason = "only_safe"
	ReasonStrategy Reason = "strategy"
	ReasonNoMoves  Reason = "no_moves"
)

// Candidate is one safe column together with the facts the strategies weigh.
type Candidate struct {
	Column         int
	Offensive      bool    // creates at least one new own threat window, or wins by force
	OffensiveScore float64 // new threat windows, plus a quarter per new two-window and the scaled search score
	Defensive      bool    // breaks at least one opponent window that holds two or more pieces
	DefensiveScore float64 // broken opponent three-windows, plus half per broken two-window
	SearchScore    int
	Searched       bool
}

// Decision is the full answer of SelectMove.
type Decision struct {
	Column     int
	Reason     Reason
	Candidates []Candidate
	Depth      int
	Nodes      int64
}

// Settled reports whether more time could not have changed the decision. That
// holds for tactical answers, for searches that reached the profile's depth
// capped at the number of empty cells, and for searches that stopped early on
// a proven result.
func (d Decision) Settled(board *domain.Board, profile Profile) bool {
	switch d.Reason {
	case ReasonWin, ReasonBlock, ReasonOnlySafe, ReasonNoMoves:
		return true
	}
	target := min(max(profile.SearchDepth, 1), board.Rows*board.Columns-board.PieceCount())
	if d.Depth >= target {
		return true
	}
	best, searched := 0, false
	for _, c := range d.Candidates {
		if c.Searched && (!searched || c.SearchScore > best) {
			best, searched = c.SearchScore, true
		}
	}
	return searched && IsForced(best)
}

// Selector layers the tactical checks, the safe-column filter and the
// profile's selection rule.
type Selector struct {
	Searcher *Searcher
}

func NewSelector(searcher *Searcher) *Selector {
	return &Selector{Searcher: searcher}
}

// SelectMove picks a column for player. rng is only read by the randomised
// strategies but must be supplied.
func (s *Selector) SelectMove(ctx context.Context, board *domain.Board, player domain.PlayerID, profile Profile, rng *rand.Rand) (Decision, error) {
	if rng == nil {
		return Decision{Column: domain.NoMove}, ErrNilRandom
	}
	if len(board.ValidMoves()) == 0 {
		return Decision{Column: domain.NoMove, Reason: ReasonNoMoves}, nil
	}

	// stages 1 and 2 override every strategy
	if tactic := Resolve(board, player); tactic.Found() {
		reason := ReasonWin
		if tactic.Stage == StageBlock {
			reason = ReasonBlock
		}
		return Decision{Column: tactic.Column, Reason: reason}, nil
	}

	safe := SafeColumns(board, player)
	candidates := AnalyzeCandidates(board, player, safe)
	if len(candidates) == 1 {
		return Decision{Column: candidates[0].Column, Reason: ReasonOnlySafe, Candidates: candidates}, nil
	}

	decision := Decision{Reason: ReasonStrategy, Candidates: candidates}

	switch profile.Strategy {
	case DeterministicSearch:
		if err := s.attachSearch(ctx, board, player, profile, &decision); err != nil {
			return decision, err
		}
		decision.Column = highestSearchScore(decision.Candidates)

	case WeightedOffensive:
		viable, err := s.searchCandidates(ctx, board, player, profile, &decision)
		if err != nil {
			return decision, err
		}
		decision.Column = samplePool(rng, viable, func(c Candidate) int {
			return poolWeight(c.Offensive, profile.OffensiveWeight)
		})

	case WeightedDefensive:
		viable, err := s.searchCandidates(ctx, board, player, profile, &decision)
		if err != nil {
			return decision, err
		}
		decision.Column = samplePool(rng, viable, func(c Candidate) int {
			return poolWeight(c.Defensive, profile.DefensiveWeight)
		})

	case BalancedStrategic:
		viable, err := s.searchCandidates(ctx, board, player, profile, &decision)
		if err != nil {
			return decision, err
		}
		weights := make([]float64, len(viable))
		for i, c := range viable {
			weights[i] = profile.OffensiveWeight*c.OffensiveScore + profile.DefensiveWeight*c.DefensiveScore
		}
		// randomness is the share of turns that sample instead of taking the best
		if profile.Randomness == 0 || rng.Float64() >= profile.Randomness {
			decision.Column = viable[argmaxCentral(viable, weights)].Column
		} else {
			decision.Column = viable[sampleProportional(rng, weights)].Column
		}

	case BiasedRandom:
		if rng.Float64() < 1-profile.Randomness {
			if err := s.attachSearch(ctx, board, player, profile, &decision); err != nil {
				return decision, err
			}
			decision.Column = highestSearchScore(decision.Candidates)
		} else {
			decision.Column = candidates[rng.Intn(len(candidates))].Column
		}

	default:
		return decision, fmt.Errorf("%w: %s", ErrInvalidProfile, profile.Strategy)
	}

	return decision, nil
}

// attachSearch runs the iterative deepening search at the profile's depth and
// copies the root scores onto the candidates.
func (s *Selector) attachSearch(ctx context.Context, board *domain.Board, player domain.PlayerID, profile Profile, decision *Decision) error {
	result, err := s.Searcher.Search(ctx, board, player, profile.SearchDepth)
	if err != nil {
		return err
	}
	decision.Depth = result.Depth
	decision.Nodes = result.Nodes

	byColumn := make(map[int]int, len(result.Scores))
	for _, ms := range result.Scores {
		byColumn[ms.Column] = ms.Score
	}
	for i := range decision.Candidates {
		if score, ok := byColumn[decision.Candidates[i].Column]; ok {
			decision.Candidates[i].SearchScore = score
			decision.Candidates[i].Searched = true
		}
	}
	return nil
}

// forcedWinBonus lifts a proven win above any count of threat windows.
const forcedWinBonus = 10

// searchCandidates searches at the profile's depth and folds the result into
// the candidates' facts. A proven loss clears both flags and scores and drops
// the column from the returned pool, unless every column loses. A proven win
// counts as offensive and gets forcedWinBonus. Every other column adds its
// search score, scaled to [0, 1] between the worst and best of them, to
// OffensiveScore.
//
// decision.Candidates is updated in place; the returned pool keeps the
// centre-out order.
func (s *Selector) searchCandidates(ctx context.Context, board *domain.Board, player domain.PlayerID, profile Profile, decision *Decision) ([]Candidate, error) {
	if err := s.attachSearch(ctx, board, player, profile, decision); err != nil {
		return nil, err
	}
	candidates := decision.Candidates

	lo, hi := infinity, -infinity
	viable := 0
	for _, c := range candidates {
		if provenLoss(c) {
			continue
		}
		viable++
		if c.Searched && !IsForced(c.SearchScore) {
			lo = min(lo, c.SearchScore)
			hi = max(hi, c.SearchScore)
		}
	}
	if viable == 0 {
		return candidates, nil
	}

	pool := make([]Candidate, 0, viable)
	for i := range candidates {
		c := &candidates[i]
		switch {
		case !c.Searched:
		case provenLoss(*c):
			c.Offensive, c.OffensiveScore = false, 0
			c.Defensive, c.DefensiveScore = false, 0
			continue
		case IsForced(c.SearchScore):
			c.Offensive = true
			c.OffensiveScore += forcedWinBonus
		case hi > lo:
			c.OffensiveScore += float64(c.SearchScore-lo) / float64(hi-lo)
		}
		pool = append(pool, *c)
	}
	return pool, nil
}

func provenLoss(c Candidate) bool {
	return c.Searched && IsForced(c.SearchScore) && c.SearchScore < 0
}

// AnalyzeCandidates computes the offensive and defensive facts for each column
// in cols, returned in centre-out order.
func AnalyzeCandidates(board *domain.Board, player domain.PlayerID, cols []int) []Candidate {
	work := board.Clone()
	opponent := player.Opponent()
	ownBefore := CountWindows(work, player)
	theirsBefore := CountWindows(work, opponent)

	allowed := make(map[int]bool, len(cols))
	for _, col := range cols {
		allowed[col] = true
	}

	candidates := make([]Candidate, 0, len(cols))
	for _, col := range CenterOrder(board.Columns) {
		if !allowed[col] {
			continue
		}
		if _, err := work.Drop(col, player); err != nil {
			continue
		}
		ownAfter := CountWindows(work, player)
		theirsAfter := CountWindows(work, opponent)
		work.Undo(col)

		newThrees := ownAfter.Three - ownBefore.Three
		newTwos := ownAfter.Two - ownBefore.Two
		brokenThrees := theirsBefore.Three - theirsAfter.Three
		brokenTwos := theirsBefore.Two - theirsAfter.Two

		candidates = append(candidates, Candidate{
			Column:         col,
			Offensive:      newThrees > 0,
			OffensiveScore: math.Max(0, float64(newThrees)+0.25*float64(newTwos)),
			Defensive:      brokenThrees > 0 || brokenTwos > 0,
			DefensiveScore: math.Max(0, float64(brokenThrees)+0.5*float64(brokenTwos)),
		})
	}
	return candidates
}

func poolWeight(qualifies bool, weight float64) int {
	if !qualifies {
		return 1
	}
	return max(1, int(math.Round(weight)))
}

// samplePool repeats each column weight(c) times and draws uniformly from the pool.
func samplePool(rng *rand.Rand, candidates []Candidate, weight func(Candidate) int) int {
	pool := make([]int, 0, 2*len(candidates))
	for _, c := range candidates {
		for i := 0; i < weight(c); i++ {
			pool = append(pool, c.Column)
		}
	}
	return pool[rng.Intn(len(pool))]
}

// sampleProportional draws an index with probability weight/sum. When no
// weight is positive every index is equally likely.
func sampleProportional(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return rng.Intn(len(weights))
	}

	target := rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		target -= w
		if target < 0 {
			return i
		}
	}
	// rounding left a sliver at the end
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return 0
}

// argmaxCentral relies on candidates being in centre-out order, so the first
// maximum is the most central one.
func argmaxCentral(candidates []Candidate, weights []float64) int {
	best := 0
	for i := range candidates {
		if weights[i] > weights[best] {
			best = i
		}
	}
	return best
}

func highestSearchScore(candidates []Candidate) int {
	best := -1
	for i, c := range candidates {
		if !c.Searched {
			continue
		}
		if best < 0 || c.SearchScore > candidates[best].SearchScore {
			best = i
		}
	}
	if best < 0 {
		return candidates[0].Column
	}
	return candidates[best].Column
}
