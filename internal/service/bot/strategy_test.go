package bot

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

func newTestSelector() *Selector {
	return NewSelector(NewSearcher(DefaultWeights()))
}

// frequency runs SelectMove n times and returns how often col came back.
func frequency(t *testing.T, b *domain.Board, profile Profile, col, n int, seed int64) float64 {
	t.Helper()
	s := newTestSelector()
	rng := rand.New(rand.NewSource(seed))
	hits := 0
	for i := 0; i < n; i++ {
		d, err := s.SelectMove(context.Background(), b, domain.Player1, profile, rng)
		if err != nil {
			t.Fatalf("SelectMove failed: %v", err)
		}
		if d.Reason != ReasonStrategy {
			t.Fatalf("expected a strategy decision, got %s", d.Reason)
		}
		if d.Column == col {
			hits++
		}
	}
	return float64(hits) / float64(n)
}

func mustProfile(t *testing.T, name string) Profile {
	t.Helper()
	p, err := ParseProfile(name)
	if err != nil {
		t.Fatalf("ParseProfile(%q): %v", name, err)
	}
	return p
}

func TestWeightedOffensiveDoublesOffensiveColumns(t *testing.T) {
	// column 0 turns two X into three, column 1 does nothing for X
	b := boardFrom(t, 4,
		"..",
		"..",
		"X.",
		"XO",
	)
	candidates := AnalyzeCandidates(b, domain.Player1, SafeColumns(b, domain.Player1))
	if len(candidates) != 2 || !candidates[0].Offensive || candidates[1].Offensive {
		t.Fatalf("unexpected candidates %+v", candidates)
	}

	got := frequency(t, b, mustProfile(t, ProfileWeightedOffensive), 0, 1000, 1)
	if math.Abs(got-2.0/3.0) > 0.06 {
		t.Errorf("offensive column picked %.3f of the time, want about 0.667", got)
	}
}

func TestWeightedDefensiveDoublesDefensiveColumns(t *testing.T) {
	// column 0 caps the O pair, column 1 only stacks on X
	b := boardFrom(t, 4,
		"..",
		"..",
		"O.",
		"OX",
	)
	candidates := AnalyzeCandidates(b, domain.Player1, SafeColumns(b, domain.Player1))
	if len(candidates) != 2 || !candidates[0].Defensive || candidates[1].Defensive {
		t.Fatalf("unexpected candidates %+v", candidates)
	}

	got := frequency(t, b, mustProfile(t, ProfileWeightedDefensive), 0, 1000, 2)
	if math.Abs(got-2.0/3.0) > 0.06 {
		t.Errorf("defensive column picked %.3f of the time, want about 0.667", got)
	}

	// neither column is offensive, so the offensive pool is uniform
	got = frequency(t, b, mustProfile(t, ProfileWeightedOffensive), 0, 1000, 3)
	if math.Abs(got-0.5) > 0.06 {
		t.Errorf("column 0 picked %.3f of the time, want about 0.5", got)
	}
}

func TestSearchDepthGatesThreats(t *testing.T) {
	// X at 6 makes a floating three on the second row but leaves O time for
	// 2, which opens .OOO. on the bottom row. Only 1, 2 and 5 survive four plies.
	b := boardFrom(t, 4,
		".......",
		".......",
		".......",
		"....O..",
		"O..XX..",
		"X..OO.X",
	)
	losing := map[int]bool{0: true, 3: true, 4: true, 6: true}
	s := newTestSelector()

	shallow := Profile{Name: "shallow", Strategy: WeightedOffensive, SearchDepth: 1, Randomness: 1, OffensiveWeight: 10, DefensiveWeight: 1}
	deep := shallow
	deep.Name, deep.SearchDepth = "deep", 4

	d, err := s.SelectMove(context.Background(), b, domain.Player1, shallow, rand.New(rand.NewSource(10)))
	if err != nil {
		t.Fatalf("SelectMove failed: %v", err)
	}
	if d.Depth != 1 || d.Nodes == 0 {
		t.Errorf("shallow search reached depth %d with %d nodes", d.Depth, d.Nodes)
	}
	for _, c := range d.Candidates {
		if c.Offensive != (c.Column == 6) {
			t.Errorf("at depth 1 column %d offensive = %v", c.Column, c.Offensive)
		}
	}
	// 10 of 16 pool entries
	if got := frequency(t, b, shallow, 6, 1000, 11); math.Abs(got-10.0/16.0) > 0.06 {
		t.Errorf("depth 1 picked column 6 %.3f of the time, want about 0.625", got)
	}

	d, err = s.SelectMove(context.Background(), b, domain.Player1, deep, rand.New(rand.NewSource(12)))
	if err != nil {
		t.Fatalf("SelectMove failed: %v", err)
	}
	if d.Depth != 4 {
		t.Errorf("deep search reached depth %d, want 4", d.Depth)
	}
	for _, c := range d.Candidates {
		lost := IsForced(c.SearchScore) && c.SearchScore < 0
		if lost != losing[c.Column] {
			t.Errorf("column %d scored %d at depth 4, want proven loss %v", c.Column, c.SearchScore, losing[c.Column])
		}
		if c.Offensive {
			t.Errorf("column %d still offensive at depth 4: %+v", c.Column, c)
		}
		if losing[c.Column] && c.OffensiveScore != 0 {
			t.Errorf("losing column %d kept offensive score %.2f", c.Column, c.OffensiveScore)
		}
	}

	rng := rand.New(rand.NewSource(13))
	balanced := Profile{Name: "balanced", Strategy: BalancedStrategic, SearchDepth: 4, Randomness: 0.5, OffensiveWeight: 1.2, DefensiveWeight: 1.5}
	for i := 0; i < 200; i++ {
		for _, p := range []Profile{deep, balanced} {
			d, err := s.SelectMove(context.Background(), b, domain.Player1, p, rng)
			if err != nil {
				t.Fatalf("SelectMove failed: %v", err)
			}
			if losing[d.Column] {
				t.Fatalf("%s played column %d, which loses within four plies", p.Name, d.Column)
			}
		}
	}
}

func TestBalancedStrategic(t *testing.T) {
	b := boardFrom(t, 4,
		"..",
		"..",
		"X.",
		"XO",
	)
	s := newTestSelector()
	rng := rand.New(rand.NewSource(4))

	greedy := Profile{Name: "greedy", Strategy: BalancedStrategic, SearchDepth: 1, OffensiveWeight: 1.2, DefensiveWeight: 1.5}
	sampled := mustProfile(t, ProfileEnhancedSmart)

	for i := 0; i < 100; i++ {
		for _, p := range []Profile{greedy, sampled} {
			d, err := s.SelectMove(context.Background(), b, domain.Player1, p, rng)
			if err != nil {
				t.Fatalf("SelectMove failed: %v", err)
			}
			// only column 0 has a positive weight
			if d.Column != 0 {
				t.Fatalf("%s picked column %d, want 0", p.Name, d.Column)
			}
		}
	}

	d, err := s.SelectMove(context.Background(), domain.NewStandardBoard(), domain.Player1, greedy, rng)
	if err != nil {
		t.Fatalf("SelectMove failed: %v", err)
	}
	if d.Column != 3 {
		t.Errorf("all-zero weights should fall back to the centre, got %d", d.Column)
	}
}

func TestBiasedRandomFollowsSearch(t *testing.T) {
	b := domain.NewStandardBoard()

	always := Profile{Name: "always", Strategy: BiasedRandom, SearchDepth: 2, Randomness: 0}
	if got := frequency(t, b, always, 3, 20, 5); got != 1 {
		t.Errorf("randomness 0 should always play the search move, got %.2f", got)
	}

	// search move with probability 0.5 plus a 1/7 share of the random half
	half := Profile{Name: "half", Strategy: BiasedRandom, SearchDepth: 2, Randomness: 0.5}
	want := 0.5 + 0.5/7
	if got := frequency(t, b, half, 3, 1000, 6); math.Abs(got-want) > 0.06 {
		t.Errorf("centre picked %.3f of the time, want about %.3f", got, want)
	}

	noisy := Profile{Name: "noisy", Strategy: BiasedRandom, SearchDepth: 2, Randomness: 1}
	seen := make(map[int]bool)
	s := newTestSelector()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		d, err := s.SelectMove(context.Background(), b, domain.Player1, noisy, rng)
		if err != nil {
			t.Fatalf("SelectMove failed: %v", err)
		}
		seen[d.Column] = true
	}
	if len(seen) != domain.Columns {
		t.Errorf("randomness 1 should reach every column, saw %v", seen)
	}
}

func TestDeterministicSearchIsRepeatable(t *testing.T) {
	s := newTestSelector()
	p := Profile{Name: "search", Strategy: DeterministicSearch, SearchDepth: 4}

	for seed := int64(0); seed < 5; seed++ {
		d, err := s.SelectMove(context.Background(), domain.NewStandardBoard(), domain.Player1, p, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("SelectMove failed: %v", err)
		}
		if d.Column != 3 || d.Depth != 4 {
			t.Errorf("expected centre at depth 4, got column %d depth %d", d.Column, d.Depth)
		}
		for _, c := range d.Candidates {
			if !c.Searched {
				t.Errorf("candidate %d has no search score", c.Column)
			}
		}
	}
}

func TestTacticsOverrideEveryStrategy(t *testing.T) {
	win := boardFrom(t, 4,
		".......",
		".......",
		".......",
		".......",
		"OO.....",
		"XXX...O",
	)
	block := boardFrom(t, 4,
		".......",
		".......",
		".......",
		"..O....",
		"..O....",
		"XXO..X.",
	)
	s := newTestSelector()
	rng := rand.New(rand.NewSource(8))

	for _, p := range Profiles() {
		d, err := s.SelectMove(context.Background(), win, domain.Player1, p, rng)
		if err != nil {
			t.Fatalf("%s: %v", p.Name, err)
		}
		if d.Column != 3 || d.Reason != ReasonWin {
			t.Errorf("%s: got column %d (%s), want win in 3", p.Name, d.Column, d.Reason)
		}

		d, err = s.SelectMove(context.Background(), block, domain.Player1, p, rng)
		if err != nil {
			t.Fatalf("%s: %v", p.Name, err)
		}
		if d.Column != 2 || d.Reason != ReasonBlock {
			t.Errorf("%s: got column %d (%s), want block in 2", p.Name, d.Column, d.Reason)
		}
	}
}

func TestStrategiesNeverPickUnsafeColumns(t *testing.T) {
	b := boardFrom(t, 4,
		".......",
		".......",
		".......",
		".......",
		"OOO....",
		"XXO....",
	)
	s := newTestSelector()
	rng := rand.New(rand.NewSource(9))

	for _, p := range Profiles() {
		for i := 0; i < 10; i++ {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			d, err := s.SelectMove(ctx, b, domain.Player1, p, rng)
			cancel()
			if err != nil {
				t.Fatalf("%s: %v", p.Name, err)
			}
			if d.Column == 3 {
				t.Fatalf("%s played column 3, which hands O the row", p.Name)
			}
		}
	}
}

func TestOnlySafeColumnIsPlayed(t *testing.T) {
	// the single legal drop lets O finish the top row, but it is all there is
	b := boardFrom(t, 4,
		"OOO.",
		"XXO.",
	)
	d, err := newTestSelector().SelectMove(context.Background(), b, domain.Player1, mustProfile(t, ProfileEasy), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("SelectMove failed: %v", err)
	}
	if d.Column != 3 || d.Reason != ReasonOnlySafe {
		t.Errorf("got column %d (%s), want only move 3", d.Column, d.Reason)
	}
}

func TestSelectMoveEdgeCases(t *testing.T) {
	s := newTestSelector()
	p := mustProfile(t, ProfileHard)

	if _, err := s.SelectMove(context.Background(), domain.NewStandardBoard(), domain.Player1, p, nil); !errors.Is(err, ErrNilRandom) {
		t.Errorf("expected ErrNilRandom, got %v", err)
	}

	full := boardFrom(t, 3,
		"XOX",
		"OXO",
	)
	d, err := s.SelectMove(context.Background(), full, domain.Player1, p, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("SelectMove failed: %v", err)
	}
	if d.Column != domain.NoMove || d.Reason != ReasonNoMoves {
		t.Errorf("full board gave %+v, want NoMove", d)
	}
}

func TestAnalyzeCandidatesCenterOrder(t *testing.T) {
	b := domain.NewStandardBoard()
	candidates := AnalyzeCandidates(b, domain.Player1, b.ValidMoves())
	order := CenterOrder(domain.Columns)
	if len(candidates) != len(order) {
		t.Fatalf("got %d candidates, want %d", len(candidates), len(order))
	}
	for i, c := range candidates {
		if c.Column != order[i] {
			t.Errorf("candidate %d is column %d, want %d", i, c.Column, order[i])
		}
		if c.Offensive || c.Defensive {
			t.Errorf("a single piece cannot be offensive or defensive: %+v", c)
		}
	}
}

func TestDecisionSettled(t *testing.T) {
	empty := domain.NewStandardBoard()
	hard := mustProfile(t, ProfileHard)
	nearlyFull := boardFrom(t, 3,
		"..X",
		"OXO",
	)

	tests := []struct {
		name     string
		decision Decision
		board    *domain.Board
		want     bool
	}{
		{"block", Decision{Reason: ReasonBlock}, empty, true},
		{"only safe", Decision{Reason: ReasonOnlySafe}, empty, true},
		{"cut short", Decision{Reason: ReasonStrategy, Depth: 3}, empty, false},
		{"never searched", Decision{Reason: ReasonStrategy}, empty, false},
		{"full depth", Decision{Reason: ReasonStrategy, Depth: 6}, empty, true},
		{"capped by empty cells", Decision{Reason: ReasonStrategy, Depth: 2}, nearlyFull, true},
		{"proven win", Decision{Reason: ReasonStrategy, Depth: 3, Candidates: []Candidate{
			{Column: 3, SearchScore: WinScore - 3, Searched: true},
			{Column: 2, SearchScore: 40, Searched: true},
		}}, empty, true},
		{"heuristic best", Decision{Reason: ReasonStrategy, Depth: 3, Candidates: []Candidate{
			{Column: 3, SearchScore: 40, Searched: true},
			{Column: 2, SearchScore: -WinScore + 4, Searched: true},
		}}, empty, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.decision.Settled(tt.board, hard); got != tt.want {
				t.Errorf("Settled() = %v, want %v", got, tt.want)
			}
		})
	}
}
