package tournament

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
)

func newTestArena(t *testing.T) *Arena {
	t.Helper()
	cfg := bot.DefaultEngineConfig()
	// no deadline so every game is a pure function of its seed
	cfg.MoveTime = 0
	engine, err := bot.NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return NewArena(engine, nil)
}

func profile(t *testing.T, name string) bot.Profile {
	t.Helper()
	p, err := bot.ParseProfile(name)
	if err != nil {
		t.Fatalf("ParseProfile(%q): %v", name, err)
	}
	return p
}

type recordingListener struct {
	mu      sync.Mutex
	started int
	games   []GameRecord
	ended   *Result
}

func (l *recordingListener) OnStart(string, Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started++
}

func (l *recordingListener) OnGameFinished(_ string, game GameRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.games = append(l.games, game)
}

func (l *recordingListener) OnEnd(result *Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ended = result
}

func TestStrongerProfileWins(t *testing.T) {
	if testing.Short() {
		t.Skip("plays a full series")
	}
	searcher := bot.Profile{Name: "search-4", Strategy: bot.DeterministicSearch, SearchDepth: 4}

	result, err := newTestArena(t).Run(context.Background(), Config{
		ProfileA: searcher,
		ProfileB: profile(t, bot.ProfileEasy),
		Games:    16,
		Seed:     1,
		Workers:  4,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Total() != 16 {
		t.Fatalf("expected 16 games, got %d", result.Total())
	}
	if result.AWins < 10 || result.AWins <= result.BWins {
		t.Errorf("search profile should dominate: %d wins, %d losses, %d draws", result.AWins, result.BWins, result.Draws)
	}
	if result.RatingA == domain.InitialRating && result.RatingB == domain.InitialRating {
		t.Errorf("ratings were not updated")
	}
}

func TestShippedLadder(t *testing.T) {
	if testing.Short() {
		t.Skip("plays several full series")
	}
	ladder := []struct{ stronger, weaker string }{
		{bot.ProfileSmartRandom, bot.ProfileEasy},
		{bot.ProfileEnhancedSmart, bot.ProfileSmartRandom},
		{bot.ProfileHard, bot.ProfileEnhancedSmart},
	}
	arena := newTestArena(t)

	for _, rung := range ladder {
		t.Run(rung.stronger+"_vs_"+rung.weaker, func(t *testing.T) {
			result, err := arena.Run(context.Background(), Config{
				ProfileA: profile(t, rung.stronger),
				ProfileB: profile(t, rung.weaker),
				Games:    40,
				Seed:     3,
				Workers:  4,
			})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if result.AWins <= result.BWins {
				t.Errorf("%s should outscore %s: %d wins, %d losses, %d draws",
					rung.stronger, rung.weaker, result.AWins, result.BWins, result.Draws)
			}
		})
	}
}

func TestRunAlternatesFirstMover(t *testing.T) {
	a, b := profile(t, bot.ProfileWeightedOffensive), profile(t, bot.ProfileEasy)
	result, err := newTestArena(t).Run(context.Background(), Config{ProfileA: a, ProfileB: b, Games: 4, Seed: 5, Workers: 2})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i, game := range result.Games {
		wantFirst := a.Name
		if i%2 == 1 {
			wantFirst = b.Name
		}
		if game.Index != i || game.First != wantFirst {
			t.Errorf("game %d: index %d first %s, want first %s", i, game.Index, game.First, wantFirst)
		}
		if len(game.Moves) < 2*domain.ToWin-1 {
			t.Errorf("game %d ended after %d moves", i, len(game.Moves))
		}
		if !game.IsDraw() && game.Winner != game.First && game.Winner != game.Second {
			t.Errorf("game %d: winner %q played no part", i, game.Winner)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	cfg := Config{
		ProfileA: profile(t, bot.ProfileWeightedDefensive),
		ProfileB: profile(t, bot.ProfileEasy),
		Games:    6,
		Seed:     42,
	}

	cfg.Workers = 1
	serial, err := newTestArena(t).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("serial Run failed: %v", err)
	}
	cfg.Workers = 3
	parallel, err := newTestArena(t).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("parallel Run failed: %v", err)
	}

	for i := range serial.Games {
		if !reflect.DeepEqual(serial.Games[i].Moves, parallel.Games[i].Moves) {
			t.Errorf("game %d differs between worker counts", i)
		}
	}
	if serial.AWins != parallel.AWins || serial.BWins != parallel.BWins || serial.Draws != parallel.Draws {
		t.Errorf("tallies differ: %+v vs %+v", serial, parallel)
	}
	if serial.RatingA != parallel.RatingA || serial.RatingB != parallel.RatingB {
		t.Errorf("ratings differ: %d/%d vs %d/%d", serial.RatingA, serial.RatingB, parallel.RatingA, parallel.RatingB)
	}
}

func TestRunNotifiesListener(t *testing.T) {
	l := &recordingListener{}
	arena := newTestArena(t).WithListener(Listeners{l})

	p := profile(t, bot.ProfileWeightedOffensive)
	result, err := arena.Run(context.Background(), Config{ProfileA: p, ProfileB: p, Games: 3, Seed: 9, Workers: 3})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if l.started != 1 || len(l.games) != 3 || l.ended != result {
		t.Errorf("listener saw start=%d games=%d end=%v", l.started, len(l.games), l.ended != nil)
	}
	// self-play still splits by seat, not by name
	if result.Total() != 3 {
		t.Errorf("expected 3 tallied games, got %d", result.Total())
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	arena := newTestArena(t)
	easy := profile(t, bot.ProfileEasy)

	if _, err := arena.Run(context.Background(), Config{ProfileA: easy, ProfileB: easy}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero games, got %v", err)
	}
	if _, err := arena.Run(context.Background(), Config{ProfileA: easy, ProfileB: bot.Profile{}, Games: 1}); !errors.Is(err, bot.ErrInvalidProfile) {
		t.Errorf("expected wrapped ErrInvalidProfile, got %v", err)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	easy := profile(t, bot.ProfileEasy)
	_, err := newTestArena(t).Run(ctx, Config{ProfileA: easy, ProfileB: easy, Games: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
