package tournament

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/pkg/uid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Error string

func (e Error) Error() string { return string(e) }

const ErrInvalidConfig = Error("invalid tournament config")

// Config describes one head-to-head series between two profiles.
type Config struct {
	ProfileA bot.Profile
	ProfileB bot.Profile
	Games    int
	// game i is played with a generator seeded Seed+i
	Seed    int64
	Workers int
}

func (c Config) Validate() error {
	if c.Games < 1 {
		return fmt.Errorf("%w: games must be at least 1", ErrInvalidConfig)
	}
	if err := c.ProfileA.Validate(); err != nil {
		return fmt.Errorf("%w: profile a: %w", ErrInvalidConfig, err)
	}
	if err := c.ProfileB.Validate(); err != nil {
		return fmt.Errorf("%w: profile b: %w", ErrInvalidConfig, err)
	}
	return nil
}

// GameRecord is one finished game. Winner is a profile name, empty for a draw;
// WinnerSeat is domain.Player1 when the side that moved first won.
type GameRecord struct {
	ID         string
	Index      int
	First      string
	Second     string
	Winner     string
	WinnerSeat domain.PlayerID
	Moves      []int
	StartedAt  time.Time
	Duration   time.Duration
}

func (g GameRecord) IsDraw() bool {
	return g.WinnerSeat == domain.Empty
}

// Result aggregates a series in game order.
type Result struct {
	ID         string
	ProfileA   string
	ProfileB   string
	AWins      int
	BWins      int
	Draws      int
	RatingA    int
	RatingB    int
	Games      []GameRecord
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Result) Total() int {
	return r.AWins + r.BWins + r.Draws
}

// ScoreA is profile A's points: one per win, half per draw.
func (r *Result) ScoreA() float64 {
	return float64(r.AWins) + 0.5*float64(r.Draws)
}

// Arena plays series of games between profiles on one engine.
type Arena struct {
	engine   *bot.Engine
	logger   *zap.Logger
	listener Listener
}

func NewArena(engine *bot.Engine, logger *zap.Logger) *Arena {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Arena{engine: engine, logger: logger, listener: nopListener{}}
}

// WithListener registers l for per-game callbacks. l is called from worker
// goroutines and must be safe for concurrent use.
func (a *Arena) WithListener(l Listener) *Arena {
	if l == nil {
		l = nopListener{}
	}
	a.listener = l
	return a
}

// Run plays cfg.Games games, alternating who moves first. Profile A opens the
// even-numbered games. With an engine MoveTime of zero every search runs to
// its profile depth and the result does not depend on Workers. A positive
// MoveTime ties the reached depth to wall-clock time, so neither Workers nor
// repeated runs with the same Seed are guaranteed to give the same games.
func (a *Arena) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		ID:        uid.GenerateTournamentID(),
		ProfileA:  cfg.ProfileA.Name,
		ProfileB:  cfg.ProfileB.Name,
		Games:     make([]GameRecord, cfg.Games),
		StartedAt: time.Now(),
	}
	a.listener.OnStart(result.ID, cfg)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < cfg.Games; i++ {
		i := i
		first, second := cfg.ProfileA, cfg.ProfileB
		if i%2 == 1 {
			first, second = second, first
		}
		g.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			record, err := a.playGame(gctx, first, second, rng)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			record.Index = i
			result.Games[i] = record
			a.listener.OnGameFinished(result.ID, record)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.RatingA, result.RatingB = domain.InitialRating, domain.InitialRating
	for _, game := range result.Games {
		aFirst := game.Index%2 == 0
		score := 0.5
		switch {
		case game.IsDraw():
			result.Draws++
		case (game.WinnerSeat == domain.Player1) == aFirst:
			result.AWins++
			score = 1
		default:
			result.BWins++
			score = 0
		}
		result.RatingA, result.RatingB = domain.UpdateRatings(result.RatingA, result.RatingB, score)
	}
	result.FinishedAt = time.Now()

	a.logger.Info("tournament finished",
		zap.String("tournament_id", result.ID),
		zap.String("a", result.ProfileA),
		zap.String("b", result.ProfileB),
		zap.Int("a_wins", result.AWins),
		zap.Int("b_wins", result.BWins),
		zap.Int("draws", result.Draws),
		zap.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)),
	)
	a.listener.OnEnd(result)
	return result, nil
}

func (a *Arena) playGame(ctx context.Context, first, second bot.Profile, rng *rand.Rand) (GameRecord, error) {
	cfg := a.engine.Config()
	game, err := domain.NewGame(cfg.Rows, cfg.Columns, cfg.WinLength)
	if err != nil {
		return GameRecord{}, err
	}

	record := GameRecord{
		ID:        uid.GenerateGameID(),
		First:     first.Name,
		Second:    second.Name,
		StartedAt: time.Now(),
	}

	for !game.IsFinished() {
		if err := ctx.Err(); err != nil {
			return record, err
		}

		profile := first
		if game.CurrentPlayer == domain.Player2 {
			profile = second
		}
		col, err := a.engine.ChooseMove(ctx, game.Board, game.CurrentPlayer, profile, rng)
		if err != nil {
			return record, err
		}
		if col == domain.NoMove {
			break
		}
		if _, err := game.MakeMove(col); err != nil {
			return record, err
		}
	}

	record.Moves = game.Moves
	record.Duration = time.Since(record.StartedAt)
	record.WinnerSeat = game.Winner
	switch game.Winner {
	case domain.Player1:
		record.Winner = first.Name
	case domain.Player2:
		record.Winner = second.Name
	}

	a.logger.Debug("tournament game finished",
		zap.String("game_id", record.ID),
		zap.String("first", record.First),
		zap.String("winner", record.Winner),
		zap.Int("moves", len(record.Moves)),
	)
	return record, nil
}
