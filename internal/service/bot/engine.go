package bot

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"go.uber.org/zap"
)

// EngineConfig is fixed when the engine is built.
type EngineConfig struct {
	Rows      int
	Columns   int
	WinLength int

	// MoveTime bounds the wall clock of one decision. Zero means no bound.
	MoveTime time.Duration
	Weights  Weights
	Parallel bool
	Workers  int
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Rows:      domain.Rows,
		Columns:   domain.Columns,
		WinLength: domain.ToWin,
		MoveTime:  800 * time.Millisecond,
		Weights:   DefaultWeights(),
	}
}

// Engine is the entry point the host calls once per computer turn. It keeps no
// state between calls.
type Engine struct {
	cfg      EngineConfig
	selector *Selector
	logger   *zap.Logger
}

func NewEngine(cfg EngineConfig, logger *zap.Logger) (*Engine, error) {
	if _, err := domain.NewBoard(cfg.Rows, cfg.Columns, cfg.WinLength); err != nil {
		return nil, err
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	searcher := &Searcher{Weights: cfg.Weights, Parallel: cfg.Parallel, Workers: cfg.Workers}
	return &Engine{
		cfg:      cfg,
		selector: NewSelector(searcher),
		logger:   logger,
	}, nil
}

func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// NewBoard returns an empty board with the engine's dimensions.
func (e *Engine) NewBoard() *domain.Board {
	b, _ := domain.NewBoard(e.cfg.Rows, e.cfg.Columns, e.cfg.WinLength)
	return b
}

// ChooseMove returns the 0-based column to play, or domain.NoMove with a nil
// error when the board has no empty cell left (a draw).
func (e *Engine) ChooseMove(ctx context.Context, board *domain.Board, player domain.PlayerID, profile Profile, rng *rand.Rand) (int, error) {
	decision, err := e.Decide(ctx, board, player, profile, rng)
	if err != nil {
		return domain.NoMove, err
	}
	return decision.Column, nil
}

// Decide is ChooseMove with the reasoning attached.
func (e *Engine) Decide(ctx context.Context, board *domain.Board, player domain.PlayerID, profile Profile, rng *rand.Rand) (Decision, error) {
	if board == nil {
		return Decision{Column: domain.NoMove}, fmt.Errorf("%w: nil board", domain.ErrInvalidBoard)
	}
	if board.Rows != e.cfg.Rows || board.Columns != e.cfg.Columns || board.WinLength != e.cfg.WinLength {
		return Decision{Column: domain.NoMove}, fmt.Errorf("%w: got %dx%d/%d, want %dx%d/%d", ErrBoardMismatch,
			board.Rows, board.Columns, board.WinLength, e.cfg.Rows, e.cfg.Columns, e.cfg.WinLength)
	}
	if !player.Valid() {
		return Decision{Column: domain.NoMove}, domain.ErrInvalidPlayer
	}
	if err := profile.Validate(); err != nil {
		return Decision{Column: domain.NoMove}, err
	}

	if e.cfg.MoveTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.MoveTime)
		defer cancel()
	}

	start := time.Now()
	decision, err := e.selector.SelectMove(ctx, board, player, profile, rng)
	if err != nil {
		return decision, err
	}

	if decision.Column != domain.NoMove && !board.IsValidMove(decision.Column) {
		e.logger.Error("engine proposed an unplayable column",
			zap.String("profile", profile.Name),
			zap.Int("column", decision.Column),
			zap.String("board", board.Key()),
		)
		return Decision{Column: domain.NoMove}, fmt.Errorf("%w: column %d", ErrInternalInvariant, decision.Column)
	}

	e.logger.Debug("move selected",
		zap.String("profile", profile.Name),
		zap.Int("player", int(player)),
		zap.Int("column", decision.Column),
		zap.String("reason", string(decision.Reason)),
		zap.Int("depth", decision.Depth),
		zap.Int64("nodes", decision.Nodes),
		zap.Duration("elapsed", time.Since(start)),
	)
	return decision, nil
}
