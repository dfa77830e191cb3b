package move

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/events"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/pkg/uid"
	"go.uber.org/zap"
)

type Error string

func (e Error) Error() string { return string(e) }

const ErrGameOver = Error("game is already over")

// CacheRepository remembers answers of deterministic profiles.
type CacheRepository interface {
	Get(ctx context.Context, key string) (int, bool, error)
	Set(ctx context.Context, key string, column int) error
}

// Request is one "what should the computer play" question. Board cells use
// 0 for empty, 1 and 2 for the players, with row 0 at the top.
type Request struct {
	Board   [][]int `json:"board"`
	Player  int     `json:"player"`
	Profile string  `json:"profile"`
	Seed    *int64  `json:"seed,omitempty"`
	GameID  string  `json:"gameId,omitempty"`
}

type Response struct {
	Column    int    `json:"column"`
	Reason    string `json:"reason"`
	Profile   string `json:"profile"`
	Depth     int    `json:"depth"`
	Cached    bool   `json:"cached"`
	GameID    string `json:"gameId,omitempty"`
	RequestID string `json:"requestId"`
}

const ReasonCached = "cached"

// Service validates move requests and answers them with the engine, in front
// of an optional decision cache and event publisher.
type Service struct {
	engine         *bot.Engine
	cache          CacheRepository
	publisher      events.Publisher
	defaultProfile string
	logger         *zap.Logger
	seed           func() int64
}

type Option func(*Service)

func WithCache(c CacheRepository) Option {
	return func(s *Service) { s.cache = c }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithDefaultProfile(name string) Option {
	return func(s *Service) { s.defaultProfile = name }
}

func NewService(engine *bot.Engine, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		engine:         engine,
		publisher:      events.NopPublisher{},
		defaultProfile: bot.ProfileHard,
		logger:         logger,
		seed:           func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Profiles() []bot.Profile {
	return bot.Profiles()
}

func (s *Service) ChooseMove(ctx context.Context, req Request) (Response, error) {
	name := req.Profile
	if name == "" {
		name = s.defaultProfile
	}
	profile, err := bot.ParseProfile(name)
	if err != nil {
		return Response{}, err
	}

	board, err := s.parseBoard(req.Board)
	if err != nil {
		return Response{}, err
	}
	player := domain.PlayerID(req.Player)
	if !player.Valid() {
		return Response{}, domain.ErrInvalidPlayer
	}
	if domain.Winner(board) != domain.Empty {
		return Response{}, ErrGameOver
	}

	resp := Response{Profile: profile.Name, GameID: req.GameID, RequestID: uid.GenerateRequestID()}

	cacheKey := ""
	if s.cache != nil && profile.Deterministic() {
		cacheKey = fmt.Sprintf("%s|%d|%s", board.Key(), player, profile.Name)
		if column, ok := s.cachedColumn(ctx, cacheKey, board); ok {
			resp.Column = column
			resp.Reason = ReasonCached
			resp.Cached = true
			s.publish(ctx, resp, player, board, bot.Decision{})
			return resp, nil
		}
	}

	seed := s.seed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	decision, err := s.engine.Decide(ctx, board, player, profile, rand.New(rand.NewSource(seed)))
	if err != nil {
		return Response{}, err
	}

	resp.Column = decision.Column
	resp.Reason = string(decision.Reason)
	resp.Depth = decision.Depth

	// an answer cut short by the deadline may differ on a quieter machine
	if cacheKey != "" && decision.Column != domain.NoMove && decision.Settled(board, profile) {
		if err := s.cache.Set(ctx, cacheKey, decision.Column); err != nil {
			s.logger.Warn("decision cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	s.publish(ctx, resp, player, board, decision)
	return resp, nil
}

func (s *Service) parseBoard(cells [][]int) (*domain.Board, error) {
	cfg := s.engine.Config()
	if len(cells) != cfg.Rows {
		return nil, fmt.Errorf("%w: %d rows, want %d", domain.ErrInvalidBoard, len(cells), cfg.Rows)
	}

	grid := make([][]domain.PlayerID, len(cells))
	for r, row := range cells {
		if len(row) != cfg.Columns {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", domain.ErrInvalidBoard, r, len(row), cfg.Columns)
		}
		grid[r] = make([]domain.PlayerID, len(row))
		for c, v := range row {
			grid[r][c] = domain.PlayerID(v)
		}
	}
	return domain.BoardFromGrid(grid, cfg.WinLength)
}

// cachedColumn ignores cache failures and entries that are no longer playable.
func (s *Service) cachedColumn(ctx context.Context, key string, board *domain.Board) (int, bool) {
	column, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("decision cache read failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	if !ok || !board.IsValidMove(column) {
		return 0, false
	}
	return column, true
}

func (s *Service) publish(ctx context.Context, resp Response, player domain.PlayerID, board *domain.Board, decision bot.Decision) {
	err := s.publisher.PublishDecision(ctx, events.DecisionEvent{
		RequestID: resp.RequestID,
		GameID:    resp.GameID,
		Profile:   resp.Profile,
		Player:    int(player),
		Column:    resp.Column,
		Reason:    resp.Reason,
		Depth:     decision.Depth,
		Nodes:     decision.Nodes,
		Cached:    resp.Cached,
		BoardKey:  board.Key(),
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to publish decision", zap.String("request_id", resp.RequestID), zap.Error(err))
	}
}
