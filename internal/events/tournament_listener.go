package events

import (
	"context"
	"time"

	"github.com/iamasit07/4-in-a-row/engine/internal/service/tournament"
	"go.uber.org/zap"
)

// TournamentListener forwards arena progress to a Publisher. Publish failures
// are logged and never stop the tournament.
type TournamentListener struct {
	publisher Publisher
	logger    *zap.Logger
}

func NewTournamentListener(p Publisher, logger *zap.Logger) *TournamentListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TournamentListener{publisher: p, logger: logger}
}

func (l *TournamentListener) OnStart(string, tournament.Config) {}

func (l *TournamentListener) OnGameFinished(tournamentID string, game tournament.GameRecord) {
	err := l.publisher.PublishTournamentGame(context.Background(), TournamentGameEvent{
		TournamentID: tournamentID,
		GameID:       game.ID,
		Index:        game.Index,
		First:        game.First,
		Second:       game.Second,
		Winner:       game.Winner,
		Moves:        game.Moves,
		DurationMs:   game.Duration.Milliseconds(),
		Timestamp:    time.Now(),
	})
	if err != nil {
		l.logger.Warn("failed to publish tournament game",
			zap.String("tournament_id", tournamentID),
			zap.String("game_id", game.ID),
			zap.Error(err),
		)
	}
}

func (l *TournamentListener) OnEnd(result *tournament.Result) {
	err := l.publisher.PublishTournamentFinished(context.Background(), TournamentFinishedEvent{
		TournamentID: result.ID,
		ProfileA:     result.ProfileA,
		ProfileB:     result.ProfileB,
		AWins:        result.AWins,
		BWins:        result.BWins,
		Draws:        result.Draws,
		RatingA:      result.RatingA,
		RatingB:      result.RatingB,
		Timestamp:    time.Now(),
	})
	if err != nil {
		l.logger.Warn("failed to publish tournament result",
			zap.String("tournament_id", result.ID),
			zap.Error(err),
		)
	}
}
