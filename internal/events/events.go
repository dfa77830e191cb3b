package events

import (
	"context"
	"time"
)

type EventType string

const (
	EventDecision           EventType = "decision"
	EventTournamentGame     EventType = "tournament_game"
	EventTournamentFinished EventType = "tournament_finished"
)

// DecisionEvent is emitted once per move the service answers.
type DecisionEvent struct {
	Type      EventType `json:"type"`
	RequestID string    `json:"requestId"`
	GameID    string    `json:"gameId,omitempty"`
	Profile   string    `json:"profile"`
	Player    int       `json:"player"`
	Column    int       `json:"column"`
	Reason    string    `json:"reason"`
	Depth     int       `json:"depth"`
	Nodes     int64     `json:"nodes"`
	Cached    bool      `json:"cached"`
	BoardKey  string    `json:"boardKey"`
	Timestamp time.Time `json:"timestamp"`
}

type TournamentGameEvent struct {
	Type         EventType `json:"type"`
	TournamentID string    `json:"tournamentId"`
	GameID       string    `json:"gameId"`
	Index        int       `json:"index"`
	First        string    `json:"first"`
	Second       string    `json:"second"`
	Winner       string    `json:"winner,omitempty"`
	Moves        []int     `json:"moves"`
	DurationMs   int64     `json:"durationMs"`
	Timestamp    time.Time `json:"timestamp"`
}

type TournamentFinishedEvent struct {
	Type         EventType `json:"type"`
	TournamentID string    `json:"tournamentId"`
	ProfileA     string    `json:"profileA"`
	ProfileB     string    `json:"profileB"`
	AWins        int       `json:"aWins"`
	BWins        int       `json:"bWins"`
	Draws        int       `json:"draws"`
	RatingA      int       `json:"ratingA"`
	RatingB      int       `json:"ratingB"`
	Timestamp    time.Time `json:"timestamp"`
}

// Publisher ships events to the analytics pipeline.
type Publisher interface {
	PublishDecision(ctx context.Context, event DecisionEvent) error
	PublishTournamentGame(ctx context.Context, event TournamentGameEvent) error
	PublishTournamentFinished(ctx context.Context, event TournamentFinishedEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishDecision(context.Context, DecisionEvent) error { return nil }

func (NopPublisher) PublishTournamentGame(context.Context, TournamentGameEvent) error { return nil }

func (NopPublisher) PublishTournamentFinished(context.Context, TournamentFinishedEvent) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
