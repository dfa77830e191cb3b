package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iamasit07/4-in-a-row/engine/internal/service/tournament"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("write without deadline")
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewKafkaProducerNeedsBrokers(t *testing.T) {
	if _, err := NewKafkaProducer(KafkaConfig{Topic: "bot.events"}, nil); !errors.Is(err, ErrNoBrokers) {
		t.Errorf("expected ErrNoBrokers, got %v", err)
	}
}

func TestPublishDecision(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaProducer(w, zap.NewNop())

	err := p.PublishDecision(context.Background(), DecisionEvent{
		RequestID: "req-1",
		Profile:   "hard",
		Player:    2,
		Column:    3,
		Reason:    "strategy",
		Timestamp: time.Unix(0, 0),
	})
	if err != nil {
		t.Fatalf("PublishDecision failed: %v", err)
	}
	if len(w.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.messages))
	}

	msg := w.messages[0]
	if string(msg.Key) != "req-1" {
		t.Errorf("decision without game id should be keyed by request, got %q", msg.Key)
	}

	var decoded DecisionEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded.Type != EventDecision || decoded.Column != 3 || decoded.Profile != "hard" {
		t.Errorf("unexpected payload %+v", decoded)
	}
}

func TestPublishReturnsWriteErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaProducer(w, zap.NewNop())

	if err := p.PublishTournamentGame(context.Background(), TournamentGameEvent{TournamentID: "t-1"}); err == nil {
		t.Errorf("expected the write error to surface")
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close should close the writer")
	}
}

func TestTournamentListenerPublishes(t *testing.T) {
	w := &fakeWriter{}
	l := NewTournamentListener(newKafkaProducer(w, zap.NewNop()), nil)

	l.OnGameFinished("t-1", tournament.GameRecord{ID: "g-1", Index: 2, First: "hard", Second: "easy", Winner: "hard", Moves: []int{3, 3, 4}})
	l.OnEnd(&tournament.Result{ID: "t-1", ProfileA: "hard", ProfileB: "easy", AWins: 1})

	if len(w.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(w.messages))
	}
	for _, msg := range w.messages {
		if string(msg.Key) != "t-1" {
			t.Errorf("tournament events should be keyed by tournament id, got %q", msg.Key)
		}
	}

	var game TournamentGameEvent
	if err := json.Unmarshal(w.messages[0].Value, &game); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if game.Type != EventTournamentGame || game.Winner != "hard" || len(game.Moves) != 3 {
		t.Errorf("unexpected game payload %+v", game)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.PublishDecision(context.Background(), DecisionEvent{}); err != nil {
		t.Errorf("NopPublisher should never fail: %v", err)
	}
}
