package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/scram"
	"go.uber.org/zap"
)

type Error string

func (e Error) Error() string { return string(e) }

const ErrNoBrokers = Error("no kafka brokers configured")

const writeTimeout = 10 * time.Second

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
}

// messageWriter is the part of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaProducer builds a synchronous producer. SASL/SCRAM over TLS is
// enabled when a username is set.
func NewKafkaProducer(cfg KafkaConfig, logger *zap.Logger) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := &kafka.Transport{}
	if cfg.Username != "" {
		mechanism, err := scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
		if err != nil {
			return nil, err
		}
		transport.SASL = mechanism
		transport.TLS = &tls.Config{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Compression:  kafka.Snappy,
		Transport:    transport,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)
	return newKafkaProducer(writer, logger), nil
}

func newKafkaProducer(w messageWriter, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{writer: w, logger: logger}
}

func (kp *KafkaProducer) PublishDecision(ctx context.Context, event DecisionEvent) error {
	event.Type = EventDecision
	key := event.GameID
	if key == "" {
		key = event.RequestID
	}
	return kp.publish(ctx, key, event)
}

func (kp *KafkaProducer) PublishTournamentGame(ctx context.Context, event TournamentGameEvent) error {
	event.Type = EventTournamentGame
	return kp.publish(ctx, event.TournamentID, event)
}

func (kp *KafkaProducer) PublishTournamentFinished(ctx context.Context, event TournamentFinishedEvent) error {
	event.Type = EventTournamentFinished
	return kp.publish(ctx, event.TournamentID, event)
}

func (kp *KafkaProducer) publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		kp.logger.Error("Failed to marshal event", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		kp.logger.Error("Kafka write failed", zap.String("key", key), zap.Error(err))
		return err
	}

	kp.logger.Debug("Event published to Kafka", zap.Int("size", len(data)))
	return nil
}

func (kp *KafkaProducer) Close() error {
	if kp.writer != nil {
		return kp.writer.Close()
	}
	return nil
}
