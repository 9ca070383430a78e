package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// IdentityEvent reports a user sighting during reconciliation.
type IdentityEvent struct {
	EventType string        `json:"event_type"` // user.created, user.seen
	UserID    string        `json:"user_id"`
	Email     string        `json:"email"`
	Source    models.Source `json:"source"`
	Timestamp time.Time     `json:"timestamp"`
}

// RelationshipEvent reports a new canonical edge.
type RelationshipEvent struct {
	EventType string        `json:"event_type"` // edge.created
	Kind      string        `json:"kind"`
	FromID    string        `json:"from_id"`
	ToID      string        `json:"to_id"`
	Status    string        `json:"status,omitempty"`
	Name      string        `json:"name,omitempty"`
	Priority  int           `json:"priority,omitempty"`
	Source    models.Source `json:"source"`
	Timestamp time.Time     `json:"timestamp"`
}

// BatchEvent reports a committed import batch.
type BatchEvent struct {
	EventType string               `json:"event_type"` // batch.completed
	Source    models.Source        `json:"source"`
	Summary   *models.BatchSummary `json:"summary"`
	Timestamp time.Time            `json:"timestamp"`
}

// PublishIdentityEvent publishes a user sighting event, keyed by email so
// one user's events stay ordered within a partition.
func (p *Producer) PublishIdentityEvent(ctx context.Context, event *IdentityEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishIdentityEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Email),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "source", Value: []byte(event.Source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish identity event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"user_id":    event.UserID,
		"source":     event.Source,
	}).Debug("Published identity event")

	return nil
}

// PublishRelationshipEvent publishes an edge creation event, keyed by the
// originating user id.
func (p *Producer) PublishRelationshipEvent(ctx context.Context, event *RelationshipEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishRelationshipEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.FromID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "kind", Value: []byte(event.Kind)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish relationship event")
		return err
	}

	return nil
}

// PublishBatchEvent publishes a batch completion event.
func (p *Producer) PublishBatchEvent(ctx context.Context, event *BatchEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishBatchEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Source),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "source", Value: []byte(event.Source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish batch event")
		return err
	}

	return nil
}
