// Package events publishes identity lifecycle events to Kafka. Emission is
// best effort: a failed publish is logged, never allowed to fail an import.
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/relationships"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const (
	EventUserCreated    = "user.created"
	EventUserSeen       = "user.seen"
	EventEdgeCreated    = "edge.created"
	EventBatchCompleted = "batch.completed"
)

// Emitter publishes identity events through a Kafka producer. It satisfies
// the pipeline's event sink.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// UserCreated emits a user.created event for a first sighting.
func (e *Emitter) UserCreated(ctx context.Context, user *models.User, source models.Source) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.UserCreated")
	defer span.End()

	e.publish(ctx, &kafka.IdentityEvent{
		EventType: EventUserCreated,
		UserID:    user.UserID,
		Email:     user.Email,
		Source:    source,
	})
}

// UserSeen emits a user.seen event for a repeat sighting.
func (e *Emitter) UserSeen(ctx context.Context, user *models.User, source models.Source) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.UserSeen")
	defer span.End()

	e.publish(ctx, &kafka.IdentityEvent{
		EventType: EventUserSeen,
		UserID:    user.UserID,
		Email:     user.Email,
		Source:    source,
	})
}

// EdgeCreated emits an edge.created event for a new canonical edge.
func (e *Emitter) EdgeCreated(ctx context.Context, edge relationships.Edge, source models.Source) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EdgeCreated")
	defer span.End()

	err := e.producer.PublishRelationshipEvent(ctx, &kafka.RelationshipEvent{
		EventType: EventEdgeCreated,
		Kind:      edge.Kind,
		FromID:    edge.FromID,
		ToID:      edge.ToID,
		Status:    edge.Status,
		Name:      edge.Name,
		Priority:  edge.Priority,
		Source:    source,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("kind", edge.Kind).Error("Failed to emit edge.created event")
	}
}

// BatchCompleted emits a batch.completed event with the batch summary.
func (e *Emitter) BatchCompleted(ctx context.Context, source models.Source, summary *models.BatchSummary) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.BatchCompleted")
	defer span.End()

	err := e.producer.PublishBatchEvent(ctx, &kafka.BatchEvent{
		EventType: EventBatchCompleted,
		Source:    source,
		Summary:   summary,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("source", source).Error("Failed to emit batch.completed event")
	}
}

func (e *Emitter) publish(ctx context.Context, event *kafka.IdentityEvent) {
	if err := e.producer.PublishIdentityEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": event.EventType,
			"user_id":    event.UserID,
		}).Error("Failed to emit identity event")
	}
}
