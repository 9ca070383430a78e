package message

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Repository stores the append-only message log. Messages carry no natural
// key, so replaying a feed duplicates them; batch idempotence comes from the
// surrounding transaction, not from this table.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create appends one message.
func (r *Repository) Create(ctx context.Context, req models.CreateMessageRequest) (*models.Message, error) {
	ctx, span := tracing.StartSpan(ctx, "message.Repository.Create")
	defer span.End()

	if req.SenderID == req.ReceiverID {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "self message is not allowed")
	}

	msg := models.Message{
		MessageID:      uuid.New().String(),
		ConversationID: req.ConversationID,
		SenderID:       req.SenderID,
		ReceiverID:     req.ReceiverID,
		MessageText:    req.MessageText,
		SendTime:       req.SendTime,
		CreatedAt:      time.Now().UTC(),
	}

	query := `
		INSERT INTO messages (message_id, conversation_id, sender_id, receiver_id, message_text, send_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	exec := database.ExecutorFromContext(ctx, r.db)
	_, err := exec.ExecContext(ctx, query,
		msg.MessageID, msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.MessageText, msg.SendTime, msg.CreatedAt,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"sender_id": req.SenderID, "receiver_id": req.ReceiverID}).Error("Failed to create message")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create message")
	}
	return &msg, nil
}

// Count returns the number of messages.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "message.Repository.Count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("messages")

	query, args := sb.Build()
	var count int
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count messages")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count messages")
	}
	return count, nil
}
