package like

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

// Repository stores directed like edges. The full value tuple
// (liker, likee, status, like_time) is unique so replays collapse while a
// genuinely new like of the same pair is kept.
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

// Create records one like edge. Returns true when a new row was created.
func (r *Repository) Create(ctx context.Context, req models.CreateLikeRequest) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "like.Repository.Create")
	defer span.End()

	if req.LikerID == req.LikeeID {
		return false, httperror.NewHTTPError(http.StatusBadRequest, "self like is not allowed")
	}

	query := `
		INSERT INTO likes (like_id, liker_id, likee_id, status, like_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (liker_id, likee_id, status, like_time) DO NOTHING
	`

	exec := database.ExecutorFromContext(ctx, r.db)
	res, err := exec.ExecContext(ctx, query,
		uuid.New().String(), req.LikerID, req.LikeeID, req.Status, req.LikeTime, time.Now().UTC(),
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"liker_id": req.LikerID, "likee_id": req.LikeeID}).Error("Failed to create like")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create like")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read affected rows for like")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create like")
	}
	return affected > 0, nil
}

// Count returns the number of like edges.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "like.Repository.Count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("likes")

	query, args := sb.Build()
	var count int
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count likes")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count likes")
	}
	return count, nil
}
