package friendship

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// DefaultStatus is the status stored on edges imported from the document
// feed, which carries bare friend lists.
const DefaultStatus = "friends"

// Repository stores undirected friendship edges as ordered (low, high) pairs.
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

// Upsert records a friendship between two users. The pair is normalized so
// both directions land on the same row. Returns true when a new edge was
// created.
func (r *Repository) Upsert(ctx context.Context, userID1, userID2, status string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "friendship.Repository.Upsert")
	defer span.End()

	if userID1 == userID2 {
		return false, httperror.NewHTTPError(http.StatusBadRequest, "self friendship is not allowed")
	}

	low, high := userID1, userID2
	if low > high {
		low, high = high, low
	}

	query := `
		INSERT INTO friendships (user_id_low, user_id_high, status, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id_low, user_id_high) DO NOTHING
	`

	exec := database.ExecutorFromContext(ctx, r.db)
	res, err := exec.ExecContext(ctx, query, low, high, status, time.Now().UTC())
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"user_id_low": low, "user_id_high": high}).Error("Failed to upsert friendship")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert friendship")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read affected rows for friendship")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert friendship")
	}
	return affected > 0, nil
}

// ListByUser returns every friendship edge touching a user.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.Friendship, error) {
	ctx, span := tracing.StartSpan(ctx, "friendship.Repository.ListByUser")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("user_id_low", "user_id_high", "status", "created_at")
	sb.From("friendships")
	sb.Where(sb.Or(sb.Equal("user_id_low", userID), sb.Equal("user_id_high", userID)))

	query, args := sb.Build()
	var edges []models.Friendship
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.SelectContext(ctx, &edges, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("Failed to list friendships")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list friendships")
	}
	return edges, nil
}

// Count returns the number of friendship edges.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "friendship.Repository.Count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("friendships")

	query, args := sb.Build()
	var count int
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count friendships")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count friendships")
	}
	return count, nil
}
