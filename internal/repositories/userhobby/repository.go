package userhobby

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

// Repository links users to hobbies. One link exists per (user, hobby); the
// first sighting's priority sticks.
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

// Link attaches a hobby to a user. Returns true when a new link row was
// created, false when the pair already existed.
func (r *Repository) Link(ctx context.Context, userID, hobbyID string, priority int) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "userhobby.Repository.Link")
	defer span.End()

	query := `
		INSERT INTO user_hobbies (user_id, hobby_id, priority, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, hobby_id) DO NOTHING
	`

	exec := database.ExecutorFromContext(ctx, r.db)
	res, err := exec.ExecContext(ctx, query, userID, hobbyID, priority, time.Now().UTC())
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"user_id": userID, "hobby_id": hobbyID}).Error("Failed to link hobby")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to link hobby")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read affected rows for hobby link")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to link hobby")
	}
	return affected > 0, nil
}

// ListByUser returns a user's hobby links.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.UserHobby, error) {
	ctx, span := tracing.StartSpan(ctx, "userhobby.Repository.ListByUser")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("user_id", "hobby_id", "priority", "created_at")
	sb.From("user_hobbies")
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("priority DESC")

	query, args := sb.Build()
	var links []models.UserHobby
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.SelectContext(ctx, &links, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("Failed to list hobby links")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list hobby links")
	}
	return links, nil
}

// Count returns the number of hobby links.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "userhobby.Repository.Count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("user_hobbies")

	query, args := sb.Build()
	var count int
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count hobby links")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count hobby links")
	}
	return count, nil
}
