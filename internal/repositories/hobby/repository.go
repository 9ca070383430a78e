package hobby

import (
	"context"
	"database/sql"
	"errors"
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

// Repository handles the hobby taxonomy, unique by name.
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

// Upsert resolves a hobby by its normalized name, inserting it on first
// sighting.
func (r *Repository) Upsert(ctx context.Context, name string) (*models.Hobby, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "hobby.Repository.Upsert")
	defer span.End()

	if name == "" {
		return nil, false, httperror.NewHTTPError(http.StatusBadRequest, "hobby name is required")
	}

	query := `
		WITH upsert AS (
			INSERT INTO hobbies (hobby_id, name, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (name)
			DO UPDATE SET name = hobbies.name
			RETURNING hobby_id, name, created_at, (xmax = 0) AS inserted
		)
		SELECT * FROM upsert
	`

	var result struct {
		models.Hobby
		Inserted bool `db:"inserted"`
	}

	exec := database.ExecutorFromContext(ctx, r.db)
	err := exec.GetContext(ctx, &result, query, uuid.New().String(), name, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.WithContext(ctx).WithField("name", name).Error("Hobby upsert neither inserted nor found a row")
			return nil, false, models.ErrConflictRace
		}
		r.logger.WithContext(ctx).WithError(err).WithField("name", name).Error("Failed to upsert hobby")
		return nil, false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert hobby")
	}

	return &result.Hobby, result.Inserted, nil
}

// Count returns the number of distinct hobbies.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "hobby.Repository.Count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("hobbies")

	query, args := sb.Build()
	var count int
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count hobbies")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count hobbies")
	}
	return count, nil
}
