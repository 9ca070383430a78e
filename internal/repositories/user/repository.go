package user

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

// Repository handles canonical user persistence. Email is the identity key;
// attributes are written once on first sighting and never overwritten.
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

// Upsert resolves a user by email, inserting the full attribute set on first
// sighting. On a repeat sighting the existing row is returned untouched, so
// the first source to mention an email owns its attributes.
func (r *Repository) Upsert(ctx context.Context, req models.CreateUserRequest) (*models.User, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "user.Repository.Upsert")
	defer span.End()

	if req.Email == "" {
		return nil, false, models.ErrEmailRequired
	}

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method": "Upsert",
		"email":  req.Email,
	})

	now := time.Now().UTC()
	query := `
		WITH upsert AS (
			INSERT INTO users (
				user_id, first_name, last_name, phone, email,
				gender, birth_date, address_id, interested_in, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (email)
			DO UPDATE SET updated_at = users.updated_at
			RETURNING
				user_id, first_name, last_name, phone, email,
				gender, birth_date, address_id, interested_in, created_at, updated_at,
				(xmax = 0) AS inserted
		)
		SELECT * FROM upsert
	`

	var result struct {
		models.User
		Inserted bool `db:"inserted"`
	}

	exec := database.ExecutorFromContext(ctx, r.db)
	err := exec.GetContext(ctx, &result, query,
		uuid.New().String(), req.FirstName, req.LastName, req.Phone, req.Email,
		req.Gender, req.BirthDate, req.AddressID, req.InterestedIn, now, now,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Error("User upsert neither inserted nor found a row")
			return nil, false, models.ErrConflictRace
		}
		log.WithError(err).Error("Failed to upsert user")
		return nil, false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert user")
	}

	return &result.User, result.Inserted, nil
}

// GetByEmail returns the canonical user for an email, or nil when none
// exists.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "user.Repository.GetByEmail")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(userColumns()...)
	sb.From("users")
	sb.Where(sb.Equal("email", email))
	sb.Limit(1)

	query, args := sb.Build()
	var users []models.User
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.SelectContext(ctx, &users, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("email", email).Error("Failed to get user by email")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get user")
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// GetByID returns one user row.
func (r *Repository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "user.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(userColumns()...)
	sb.From("users")
	sb.Where(sb.Equal("user_id", userID))

	query, args := sb.Build()
	var u models.User
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.GetContext(ctx, &u, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("Failed to get user")
		return nil, httperror.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return &u, nil
}

// Count returns the number of canonical users.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "user.Repository.Count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("users")

	query, args := sb.Build()
	var count int
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count users")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count users")
	}
	return count, nil
}

func userColumns() []string {
	return []string{
		"user_id", "first_name", "last_name", "phone", "email",
		"gender", "birth_date", "address_id", "interested_in", "created_at", "updated_at",
	}
}
