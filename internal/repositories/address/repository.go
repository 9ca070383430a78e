package address

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

// Repository handles canonical address persistence
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

// Upsert resolves an address by its exact natural key, inserting it on first
// sighting. The returned flag reports whether a new row was created.
//
// The statement is a single atomic INSERT...ON CONFLICT so two records
// carrying the same address in one batch cannot race a select-then-insert.
// The conflict target is declared NULLS NOT DISTINCT, so rows with absent
// components still collapse onto one canonical row.
func (r *Repository) Upsert(ctx context.Context, key models.AddressKey) (*models.Address, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "address.Repository.Upsert")
	defer span.End()

	query := `
		WITH upsert AS (
			INSERT INTO addresses (address_id, street, house_no, zip_code, city, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (street, house_no, zip_code, city)
			DO UPDATE SET street = addresses.street
			RETURNING address_id, street, house_no, zip_code, city, created_at,
				(xmax = 0) AS inserted
		)
		SELECT * FROM upsert
	`

	var result struct {
		models.Address
		Inserted bool `db:"inserted"`
	}

	exec := database.ExecutorFromContext(ctx, r.db)
	err := exec.GetContext(ctx, &result, query,
		uuid.New().String(), key.Street, key.HouseNo, key.ZipCode, key.City, time.Now().UTC(),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.WithContext(ctx).Error("Address upsert neither inserted nor found a row")
			return nil, false, models.ErrConflictRace
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"street": key.Street, "city": key.City}).Error("Failed to upsert address")
		return nil, false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert address")
	}

	return &result.Address, result.Inserted, nil
}

// GetByID returns one address row.
func (r *Repository) GetByID(ctx context.Context, addressID string) (*models.Address, error) {
	ctx, span := tracing.StartSpan(ctx, "address.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("address_id", "street", "house_no", "zip_code", "city", "created_at")
	sb.From("addresses")
	sb.Where(sb.Equal("address_id", addressID))

	query, args := sb.Build()
	var addr models.Address
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.GetContext(ctx, &addr, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("address_id", addressID).Error("Failed to get address")
		return nil, httperror.NewHTTPError(http.StatusNotFound, "address not found")
	}
	return &addr, nil
}

// Count returns the number of canonical addresses.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "address.Repository.Count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("addresses")

	query, args := sb.Build()
	var count int
	exec := database.ExecutorFromContext(ctx, r.db)
	if err := exec.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count addresses")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count addresses")
	}
	return count, nil
}
