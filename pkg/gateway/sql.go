package gateway

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/repositories/address"
	"github.com/Ramsey-B/fern/internal/repositories/friendship"
	"github.com/Ramsey-B/fern/internal/repositories/hobby"
	"github.com/Ramsey-B/fern/internal/repositories/like"
	"github.com/Ramsey-B/fern/internal/repositories/message"
	"github.com/Ramsey-B/fern/internal/repositories/user"
	"github.com/Ramsey-B/fern/internal/repositories/userhobby"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// SQLGateway composes the table repositories behind the Gateway interface.
type SQLGateway struct {
	db     database.DB
	logger ectologger.Logger

	addresses   *address.Repository
	users       *user.Repository
	hobbies     *hobby.Repository
	userHobbies *userhobby.Repository
	friendships *friendship.Repository
	likes       *like.Repository
	messages    *message.Repository
}

func NewSQLGateway(db database.DB, logger ectologger.Logger) *SQLGateway {
	return &SQLGateway{
		db:          db,
		logger:      logger,
		addresses:   address.NewRepository(db, logger),
		users:       user.NewRepository(db, logger),
		hobbies:     hobby.NewRepository(db, logger),
		userHobbies: userhobby.NewRepository(db, logger),
		friendships: friendship.NewRepository(db, logger),
		likes:       like.NewRepository(db, logger),
		messages:    message.NewRepository(db, logger),
	}
}

func (g *SQLGateway) ResolveAddress(ctx context.Context, key models.AddressKey) (*models.Address, bool, error) {
	return g.addresses.Upsert(ctx, key)
}

func (g *SQLGateway) ResolveUser(ctx context.Context, req models.CreateUserRequest) (*models.User, bool, error) {
	return g.users.Upsert(ctx, req)
}

func (g *SQLGateway) ResolveHobby(ctx context.Context, name string) (*models.Hobby, bool, error) {
	return g.hobbies.Upsert(ctx, name)
}

func (g *SQLGateway) LinkHobby(ctx context.Context, userID, hobbyID string, priority int) (bool, error) {
	return g.userHobbies.Link(ctx, userID, hobbyID, priority)
}

func (g *SQLGateway) UpsertFriendship(ctx context.Context, userID1, userID2, status string) (bool, error) {
	return g.friendships.Upsert(ctx, userID1, userID2, status)
}

func (g *SQLGateway) CreateLike(ctx context.Context, req models.CreateLikeRequest) (bool, error) {
	return g.likes.Create(ctx, req)
}

func (g *SQLGateway) CreateMessage(ctx context.Context, req models.CreateMessageRequest) (*models.Message, error) {
	return g.messages.Create(ctx, req)
}

func (g *SQLGateway) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return g.users.GetByEmail(ctx, email)
}

// Stats reads the current row counts outside of any batch transaction.
func (g *SQLGateway) Stats(ctx context.Context) (*Stats, error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.SQLGateway.Stats")
	defer span.End()

	var stats Stats
	var err error
	if stats.Users, err = g.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Addresses, err = g.addresses.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Hobbies, err = g.hobbies.Count(ctx); err != nil {
		return nil, err
	}
	if stats.HobbyLinks, err = g.userHobbies.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Friendships, err = g.friendships.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Likes, err = g.likes.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Messages, err = g.messages.Count(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}

// WithinBatch opens one transaction, runs fn with it carried on the context
// and commits on success. Any error from fn rolls the whole batch back, so a
// re-run starts from the pre-batch state.
func (g *SQLGateway) WithinBatch(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, span := tracing.StartSpan(ctx, "gateway.SQLGateway.WithinBatch")
	defer span.End()

	ctx, tx, err := g.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			g.logger.WithContext(ctx).WithError(rbErr).Error("Failed to roll back batch transaction")
		}
		return err
	}

	return tx.Commit(ctx)
}
