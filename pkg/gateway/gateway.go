// Package gateway is the single write surface of the canonical store. The
// pipeline and resolver talk to this interface only, so the storage wiring
// can be swapped for an in-memory fake in tests.
package gateway

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Stats is a point-in-time row count per canonical table.
type Stats struct {
	Users       int `json:"users"`
	Addresses   int `json:"addresses"`
	Hobbies     int `json:"hobbies"`
	HobbyLinks  int `json:"hobby_links"`
	Friendships int `json:"friendships"`
	Likes       int `json:"likes"`
	Messages    int `json:"messages"`
}

// Gateway exposes every reconciliation primitive. All Resolve/Create calls
// issued inside a WithinBatch callback share one transaction and are applied
// or rolled back together.
type Gateway interface {
	ResolveAddress(ctx context.Context, key models.AddressKey) (*models.Address, bool, error)
	ResolveUser(ctx context.Context, req models.CreateUserRequest) (*models.User, bool, error)
	ResolveHobby(ctx context.Context, name string) (*models.Hobby, bool, error)
	LinkHobby(ctx context.Context, userID, hobbyID string, priority int) (bool, error)
	UpsertFriendship(ctx context.Context, userID1, userID2, status string) (bool, error)
	CreateLike(ctx context.Context, req models.CreateLikeRequest) (bool, error)
	CreateMessage(ctx context.Context, req models.CreateMessageRequest) (*models.Message, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	Stats(ctx context.Context) (*Stats, error)
	WithinBatch(ctx context.Context, fn func(ctx context.Context) error) error
}
