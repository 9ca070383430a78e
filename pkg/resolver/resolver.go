// Package resolver maps normalized values onto canonical rows through the
// gateway. It owns the identity rules: email is the only user key, the exact
// component tuple is the only address key, and the normalized name is the
// only hobby key.
package resolver

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/gateway"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalize"
)

type Resolver struct {
	gateway gateway.Gateway
	logger  ectologger.Logger
}

func NewResolver(gw gateway.Gateway, logger ectologger.Logger) *Resolver {
	return &Resolver{
		gateway: gw,
		logger:  logger,
	}
}

// ResolveAddress returns the canonical address id for a key, creating the
// row on first sighting. An empty key resolves to no address at all.
func (r *Resolver) ResolveAddress(ctx context.Context, key models.AddressKey) (*string, bool, error) {
	if key.IsEmpty() {
		return nil, false, nil
	}

	addr, created, err := r.gateway.ResolveAddress(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return &addr.AddressID, created, nil
}

// ResolveUser returns the canonical user for the request's email, creating
// the row with the request's attributes on first sighting. A blank email can
// never be reconciled and is rejected.
func (r *Resolver) ResolveUser(ctx context.Context, req models.CreateUserRequest) (*models.User, bool, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return nil, false, models.ErrEmailRequired
	}
	return r.gateway.ResolveUser(ctx, req)
}

// ResolveShellUser resolves a user referenced only by email, as friend lists
// and like/message targets do. A new row gets its names derived from the
// email local part; an existing row is returned untouched.
func (r *Resolver) ResolveShellUser(ctx context.Context, email string) (*models.User, bool, error) {
	first, last := normalize.SplitNameFromEmail(email)
	return r.ResolveUser(ctx, models.CreateUserRequest{
		FirstName: normalize.Capitalize(first),
		LastName:  normalize.Capitalize(last),
		Email:     email,
	})
}

// ResolveHobby returns the canonical hobby for a normalized name, creating
// it on first sighting.
func (r *Resolver) ResolveHobby(ctx context.Context, name string) (*models.Hobby, bool, error) {
	return r.gateway.ResolveHobby(ctx, name)
}
