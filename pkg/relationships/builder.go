// Package relationships turns raw edge references (friend emails, likes,
// messages, hobby tokens) into canonical rows. Edge targets referenced by
// email are resolved to shell users first, so edges never dangle.
package relationships

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/repositories/friendship"
	"github.com/Ramsey-B/fern/pkg/gateway"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalize"
	"github.com/Ramsey-B/fern/pkg/resolver"
)

// Edge kinds carried on an Outcome.
const (
	EdgeFriendship = "friendship"
	EdgeLike       = "like"
	EdgeMessage    = "message"
	EdgeHobby      = "hobby"
)

// Edge describes an applied canonical edge for downstream eventing and graph
// projection.
type Edge struct {
	Kind     string `json:"kind"`
	FromID   string `json:"from_id"`
	ToID     string `json:"to_id"`
	Status   string `json:"status,omitempty"`
	Name     string `json:"name,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// Outcome reports what one edge operation did so the pipeline can tally it.
// Fields irrelevant to an operation stay zero.
type Outcome struct {
	// Applied is true when a new edge or link row was written.
	Applied bool
	// Dropped is true when the edge was discarded on purpose (self edge).
	Dropped bool
	// HobbyCreated is true when AttachHobby created the hobby row itself.
	HobbyCreated bool
	// Shells counts shell user resolutions performed for the edge target.
	Shells models.EntityCounts
	// ParseFailures counts fields that could not be parsed and were stored
	// absent.
	ParseFailures int
	// Edge carries the applied edge, nil when nothing was written.
	Edge *Edge
}

type Builder struct {
	gateway  gateway.Gateway
	resolver *resolver.Resolver
	logger   ectologger.Logger
}

func NewBuilder(gw gateway.Gateway, res *resolver.Resolver, logger ectologger.Logger) *Builder {
	return &Builder{
		gateway:  gw,
		resolver: res,
		logger:   logger,
	}
}

// AttachHobby parses one hobby token and links it to the user. A malformed
// token (bad priority) is a parse failure; the token is dropped and the
// record continues.
func (b *Builder) AttachHobby(ctx context.Context, userID, token string) (Outcome, error) {
	var out Outcome

	name, priority, err := normalize.ParseHobbyToken(token)
	if err != nil {
		b.logger.WithContext(ctx).WithError(err).WithField("token", token).Warn("Dropping unparseable hobby token")
		out.ParseFailures++
		out.Dropped = true
		return out, nil
	}
	if name == "" {
		out.Dropped = true
		return out, nil
	}

	// Hobby names are capitalized uniformly so the same hobby collapses no
	// matter which source mentioned it first.
	h, created, err := b.resolver.ResolveHobby(ctx, normalize.Capitalize(name))
	if err != nil {
		return out, err
	}
	out.HobbyCreated = created

	linked, err := b.gateway.LinkHobby(ctx, userID, h.HobbyID, priority)
	if err != nil {
		return out, err
	}
	out.Applied = linked
	if linked {
		out.Edge = &Edge{Kind: EdgeHobby, FromID: userID, ToID: h.HobbyID, Name: h.Name, Priority: priority}
	}
	return out, nil
}

// AddFriendship resolves the friend's email to a shell user and records the
// undirected edge. A friend email resolving to the user themselves is
// dropped.
func (b *Builder) AddFriendship(ctx context.Context, userID, friendEmail string) (Outcome, error) {
	var out Outcome

	friendEmail = strings.TrimSpace(friendEmail)
	if friendEmail == "" {
		out.Dropped = true
		return out, nil
	}

	friend, created, err := b.resolver.ResolveShellUser(ctx, friendEmail)
	if err != nil {
		return out, err
	}
	out.Shells.Record(created)

	if friend.UserID == userID {
		out.Dropped = true
		return out, nil
	}

	applied, err := b.gateway.UpsertFriendship(ctx, userID, friend.UserID, friendship.DefaultStatus)
	if err != nil {
		return out, err
	}
	out.Applied = applied
	if applied {
		out.Edge = &Edge{Kind: EdgeFriendship, FromID: userID, ToID: friend.UserID, Status: friendship.DefaultStatus}
	}
	return out, nil
}

// RecordLike resolves the liked email to a shell user and records the
// directed edge. An unparseable timestamp is stored absent.
func (b *Builder) RecordLike(ctx context.Context, userID string, raw models.RawLike) (Outcome, error) {
	var out Outcome

	likedEmail := strings.TrimSpace(raw.LikedEmail)
	if likedEmail == "" {
		out.Dropped = true
		return out, nil
	}

	likee, created, err := b.resolver.ResolveShellUser(ctx, likedEmail)
	if err != nil {
		return out, err
	}
	out.Shells.Record(created)

	if likee.UserID == userID {
		out.Dropped = true
		return out, nil
	}

	likeTime, err := normalize.ParseTimestamp("like_time", raw.Timestamp)
	if err != nil {
		b.logger.WithContext(ctx).WithError(err).Warn("Storing like without timestamp")
		out.ParseFailures++
	}

	applied, err := b.gateway.CreateLike(ctx, models.CreateLikeRequest{
		LikerID:  userID,
		LikeeID:  likee.UserID,
		Status:   raw.Status,
		LikeTime: likeTime,
	})
	if err != nil {
		return out, err
	}
	out.Applied = applied
	if applied {
		out.Edge = &Edge{Kind: EdgeLike, FromID: userID, ToID: likee.UserID, Status: raw.Status}
	}
	return out, nil
}

// RecordMessage resolves the receiver email to a shell user and appends the
// message. An unparseable timestamp is stored absent.
func (b *Builder) RecordMessage(ctx context.Context, userID string, raw models.RawMessage) (Outcome, error) {
	var out Outcome

	receiverEmail := strings.TrimSpace(raw.ReceiverEmail)
	if receiverEmail == "" {
		out.Dropped = true
		return out, nil
	}

	receiver, created, err := b.resolver.ResolveShellUser(ctx, receiverEmail)
	if err != nil {
		return out, err
	}
	out.Shells.Record(created)

	if receiver.UserID == userID {
		out.Dropped = true
		return out, nil
	}

	sendTime, err := normalize.ParseTimestamp("send_time", raw.Timestamp)
	if err != nil {
		b.logger.WithContext(ctx).WithError(err).Warn("Storing message without timestamp")
		out.ParseFailures++
	}

	var conversationID *string
	if raw.ConversationID != "" {
		conversationID = &raw.ConversationID
	}

	if _, err := b.gateway.CreateMessage(ctx, models.CreateMessageRequest{
		ConversationID: conversationID,
		SenderID:       userID,
		ReceiverID:     receiver.UserID,
		MessageText:    raw.Message,
		SendTime:       sendTime,
	}); err != nil {
		return out, err
	}
	out.Applied = true
	out.Edge = &Edge{Kind: EdgeMessage, FromID: userID, ToID: receiver.UserID}
	return out, nil
}
