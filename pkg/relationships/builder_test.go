package relationships

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/gateway"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/resolver"
)

func newTestBuilder() (*Builder, *gateway.MemoryGateway, *resolver.Resolver) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	gw := gateway.NewMemoryGateway()
	res := resolver.NewResolver(gw, logger)
	return NewBuilder(gw, res, logger), gw, res
}

func mustResolveUser(t *testing.T, res *resolver.Resolver, email string) *models.User {
	t.Helper()
	u, _, err := res.ResolveShellUser(context.Background(), email)
	require.NoError(t, err)
	return u
}

func TestAttachHobby(t *testing.T) {
	ctx := context.Background()
	b, gw, res := newTestBuilder()
	u := mustResolveUser(t, res, "martin.forster@x.test")

	t.Run("token with priority", func(t *testing.T) {
		out, err := b.AttachHobby(ctx, u.UserID, "Kochen %80%")
		require.NoError(t, err)
		assert.True(t, out.Applied)
		assert.True(t, out.HobbyCreated)
	})

	t.Run("repeat link is a no-op", func(t *testing.T) {
		out, err := b.AttachHobby(ctx, u.UserID, "Kochen %95%")
		require.NoError(t, err)
		assert.False(t, out.Applied)
		assert.False(t, out.HobbyCreated)
	})

	t.Run("token without priority", func(t *testing.T) {
		out, err := b.AttachHobby(ctx, u.UserID, "Schreiben")
		require.NoError(t, err)
		assert.True(t, out.Applied)
		assert.True(t, out.HobbyCreated)
	})

	t.Run("bad priority is a parse failure", func(t *testing.T) {
		out, err := b.AttachHobby(ctx, u.UserID, "Kochen %200%")
		require.NoError(t, err)
		assert.True(t, out.Dropped)
		assert.Equal(t, 1, out.ParseFailures)
		assert.False(t, out.Applied)
	})

	stats, err := gw.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Hobbies)
	assert.Equal(t, 2, stats.HobbyLinks)
}

func TestAddFriendship(t *testing.T) {
	ctx := context.Background()
	b, gw, res := newTestBuilder()
	martin := mustResolveUser(t, res, "martin.forster@x.test")
	ellen := mustResolveUser(t, res, "ellen.wickern@x.test")

	out, err := b.AddFriendship(ctx, martin.UserID, ellen.Email)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, 0, out.Shells.Created)
	assert.Equal(t, 1, out.Shells.Reused)

	// The reverse direction lands on the same row.
	out, err = b.AddFriendship(ctx, ellen.UserID, martin.Email)
	require.NoError(t, err)
	assert.False(t, out.Applied)

	// A friend not seen before becomes a shell user.
	out, err = b.AddFriendship(ctx, martin.UserID, "jan.koch@x.test")
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, 1, out.Shells.Created)

	// Self friendship is dropped, not an error.
	out, err = b.AddFriendship(ctx, martin.UserID, martin.Email)
	require.NoError(t, err)
	assert.True(t, out.Dropped)
	assert.False(t, out.Applied)

	// An empty friend email is skipped silently.
	out, err = b.AddFriendship(ctx, martin.UserID, "  ")
	require.NoError(t, err)
	assert.True(t, out.Dropped)
	assert.False(t, out.Applied)

	stats, err := gw.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Friendships)
	assert.Equal(t, 3, stats.Users)
}

func TestRecordLike(t *testing.T) {
	ctx := context.Background()
	b, gw, res := newTestBuilder()
	martin := mustResolveUser(t, res, "martin.forster@x.test")

	raw := models.RawLike{
		LikedEmail: "ellen.wickern@x.test",
		Status:     "superlike",
		Timestamp:  "2024-03-17 07:39:29",
	}

	out, err := b.RecordLike(ctx, martin.UserID, raw)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, 1, out.Shells.Created)

	// The identical value tuple collapses on replay.
	out, err = b.RecordLike(ctx, martin.UserID, raw)
	require.NoError(t, err)
	assert.False(t, out.Applied)

	// A different timestamp is a genuinely new like.
	raw.Timestamp = "2024-03-18 09:00:00"
	out, err = b.RecordLike(ctx, martin.UserID, raw)
	require.NoError(t, err)
	assert.True(t, out.Applied)

	// An unparseable timestamp is stored absent.
	raw.Timestamp = "not a time"
	raw.Status = "like"
	out, err = b.RecordLike(ctx, martin.UserID, raw)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, 1, out.ParseFailures)

	// Self like is dropped.
	out, err = b.RecordLike(ctx, martin.UserID, models.RawLike{LikedEmail: martin.Email})
	require.NoError(t, err)
	assert.True(t, out.Dropped)

	stats, err := gw.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Likes)
}

func TestRecordMessage(t *testing.T) {
	ctx := context.Background()
	b, gw, res := newTestBuilder()
	martin := mustResolveUser(t, res, "martin.forster@x.test")

	raw := models.RawMessage{
		ConversationID: "conv-1",
		ReceiverEmail:  "ellen.wickern@x.test",
		Message:        "Hallo!",
		Timestamp:      "2024-03-17 07:39:29",
	}

	out, err := b.RecordMessage(ctx, martin.UserID, raw)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, 1, out.Shells.Created)

	// The log is append-only; the same message lands twice.
	out, err = b.RecordMessage(ctx, martin.UserID, raw)
	require.NoError(t, err)
	assert.True(t, out.Applied)

	msgs := gw.Messages()
	require.Len(t, msgs, 2)
	require.NotNil(t, msgs[0].ConversationID)
	assert.Equal(t, "conv-1", *msgs[0].ConversationID)
	require.NotNil(t, msgs[0].SendTime)

	// Missing conversation id stays absent.
	out, err = b.RecordMessage(ctx, martin.UserID, models.RawMessage{
		ReceiverEmail: "ellen.wickern@x.test",
		Message:       "nochmal",
	})
	require.NoError(t, err)
	assert.True(t, out.Applied)
	msgs = gw.Messages()
	assert.Nil(t, msgs[2].ConversationID)
	assert.Nil(t, msgs[2].SendTime)

	// Self message is dropped.
	out, err = b.RecordMessage(ctx, martin.UserID, models.RawMessage{ReceiverEmail: martin.Email})
	require.NoError(t, err)
	assert.True(t, out.Dropped)
	assert.Len(t, gw.Messages(), 3)
}
