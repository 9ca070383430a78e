package resolver

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/gateway"
	"github.com/Ramsey-B/fern/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func strPtr(s string) *string {
	return &s
}

func TestResolveUserFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	res := NewResolver(gateway.NewMemoryGateway(), testLogger())

	first, created, err := res.ResolveUser(ctx, models.CreateUserRequest{
		FirstName: "Martin",
		LastName:  "Forster",
		Email:     "martin.forster@x.test",
		Phone:     strPtr("+490201123456"),
	})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := res.ResolveUser(ctx, models.CreateUserRequest{
		FirstName: "Other",
		LastName:  "Name",
		Email:     "martin.forster@x.test",
		Phone:     strPtr("000"),
	})
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, "Martin", second.FirstName)
	assert.Equal(t, "Forster", second.LastName)
	require.NotNil(t, second.Phone)
	assert.Equal(t, "+490201123456", *second.Phone)
}

func TestResolveUserRequiresEmail(t *testing.T) {
	res := NewResolver(gateway.NewMemoryGateway(), testLogger())

	_, _, err := res.ResolveUser(context.Background(), models.CreateUserRequest{
		FirstName: "No",
		LastName:  "Email",
		Email:     "   ",
	})
	require.ErrorIs(t, err, models.ErrEmailRequired)
}

func TestResolveAddress(t *testing.T) {
	ctx := context.Background()
	res := NewResolver(gateway.NewMemoryGateway(), testLogger())

	t.Run("empty key resolves to no address", func(t *testing.T) {
		id, created, err := res.ResolveAddress(ctx, models.AddressKey{})
		require.NoError(t, err)
		assert.Nil(t, id)
		assert.False(t, created)
	})

	t.Run("identical keys collapse onto one row", func(t *testing.T) {
		key := models.AddressKey{
			Street:  strPtr("Minslebener Str."),
			HouseNo: strPtr("0"),
			ZipCode: strPtr("46286"),
			City:    strPtr("Dorsten"),
		}

		id1, created, err := res.ResolveAddress(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, id1)
		assert.True(t, created)

		id2, created, err := res.ResolveAddress(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, id2)
		assert.False(t, created)
		assert.Equal(t, *id1, *id2)
	})

	t.Run("differing house number is a different row", func(t *testing.T) {
		id1, _, err := res.ResolveAddress(ctx, models.AddressKey{
			Street: strPtr("Hauptallee"), HouseNo: strPtr("1"), ZipCode: strPtr("12345"), City: strPtr("Berlin"),
		})
		require.NoError(t, err)
		id2, _, err := res.ResolveAddress(ctx, models.AddressKey{
			Street: strPtr("Hauptallee"), HouseNo: strPtr("2"), ZipCode: strPtr("12345"), City: strPtr("Berlin"),
		})
		require.NoError(t, err)
		assert.NotEqual(t, *id1, *id2)
	})
}

func TestResolveShellUser(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewMemoryGateway()
	res := NewResolver(gw, testLogger())

	u, created, err := res.ResolveShellUser(ctx, "ellen.wickern@x.test")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Ellen", u.FirstName)
	assert.Equal(t, "Wickern", u.LastName)
	assert.Nil(t, u.Phone)

	// A later full record must not overwrite the shell's identity row.
	full, created, err := res.ResolveUser(ctx, models.CreateUserRequest{
		FirstName: "Ellen",
		LastName:  "Wickern",
		Email:     "ellen.wickern@x.test",
		Phone:     strPtr("123"),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.UserID, full.UserID)
}

func TestResolveShellUserLocalPartWithoutDot(t *testing.T) {
	res := NewResolver(gateway.NewMemoryGateway(), testLogger())

	u, created, err := res.ResolveShellUser(context.Background(), "madonna@x.test")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "-", u.FirstName)
	assert.Equal(t, "Madonna", u.LastName)
}

func TestResolveHobby(t *testing.T) {
	ctx := context.Background()
	res := NewResolver(gateway.NewMemoryGateway(), testLogger())

	h1, created, err := res.ResolveHobby(ctx, "Kochen")
	require.NoError(t, err)
	assert.True(t, created)

	h2, created, err := res.ResolveHobby(ctx, "Kochen")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, h1.HobbyID, h2.HobbyID)
}
