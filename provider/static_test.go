package provider_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vireoco/authgate"
	"github.com/vireoco/authgate/provider"
)

func TestStaticStore_FetchIsCaseInsensitive(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("guess"), bcrypt.MinCost)
	require.NoError(t, err)

	store := provider.NewStaticStore()
	store.AddHashed(authgate.UserRecord{
		ID:         "user-123",
		Name:       "Alice",
		Roles:      []string{"test"},
		SecretHash: string(hash),
	})

	for _, username := range []string{"alice", "Alice", "ALICE"} {
		record, err := store.Fetch(context.Background(), username)
		require.NoError(t, err)
		assert.Equal(t, "user-123", record.ID)
	}
}

func TestStaticStore_FetchUnknown(t *testing.T) {
	store := provider.NewStaticStore()

	_, err := store.Fetch(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestStaticStore_ValidatesAgainstValidator(t *testing.T) {
	store := provider.NewStaticStore()
	store.AddHashed(authgate.UserRecord{
		ID:         "user-123",
		Name:       "alice",
		Roles:      []string{"test"},
		SecretHash: mustHash(t, "guess"),
	})

	validator := authgate.NewCredentialValidator(store)

	identity, err := validator.ValidateUser(context.Background(), "alice", "guess")
	require.NoError(t, err)
	assert.Equal(t, []string{"test"}, identity.Roles)

	_, err = validator.ValidateUser(context.Background(), "alice", "wrong")
	require.Error(t, err)
}

func TestDemoStore(t *testing.T) {
	store, err := provider.DemoStore()
	require.NoError(t, err)

	record, err := store.Fetch(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"test"}, record.Roles)
	require.NoError(t, authgate.CompareSecretAndHash("guess", record.SecretHash))
}

func mustHash(t *testing.T, secret string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}
