package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
	"github.com/rocketscienceinc/whoisthemole/testing/suite"
)

func testIdentityRepository(t *testing.T, ctx context.Context, repo IdentityRepository) {
	t.Helper()

	// Given: an identity for one server
	alice := entity.Identity{Server: "http://game.local:8000", PlayerID: 3, Name: "Alice"}

	// When: it is saved and read back
	require.NoError(t, repo.Save(ctx, alice))
	got, err := repo.Get(ctx, alice.Server)

	// Then: the same identity comes back
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	// Then: other servers are unaffected
	_, err = repo.Get(ctx, "http://other:8000")
	require.ErrorIs(t, err, ErrIdentityNotFound)

	// When: a new join overwrites it
	bob := entity.Identity{Server: alice.Server, PlayerID: 4, Name: "Bob"}
	require.NoError(t, repo.Save(ctx, bob))
	got, err = repo.Get(ctx, alice.Server)
	require.NoError(t, err)
	assert.Equal(t, bob, got)

	// When: it is deleted
	require.NoError(t, repo.Delete(ctx, alice.Server))
	_, err = repo.Get(ctx, alice.Server)
	require.ErrorIs(t, err, ErrIdentityNotFound)

	// Then: deleting twice is fine
	require.NoError(t, repo.Delete(ctx, alice.Server))
}

func TestMemoryIdentityRepository(t *testing.T) {
	testIdentityRepository(t, context.Background(), NewMemoryIdentityRepository())
}

func TestRedisIdentityRepository(t *testing.T) {
	ctx, st := suite.New(t)

	testIdentityRepository(t, ctx, NewIdentityRepository(st.Storage))
}

func TestRedisIdentityRepository_CorruptValue(t *testing.T) {
	ctx, st := suite.New(t)

	// Given: garbage under the identity key
	require.NoError(t, st.Storage.Set(ctx, identityKey("http://game.local"), "{not json", 0).Err())

	// When: it is read
	_, err := NewIdentityRepository(st.Storage).Get(ctx, "http://game.local")

	// Then: it is a decode error, not a missing identity
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIdentityNotFound)
}
