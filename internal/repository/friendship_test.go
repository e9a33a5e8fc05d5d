package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funprofile/internal/models"
	"funprofile/internal/testutil"
)

func TestFriendshipRequestAndAccept(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewTestRedis(t)
	ctx := context.Background()

	alice := seedUser(t, db, "f_alice")
	bob := seedUser(t, db, "f_bob")

	repo := NewFriendshipRepository(db)

	f, err := repo.Request(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusPending, f.Status)

	pending, err := repo.PendingFor(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, alice.ID, pending[0].RequesterID)

	accepted, err := repo.Accept(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusAccepted, accepted.Status)

	ids, err := repo.FriendIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)
	ids, err = repo.FriendIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, ids)
}

func TestFriendshipRequestEdgeCases(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewTestRedis(t)
	ctx := context.Background()

	alice := seedUser(t, db, "e_alice")
	bob := seedUser(t, db, "e_bob")
	repo := NewFriendshipRepository(db)

	_, err := repo.Request(ctx, alice.ID, alice.ID)
	assert.True(t, models.IsCode(err, "VALIDATION_ERROR"))

	_, err = repo.Request(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Duplicate in the same direction is rejected.
	_, err = repo.Request(ctx, alice.ID, bob.ID)
	assert.True(t, models.IsCode(err, "VALIDATION_ERROR"))

	// The reverse direction accepts the pending request instead.
	f, err := repo.Request(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusAccepted, f.Status)

	// Accepting a request that does not exist fails.
	_, err = repo.Accept(ctx, alice.ID, bob.ID)
	assert.True(t, models.IsCode(err, "NOT_FOUND"))
}
