package repository_test

import (
	"context"
	"testing"

	"campus-social/internal/model"
	"campus-social/internal/repository"
	"campus-social/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendshipRepository_PairIsUnique(t *testing.T) {
	orm := testutil.NewDB(t)
	repo := repository.NewFriendshipRepository(orm)
	ctx := context.Background()

	a := testutil.CreateUser(t, orm)
	b := testutil.CreateUser(t, orm)

	require.NoError(t, repo.Create(ctx, &model.Friendship{UserID: a.ID, FriendID: b.ID, Status: model.FriendshipPending}))
	err := repo.Create(ctx, &model.Friendship{UserID: b.ID, FriendID: a.ID, Status: model.FriendshipPending})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Equal(t, int64(1), testutil.CountFriendships(t, orm))
}

func TestFriendshipRepository_GetPairEitherDirection(t *testing.T) {
	orm := testutil.NewDB(t)
	repo := repository.NewFriendshipRepository(orm)
	ctx := context.Background()

	a := testutil.CreateUser(t, orm)
	b := testutil.CreateUser(t, orm)
	c := testutil.CreateUser(t, orm)
	f := testutil.Request(t, orm, a, b)

	got, err := repo.GetPair(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)

	_, err = repo.GetPair(ctx, a.ID, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFriendshipRepository_Queries(t *testing.T) {
	orm := testutil.NewDB(t)
	repo := repository.NewFriendshipRepository(orm)
	ctx := context.Background()

	me := testutil.CreateUser(t, orm)
	friend := testutil.CreateUser(t, orm)
	incoming := testutil.CreateUser(t, orm)
	outgoing := testutil.CreateUser(t, orm)
	stranger := testutil.CreateUser(t, orm)

	testutil.Befriend(t, orm, friend, me)
	testutil.Request(t, orm, incoming, me)
	testutil.Request(t, orm, me, outgoing)
	testutil.Befriend(t, orm, friend, stranger)

	relations, err := repo.RelationsOf(ctx, me.ID)
	require.NoError(t, err)
	assert.Len(t, relations, 3)

	accepted, err := repo.AcceptedOf(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, friend.ID, accepted[0].Other(me.ID))

	touching, err := repo.AcceptedTouching(ctx, []uint{me.ID, stranger.ID})
	require.NoError(t, err)
	assert.Len(t, touching, 2)

	none, err := repo.AcceptedTouching(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	pending, err := repo.IncomingPending(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, incoming.ID, pending[0].UserID)

	targets, err := repo.OutgoingPendingTargets(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{outgoing.ID}, targets)
}

func TestFriendshipRepository_DeleteAllowsRecreate(t *testing.T) {
	orm := testutil.NewDB(t)
	repo := repository.NewFriendshipRepository(orm)
	ctx := context.Background()

	a := testutil.CreateUser(t, orm)
	b := testutil.CreateUser(t, orm)
	f := testutil.Request(t, orm, a, b)

	require.NoError(t, repo.Delete(ctx, f))
	assert.Equal(t, int64(0), testutil.CountFriendships(t, orm))
	require.NoError(t, repo.Create(ctx, &model.Friendship{UserID: a.ID, FriendID: b.ID, Status: model.FriendshipPending}))
}
