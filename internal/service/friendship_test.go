package service

import (
	"context"
	"testing"
	"time"

	"campus-social/internal/model"
	"campus-social/internal/repository"
	"campus-social/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type friendshipFixture struct {
	orm         *gorm.DB
	svc         *FriendshipService
	notifier    *recordingNotifier
	invalidated *recordingInvalidator
}

func newFriendshipFixture(t *testing.T) *friendshipFixture {
	orm := testutil.NewDB(t)
	f := &friendshipFixture{
		orm:         orm,
		notifier:    &recordingNotifier{},
		invalidated: &recordingInvalidator{},
	}
	f.svc = NewFriendshipService(
		repository.NewUserRepository(orm),
		repository.NewFriendshipRepository(orm),
		f.notifier,
		f.invalidated,
	)
	return f
}

func TestSendRequest(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, f.orm)
	b := testutil.CreateUser(t, f.orm)

	friendship, err := f.svc.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipPending, friendship.Status)
	assert.Equal(t, a.ID, friendship.UserID)
	assert.Equal(t, b.ID, friendship.FriendID)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, sentNotification{UserID: b.ID, Kind: model.NotificationFriendRequest, RelatedID: a.ID}, f.notifier.sent[0])
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, f.invalidated.ids)
}

func TestSendRequest_Rejections(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, f.orm)
	b := testutil.CreateUser(t, f.orm)
	friend := testutil.CreateUser(t, f.orm)
	inactive := testutil.CreateUser(t, f.orm)
	testutil.Deactivate(t, f.orm, inactive)
	testutil.Befriend(t, f.orm, a, friend)
	testutil.Request(t, f.orm, b, a)

	tests := []struct {
		name     string
		target   uint
		wantErr  error
		wantKind ErrorKind
	}{
		{"self", a.ID, ErrSelfRequest, KindInvalidState},
		{"unknown user", 9999, ErrUserNotFound, KindNotFound},
		{"inactive user", inactive.ID, ErrUserNotFound, KindNotFound},
		{"already friends", friend.ID, ErrAlreadyFriends, KindInvalidState},
		{"reverse pending", b.ID, ErrRequestAlreadyPending, KindInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.CountFriendships(t, f.orm)
			_, err := f.svc.SendRequest(ctx, a.ID, tt.target)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.Equal(t, before, testutil.CountFriendships(t, f.orm))
		})
	}
	assert.Empty(t, f.notifier.sent)
}

func TestSendRequest_PendingEitherDirection(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, f.orm)
	b := testutil.CreateUser(t, f.orm)

	_, err := f.svc.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	_, err = f.svc.SendRequest(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrRequestAlreadyPending)
	_, err = f.svc.SendRequest(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, ErrRequestAlreadyPending)

	assert.Equal(t, int64(1), testutil.CountFriendships(t, f.orm))
}

func TestAcceptRequest(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, f.orm)
	b := testutil.CreateUser(t, f.orm)
	testutil.Request(t, f.orm, a, b)

	friendship, err := f.svc.AcceptRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipAccepted, friendship.Status)

	status, err := f.svc.RelationStatus(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, RelationAccepted, status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, sentNotification{UserID: a.ID, Kind: model.NotificationFriendAccept, RelatedID: b.ID}, f.notifier.sent[0])
}

func TestAcceptRequest_Rejections(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, f.orm)
	b := testutil.CreateUser(t, f.orm)
	c := testutil.CreateUser(t, f.orm)
	d := testutil.CreateUser(t, f.orm)
	testutil.Request(t, f.orm, a, b)
	accepted := testutil.Befriend(t, f.orm, c, d)

	// 没有请求
	_, err := f.svc.AcceptRequest(ctx, c.ID, a.ID)
	assert.ErrorIs(t, err, ErrRequestNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	// 已经是好友
	_, err = f.svc.AcceptRequest(ctx, d.ID, c.ID)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	// 发起方不能接受自己的请求
	_, err = f.svc.AcceptRequest(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotRequestRecipient)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	var row model.Friendship
	require.NoError(t, f.orm.First(&row, accepted.ID).Error)
	assert.Equal(t, model.FriendshipAccepted, row.Status)

	status, err := f.svc.RelationStatus(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, RelationPendingReceived, status)
	assert.Empty(t, f.notifier.sent)
}

func TestDeclineThenResend(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, f.orm)
	b := testutil.CreateUser(t, f.orm)

	_, err := f.svc.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeclineRequest(ctx, b.ID, a.ID))
	assert.Equal(t, int64(0), testutil.CountFriendships(t, f.orm))

	err = f.svc.DeclineRequest(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	_, err = f.svc.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), testutil.CountFriendships(t, f.orm))
}

func TestRelationStatus(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, f.orm)
	b := testutil.CreateUser(t, f.orm)
	c := testutil.CreateUser(t, f.orm)
	testutil.Request(t, f.orm, a, b)

	tests := []struct {
		viewer, target uint
		want           RelationStatus
	}{
		{a.ID, a.ID, RelationSelf},
		{a.ID, b.ID, RelationPendingSent},
		{b.ID, a.ID, RelationPendingReceived},
		{a.ID, c.ID, RelationNone},
	}
	for _, tt := range tests {
		got, err := f.svc.RelationStatus(ctx, tt.viewer, tt.target)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestGetFriendsAndPendingRequests(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()
	me := testutil.CreateUser(t, f.orm, testutil.WithName("Linh", "Pham"))
	x := testutil.CreateUser(t, f.orm, testutil.WithName("Minh", "Le"))
	y := testutil.CreateUser(t, f.orm)
	z := testutil.CreateUser(t, f.orm, testutil.WithName("Quang", "Do"))
	testutil.Befriend(t, f.orm, me, x)
	testutil.Befriend(t, f.orm, y, me)
	testutil.Request(t, f.orm, z, me)

	friends, err := f.svc.GetFriends(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	ids := []uint{friends[0].UserID, friends[1].UserID}
	assert.ElementsMatch(t, []uint{x.ID, y.ID}, ids)
	for _, fr := range friends {
		assert.True(t, fr.IsFriend)
		assert.Equal(t, model.DefaultAvatar, fr.Avatar)
	}

	count, err := f.svc.GetFriendCount(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	requests, err := f.svc.GetPendingRequests(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, z.ID, requests[0].RequesterID)
	assert.Equal(t, "Quang Do", requests[0].RequesterName)
	assert.Equal(t, "2小时前", requests[0].TimeAgo)
}

func TestMutualFriendCount(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, f.orm)
	b := testutil.CreateUser(t, f.orm)
	c := testutil.CreateUser(t, f.orm)
	d := testutil.CreateUser(t, f.orm)
	testutil.Befriend(t, f.orm, a, c)
	testutil.Befriend(t, f.orm, c, b)
	testutil.Befriend(t, f.orm, a, d)
	testutil.Request(t, f.orm, d, b)

	ab, err := f.svc.MutualFriendCount(ctx, a.ID, b.ID)
	require.NoError(t, err)
	ba, err := f.svc.MutualFriendCount(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ab)
	assert.Equal(t, ab, ba)
}

func TestFriendshipService_StoreFailure(t *testing.T) {
	orm := testutil.NewDB(t)
	svc := NewFriendshipService(repository.NewUserRepository(orm), brokenFriendships{}, nil, nil)
	ctx := context.Background()
	a := testutil.CreateUser(t, orm)
	b := testutil.CreateUser(t, orm)

	_, err := svc.SendRequest(ctx, a.ID, b.ID)
	assert.Equal(t, KindTransientStoreFailure, KindOf(err))
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.GetFriends(ctx, a.ID)
	assert.Equal(t, KindTransientStoreFailure, KindOf(err))
}

func TestProfile(t *testing.T) {
	f := newFriendshipFixture(t)
	ctx := context.Background()
	target := testutil.CreateUser(t, f.orm, testutil.WithBio("hello"))
	viewer := testutil.CreateUser(t, f.orm)
	for i := 0; i < ProfileFriendsPreview+2; i++ {
		testutil.Befriend(t, f.orm, target, testutil.CreateUser(t, f.orm))
	}
	testutil.Request(t, f.orm, viewer, target)

	view, err := f.svc.Profile(ctx, viewer.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", view.User.Bio)
	assert.Len(t, view.Friends, ProfileFriendsPreview)
	assert.Equal(t, ProfileFriendsPreview+2, view.FriendCount)
	assert.Equal(t, RelationPendingSent, view.Relation)
	assert.False(t, view.IsOwnProfile)

	own, err := f.svc.Profile(ctx, target.ID, target.ID)
	require.NoError(t, err)
	assert.True(t, own.IsOwnProfile)
	assert.Equal(t, RelationSelf, own.Relation)

	_, err = f.svc.Profile(ctx, viewer.ID, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	testutil.Deactivate(t, f.orm, target)
	_, err = f.svc.Profile(ctx, viewer.ID, target.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
	_, err = f.svc.Profile(ctx, target.ID, target.ID)
	assert.NoError(t, err)
}
