package service

import (
	"context"
	"testing"
	"time"

	"campus-social/config"
	"campus-social/internal/repository"
	"campus-social/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSuggestionService(orm *gorm.DB, cache SuggestionCache) *SuggestionService {
	return NewSuggestionService(
		repository.NewUserRepository(orm),
		repository.NewFriendshipRepository(orm),
		cache,
		config.SuggestionConfig{Limit: 10, PoolCap: 500, CacheTTL: time.Minute},
	)
}

func TestSuggestions_MutualAndSameClass(t *testing.T) {
	orm := testutil.NewDB(t)
	svc := newSuggestionService(orm, nil)
	ctx := context.Background()

	a := testutil.CreateUser(t, orm, testutil.WithClass("K1", ""))
	b := testutil.CreateUser(t, orm, testutil.WithClass("K1", ""))
	c := testutil.CreateUser(t, orm)
	testutil.Befriend(t, orm, a, c)
	testutil.Befriend(t, orm, b, c)

	ranked, err := svc.rank(ctx, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, b.ID, ranked[0].User.ID)
	assert.Equal(t, 30, ranked[0].Score)
	assert.Equal(t, 1, ranked[0].MutualCount)

	records, err := svc.GetSuggestions(ctx, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].MutualFriendsCount)
	assert.Equal(t, "Class K1", records[0].Bio)
	assert.False(t, records[0].IsFriend)
}

func TestSuggestions_RecentAccount(t *testing.T) {
	orm := testutil.NewDB(t)
	svc := newSuggestionService(orm, nil)
	ctx := context.Background()

	a := testutil.CreateUser(t, orm, testutil.WithClass("K1", "Science"))
	d := testutil.CreateUser(t, orm, testutil.CreatedAt(time.Now().Add(-3*24*time.Hour)))

	ranked, err := svc.rank(ctx, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, d.ID, ranked[0].User.ID)
	assert.Equal(t, 2, ranked[0].Score)
}

func TestSuggestions_ExcludesSelfFriendsAndPending(t *testing.T) {
	orm := testutil.NewDB(t)
	svc := newSuggestionService(orm, nil)
	ctx := context.Background()

	me := testutil.CreateUser(t, orm)
	friend := testutil.CreateUser(t, orm)
	sent := testutil.CreateUser(t, orm)
	received := testutil.CreateUser(t, orm)
	inactive := testutil.CreateUser(t, orm)
	open := testutil.CreateUser(t, orm)
	testutil.Befriend(t, orm, friend, me)
	testutil.Request(t, orm, me, sent)
	testutil.Request(t, orm, received, me)
	testutil.Deactivate(t, orm, inactive)

	friends, excluded, err := svc.Graph().Relations(ctx, me.ID)
	require.NoError(t, err)
	for id := range friends {
		assert.True(t, excluded.Has(id))
	}
	assert.True(t, excluded.Has(me.ID))

	records, err := svc.GetSuggestions(ctx, me.ID, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, open.ID, records[0].UserID)
	assert.False(t, records[0].HasPendingRequest)
}

func TestSuggestions_OrderAndLimit(t *testing.T) {
	orm := testutil.NewDB(t)
	svc := newSuggestionService(orm, nil)
	ctx := context.Background()
	now := time.Now()

	me := testutil.CreateUser(t, orm, testutil.WithClass("K1", "Science"))
	hub := testutil.CreateUser(t, orm)
	testutil.Befriend(t, orm, me, hub)

	classmate := testutil.CreateUser(t, orm, testutil.WithClass("K1", "Science"))
	facultyMate := testutil.CreateUser(t, orm, testutil.WithClass("K2", "Science"))
	olderMutual := testutil.CreateUser(t, orm, testutil.CreatedAt(now.Add(-20*24*time.Hour)))
	newerMutual := testutil.CreateUser(t, orm, testutil.CreatedAt(now.Add(-10*24*time.Hour)))
	fresh := testutil.CreateUser(t, orm, testutil.CreatedAt(now.Add(-time.Hour)))
	stranger := testutil.CreateUser(t, orm, testutil.CreatedAt(now.Add(-60*24*time.Hour)))
	testutil.Befriend(t, orm, hub, olderMutual)
	testutil.Befriend(t, orm, newerMutual, hub)

	records, err := svc.GetSuggestions(ctx, me.ID, 10)
	require.NoError(t, err)
	got := make([]uint, 0, len(records))
	for _, r := range records {
		got = append(got, r.UserID)
	}
	assert.Equal(t, []uint{classmate.ID, newerMutual.ID, olderMutual.ID, facultyMate.ID, fresh.ID, stranger.ID}, got)

	top, err := svc.GetSuggestions(ctx, me.ID, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, classmate.ID, top[0].UserID)
}

func TestSuggestions_FriendOfFriendBeyondPoolCap(t *testing.T) {
	orm := testutil.NewDB(t)
	svc := NewSuggestionService(
		repository.NewUserRepository(orm),
		repository.NewFriendshipRepository(orm),
		nil,
		config.SuggestionConfig{Limit: 10, PoolCap: 2},
	)
	ctx := context.Background()
	now := time.Now()

	me := testutil.CreateUser(t, orm)
	f1 := testutil.CreateUser(t, orm)
	f2 := testutil.CreateUser(t, orm)
	old := testutil.CreateUser(t, orm, testutil.CreatedAt(now.Add(-90*24*time.Hour)))
	testutil.Befriend(t, orm, me, f1)
	testutil.Befriend(t, orm, me, f2)
	testutil.Befriend(t, orm, f1, old)
	testutil.Befriend(t, orm, old, f2)
	fresh1 := testutil.CreateUser(t, orm, testutil.CreatedAt(now.Add(-time.Hour)))
	testutil.CreateUser(t, orm, testutil.CreatedAt(now.Add(-2*time.Hour)))

	records, err := svc.GetSuggestions(ctx, me.ID, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, old.ID, records[0].UserID)
	assert.Equal(t, 2, records[0].MutualFriendsCount)
	assert.Equal(t, fresh1.ID, records[1].UserID)
}

func TestSocialGraph_ExcludedIDs(t *testing.T) {
	orm := testutil.NewDB(t)
	graph := NewSocialGraph(repository.NewFriendshipRepository(orm))
	ctx := context.Background()

	me := testutil.CreateUser(t, orm)
	friend := testutil.CreateUser(t, orm)
	sent := testutil.CreateUser(t, orm)
	received := testutil.CreateUser(t, orm)
	stranger := testutil.CreateUser(t, orm)
	testutil.Befriend(t, orm, friend, me)
	testutil.Request(t, orm, me, sent)
	testutil.Request(t, orm, received, me)

	excluded, err := graph.ExcludedIDs(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{me.ID, friend.ID, sent.ID, received.ID}, excluded.Slice())
	assert.False(t, excluded.Has(stranger.ID))

	friends, err := graph.FriendIDs(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{friend.ID}, friends.Slice())

	// 未知用户：好友集合为空，排除集合只有自己
	excluded, err = graph.ExcludedIDs(ctx, 9999)
	require.NoError(t, err)
	assert.Equal(t, []uint{9999}, excluded.Slice())
	friends, err = graph.FriendIDs(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, friends)

	_, err = NewSocialGraph(brokenFriendships{}).ExcludedIDs(ctx, me.ID)
	assert.Equal(t, KindTransientStoreFailure, KindOf(err))
}

func TestSocialGraph_FriendsOfFriends(t *testing.T) {
	orm := testutil.NewDB(t)
	graph := NewSocialGraph(repository.NewFriendshipRepository(orm))
	ctx := context.Background()

	me := testutil.CreateUser(t, orm)
	hub := testutil.CreateUser(t, orm)
	twoHop := testutil.CreateUser(t, orm)
	pending := testutil.CreateUser(t, orm)
	testutil.Befriend(t, orm, me, hub)
	testutil.Befriend(t, orm, hub, twoHop)
	testutil.Befriend(t, orm, pending, hub)
	testutil.Request(t, orm, me, pending)

	friends, excluded, err := graph.Relations(ctx, me.ID)
	require.NoError(t, err)
	result, err := graph.FriendsOfFriends(ctx, friends, excluded)
	require.NoError(t, err)
	assert.Equal(t, []uint{twoHop.ID}, result.Slice())
}

func TestSuggestions_Cache(t *testing.T) {
	orm := testutil.NewDB(t)
	cache := newMemCache()
	svc := newSuggestionService(orm, cache)
	friendships := NewFriendshipService(
		repository.NewUserRepository(orm),
		repository.NewFriendshipRepository(orm),
		nil,
		svc,
	)
	ctx := context.Background()

	me := testutil.CreateUser(t, orm)
	other := testutil.CreateUser(t, orm)

	first, err := svc.GetSuggestions(ctx, me.ID, 5)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Contains(t, cache.data, cacheKey(me.ID, 5))

	// 缓存命中时不重新计算
	testutil.CreateUser(t, orm)
	cached, err := svc.GetSuggestions(ctx, me.ID, 5)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// 关系变化后双方缓存失效
	_, err = friendships.SendRequest(ctx, me.ID, other.ID)
	require.NoError(t, err)
	assert.NotContains(t, cache.data, cacheKey(me.ID, 5))

	fresh, err := svc.GetSuggestions(ctx, me.ID, 5)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.NotEqual(t, other.ID, fresh[0].UserID)
}

func TestSuggestions_StoreFailureIsDistinguishable(t *testing.T) {
	orm := testutil.NewDB(t)
	svc := NewSuggestionService(repository.NewUserRepository(orm), brokenFriendships{}, nil, config.SuggestionConfig{})
	me := testutil.CreateUser(t, orm)

	records, err := svc.GetSuggestions(context.Background(), me.ID, 10)
	assert.Nil(t, records)
	assert.Equal(t, KindTransientStoreFailure, KindOf(err))

	empty := newSuggestionService(testutil.NewDB(t), nil)
	records, err = empty.GetSuggestions(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestNormalizeLimit(t *testing.T) {
	svc := NewSuggestionService(nil, nil, nil, config.SuggestionConfig{})
	assert.Equal(t, DefaultSuggestionLimit, svc.NormalizeLimit(0))
	assert.Equal(t, DefaultSuggestionLimit, svc.NormalizeLimit(-3))
	assert.Equal(t, 7, svc.NormalizeLimit(7))
	assert.Equal(t, MaxSuggestionLimit, svc.NormalizeLimit(500))
}
