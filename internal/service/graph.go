package service

import (
	"context"
	"sort"

	"campus-social/internal/model"
)

// IDSet 用户ID集合
type IDSet map[uint]struct{}

// NewIDSet 由ID列表构建集合
func NewIDSet(ids ...uint) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Add(id uint) { s[id] = struct{}{} }

func (s IDSet) Has(id uint) bool {
	_, ok := s[id]
	return ok
}

// Slice 返回升序ID列表
func (s IDSet) Slice() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FriendSet 已确认好友集合
type FriendSet = IDSet

// Intersect 两个集合的交集大小
// 打分与展示共用这一实现，保证共同好友数一致
func (s IDSet) Intersect(other IDSet) int {
	a, b := s, other
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for id := range a {
		if b.Has(id) {
			n++
		}
	}
	return n
}

// SocialGraph 社交关系查询
type SocialGraph struct {
	friendships FriendshipStore
}

// NewSocialGraph 创建SocialGraph实例
func NewSocialGraph(friendships FriendshipStore) *SocialGraph {
	return &SocialGraph{friendships: friendships}
}

// Relations 一次查询同时返回已确认好友集合与排除集合
// 排除集合 = 已确认好友 ∪ 任一方向的待处理请求 ∪ 自己
// 未知用户返回空好友集合，不视为错误
func (g *SocialGraph) Relations(ctx context.Context, userID uint) (friends FriendSet, excluded IDSet, err error) {
	rows, err := g.friendships.RelationsOf(ctx, userID)
	if err != nil {
		return nil, nil, storeFailure("load relations", err)
	}

	friends = make(FriendSet)
	excluded = NewIDSet(userID)
	for i := range rows {
		other := rows[i].Other(userID)
		excluded.Add(other)
		if rows[i].Status == model.FriendshipAccepted {
			friends.Add(other)
		}
	}
	return friends, excluded, nil
}

// FriendIDs 已确认好友集合（无论哪一方发起）
func (g *SocialGraph) FriendIDs(ctx context.Context, userID uint) (FriendSet, error) {
	friends, _, err := g.Relations(ctx, userID)
	return friends, err
}

// ExcludedIDs 推荐时需要排除的用户集合
func (g *SocialGraph) ExcludedIDs(ctx context.Context, userID uint) (IDSet, error) {
	_, excluded, err := g.Relations(ctx, userID)
	return excluded, err
}

// FriendSetsOf 批量获取多个用户的好友集合（一次查询）
// 每个输入ID在结果中都有条目，没有好友时为空集合
func (g *SocialGraph) FriendSetsOf(ctx context.Context, userIDs []uint) (map[uint]FriendSet, error) {
	result := make(map[uint]FriendSet, len(userIDs))
	for _, id := range userIDs {
		result[id] = make(FriendSet)
	}
	if len(userIDs) == 0 {
		return result, nil
	}

	rows, err := g.friendships.AcceptedTouching(ctx, userIDs)
	if err != nil {
		return nil, storeFailure("load candidate friends", err)
	}
	for i := range rows {
		if set, ok := result[rows[i].UserID]; ok {
			set.Add(rows[i].FriendID)
		}
		if set, ok := result[rows[i].FriendID]; ok {
			set.Add(rows[i].UserID)
		}
	}
	return result, nil
}

// MutualFriendCount 两个用户的共同好友数
func (g *SocialGraph) MutualFriendCount(ctx context.Context, a, b uint) (int, error) {
	sets, err := g.FriendSetsOf(ctx, []uint{a, b})
	if err != nil {
		return 0, err
	}
	return sets[a].Intersect(sets[b]), nil
}

// FriendsOfFriends 好友的已确认好友（二度关系），不含 excluded 中的用户
func (g *SocialGraph) FriendsOfFriends(ctx context.Context, friends FriendSet, excluded IDSet) (IDSet, error) {
	result := make(IDSet)
	if len(friends) == 0 {
		return result, nil
	}
	sets, err := g.FriendSetsOf(ctx, friends.Slice())
	if err != nil {
		return nil, err
	}
	for _, set := range sets {
		for id := range set {
			if !excluded.Has(id) {
				result.Add(id)
			}
		}
	}
	return result, nil
}
