package service

import (
	"context"
	"errors"
	"time"

	"campus-social/internal/model"
	"campus-social/internal/repository"
	"campus-social/pkg/logger"

	"go.uber.org/zap"
)

// RelationStatus 浏览者与目标用户的关系
type RelationStatus string

const (
	RelationSelf            RelationStatus = "self"
	RelationNone            RelationStatus = "none"
	RelationAccepted        RelationStatus = "accepted"
	RelationPendingSent     RelationStatus = "pending_sent"
	RelationPendingReceived RelationStatus = "pending_received"
)

// PendingRequest 待处理的好友请求
type PendingRequest struct {
	FriendshipID    uint      `json:"friendship_id"`
	RequesterID     uint      `json:"requester_id"`
	RequesterName   string    `json:"requester_name"`
	RequesterAvatar string    `json:"requester_avatar"`
	RequestedAt     time.Time `json:"requested_at"`
	TimeAgo         string    `json:"time_ago"`
}

// ProfileFriendsPreview 资料页展示的好友数量
const ProfileFriendsPreview = 6

// ProfileView 浏览者视角下的用户资料页
type ProfileView struct {
	User         *model.User
	Friends      []FriendRecord
	FriendCount  int
	Relation     RelationStatus
	IsOwnProfile bool
}

// FriendshipService 好友请求状态机：none -> pending -> accepted，拒绝时删除
type FriendshipService struct {
	users       UserStore
	friendships FriendshipStore
	graph       *SocialGraph
	notifier    Notifier
	suggestions SuggestionInvalidator
	now         func() time.Time
}

// NewFriendshipService 创建FriendshipService实例，notifier/suggestions 可为 nil
func NewFriendshipService(users UserStore, friendships FriendshipStore, notifier Notifier, suggestions SuggestionInvalidator) *FriendshipService {
	return &FriendshipService{
		users:       users,
		friendships: friendships,
		graph:       NewSocialGraph(friendships),
		notifier:    notifier,
		suggestions: suggestions,
		now:         time.Now,
	}
}

// SendRequest userID 向 friendID 发送好友请求
func (s *FriendshipService) SendRequest(ctx context.Context, userID, friendID uint) (*model.Friendship, error) {
	const op = "send friend request"

	if userID == friendID {
		return nil, newError(KindInvalidState, op, ErrSelfRequest)
	}

	target, err := s.users.GetByID(ctx, friendID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindNotFound, op, ErrUserNotFound)
		}
		return nil, s.fail(op, err, userID, friendID)
	}
	if !target.IsActive {
		return nil, newError(KindNotFound, op, ErrUserNotFound)
	}

	// 检查任一方向是否已存在关系
	existing, err := s.friendships.GetPair(ctx, userID, friendID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return nil, s.fail(op, err, userID, friendID)
	case existing.Status == model.FriendshipAccepted:
		return nil, newError(KindInvalidState, op, ErrAlreadyFriends)
	default:
		return nil, newError(KindInvalidState, op, ErrRequestAlreadyPending)
	}

	friendship := &model.Friendship{
		UserID:   userID,
		FriendID: friendID,
		Status:   model.FriendshipPending,
	}
	if err := s.friendships.Create(ctx, friendship); err != nil {
		// 并发请求被唯一索引拦截
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(KindInvalidState, op, ErrRequestAlreadyPending)
		}
		return nil, s.fail(op, err, userID, friendID)
	}

	s.notify(ctx, friendID, model.NotificationFriendRequest, "向你发送了好友请求", userID)
	s.invalidate(ctx, userID, friendID)

	logger.Info("发送好友请求", zap.Uint("user_id", userID), zap.Uint("friend_id", friendID))
	return friendship, nil
}

// AcceptRequest responderID 接受 requesterID 发来的请求
func (s *FriendshipService) AcceptRequest(ctx context.Context, responderID, requesterID uint) (*model.Friendship, error) {
	const op = "accept friend request"

	friendship, err := s.pendingRequest(ctx, op, responderID, requesterID)
	if err != nil {
		return nil, err
	}

	friendship.Status = model.FriendshipAccepted
	if err := s.friendships.Update(ctx, friendship); err != nil {
		return nil, s.fail(op, err, responderID, requesterID)
	}

	s.notify(ctx, requesterID, model.NotificationFriendAccept, "接受了你的好友请求", responderID)
	s.invalidate(ctx, responderID, requesterID)

	logger.Info("接受好友请求", zap.Uint("user_id", responderID), zap.Uint("requester_id", requesterID))
	return friendship, nil
}

// DeclineRequest responderID 拒绝 requesterID 发来的请求，记录被删除，可立即重新申请
func (s *FriendshipService) DeclineRequest(ctx context.Context, responderID, requesterID uint) error {
	const op = "decline friend request"

	friendship, err := s.pendingRequest(ctx, op, responderID, requesterID)
	if err != nil {
		return err
	}

	if err := s.friendships.Delete(ctx, friendship); err != nil {
		return s.fail(op, err, responderID, requesterID)
	}

	s.invalidate(ctx, responderID, requesterID)

	logger.Info("拒绝好友请求", zap.Uint("user_id", responderID), zap.Uint("requester_id", requesterID))
	return nil
}

// pendingRequest 查找 requester -> responder 的待处理请求
func (s *FriendshipService) pendingRequest(ctx context.Context, op string, responderID, requesterID uint) (*model.Friendship, error) {
	friendship, err := s.friendships.GetPair(ctx, requesterID, responderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindNotFound, op, ErrRequestNotFound)
		}
		return nil, s.fail(op, err, responderID, requesterID)
	}
	if friendship.Status != model.FriendshipPending {
		return nil, newError(KindNotFound, op, ErrRequestNotFound)
	}
	// 反方向的请求：响应者本人是发起方
	if friendship.UserID != requesterID || friendship.FriendID != responderID {
		return nil, newError(KindUnauthorized, op, ErrNotRequestRecipient)
	}
	return friendship, nil
}

// GetFriends 获取用户的好友列表（最近成为好友的在前）
func (s *FriendshipService) GetFriends(ctx context.Context, userID uint) ([]FriendRecord, error) {
	rows, err := s.friendships.AcceptedOf(ctx, userID)
	if err != nil {
		return nil, s.fail("list friends", err, userID, 0)
	}

	ids := make([]uint, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].Other(userID))
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, s.fail("list friends", err, userID, 0)
	}

	friends := make([]FriendRecord, 0, len(ids))
	for _, id := range ids {
		u, ok := users[id]
		if !ok {
			continue
		}
		friends = append(friends, FriendRecord{
			UserID:   u.ID,
			FullName: u.FullName(),
			Avatar:   u.AvatarOrDefault(),
			Bio:      u.Bio,
			IsFriend: true,
		})
	}
	return friends, nil
}

// GetFriendCount 获取好友数量
func (s *FriendshipService) GetFriendCount(ctx context.Context, userID uint) (int, error) {
	friends, err := s.graph.FriendIDs(ctx, userID)
	if err != nil {
		logger.Error("获取好友数量失败", zap.Uint("user_id", userID), zap.Error(err))
		return 0, err
	}
	return len(friends), nil
}

// GetPendingRequests 获取发给用户的待处理请求
func (s *FriendshipService) GetPendingRequests(ctx context.Context, userID uint) ([]PendingRequest, error) {
	rows, err := s.friendships.IncomingPending(ctx, userID)
	if err != nil {
		return nil, s.fail("list pending requests", err, userID, 0)
	}

	ids := make([]uint, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].UserID)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, s.fail("list pending requests", err, userID, 0)
	}

	now := s.now()
	requests := make([]PendingRequest, 0, len(rows))
	for i := range rows {
		requester, ok := users[rows[i].UserID]
		if !ok {
			continue
		}
		requests = append(requests, PendingRequest{
			FriendshipID:    rows[i].ID,
			RequesterID:     requester.ID,
			RequesterName:   requester.FullName(),
			RequesterAvatar: requester.AvatarOrDefault(),
			RequestedAt:     rows[i].CreatedAt,
			TimeAgo:         TimeAgo(rows[i].CreatedAt, now),
		})
	}
	return requests, nil
}

// RelationStatus 浏览者视角下与目标用户的关系
func (s *FriendshipService) RelationStatus(ctx context.Context, viewerID, targetID uint) (RelationStatus, error) {
	if viewerID == targetID {
		return RelationSelf, nil
	}
	f, err := s.friendships.GetPair(ctx, viewerID, targetID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return RelationNone, nil
	case err != nil:
		return "", s.fail("relation status", err, viewerID, targetID)
	case f.Status == model.FriendshipAccepted:
		return RelationAccepted, nil
	case f.UserID == viewerID:
		return RelationPendingSent, nil
	default:
		return RelationPendingReceived, nil
	}
}

// Profile 获取用户资料页：基本信息、前几位好友、好友数与关系状态
// 已停用的用户只有本人可见
func (s *FriendshipService) Profile(ctx context.Context, viewerID, targetID uint) (*ProfileView, error) {
	const op = "get profile"

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindNotFound, op, ErrUserNotFound)
		}
		return nil, s.fail(op, err, viewerID, targetID)
	}
	own := viewerID == targetID
	if !target.IsActive && !own {
		return nil, newError(KindNotFound, op, ErrUserNotFound)
	}

	friends, err := s.GetFriends(ctx, targetID)
	if err != nil {
		return nil, err
	}
	relation, err := s.RelationStatus(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		User:         target,
		Friends:      friends,
		FriendCount:  len(friends),
		Relation:     relation,
		IsOwnProfile: own,
	}
	if len(view.Friends) > ProfileFriendsPreview {
		view.Friends = view.Friends[:ProfileFriendsPreview]
	}
	return view, nil
}

// MutualFriendCount 两个用户的共同好友数
func (s *FriendshipService) MutualFriendCount(ctx context.Context, a, b uint) (int, error) {
	n, err := s.graph.MutualFriendCount(ctx, a, b)
	if err != nil {
		logger.Error("计算共同好友失败", zap.Uint("user_id", a), zap.Uint("other_id", b), zap.Error(err))
	}
	return n, err
}

func (s *FriendshipService) notify(ctx context.Context, userID uint, kind, content string, relatedID uint) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, kind, content, relatedID)
}

func (s *FriendshipService) invalidate(ctx context.Context, userIDs ...uint) {
	if s.suggestions == nil {
		return
	}
	s.suggestions.Invalidate(ctx, userIDs...)
}

// fail 记录存储层错误并包装为 KindTransientStoreFailure
func (s *FriendshipService) fail(op string, err error, userID, otherID uint) error {
	logger.Error("好友关系存储操作失败",
		zap.String("op", op),
		zap.Uint("user_id", userID),
		zap.Uint("other_id", otherID),
		zap.Error(err),
	)
	return storeFailure(op, err)
}
