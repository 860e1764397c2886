package service

import (
	"context"
	"time"

	"campus-social/internal/model"
)

// UserStore 用户数据访问
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.User, error)
	ListCandidates(ctx context.Context, excludeIDs []uint, limit int) ([]*model.User, error)
	Search(ctx context.Context, query string, limit int) ([]*model.User, error)
}

// AccountStore 账号相关的用户数据访问
type AccountStore interface {
	UserStore
	Create(ctx context.Context, user *model.User) error
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error)
	UpsertStudent(ctx context.Context, student *model.Student) error
	UpdateProfile(ctx context.Context, user *model.User) error
}

// FriendshipStore 好友关系数据访问
type FriendshipStore interface {
	Create(ctx context.Context, f *model.Friendship) error
	Update(ctx context.Context, f *model.Friendship) error
	Delete(ctx context.Context, f *model.Friendship) error
	GetPair(ctx context.Context, a, b uint) (*model.Friendship, error)
	RelationsOf(ctx context.Context, userID uint) ([]model.Friendship, error)
	AcceptedOf(ctx context.Context, userID uint) ([]model.Friendship, error)
	AcceptedTouching(ctx context.Context, userIDs []uint) ([]model.Friendship, error)
	IncomingPending(ctx context.Context, userID uint) ([]model.Friendship, error)
	OutgoingPendingTargets(ctx context.Context, userID uint) ([]uint, error)
}

// NotificationStore 通知数据访问
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkAllAsRead(ctx context.Context, userID uint) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID uint) (bool, error)
}

// Notifier 通知下发，对调用方而言是 fire-and-forget
type Notifier interface {
	Notify(ctx context.Context, userID uint, kind, content string, relatedID uint)
}

// SuggestionCache 推荐结果缓存（存储序列化后的字节）
type SuggestionCache interface {
	GetSuggestions(ctx context.Context, userID uint, limit int) ([]byte, error)
	SetSuggestions(ctx context.Context, userID uint, limit int, data []byte, ttl time.Duration) error
	InvalidateSuggestions(ctx context.Context, userIDs ...uint) error
}

// SuggestionInvalidator 关系变化后使推荐缓存失效
type SuggestionInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...uint)
}

// UnreadCounter 未读通知计数，Delete 后下次读取从数据库回填
type UnreadCounter interface {
	Incr(ctx context.Context, userID uint) error
	Get(ctx context.Context, userID uint) (int64, error)
	Set(ctx context.Context, userID uint, count int64) error
	Delete(ctx context.Context, userID uint) error
}

// Pusher 实时推送
type Pusher interface {
	Push(userID uint, payload []byte)
}
