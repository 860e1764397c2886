package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"campus-social/internal/model"
	"campus-social/internal/repository"
	"campus-social/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationListLimit 通知列表最多返回条数
const NotificationListLimit = 20

// NotificationEvent 实时推送给客户端的通知事件
type NotificationEvent struct {
	Type         string    `json:"type"`
	EventID      string    `json:"event_id"`
	Notification uint      `json:"notification_id"`
	Kind         string    `json:"kind"`
	Content      string    `json:"content"`
	RelatedID    uint      `json:"related_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotificationService 通知：持久化 + 未读计数 + 实时推送
type NotificationService struct {
	store   NotificationStore
	counter UnreadCounter
	pusher  Pusher
}

// NewNotificationService 创建NotificationService实例，counter/pusher 可为 nil
func NewNotificationService(store NotificationStore, counter UnreadCounter, pusher Pusher) *NotificationService {
	return &NotificationService{store: store, counter: counter, pusher: pusher}
}

// Notify 创建通知；失败只记录日志，不影响调用方
func (s *NotificationService) Notify(ctx context.Context, userID uint, kind, content string, relatedID uint) {
	n := &model.Notification{
		UserID:    userID,
		Type:      kind,
		Content:   content,
		RelatedID: relatedID,
	}
	if err := s.store.Create(ctx, n); err != nil {
		logger.Error("创建通知失败",
			zap.Uint("user_id", userID),
			zap.String("type", kind),
			zap.Uint("related_id", relatedID),
			zap.Error(err),
		)
		return
	}

	if s.counter != nil {
		if err := s.counter.Incr(ctx, userID); err != nil {
			logger.Debug("增加未读通知计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	if s.pusher != nil {
		payload, err := json.Marshal(NotificationEvent{
			Type:         "notification",
			EventID:      uuid.NewString(),
			Notification: n.ID,
			Kind:         n.Type,
			Content:      n.Content,
			RelatedID:    n.RelatedID,
			CreatedAt:    n.CreatedAt,
		})
		if err == nil {
			s.pusher.Push(userID, payload)
		}
	}
}

// List 获取用户最近的通知
func (s *NotificationService) List(ctx context.Context, userID uint) ([]*model.Notification, error) {
	rows, err := s.store.ListByUser(ctx, userID, NotificationListLimit)
	if err != nil {
		logger.Error("获取通知列表失败", zap.Uint("user_id", userID), zap.Error(err))
		return nil, storeFailure("list notifications", err)
	}
	return rows, nil
}

// UnreadCount 获取未读数量（优先从计数器获取）
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if s.counter != nil {
		if count, err := s.counter.Get(ctx, userID); err == nil {
			return count, nil
		}
	}

	// 计数器不可用，从数据库获取并回填
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		logger.Error("获取未读通知数量失败", zap.Uint("user_id", userID), zap.Error(err))
		return 0, storeFailure("count unread notifications", err)
	}
	s.fill(ctx, userID, count)
	return count, nil
}

// fill 回填计数器后复查数据库，期间有新通知写入则删除计数，避免留下过期值
func (s *NotificationService) fill(ctx context.Context, userID uint, count int64) {
	if s.counter == nil {
		return
	}
	if err := s.counter.Set(ctx, userID, count); err != nil {
		return
	}
	recount, err := s.store.CountUnread(ctx, userID)
	if err == nil && recount == count {
		return
	}
	if err := s.counter.Delete(ctx, userID); err != nil {
		logger.Warn("删除未读通知计数失败", zap.Uint("user_id", userID), zap.Error(err))
	}
}

// MarkAllAsRead 标记全部通知为已读
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.store.MarkAllAsRead(ctx, userID)
	if err != nil {
		logger.Error("标记通知已读失败", zap.Uint("user_id", userID), zap.Error(err))
		return 0, storeFailure("mark notifications read", err)
	}
	s.dropCount(ctx, userID)
	return n, nil
}

// MarkAsRead 标记单条通知为已读
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uint) error {
	const op = "mark notification read"

	changed, err := s.store.MarkAsRead(ctx, userID, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(KindNotFound, op, ErrNotificationNotFound)
		}
		logger.Error("标记通知已读失败",
			zap.Uint("user_id", userID),
			zap.Uint("notification_id", notificationID),
			zap.Error(err),
		)
		return storeFailure(op, err)
	}
	if changed {
		s.dropCount(ctx, userID)
	}
	return nil
}

func (s *NotificationService) dropCount(ctx context.Context, userID uint) {
	if s.counter == nil {
		return
	}
	if err := s.counter.Delete(ctx, userID); err != nil {
		logger.Debug("删除未读通知计数失败", zap.Uint("user_id", userID), zap.Error(err))
	}
}
