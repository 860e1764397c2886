package repository

import (
	"context"
	"errors"

	"campus-social/internal/model"

	"gorm.io/gorm"
)

// NotificationRepository 通知数据仓储
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建NotificationRepository实例
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create 创建通知
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListByUser 获取用户最近的通知
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]*model.Notification, error) {
	var rows []*model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// CountUnread 获取用户未读通知数量
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkAllAsRead 标记用户全部通知为已读，返回受影响行数
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// MarkAsRead 标记单条通知为已读，只能操作自己的通知
// 返回是否由未读变为已读；通知不存在或不属于该用户时返回 ErrNotFound
func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID, notificationID uint) (bool, error) {
	db := r.db.WithContext(ctx)

	var n model.Notification
	err := db.Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}
	if n.IsRead {
		return false, nil
	}

	result := db.Model(&model.Notification{}).
		Where("id = ? AND is_read = ?", n.ID, false).
		Update("is_read", true)
	return result.RowsAffected > 0, result.Error
}
