package repository

import (
	"context"
	"errors"

	"campus-social/internal/model"

	"gorm.io/gorm"
)

// FriendshipRepository 好友关系数据仓储
// 关系是无向的，所有按用户查询都需要同时检查两个方向
type FriendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository 创建FriendshipRepository实例
func NewFriendshipRepository(db *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// Create 创建好友关系；同一对用户已存在记录时返回 ErrDuplicate
func (r *FriendshipRepository) Create(ctx context.Context, f *model.Friendship) error {
	err := r.db.WithContext(ctx).Create(f).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// Update 保存状态变更
func (r *FriendshipRepository) Update(ctx context.Context, f *model.Friendship) error {
	return r.db.WithContext(ctx).Save(f).Error
}

// Delete 物理删除关系（拒绝请求后允许立即重新申请）
func (r *FriendshipRepository) Delete(ctx context.Context, f *model.Friendship) error {
	return r.db.WithContext(ctx).Delete(&model.Friendship{}, f.ID).Error
}

// GetPair 获取两个用户之间的关系（任一方向）
func (r *FriendshipRepository) GetPair(ctx context.Context, a, b uint) (*model.Friendship, error) {
	var f model.Friendship
	err := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// RelationsOf 获取用户所有 pending/accepted 关系（任一方向）
func (r *FriendshipRepository) RelationsOf(ctx context.Context, userID uint) ([]model.Friendship, error) {
	var rows []model.Friendship
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Where("status IN ?", []string{model.FriendshipPending, model.FriendshipAccepted}).
		Find(&rows).Error
	return rows, err
}

// AcceptedOf 获取用户所有已接受的关系（任一方向）
func (r *FriendshipRepository) AcceptedOf(ctx context.Context, userID uint) ([]model.Friendship, error) {
	var rows []model.Friendship
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Where("status = ?", model.FriendshipAccepted).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// AcceptedTouching 批量获取涉及任一给定用户的已接受关系（一次查询）
func (r *FriendshipRepository) AcceptedTouching(ctx context.Context, userIDs []uint) ([]model.Friendship, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []model.Friendship
	err := r.db.WithContext(ctx).
		Where("user_id IN ? OR friend_id IN ?", userIDs, userIDs).
		Where("status = ?", model.FriendshipAccepted).
		Find(&rows).Error
	return rows, err
}

// IncomingPending 获取发给用户、待处理的好友请求
func (r *FriendshipRepository) IncomingPending(ctx context.Context, userID uint) ([]model.Friendship, error) {
	var rows []model.Friendship
	err := r.db.WithContext(ctx).
		Where("friend_id = ? AND status = ?", userID, model.FriendshipPending).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// OutgoingPendingTargets 获取用户已发出且待处理请求的目标用户ID
func (r *FriendshipRepository) OutgoingPendingTargets(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_id = ? AND status = ?", userID, model.FriendshipPending).
		Pluck("friend_id", &ids).Error
	return ids, err
}
