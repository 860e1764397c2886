package repository

import (
	"context"
	"errors"
	"strings"

	"campus-social/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户与学籍数据仓储
type UserRepository struct {
	orm *gorm.DB
}

// NewUserRepository 创建UserRepository实例
func NewUserRepository(orm *gorm.DB) *UserRepository {
	return &UserRepository{orm: orm}
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.orm.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// GetByID 根据ID获取用户（含学籍）
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	err := r.orm.WithContext(ctx).Preload("Student").First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByIDs 批量获取用户，返回 ID -> 用户
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.User, error) {
	result := make(map[uint]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []*model.User
	if err := r.orm.WithContext(ctx).Preload("Student").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// GetByUsernameOrEmail 按用户名或邮箱查找
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	var u model.User
	err := r.orm.WithContext(ctx).Where("username = ? OR email = ?", identifier, identifier).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListCandidates 获取推荐候选池：启用状态且不在排除集合中的用户
// 按注册时间倒序，limit<=0 表示不限制
func (r *UserRepository) ListCandidates(ctx context.Context, excludeIDs []uint, limit int) ([]*model.User, error) {
	q := r.orm.WithContext(ctx).Preload("Student").Where("is_active = ?", true)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var users []*model.User
	err := q.Order("created_at DESC").Order("id ASC").Find(&users).Error
	return users, err
}

// likeEscaper 转义 LIKE 通配符，配合 ESCAPE '!' 使用（mysql/postgres/sqlite 通用）
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search 按姓名/用户名/邮箱模糊搜索启用用户，输入中的 % 与 _ 按字面匹配
func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]*model.User, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return []*model.User{}, nil
	}
	pattern := "%" + likeEscaper.Replace(term) + "%"

	var users []*model.User
	err := r.orm.WithContext(ctx).Preload("Student").
		Where("is_active = ?", true).
		Where("LOWER(first_name) LIKE ? ESCAPE '!' OR LOWER(last_name) LIKE ? ESCAPE '!' OR "+
			"LOWER(username) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'",
			pattern, pattern, pattern, pattern).
		Order("first_name ASC").
		Order("last_name ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// UpdateProfile 保存个人资料字段（姓名、简介、所在地、兴趣）
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	return r.orm.WithContext(ctx).Model(user).
		Select("first_name", "last_name", "bio", "location", "interests", "updated_at").
		Updates(user).Error
}

// SetActive 启用/停用用户（软停用，不删除记录）
func (r *UserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.orm.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

// UpsertStudent 新建或更新用户的学籍信息，并标记资料已完善
func (r *UserRepository) UpsertStudent(ctx context.Context, student *model.Student) error {
	db := r.orm.WithContext(ctx)

	var existing model.Student
	err := db.Where("user_id = ?", student.UserID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.Create(student).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		student.ID = existing.ID
		student.CreatedAt = existing.CreatedAt
		if err := db.Save(student).Error; err != nil {
			return err
		}
	}

	return db.Model(&model.User{}).
		Where("id = ?", student.UserID).
		Update("is_profile_completed", true).Error
}
