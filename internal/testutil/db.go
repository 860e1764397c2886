// Package testutil 测试用的内存数据库与数据构造
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"campus-social/config"
	"campus-social/internal/model"
	"campus-social/internal/repository"
	"campus-social/pkg/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var seq atomic.Uint64

// NewDB 打开一个迁移完成的 sqlite 内存库，测试结束时关闭
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	orm, err := db.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		Database: ":memory:",
		MaxIdle:  1,
		MaxOpen:  1,
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, orm.AutoMigrate(&model.User{}, &model.Student{}, &model.Friendship{}, &model.Notification{}))

	t.Cleanup(func() {
		if sqlDB, err := orm.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return orm
}

// UserOption 调整测试用户字段
type UserOption func(u *model.User, s *model.Student)

// WithName 设置姓名
func WithName(first, last string) UserOption {
	return func(u *model.User, _ *model.Student) {
		u.FirstName, u.LastName = first, last
	}
}

// WithClass 设置班级与院系
func WithClass(class, faculty string) UserOption {
	return func(_ *model.User, s *model.Student) {
		s.Class, s.Faculty = class, faculty
	}
}

// WithBio 设置简介
func WithBio(bio string) UserOption {
	return func(u *model.User, _ *model.Student) {
		u.Bio = bio
	}
}

// CreatedAt 设置注册时间
func CreatedAt(t time.Time) UserOption {
	return func(u *model.User, _ *model.Student) {
		u.CreatedAt = t
	}
}

// CreateUser 创建用户；设置了班级或院系时同时创建学籍
func CreateUser(t testing.TB, orm *gorm.DB, opts ...UserOption) *model.User {
	t.Helper()

	n := seq.Add(1)
	u := &model.User{
		Username:     fmt.Sprintf("user%d", n),
		Email:        fmt.Sprintf("user%d@campus.test", n),
		PasswordHash: "x",
		IsActive:     true,
		CreatedAt:    time.Now().Add(-30 * 24 * time.Hour),
	}
	s := &model.Student{}
	for _, opt := range opts {
		opt(u, s)
	}
	require.NoError(t, orm.Create(u).Error)

	if s.Class != "" || s.Faculty != "" {
		s.UserID = u.ID
		require.NoError(t, orm.Create(s).Error)
		u.Student = s
	}
	return u
}

// Deactivate 停用用户
func Deactivate(t testing.TB, orm *gorm.DB, u *model.User) {
	t.Helper()
	require.NoError(t, repository.NewUserRepository(orm).SetActive(context.Background(), u.ID, false))
	u.IsActive = false
}

// Befriend 创建已接受的好友关系
func Befriend(t testing.TB, orm *gorm.DB, a, b *model.User) *model.Friendship {
	t.Helper()
	return createFriendship(t, orm, a, b, model.FriendshipAccepted)
}

// Request 创建 from -> to 的待处理请求
func Request(t testing.TB, orm *gorm.DB, from, to *model.User) *model.Friendship {
	t.Helper()
	return createFriendship(t, orm, from, to, model.FriendshipPending)
}

func createFriendship(t testing.TB, orm *gorm.DB, a, b *model.User, status string) *model.Friendship {
	t.Helper()
	f := &model.Friendship{UserID: a.ID, FriendID: b.ID, Status: status}
	require.NoError(t, orm.WithContext(context.Background()).Create(f).Error)
	return f
}

// CountFriendships 关系总行数
func CountFriendships(t testing.TB, orm *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, orm.Model(&model.Friendship{}).Count(&n).Error)
	return n
}
