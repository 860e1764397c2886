package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Friendship 好友关系
// 一行代表一条无向社交边，UserID 为发起方，FriendID 为接收方
// Status: pending/accepted（拒绝时直接删除行，不保留第三种状态）
// PairKey 为 "小ID:大ID"，唯一索引保证同一对用户最多一行

type Friendship struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index;comment:发起方用户ID"`
	FriendID  uint      `gorm:"not null;index;comment:接收方用户ID"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending';index;comment:关系状态"`
	PairKey   string    `gorm:"type:varchar(41);not null;uniqueIndex;comment:无序用户对"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

func (Friendship) TableName() string { return "friendship" }

// BeforeCreate 写入前计算 PairKey
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	f.PairKey = PairKey(f.UserID, f.FriendID)
	return nil
}

// Other 返回关系中另一方的用户ID
func (f *Friendship) Other(userID uint) uint {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

// PairKey 生成与方向无关的用户对标识
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
