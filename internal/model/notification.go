package model

import "time"

// Notification 站内通知
// Type: friend_request/friend_accept
// RelatedID 为触发通知的用户ID

type Notification struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index;comment:接收者ID"`
	Type      string    `gorm:"type:varchar(50);not null;comment:通知类型"`
	Content   string    `gorm:"type:varchar(500);not null;comment:通知内容"`
	RelatedID uint      `gorm:"index;comment:关联用户ID"`
	IsRead    bool      `gorm:"not null;default:false;index;comment:是否已读"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
}

const (
	NotificationFriendRequest = "friend_request"
	NotificationFriendAccept  = "friend_accept"
)

func (Notification) TableName() string { return "notification" }
