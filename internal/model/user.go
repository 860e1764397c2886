package model

import (
	"strings"
	"time"
)

// User 用户模型
// 索引与唯一约束：用户名唯一、邮箱唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// IsActive 为软停用标记，用户记录从不物理删除
// Student 为可选的学籍信息（1:1）

type User struct {
	ID                 uint      `gorm:"primaryKey"`
	Username           string    `gorm:"type:varchar(50);not null;uniqueIndex;comment:用户名"`
	Email              string    `gorm:"type:varchar(100);not null;uniqueIndex;comment:邮箱"`
	PasswordHash       string    `gorm:"type:varchar(255);not null;comment:密码哈希"`
	FirstName          string    `gorm:"type:varchar(50);comment:名"`
	LastName           string    `gorm:"type:varchar(50);comment:姓"`
	Avatar             string    `gorm:"type:varchar(255);comment:头像路径"`
	CoverImage         string    `gorm:"type:varchar(255);comment:封面路径"`
	Bio                string    `gorm:"type:varchar(500);comment:个人简介"`
	Location           string    `gorm:"type:varchar(100);comment:所在地"`
	Interests          string    `gorm:"type:varchar(200);comment:兴趣"`
	IsActive           bool      `gorm:"not null;default:true;index;comment:是否启用"`
	IsProfileCompleted bool      `gorm:"not null;default:false;comment:资料是否完善"`
	CreatedAt          time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt          time.Time `gorm:"comment:更新时间"`
	Student            *Student  `gorm:"foreignKey:UserID"`
}

// TableName 指定表名（因全局配置使用单数表名，这里与结构体名一致为 user）
func (User) TableName() string { return "user" }

// DefaultAvatar 未上传头像时使用的占位图
const DefaultAvatar = "/assets/user.png"

// FullName 返回 "名 姓"，为空时退回用户名
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// AvatarOrDefault 返回头像路径，未设置时返回默认头像
func (u *User) AvatarOrDefault() string {
	if u.Avatar == "" {
		return DefaultAvatar
	}
	return u.Avatar
}

// Class 返回学籍中的班级，无学籍时为空串
func (u *User) Class() string {
	if u.Student == nil {
		return ""
	}
	return u.Student.Class
}

// Faculty 返回学籍中的院系，无学籍时为空串
func (u *User) Faculty() string {
	if u.Student == nil {
		return ""
	}
	return u.Student.Faculty
}
