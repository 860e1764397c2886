package model

import "time"

// Student 学籍信息，User 的可选 1:1 扩展
// Class / Faculty 用于好友推荐打分

type Student struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;uniqueIndex;comment:用户ID"`
	StudentCode string    `gorm:"type:varchar(20);comment:学号"`
	Class       string    `gorm:"type:varchar(50);index;comment:班级"`
	Faculty     string    `gorm:"type:varchar(100);index;comment:院系"`
	Course      string    `gorm:"type:varchar(20);comment:届别"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

func (Student) TableName() string { return "student" }
