// Package model 包含了应用的数据模型定义。
package model

import "time"

// User 代表身份存储中的一个用户。
// 密码哈希与外部系统 token 永远不会被序列化到响应中。
type User struct {
	ID            uint         `gorm:"primaryKey" json:"_id"`
	Username      string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Password      string       `gorm:"type:varchar(255);not null" json:"-"`
	Role          Role         `gorm:"type:varchar(16);not null" json:"role"`
	ExternalToken string       `gorm:"type:varchar(512)" json:"-"`
	Courses       []UserCourse `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt     time.Time    `json:"-"`
	UpdatedAt     time.Time    `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// CourseIDs 把关联的课程展开成课程 ID 列表。
func (u *User) CourseIDs() []string {
	ids := make([]string, 0, len(u.Courses))
	for _, c := range u.Courses {
		ids = append(ids, c.CourseID)
	}
	return ids
}

// UserCourse 记录用户被授权访问的课程。
type UserCourse struct {
	UserID   uint   `gorm:"primaryKey;autoIncrement:false"`
	CourseID string `gorm:"primaryKey;type:varchar(64)"`
}

func (UserCourse) TableName() string {
	return "user_courses"
}
