package model

import "time"

// SessionContext 是登录时从 User 复制出来的身份快照，随每个请求显式传递。
type SessionContext struct {
	ID            string    `json:"id"`
	UserID        uint      `json:"userId"`
	Username      string    `json:"username"`
	Role          Role      `json:"role"`
	ExternalToken string    `json:"externalToken"`
	Courses       []string  `json:"courses"`
	CreatedAt     time.Time `json:"createdAt"`
	LastSeenAt    time.Time `json:"lastSeenAt"`
}

// NewSessionContext 从用户记录创建会话快照。
func NewSessionContext(id string, u *User, now time.Time) *SessionContext {
	return &SessionContext{
		ID:            id,
		UserID:        u.ID,
		Username:      u.Username,
		Role:          u.Role,
		ExternalToken: u.ExternalToken,
		Courses:       u.CourseIDs(),
		CreatedAt:     now,
		LastSeenAt:    now,
	}
}

// Expired 判断会话是否已超过空闲时长。
func (s *SessionContext) Expired(now time.Time, idle time.Duration) bool {
	return now.Sub(s.LastSeenAt) > idle
}

// HasCourses 判断会话是否至少绑定了一门授权课程。
func (s *SessionContext) HasCourses() bool {
	return len(s.Courses) > 0
}
