package model

import (
	"time"

	"gorm.io/gorm"
)

// ConversationEntry 代表一次成功的问答，写入后不再修改。
// OwnerUsername / OwnerRole 是写入时刻的快照。
type ConversationEntry struct {
	ID            uint      `gorm:"primaryKey" json:"_id"`
	OwnerID       uint      `gorm:"not null;index:idx_owner_timestamp,priority:1" json:"user_id"`
	OwnerUsername string    `gorm:"type:varchar(255);not null" json:"username"`
	OwnerRole     Role      `gorm:"type:varchar(16);not null" json:"userRole"`
	UserMessage   string    `gorm:"type:text;not null" json:"userMessage"`
	BotResponse   string    `gorm:"type:text;not null" json:"botResponse"`
	Timestamp     time.Time `gorm:"not null;index:idx_owner_timestamp,priority:2" json:"timestamp"`
}

func (ConversationEntry) TableName() string {
	return "conversation_entries"
}

// BeforeCreate 在未显式指定时间时使用写入时刻。
func (e *ConversationEntry) BeforeCreate(_ *gorm.DB) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return nil
}
