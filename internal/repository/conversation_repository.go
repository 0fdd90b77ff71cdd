package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"tigersai/internal/model"
)

// ConversationRepository 定义了对话日志的操作接口。日志只追加，不更新也不删除。
type ConversationRepository interface {
	Append(ctx context.Context, entry *model.ConversationEntry) error
	FindByOwnerAndRange(ctx context.Context, ownerID uint, start, end time.Time) ([]model.ConversationEntry, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Append 插入一条对话记录。
func (r *conversationRepository) Append(ctx context.Context, entry *model.ConversationEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByOwnerAndRange 返回 owner 在 [start, end] 内的对话，按时间升序。
// start 晚于 end 时直接返回空结果，不访问数据库。
func (r *conversationRepository) FindByOwnerAndRange(ctx context.Context, ownerID uint, start, end time.Time) ([]model.ConversationEntry, error) {
	entries := []model.ConversationEntry{}
	if start.After(end) {
		return entries, nil
	}
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND timestamp >= ? AND timestamp <= ?", ownerID, start, end).
		Order("timestamp ASC, id ASC").
		Find(&entries).Error
	return entries, err
}
