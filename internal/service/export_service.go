package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"tigersai/internal/model"
	"tigersai/pkg/log"
)

// ObjectStore 保存导出文件并生成下载链接。
type ObjectStore interface {
	PutObject(ctx context.Context, objectName, contentType string, data []byte) error
	PresignedURL(ctx context.Context, objectName string) (string, error)
}

// ExportService 把一个月的对话导出为 JSON 文件。
type ExportService interface {
	ExportMonth(ctx context.Context, caller *model.SessionContext, month time.Time, target *uint) (string, error)
}

// Transcript 是导出文件的内容。
type Transcript struct {
	OwnerID    uint                      `json:"user_id"`
	Month      string                    `json:"month"`
	ExportedAt model.LocalTime           `json:"exportedAt"`
	Entries    []model.ConversationEntry `json:"conversations"`
}

type exportService struct {
	conversations ConversationService
	store         ObjectStore
	loc           *time.Location
	now           func() time.Time
}

// NewExportService 创建一个新的 ExportService。store 为 nil 时导出不可用。
func NewExportService(conversations ConversationService, store ObjectStore, loc *time.Location) ExportService {
	if loc == nil {
		loc = time.Local
	}
	return &exportService{conversations: conversations, store: store, loc: loc, now: time.Now}
}

// ExportMonth 与月视图使用相同的查询对象，返回导出文件的预签名链接。
func (s *exportService) ExportMonth(ctx context.Context, caller *model.SessionContext, month time.Time, target *uint) (string, error) {
	owner, err := ResolveMonthOwner(caller, target)
	if err != nil {
		return "", err
	}
	if s.store == nil {
		return "", ErrUnavailable
	}
	entries, err := s.conversations.ConversationsByMonth(ctx, caller, month, target)
	if err != nil {
		return "", err
	}

	monthKey := month.In(s.loc).Format("2006-01")
	data, err := json.Marshal(Transcript{
		OwnerID:    owner,
		Month:      monthKey,
		ExportedAt: model.LocalTime(s.now()),
		Entries:    entries,
	})
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%d/%s-%s.json", owner, monthKey, uuid.NewString())
	if err := s.store.PutObject(ctx, objectName, "application/json", data); err != nil {
		log.Errorw("上传导出文件失败", "object", objectName, "error", err)
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	url, err := s.store.PresignedURL(ctx, objectName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	log.Infow("对话已导出", "owner", owner, "month", monthKey, "count", len(entries))
	return url, nil
}
