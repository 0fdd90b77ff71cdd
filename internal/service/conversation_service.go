package service

import (
	"context"
	"fmt"
	"time"

	"tigersai/internal/model"
	"tigersai/internal/policy"
	"tigersai/internal/repository"
)

// ConversationService 定义了按日历窗口检索对话的接口。
type ConversationService interface {
	QueryByOwnerAndRange(ctx context.Context, ownerID uint, start, end time.Time) ([]model.ConversationEntry, error)
	ConversationsByMonth(ctx context.Context, caller *model.SessionContext, month time.Time, target *uint) ([]model.ConversationEntry, error)
	ConversationsByDay(ctx context.Context, caller *model.SessionContext, day time.Time, target *uint) ([]model.ConversationEntry, error)
}

type conversationService struct {
	repo repository.ConversationRepository
	loc  *time.Location
}

// NewConversationService 创建一个新的 ConversationService，窗口按 loc 切分。
func NewConversationService(repo repository.ConversationRepository, loc *time.Location) ConversationService {
	if loc == nil {
		loc = time.Local
	}
	return &conversationService{repo: repo, loc: loc}
}

// QueryByOwnerAndRange 返回 owner 在闭区间内的对话，按时间升序；start 晚于 end 时为空。
func (s *conversationService) QueryByOwnerAndRange(ctx context.Context, ownerID uint, start, end time.Time) ([]model.ConversationEntry, error) {
	if start.After(end) {
		return []model.ConversationEntry{}, nil
	}
	entries, err := s.repo.FindByOwnerAndRange(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return entries, nil
}

// ConversationsByMonth 返回整月的对话，用于填充月视图。
func (s *conversationService) ConversationsByMonth(ctx context.Context, caller *model.SessionContext, month time.Time, target *uint) ([]model.ConversationEntry, error) {
	owner, err := ResolveMonthOwner(caller, target)
	if err != nil {
		return nil, err
	}
	w := policy.MonthWindow(month, s.loc)
	return s.QueryByOwnerAndRange(ctx, owner, w.Start, w.End)
}

// ConversationsByDay 返回某一天的对话，查询对象由访问策略决定。
func (s *conversationService) ConversationsByDay(ctx context.Context, caller *model.SessionContext, day time.Time, target *uint) ([]model.ConversationEntry, error) {
	owner, err := policy.ResolveQueryTarget(caller, target)
	if err != nil {
		return nil, err
	}
	w := policy.DayWindow(day, s.loc)
	return s.QueryByOwnerAndRange(ctx, owner, w.Start, w.End)
}

// ResolveMonthOwner 决定月视图的查询对象：未指定目标时任何角色都查看自己的记录，
// 指定目标时交给访问策略。
func ResolveMonthOwner(caller *model.SessionContext, target *uint) (uint, error) {
	if caller == nil {
		return 0, ErrAuthenticationRequired
	}
	if target == nil {
		if !caller.Role.Valid() {
			return 0, ErrUnauthorizedRole
		}
		return caller.UserID, nil
	}
	return policy.ResolveQueryTarget(caller, target)
}
