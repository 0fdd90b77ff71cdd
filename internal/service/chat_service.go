package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tigersai/internal/collaborator"
	"tigersai/internal/model"
	"tigersai/internal/repository"
	"tigersai/pkg/events"
	"tigersai/pkg/log"
)

// publishTimeout 发布事件的最长等待时间，与请求本身的取消无关。
const publishTimeout = 5 * time.Second

// EventPublisher 发布对话已记录事件。
type EventPublisher interface {
	PublishConversationLogged(ctx context.Context, event events.ConversationLogged) error
}

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	Ask(ctx context.Context, caller *model.SessionContext, message string) (*model.ConversationEntry, error)
}

type chatService struct {
	responder        collaborator.Responder
	conversationRepo repository.ConversationRepository
	publisher        EventPublisher
	timeout          time.Duration
	now              func() time.Time
}

// NewChatService 创建一个新的 ChatService 实例。publisher 可以为 nil。
func NewChatService(responder collaborator.Responder, conversationRepo repository.ConversationRepository, publisher EventPublisher, timeout time.Duration) ChatService {
	return &chatService{
		responder:        responder,
		conversationRepo: conversationRepo,
		publisher:        publisher,
		timeout:          timeout,
		now:              time.Now,
	}
}

// Ask 把问题交给 NLP 脚本，拿到非空回答后追加一条对话记录。
//
// 会话缺失或没有授权课程时在调用脚本之前拒绝；脚本返回空回答时不写入任何记录。
func (s *chatService) Ask(ctx context.Context, caller *model.SessionContext, message string) (*model.ConversationEntry, error) {
	// 1. 校验会话与课程
	if caller == nil {
		return nil, ErrAuthenticationRequired
	}
	if !caller.HasCourses() {
		return nil, ErrNoAuthorizedCourses
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	// 2. 调用外部脚本，超时即视为失败
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	answer, err := s.responder.Respond(callCtx, collaborator.Request{
		Message: message,
		Courses: caller.Courses,
		Token:   caller.ExternalToken,
	})
	if err != nil {
		log.Errorw("调用 NLP 脚本失败", "userId", caller.UserID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCollaboratorFailed, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		log.Warnw("NLP 脚本返回了空回答", "userId", caller.UserID)
		return nil, ErrEmptyResponse
	}

	// 3. 追加对话记录
	entry := &model.ConversationEntry{
		OwnerID:       caller.UserID,
		OwnerUsername: caller.Username,
		OwnerRole:     caller.Role,
		UserMessage:   message,
		BotResponse:   answer,
		Timestamp:     s.now(),
	}
	if err := s.conversationRepo.Append(ctx, entry); err != nil {
		log.Errorw("保存对话记录失败", "userId", caller.UserID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// 4. 发布事件，失败只记录日志
	s.publish(ctx, entry)
	return entry, nil
}

func (s *chatService) publish(ctx context.Context, entry *model.ConversationEntry) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := s.publisher.PublishConversationLogged(pubCtx, events.ConversationLogged{
		EntryID:     entry.ID,
		OwnerID:     entry.OwnerID,
		Username:    entry.OwnerUsername,
		Role:        string(entry.OwnerRole),
		UserMessage: entry.UserMessage,
		BotResponse: entry.BotResponse,
		Timestamp:   entry.Timestamp,
	})
	if err != nil {
		log.Warnw("发布对话事件失败", "entryId", entry.ID, "error", err)
	}
}
