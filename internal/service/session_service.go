package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"tigersai/internal/model"
	"tigersai/internal/repository"
)

// SessionManager 管理登录会话的生命周期：创建、按空闲时长滑动续期、销毁。
type SessionManager interface {
	Create(ctx context.Context, user *model.User) (*model.SessionContext, error)
	Get(ctx context.Context, id string) (*model.SessionContext, error)
	Destroy(ctx context.Context, id string) error
	IdleTimeout() time.Duration
}

type sessionManager struct {
	repo repository.SessionRepository
	idle time.Duration
	now  func() time.Time
}

// NewSessionManager 创建一个新的 SessionManager 实例。
func NewSessionManager(repo repository.SessionRepository, idle time.Duration) SessionManager {
	return &sessionManager{repo: repo, idle: idle, now: time.Now}
}

func (m *sessionManager) IdleTimeout() time.Duration {
	return m.idle
}

// Create 从用户记录复制身份快照并保存。
func (m *sessionManager) Create(ctx context.Context, user *model.User) (*model.SessionContext, error) {
	s := model.NewSessionContext(uuid.NewString(), user, m.now())
	if err := m.repo.Save(ctx, s, m.idle); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return s, nil
}

// Get 只在请求开始时检查过期；未过期则刷新 LastSeenAt 与 TTL。
func (m *sessionManager) Get(ctx context.Context, id string) (*model.SessionContext, error) {
	if id == "" {
		return nil, ErrAuthenticationRequired
	}
	s, err := m.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrAuthenticationRequired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	now := m.now()
	if s.Expired(now, m.idle) {
		_ = m.repo.Delete(ctx, id)
		return nil, ErrAuthenticationRequired
	}

	s.LastSeenAt = now
	if err := m.repo.Save(ctx, s, m.idle); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return s, nil
}

// Destroy 删除会话。
func (m *sessionManager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}
