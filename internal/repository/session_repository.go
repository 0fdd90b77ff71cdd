package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"tigersai/internal/model"
)

// ErrSessionNotFound 会话不存在或已过期。
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository 定义了会话记录的存取操作。
type SessionRepository interface {
	Save(ctx context.Context, s *model.SessionContext, ttl time.Duration) error
	Get(ctx context.Context, id string) (*model.SessionContext, error)
	Delete(ctx context.Context, id string) error
}

type redisSessionRepository struct {
	redisClient *redis.Client
}

// NewSessionRepository 创建一个基于 Redis 的 SessionRepository。
func NewSessionRepository(redisClient *redis.Client) SessionRepository {
	return &redisSessionRepository{redisClient: redisClient}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Save 写入会话并刷新 TTL。
func (r *redisSessionRepository) Save(ctx context.Context, s *model.SessionContext, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.redisClient.Set(ctx, sessionKey(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get 读取会话，不存在时返回 ErrSessionNotFound。
func (r *redisSessionRepository) Get(ctx context.Context, id string) (*model.SessionContext, error) {
	data, err := r.redisClient.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var s model.SessionContext
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Delete 删除会话，删除不存在的会话不算错误。
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.redisClient.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
