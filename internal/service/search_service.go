package service

import (
	"context"
	"fmt"
	"strings"

	"tigersai/internal/model"
	"tigersai/internal/policy"
)

// defaultSearchSize 单次检索返回的最大条数。
const defaultSearchSize = 20

// ConversationSearcher 在对话索引中按 owner 检索。
type ConversationSearcher interface {
	SearchConversations(ctx context.Context, ownerID uint, query string, size int) ([]model.SearchHit, error)
}

// SearchService 定义了对话全文检索的接口。
type SearchService interface {
	Search(ctx context.Context, caller *model.SessionContext, query string, target *uint) ([]model.SearchHit, error)
}

type searchService struct {
	searcher ConversationSearcher
}

// NewSearchService 创建一个新的 SearchService。searcher 为 nil 时检索不可用。
func NewSearchService(searcher ConversationSearcher) SearchService {
	return &searchService{searcher: searcher}
}

// Search 只在访问策略允许的 owner 范围内检索。
func (s *searchService) Search(ctx context.Context, caller *model.SessionContext, query string, target *uint) ([]model.SearchHit, error) {
	owner, err := policy.ResolveQueryTarget(caller, target)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, clientError(ErrValidation, "Query is required")
	}
	if s.searcher == nil {
		return nil, ErrUnavailable
	}
	hits, err := s.searcher.SearchConversations(ctx, owner, query, defaultSearchSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return hits, nil
}
