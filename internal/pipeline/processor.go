// Package pipeline 定义了对话事件的后台处理流程。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tigersai/internal/model"
	"tigersai/pkg/events"
	"tigersai/pkg/log"
)

// ConversationIndexer 把一条对话写入检索索引。
type ConversationIndexer interface {
	IndexConversation(ctx context.Context, doc model.ConversationDocument) error
}

// Processor 消费 conversation.logged 事件并写入 Elasticsearch。
type Processor struct {
	indexer ConversationIndexer
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(indexer ConversationIndexer) *Processor {
	return &Processor{indexer: indexer}
}

// Process 处理单个事件。缺少 entry_id 的事件无法幂等写入，直接报错。
func (p *Processor) Process(ctx context.Context, event events.ConversationLogged) error {
	if event.EntryID == 0 {
		return errors.New("conversation event without entry id")
	}
	log.Infof("[Processor] 开始索引对话, EntryID: %d, OwnerID: %d", event.EntryID, event.OwnerID)

	role, err := model.ParseRole(event.Role)
	if err != nil {
		// 角色只用于展示，未知值按原样保存
		role = model.Role(strings.ToLower(event.Role))
	}
	doc := model.ConversationDocument{
		DocID:       strconv.FormatUint(uint64(event.EntryID), 10),
		EntryID:     event.EntryID,
		OwnerID:     event.OwnerID,
		Username:    event.Username,
		Role:        role,
		UserMessage: event.UserMessage,
		BotResponse: event.BotResponse,
		Timestamp:   event.Timestamp,
	}
	if err := p.indexer.IndexConversation(ctx, doc); err != nil {
		return fmt.Errorf("index conversation %d: %w", event.EntryID, err)
	}
	log.Infof("[Processor] 对话索引完成, EntryID: %d", event.EntryID)
	return nil
}
