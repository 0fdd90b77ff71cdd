package model

import "time"

// ConversationDocument 是写入 Elasticsearch 的对话文档。
// DocID 与 ConversationEntry.ID 一一对应，重复索引会覆盖同一文档。
type ConversationDocument struct {
	DocID       string    `json:"doc_id"`
	EntryID     uint      `json:"entry_id"`
	OwnerID     uint      `json:"owner_id"`
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Timestamp   time.Time `json:"timestamp"`
}

// SearchHit 定义了返回给前端的检索结果结构。
type SearchHit struct {
	EntryID     uint      `json:"_id"`
	OwnerID     uint      `json:"user_id"`
	UserMessage string    `json:"userMessage"`
	BotResponse string    `json:"botResponse"`
	Timestamp   LocalTime `json:"timestamp"`
	Score       float64   `json:"score"`
}
