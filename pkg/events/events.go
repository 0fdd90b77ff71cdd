// Package events defines the payloads published to Kafka.
package events

import (
	"fmt"
	"time"
)

// ConversationLogged is emitted after a conversation turn has been persisted.
type ConversationLogged struct {
	EntryID     uint      `json:"entry_id"`
	OwnerID     uint      `json:"owner_id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Timestamp   time.Time `json:"timestamp"`
}

// Key partitions events by owner so one user's turns stay ordered.
func (e ConversationLogged) Key() string {
	return fmt.Sprintf("owner-%d", e.OwnerID)
}

// AttemptKey identifies the event when counting failed processing attempts.
func (e ConversationLogged) AttemptKey() string {
	return fmt.Sprintf("kafka:attempts:entry:%d", e.EntryID)
}
