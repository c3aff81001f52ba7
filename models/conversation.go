package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation groups messages under one opaque identifier. The message core
// carries the identifier as a field value and never dereferences it.
type Conversation struct {
	ConversationID   string   `json:"conversation_id"`
	Title            string   `json:"title"`
	ContactIDs       []string `json:"contact_ids"`
	CreatedTimestamp int64    `json:"created_timestamp"`
}

// NewConversation opens a conversation with the given participants under a
// fresh identifier.
func NewConversation(title string, contactIDs ...string) *Conversation {
	return &Conversation{
		ConversationID:   uuid.NewString(),
		Title:            title,
		ContactIDs:       contactIDs,
		CreatedTimestamp: time.Now().Unix(),
	}
}
