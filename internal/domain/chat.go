package domain

import "time"

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in a user's chat history. History is
// append-only: two turns (question, answer) are written per successful
// RAG query and never mutated afterwards.
type ConversationTurn struct {
	ID        int64     `json:"id_chat"    db:"id_chat"`
	UserID    int64     `json:"id_user"    db:"id_user"`
	Role      string    `json:"role"       db:"role"`
	Message   string    `json:"message"    db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
