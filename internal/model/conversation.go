package model

import "time"

// Conversation is one question/answer pair. Append-only.
type Conversation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	Question   string    `gorm:"type:text;not null" json:"question"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	RAGType    string    `gorm:"size:32;not null" json:"rag_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConversationWithDocument is a history row joined with its document's
// display name and source kind.
type ConversationWithDocument struct {
	ID           uint      `json:"id"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	RAGType      string    `json:"rag_type"`
	CreatedAt    time.Time `json:"created_at"`
	DocumentName string    `json:"document_name"`
	SourceType   string    `json:"source_type"`
}
