package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docqa/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conv *model.Conversation) error {
	if err := r.db.Create(conv).Error; err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	return nil
}

// ListByUserID returns the user's conversations joined with their
// document's name and source kind, newest first.
func (r *ConversationRepository) ListByUserID(userID uint, limit int) ([]model.ConversationWithDocument, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var rows []model.ConversationWithDocument
	err := r.db.
		Table("conversations AS c").
		Select("c.id, c.question, c.answer, c.rag_type, c.created_at, d.filename AS document_name, d.source_type").
		Joins("JOIN documents d ON c.document_id = d.id").
		Where("c.user_id = ?", userID).
		Order("c.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return rows, nil
}
