package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"docqa/internal/model"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(token *model.AuthToken) error {
	if err := r.db.Create(token).Error; err != nil {
		return fmt.Errorf("create auth token failed: %w", err)
	}
	return nil
}

// GetValid returns the token record iff it exists and has not expired.
// Expired rows are filtered here, not reaped; they stay in storage.
func (r *TokenRepository) GetValid(token string, now time.Time) (*model.AuthToken, error) {
	var record model.AuthToken
	err := r.db.Where("token = ? AND expires_at > ?", token, now).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query auth token failed: %w", err)
	}
	return &record, nil
}

// Delete removes the token record. Deleting an absent token is not an error.
func (r *TokenRepository) Delete(token string) error {
	if err := r.db.Where("token = ?", token).Delete(&model.AuthToken{}).Error; err != nil {
		return fmt.Errorf("delete auth token failed: %w", err)
	}
	return nil
}
