package model

import "time"

// AuthToken is an opaque server-side session token. A token is valid while
// it exists and now < ExpiresAt; logout deletes the row. A user may hold
// several live tokens at once.
type AuthToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}
