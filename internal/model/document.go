package model

import "time"

// Document records the metadata of one successful ingestion. Rows are
// written once and never updated.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Filename   string    `gorm:"size:256;not null" json:"filename"`
	FileSize   int       `json:"file_size"`
	Chunks     int       `json:"chunks"`
	WordCount  int       `json:"word_count"`
	SourceType string    `gorm:"size:16;not null;default:file" json:"source_type"`
	CreatedAt  time.Time `json:"created_at"`
}
