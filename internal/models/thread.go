package models

import (
	"time"
)

type Thread struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title   string `gorm:"size:100;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	// Denormalized counters, adjusted in the same transaction as the rows
	// they mirror; never recomputed lazily.
	Score        int       `gorm:"default:0;not null" json:"score"`
	CommentCount int       `gorm:"default:0;not null" json:"comment_count"`
	ImageURL     string    `gorm:"size:256" json:"image_url"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
