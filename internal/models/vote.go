package models

import (
	"time"
)

// Votes live in two parallel tables so each can carry a composite unique
// index on (user, item). A missing row means "no vote"; Value is always
// exactly +1 or -1, zero is never stored.

type ThreadVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_thread_vote" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ThreadID  uint      `gorm:"not null;uniqueIndex:idx_thread_vote;index" json:"thread_id"`
	Thread    Thread    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"thread"`
	Value     int       `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt time.Time `json:"created_at"`
}

type CommentVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_vote" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_vote;index" json:"comment_id"`
	Comment   Comment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comment"`
	Value     int       `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt time.Time `json:"created_at"`
}
