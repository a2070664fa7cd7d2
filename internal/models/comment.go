package models

import (
	"time"
)

type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ThreadID uint   `gorm:"not null;index" json:"thread_id"`
	Thread   Thread `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"thread"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	// ParentID nests a comment under another comment of the same thread.
	ParentID *uint    `gorm:"index" json:"parent_id"`
	Parent   *Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`
	// ReplyToUserID is a "@user" annotation, independent of ParentID nesting.
	ReplyToUserID *uint     `gorm:"index" json:"reply_to_user_id"`
	ReplyToUser   *User     `gorm:"foreignKey:ReplyToUserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"reply_to_user"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Score         int       `gorm:"default:0;not null" json:"score"`
	ImageURL      string    `gorm:"size:256" json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
}
