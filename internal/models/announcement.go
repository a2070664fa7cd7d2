package models

import (
	"time"
)

// Announcement is a site-wide post only admins can publish.
type Announcement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	ImageURL  string    `gorm:"size:256" json:"image_url"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
