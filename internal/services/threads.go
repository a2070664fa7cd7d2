package services

import (
	"errors"
	"mime/multipart"
	"strings"
	"time"
	"unicode/utf8"

	"burrow/internal/models"

	"gorm.io/gorm"
)

const (
	maxTitleLen       = 100
	maxContentLen     = 2000
	threadsPerMinute  = 5
	rateLimitWindow   = 60 * time.Second
	fallbackTitleText = "Untitled"
)

type ThreadService struct {
	db       *gorm.DB
	uploader Uploader
}

func NewThreadService(database *gorm.DB, uploader Uploader) *ThreadService {
	return &ThreadService{db: database, uploader: uploader}
}

// Create validates and inserts a new thread. The rate limit is a trailing
// 60-second window counted straight off the threads table; the limiter keeps
// no state of its own.
func (s *ThreadService) Create(userID uint, title, content string, image *multipart.FileHeader) (*models.Thread, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	// Caps are in characters, not bytes; multibyte titles are the norm.
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, ErrTitleTooLong
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return nil, ErrContentTooLong
	}
	if content == "" {
		return nil, ErrEmptyContent
	}
	if title == "" {
		title = fallbackTitleText
	}

	windowStart := time.Now().Add(-rateLimitWindow)
	var recent int64
	if err := s.db.Model(&models.Thread{}).
		Where("user_id = ? AND created_at >= ?", userID, windowStart).
		Count(&recent).Error; err != nil {
		return nil, err
	}
	if recent >= threadsPerMinute {
		return nil, ErrRateLimited
	}

	// Upload before insert so a rejected image never leaves a thread behind.
	imageURL := ""
	if image != nil {
		data, mime, err := ReadImageUpload(image, MaxImageBytes)
		if err != nil {
			return nil, err
		}
		imageURL, err = s.uploader.Upload(data, mime, "threads")
		if err != nil {
			return nil, err
		}
	}

	thread := models.Thread{
		UserID:   userID,
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
	}
	if err := s.db.Create(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

// Get loads a thread with its author.
func (s *ThreadService) Get(threadID uint) (*models.Thread, error) {
	var thread models.Thread
	if err := s.db.Preload("User").First(&thread, threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &thread, nil
}

// Delete removes a thread when the actor owns it or is an admin. Comments,
// comment votes and thread votes go in the same transaction so no dependent
// row outlives the thread.
func (s *ThreadService) Delete(threadID, actorUserID uint, actorIsAdmin bool) error {
	var thread models.Thread
	if err := s.db.First(&thread, threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !actorIsAdmin && thread.UserID != actorUserID {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return cascadeDeleteThreads(tx, []uint{threadID})
	})
}

// cascadeDeleteThreads removes threads and every row hanging off them, in
// dependency order. Callers supply the transaction.
func cascadeDeleteThreads(tx *gorm.DB, threadIDs []uint) error {
	if len(threadIDs) == 0 {
		return nil
	}

	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).Where("thread_id IN ?", threadIDs).
		Pluck("id", &commentIDs).Error; err != nil {
		return err
	}

	if len(commentIDs) > 0 {
		if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id IN ?", threadIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("thread_id IN ?", threadIDs).Delete(&models.ThreadVote{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", threadIDs).Delete(&models.Thread{}).Error
}

// ListByUser returns a user's threads, newest first.
func (s *ThreadService) ListByUser(userID uint, limit int) ([]models.Thread, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	var threads []models.Thread
	err := s.db.Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&threads).Error
	return threads, err
}
