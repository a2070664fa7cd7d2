package services

import (
	"math"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"burrow/internal/models"

	"gorm.io/gorm"
)

const (
	maxAnnouncementTitleLen   = 200
	maxAnnouncementContentLen = 5000
)

// AnnouncementService handles the admin-published site news column.
type AnnouncementService struct {
	db       *gorm.DB
	uploader Uploader
}

func NewAnnouncementService(database *gorm.DB, uploader Uploader) *AnnouncementService {
	return &AnnouncementService{db: database, uploader: uploader}
}

func (s *AnnouncementService) Create(actorUserID uint, actorIsAdmin bool, title, content string, image *multipart.FileHeader) (*models.Announcement, error) {
	if !actorIsAdmin {
		return nil, ErrForbidden
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if utf8.RuneCountInString(title) > maxAnnouncementTitleLen {
		return nil, ErrTitleTooLong
	}
	if utf8.RuneCountInString(content) > maxAnnouncementContentLen {
		return nil, ErrContentTooLong
	}
	if title == "" || content == "" {
		return nil, ErrEmptyContent
	}

	imageURL := ""
	if image != nil {
		data, mime, err := ReadImageUpload(image, MaxImageBytes)
		if err != nil {
			return nil, err
		}
		imageURL, err = s.uploader.Upload(data, mime, "announcements")
		if err != nil {
			return nil, err
		}
	}

	ann := models.Announcement{
		Title:    title,
		Content:  content,
		AuthorID: actorUserID,
		ImageURL: imageURL,
	}
	if err := s.db.Create(&ann).Error; err != nil {
		return nil, err
	}
	return &ann, nil
}

// AnnouncementPage is one page of announcements, newest first.
type AnnouncementPage struct {
	Announcements []models.Announcement
	Page          int
	TotalPages    int
}

func (s *AnnouncementService) List(page, perPage int) (*AnnouncementPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	var total int64
	if err := s.db.Model(&models.Announcement{}).Count(&total).Error; err != nil {
		return nil, err
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var anns []models.Announcement
	if err := s.db.Preload("Author").
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&anns).Error; err != nil {
		return nil, err
	}

	return &AnnouncementPage{Announcements: anns, Page: page, TotalPages: totalPages}, nil
}
