package services

import (
	"math"

	"burrow/internal/models"

	"gorm.io/gorm"
)

// Feed sort modes. "new" is the default and also the tie-break for the
// other two.
const (
	SortNew       = "new"
	SortTop       = "top"
	SortDiscussed = "discussed"
)

const (
	// DefaultPerPage is what handlers use when the request has no explicit
	// page size.
	DefaultPerPage = 20
	maxPerPage     = 50
)

type FeedService struct {
	db *gorm.DB
}

func NewFeedService(database *gorm.DB) *FeedService {
	return &FeedService{db: database}
}

// FeedPage carries one page of threads plus the pagination facts the
// templates need.
type FeedPage struct {
	Threads    []models.Thread
	Page       int
	PerPage    int
	Total      int64
	TotalPages int
	Sort       string
}

// Threads returns one page of the main feed. Page is clamped to >= 1 and
// perPage to [1,50]; an unknown sort falls back to recency.
func (s *FeedService) Threads(page, perPage int, sort string) (*FeedPage, error) {
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
	if err := s.db.Model(&models.Thread{}).Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	query := s.db.Preload("User")
	switch sort {
	case SortTop:
		query = query.Order("score DESC, created_at DESC")
	case SortDiscussed:
		query = query.Order("comment_count DESC, created_at DESC")
	default:
		sort = SortNew
		query = query.Order("created_at DESC")
	}

	var threads []models.Thread
	if err := query.Limit(perPage).Offset((page - 1) * perPage).Find(&threads).Error; err != nil {
		return nil, err
	}

	return &FeedPage{
		Threads:    threads,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		Sort:       sort,
	}, nil
}
