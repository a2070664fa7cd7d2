package services

import (
	"errors"
	"mime/multipart"
	"strings"

	"burrow/internal/models"

	"gorm.io/gorm"
)

type CommentService struct {
	db       *gorm.DB
	uploader Uploader
}

func NewCommentService(database *gorm.DB, uploader Uploader) *CommentService {
	return &CommentService{db: database, uploader: uploader}
}

// Create validates and inserts a comment. parentID nests it under another
// comment of the same thread; replyToUserID tags a user independently of
// nesting. The insert and the thread's comment_count bump share one
// transaction.
func (s *CommentService) Create(threadID, authorID uint, content string, parentID, replyToUserID *uint, image *multipart.FileHeader) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	var thread models.Thread
	if err := s.db.First(&thread, threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if parentID != nil {
		var parent models.Comment
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.ThreadID != threadID {
			return nil, ErrParentMismatch
		}
	}

	if replyToUserID != nil {
		var target models.User
		if err := s.db.First(&target, *replyToUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrReplyTargetNotFound
			}
			return nil, err
		}
	}

	imageURL := ""
	if image != nil {
		data, mime, err := ReadImageUpload(image, MaxImageBytes)
		if err != nil {
			return nil, err
		}
		imageURL, err = s.uploader.Upload(data, mime, "comments")
		if err != nil {
			return nil, err
		}
	}

	comment := models.Comment{
		ThreadID:      threadID,
		UserID:        authorID,
		ParentID:      parentID,
		ReplyToUserID: replyToUserID,
		Content:       content,
		ImageURL:      imageURL,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Thread{}).Where("id = ?", threadID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes a comment and its whole reply subtree plus their votes.
// The thread's comment_count drops by the number of removed comments,
// floored at zero.
func (s *CommentService) Delete(threadID, commentID, actorUserID uint, actorIsAdmin bool) error {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if comment.ThreadID != threadID {
		return ErrNotFound
	}
	if !actorIsAdmin && comment.UserID != actorUserID {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		ids, err := commentSubtree(tx, commentID)
		if err != nil {
			return err
		}

		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		// Two-step floor keeps the decrement portable across Postgres and
		// the SQLite test databases.
		res := tx.Model(&models.Thread{}).
			Where("id = ? AND comment_count >= ?", threadID, len(ids)).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", len(ids)))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Model(&models.Thread{}).Where("id = ?", threadID).
				UpdateColumn("comment_count", 0).Error
		}
		return nil
	})
}

// commentSubtree gathers a comment's ID plus all descendant reply IDs by
// walking parent links level by level.
func commentSubtree(tx *gorm.DB, rootID uint) ([]uint, error) {
	all := []uint{rootID}
	frontier := []uint{rootID}

	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		all = append(all, children...)
		frontier = children
	}
	return all, nil
}

// CommentNode is a comment with its replies grouped under it. The tree is
// rebuilt from parent IDs at read time; nothing cyclic is stored.
type CommentNode struct {
	models.Comment
	Replies []*CommentNode
}

// Tree loads a thread's comments oldest-first and groups children under
// their parents. Comments whose parent is gone surface at the top level.
func (s *CommentService) Tree(threadID uint) ([]*CommentNode, error) {
	var comments []models.Comment
	if err := s.db.Preload("User").Preload("ReplyToUser").
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	nodes := make(map[uint]*CommentNode, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &CommentNode{Comment: comments[i]}
	}

	var roots []*CommentNode
	for i := range comments {
		node := nodes[comments[i].ID]
		if pid := comments[i].ParentID; pid != nil {
			if parent, ok := nodes[*pid]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}
