package services

import (
	"errors"

	"burrow/internal/models"

	"gorm.io/gorm"
)

// VoteService applies the toggle voting model: voting the same direction
// twice removes the vote, voting the opposite direction flips it. The
// denormalized score on the item is adjusted by the exact delta inside the
// same transaction, so score == sum(votes) holds at every commit point.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(database *gorm.DB) *VoteService {
	return &VoteService{db: database}
}

// VoteResult reports the item's score after the mutation and the caller's
// resulting vote: +1, -1, or 0 for "no vote".
type VoteResult struct {
	Score  int `json:"score"`
	MyVote int `json:"my_vote"`
}

// VoteThread records, removes or flips userID's vote on a thread.
func (s *VoteService) VoteThread(threadID, userID uint, value int) (VoteResult, error) {
	var result VoteResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var thread models.Thread
		if err := tx.First(&thread, threadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// A missing item outranks a bad value, so this comes second.
		if value != 1 && value != -1 {
			return ErrInvalidValue
		}

		var existing models.ThreadVote
		err := tx.Where("user_id = ? AND thread_id = ?", userID, threadID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.ThreadVote{UserID: userID, ThreadID: threadID, Value: value}
			if err := tx.Create(&vote).Error; err != nil {
				// A concurrent request inserted the row first; the unique
				// index on (user_id, thread_id) rejects ours. Re-read and
				// fall through to the update/remove branches.
				if !errors.Is(err, gorm.ErrDuplicatedKey) {
					return err
				}
				if err := tx.Where("user_id = ? AND thread_id = ?", userID, threadID).First(&existing).Error; err != nil {
					return err
				}
				return s.resolveThreadVote(tx, &existing, value, &result)
			}
			result.MyVote = value
			return s.adjustThreadScore(tx, threadID, value, &result)
		case err != nil:
			return err
		default:
			return s.resolveThreadVote(tx, &existing, value, &result)
		}
	})
	if err != nil {
		return VoteResult{}, err
	}
	return result, nil
}

// resolveThreadVote handles the two existing-row cases: same direction
// removes the vote, opposite direction overwrites it.
func (s *VoteService) resolveThreadVote(tx *gorm.DB, existing *models.ThreadVote, value int, result *VoteResult) error {
	if existing.Value == value {
		if err := tx.Delete(existing).Error; err != nil {
			return err
		}
		result.MyVote = 0
		return s.adjustThreadScore(tx, existing.ThreadID, -value, result)
	}

	if err := tx.Model(existing).UpdateColumn("value", value).Error; err != nil {
		return err
	}
	result.MyVote = value
	return s.adjustThreadScore(tx, existing.ThreadID, 2*value, result)
}

func (s *VoteService) adjustThreadScore(tx *gorm.DB, threadID uint, delta int, result *VoteResult) error {
	if err := tx.Model(&models.Thread{}).Where("id = ?", threadID).
		UpdateColumn("score", gorm.Expr("score + ?", delta)).Error; err != nil {
		return err
	}

	var thread models.Thread
	if err := tx.Select("score").First(&thread, threadID).Error; err != nil {
		return err
	}
	result.Score = thread.Score
	return nil
}

// VoteComment is the comment-table twin of VoteThread.
func (s *VoteService) VoteComment(commentID, userID uint, value int) (VoteResult, error) {
	var result VoteResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if value != 1 && value != -1 {
			return ErrInvalidValue
		}

		var existing models.CommentVote
		err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.CommentVote{UserID: userID, CommentID: commentID, Value: value}
			if err := tx.Create(&vote).Error; err != nil {
				if !errors.Is(err, gorm.ErrDuplicatedKey) {
					return err
				}
				if err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&existing).Error; err != nil {
					return err
				}
				return s.resolveCommentVote(tx, &existing, value, &result)
			}
			result.MyVote = value
			return s.adjustCommentScore(tx, commentID, value, &result)
		case err != nil:
			return err
		default:
			return s.resolveCommentVote(tx, &existing, value, &result)
		}
	})
	if err != nil {
		return VoteResult{}, err
	}
	return result, nil
}

func (s *VoteService) resolveCommentVote(tx *gorm.DB, existing *models.CommentVote, value int, result *VoteResult) error {
	if existing.Value == value {
		if err := tx.Delete(existing).Error; err != nil {
			return err
		}
		result.MyVote = 0
		return s.adjustCommentScore(tx, existing.CommentID, -value, result)
	}

	if err := tx.Model(existing).UpdateColumn("value", value).Error; err != nil {
		return err
	}
	result.MyVote = value
	return s.adjustCommentScore(tx, existing.CommentID, 2*value, result)
}

func (s *VoteService) adjustCommentScore(tx *gorm.DB, commentID uint, delta int, result *VoteResult) error {
	if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
		UpdateColumn("score", gorm.Expr("score + ?", delta)).Error; err != nil {
		return err
	}

	var comment models.Comment
	if err := tx.Select("score").First(&comment, commentID).Error; err != nil {
		return err
	}
	result.Score = comment.Score
	return nil
}

// MyThreadVote returns the user's current vote on a thread, 0 if none.
func (s *VoteService) MyThreadVote(threadID, userID uint) int {
	var vote models.ThreadVote
	if err := s.db.Where("user_id = ? AND thread_id = ?", userID, threadID).First(&vote).Error; err != nil {
		return 0
	}
	return vote.Value
}

// MyCommentVotes returns the user's votes for a set of comments keyed by
// comment ID; absent entries mean no vote.
func (s *VoteService) MyCommentVotes(commentIDs []uint, userID uint) map[uint]int {
	votes := make(map[uint]int, len(commentIDs))
	if len(commentIDs) == 0 {
		return votes
	}

	var rows []models.CommentVote
	s.db.Where("user_id = ? AND comment_id IN ?", userID, commentIDs).Find(&rows)
	for _, v := range rows {
		votes[v.CommentID] = v.Value
	}
	return votes
}
