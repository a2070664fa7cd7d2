package services

import (
	"errors"
	"sort"

	"burrow/internal/models"

	"gorm.io/gorm"
)

type AdminService struct {
	db *gorm.DB
}

func NewAdminService(database *gorm.DB) *AdminService {
	return &AdminService{db: database}
}

// ListUsers returns every account, oldest first, for the admin panel.
func (s *AdminService) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("id ASC").Find(&users).Error
	return users, err
}

// DeleteUser hard-deletes an account and everything it owns: its threads
// (with their comments and votes), its comments on other threads, and its
// remaining vote rows. Scores and comment counts on surviving items are
// adjusted in the same transaction so the denormalized counters stay equal
// to what the remaining rows sum to.
func (s *AdminService) DeleteUser(targetUserID, actorUserID uint, actorIsAdmin bool) error {
	if !actorIsAdmin {
		return ErrForbidden
	}
	if targetUserID == actorUserID {
		return ErrSelfDeleteBlocked
	}

	var user models.User
	if err := s.db.First(&user, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := purgeUser(tx, targetUserID); err != nil {
			return err
		}
		return tx.Delete(&models.User{}, targetUserID).Error
	})
}

// purgeUser removes one user's content inside an open transaction, fixing
// up every counter their rows contributed to.
func purgeUser(tx *gorm.DB, userID uint) error {
	// Their threads take all dependents with them.
	var threadIDs []uint
	if err := tx.Model(&models.Thread{}).Where("user_id = ?", userID).
		Pluck("id", &threadIDs).Error; err != nil {
		return err
	}
	if err := cascadeDeleteThreads(tx, threadIDs); err != nil {
		return err
	}

	// Votes they cast on surviving items are retracted with score fixups.
	var threadVotes []models.ThreadVote
	if err := tx.Where("user_id = ?", userID).Find(&threadVotes).Error; err != nil {
		return err
	}
	for _, v := range threadVotes {
		if err := tx.Model(&models.Thread{}).Where("id = ?", v.ThreadID).
			UpdateColumn("score", gorm.Expr("score - ?", v.Value)).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.ThreadVote{}).Error; err != nil {
		return err
	}

	var commentVotes []models.CommentVote
	if err := tx.Where("user_id = ?", userID).Find(&commentVotes).Error; err != nil {
		return err
	}
	for _, v := range commentVotes {
		if err := tx.Model(&models.Comment{}).Where("id = ?", v.CommentID).
			UpdateColumn("score", gorm.Expr("score - ?", v.Value)).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.CommentVote{}).Error; err != nil {
		return err
	}

	// Comments they left on other people's threads, subtree included.
	var comments []models.Comment
	if err := tx.Where("user_id = ?", userID).Find(&comments).Error; err != nil {
		return err
	}
	removedPerThread := map[uint]int{}
	seen := map[uint]bool{}
	for _, c := range comments {
		if seen[c.ID] {
			continue
		}
		ids, err := commentSubtree(tx, c.ID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			seen[id] = true
		}
		removedPerThread[c.ThreadID] += len(ids)
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}
	for threadID, n := range removedPerThread {
		res := tx.Model(&models.Thread{}).
			Where("id = ? AND comment_count >= ?", threadID, n).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", n))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Model(&models.Thread{}).Where("id = ?", threadID).
				UpdateColumn("comment_count", 0).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteUserThreads wipes one user's threads and reports how many went.
func (s *AdminService) DeleteUserThreads(targetUserID uint, actorIsAdmin bool) (int, error) {
	if !actorIsAdmin {
		return 0, ErrForbidden
	}

	var user models.User
	if err := s.db.First(&user, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	var threadIDs []uint
	if err := s.db.Model(&models.Thread{}).Where("user_id = ?", targetUserID).
		Pluck("id", &threadIDs).Error; err != nil {
		return 0, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return cascadeDeleteThreads(tx, threadIDs)
	})
	if err != nil {
		return 0, err
	}
	return len(threadIDs), nil
}

// BulkDeleteUsers deletes several accounts at once. Duplicates collapse and
// the acting admin is silently skipped; an effectively empty selection is
// ErrNoTargets.
func (s *AdminService) BulkDeleteUsers(targetUserIDs []uint, actorUserID uint, actorIsAdmin bool) (int, error) {
	if !actorIsAdmin {
		return 0, ErrForbidden
	}

	unique := map[uint]bool{}
	for _, id := range targetUserIDs {
		if id != 0 && id != actorUserID {
			unique[id] = true
		}
	}
	if len(unique) == 0 {
		return 0, ErrNoTargets
	}

	ids := make([]uint, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var users []models.User
	if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return 0, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range users {
			if err := purgeUser(tx, u.ID); err != nil {
				return err
			}
			if err := tx.Delete(&models.User{}, u.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// EnsureAdminFlag promotes a user on login when their username is in the
// configured allow-list. Returns true when a promotion happened.
func (s *AdminService) EnsureAdminFlag(user *models.User, adminUsernames map[string]bool) (bool, error) {
	if user == nil || user.IsAdmin || !adminUsernames[user.Username] {
		return false, nil
	}
	if err := s.db.Model(user).UpdateColumn("is_admin", true).Error; err != nil {
		return false, err
	}
	user.IsAdmin = true
	return true, nil
}
