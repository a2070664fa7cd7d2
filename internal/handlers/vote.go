package handlers

import (
	"errors"
	"net/http"

	"burrow/internal/db"
	"burrow/internal/middleware"
	"burrow/internal/models"
	"burrow/internal/services"
	"burrow/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{votes: services.NewVoteService(db.DB)}
}

// Vote applies a +1/-1 on a thread or comment and returns the new score
// plus the caller's vote state as JSON for the page script.
func (h *VoteHandler) Vote(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	itemType := c.Param("type") // "thread" or "comment"
	itemID := utils.StringToUint(c.Param("id"))
	value := utils.StringToInt(c.PostForm("value"))

	var result services.VoteResult
	var err error
	switch itemType {
	case "thread":
		result, err = h.votes.VoteThread(itemID, user.ID, value)
	case "comment":
		result, err = h.votes.VoteComment(itemID, user.ID, value)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown item type"})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "vote failed"})
	default:
		// Thread scores feed the "top" sort.
		if itemType == "thread" {
			invalidateFeed()
		}
		c.JSON(http.StatusOK, result)
	}
}
