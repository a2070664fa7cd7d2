package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"burrow/internal/db"
	"burrow/internal/middleware"
	"burrow/internal/models"
	"burrow/internal/services"
	"burrow/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler backs the user-management panel. Routes are mounted behind
// middleware.AdminRequired, so handlers trust the admin flag.
type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{admin: services.NewAdminService(db.DB)}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load users")
		return
	}

	Render(c, http.StatusOK, "admin/users.html", gin.H{
		"Users": users,
		"Title": "User management",
	})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor := c.MustGet(middleware.CheckUserKey).(*models.User)
	targetID := utils.StringToUint(c.Param("id"))

	err := h.admin.DeleteUser(targetID, actor.ID, actor.IsAdmin)
	switch {
	case errors.Is(err, services.ErrSelfDeleteBlocked):
		RenderError(c, http.StatusBadRequest, "You cannot delete your own account from the admin panel")
	case errors.Is(err, services.ErrNotFound):
		RenderError(c, http.StatusNotFound, "User not found")
	case err != nil:
		RenderError(c, http.StatusInternalServerError, "Could not delete the account")
	default:
		c.Redirect(http.StatusFound, "/admin/users")
	}
}

func (h *AdminHandler) DeleteUserThreads(c *gin.Context) {
	actor := c.MustGet(middleware.CheckUserKey).(*models.User)
	targetID := utils.StringToUint(c.Param("id"))

	count, err := h.admin.DeleteUserThreads(targetID, actor.IsAdmin)
	switch {
	case errors.Is(err, services.ErrNotFound):
		RenderError(c, http.StatusNotFound, "User not found")
	case err != nil:
		RenderError(c, http.StatusInternalServerError, "Could not delete threads")
	default:
		Render(c, http.StatusOK, "admin/users.html", gin.H{
			"Success": fmt.Sprintf("Deleted %d threads", count),
			"Users":   h.mustListUsers(),
			"Title":   "User management",
		})
	}
}

func (h *AdminHandler) BulkDeleteUsers(c *gin.Context) {
	actor := c.MustGet(middleware.CheckUserKey).(*models.User)

	var ids []uint
	for _, raw := range c.PostFormArray("user_ids") {
		if id := utils.StringToUint(raw); id != 0 {
			ids = append(ids, id)
		}
	}

	count, err := h.admin.BulkDeleteUsers(ids, actor.ID, actor.IsAdmin)
	switch {
	case errors.Is(err, services.ErrNoTargets):
		Render(c, http.StatusBadRequest, "admin/users.html", gin.H{
			"Error": "No users selected (or only your own account)",
			"Users": h.mustListUsers(),
			"Title": "User management",
		})
	case err != nil:
		RenderError(c, http.StatusInternalServerError, "Bulk delete failed")
	default:
		Render(c, http.StatusOK, "admin/users.html", gin.H{
			"Success": fmt.Sprintf("Deleted %d accounts", count),
			"Users":   h.mustListUsers(),
			"Title":   "User management",
		})
	}
}

func (h *AdminHandler) mustListUsers() []models.User {
	users, _ := h.admin.ListUsers()
	return users
}
