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

type UserHandler struct {
	accounts *services.AccountService
	threads  *services.ThreadService
}

func NewUserHandler(uploader services.Uploader) *UserHandler {
	return &UserHandler{
		accounts: services.NewAccountService(db.DB, uploader),
		threads:  services.NewThreadService(db.DB, uploader),
	}
}

// Profile is a user's public page with their recent threads.
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.accounts.GetByUsername(c.Param("username"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "User not found")
		return
	}

	threads, err := h.threads.ListByUser(user.ID, 50)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load threads")
		return
	}

	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"ProfileUser": user,
		"Threads":     threads,
		"Title":       user.Name(),
	})
}

func (h *UserHandler) ShowSettings(c *gin.Context) {
	Render(c, http.StatusOK, "user/settings.html", gin.H{"Title": "Settings"})
}

func (h *UserHandler) UpdateSettings(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	upd := services.SettingsUpdate{
		DisplayName: c.PostForm("display_name"),
		Bio:         c.PostForm("bio"),
		AvatarURL:   c.PostForm("avatar_url"),
	}
	if raw := c.PostForm("age"); raw != "" {
		age := utils.StringToInt(raw)
		if age > 0 {
			upd.Age = &age
		}
	}
	upd.AvatarFile, _ = c.FormFile("avatar")

	err := h.accounts.UpdateSettings(user, upd)
	switch {
	case errors.Is(err, services.ErrBadImageType):
		Render(c, http.StatusBadRequest, "user/settings.html", gin.H{"Error": "Only JPEG, PNG, GIF and WebP avatars are allowed"})
	case errors.Is(err, services.ErrImageTooLarge):
		Render(c, http.StatusBadRequest, "user/settings.html", gin.H{"Error": "The avatar is too large (5MB max)"})
	case errors.Is(err, services.ErrUploadFailed):
		Render(c, http.StatusBadGateway, "user/settings.html", gin.H{"Error": "Avatar upload failed, try again later"})
	case err != nil:
		Render(c, http.StatusInternalServerError, "user/settings.html", gin.H{"Error": "Could not save your settings"})
	default:
		Render(c, http.StatusOK, "user/settings.html", gin.H{"Success": "Profile updated"})
	}
}
