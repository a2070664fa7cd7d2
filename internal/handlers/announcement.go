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

type AnnouncementHandler struct {
	announcements *services.AnnouncementService
}

func NewAnnouncementHandler(uploader services.Uploader) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcements: services.NewAnnouncementService(db.DB, uploader),
	}
}

// List is the public announcements page.
func (h *AnnouncementHandler) List(c *gin.Context) {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))

	listing, err := h.announcements.List(page, services.DefaultPerPage)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load announcements")
		return
	}

	Render(c, http.StatusOK, "announcement/list.html", gin.H{
		"Announcements": listing.Announcements,
		"CurrentPage":   listing.Page,
		"TotalPages":    listing.TotalPages,
		"Title":         "Announcements",
	})
}

func (h *AnnouncementHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "announcement/create.html", gin.H{"Title": "New announcement"})
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	title := c.PostForm("title")
	content := c.PostForm("content")
	image, _ := c.FormFile("image")

	_, err := h.announcements.Create(user.ID, user.IsAdmin, title, content, image)
	if err != nil {
		Render(c, http.StatusBadRequest, "announcement/create.html", gin.H{
			"Error": announcementFailureMessage(err),
			"Form":  gin.H{"Title": title, "Content": content},
		})
		return
	}

	c.Redirect(http.StatusFound, "/announcements")
}

func announcementFailureMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrEmptyContent):
		return "Title and body are both required"
	case errors.Is(err, services.ErrTitleTooLong):
		return "The title is too long (200 characters max)"
	case errors.Is(err, services.ErrContentTooLong):
		return "The body is too long (5000 characters max)"
	case errors.Is(err, services.ErrBadImageType):
		return "Only JPEG, PNG, GIF and WebP images are allowed"
	case errors.Is(err, services.ErrImageTooLarge):
		return "The image is too large (10MB max)"
	case errors.Is(err, services.ErrUploadFailed):
		return "Image upload failed, try again later"
	default:
		return "Could not publish the announcement"
	}
}
