package handlers

import (
	"errors"
	"log"
	"net/http"

	"burrow/internal/config"
	"burrow/internal/db"
	"burrow/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	accounts *services.AccountService
	admin    *services.AdminService
	cfg      *config.Config
}

func NewAuthHandler(cfg *config.Config, uploader services.Uploader) *AuthHandler {
	return &AuthHandler{
		accounts: services.NewAccountService(db.DB, uploader),
		admin:    services.NewAdminService(db.DB),
		cfg:      cfg,
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if len(password) < 6 {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "Password must be at least 6 characters"})
		return
	}

	_, err := h.accounts.Register(username, password)
	switch {
	case errors.Is(err, services.ErrEmptyContent):
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "Username and password are required"})
		return
	case errors.Is(err, services.ErrUsernameTaken):
		Render(c, http.StatusConflict, "auth/register.html", gin.H{"Error": "This username is already taken"})
		return
	case err != nil:
		Render(c, http.StatusInternalServerError, "auth/register.html", gin.H{"Error": "Registration failed"})
		return
	}

	Render(c, http.StatusOK, "auth/login.html", gin.H{"Success": "Account created, you can log in now"})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.accounts.Authenticate(username, password)
	if err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Incorrect username or password"})
		return
	}

	// Allow-listed usernames pick up the admin flag on login.
	if promoted, err := h.admin.EnsureAdminFlag(user, h.cfg.AdminUsernames); err != nil {
		log.Printf("Failed to promote %s to admin: %v", user.Username, err)
	} else if promoted {
		log.Printf("Promoted %s to admin", user.Username)
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not start session")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/login")
}
