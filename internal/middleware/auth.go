package middleware

import (
	"net/http"

	"burrow/internal/db"
	"burrow/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// LoadUser retrieves the session user and sets it on the context. Runs on
// every request; missing or stale sessions are simply skipped.
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")

		if userID != nil {
			var user models.User
			if err := db.DB.First(&user, userID).Error; err == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired ensures the session user carries the admin flag.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, exists := c.Get(CheckUserKey)
		if !exists {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if !u.(*models.User).IsAdmin {
			c.Status(http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser is a convenience accessor for handlers.
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(CheckUserKey); exists {
		return u.(*models.User)
	}
	return nil
}
