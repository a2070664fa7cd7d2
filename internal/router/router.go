package router

import (
	"burrow/internal/config"
	"burrow/internal/handlers"
	"burrow/internal/middleware"
	"burrow/internal/services"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, cfg *config.Config) {
	uploader := services.NewImgurUploader(cfg.ImgurClientID)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, uploader)
	threadHandler := handlers.NewThreadHandler(uploader)
	voteHandler := handlers.NewVoteHandler()
	userHandler := handlers.NewUserHandler(uploader)
	adminHandler := handlers.NewAdminHandler()
	announcementHandler := handlers.NewAnnouncementHandler(uploader)
	imageHandler := handlers.NewImageHandler()

	// Public Routes
	r.GET("/", threadHandler.List)                    // main feed (?sort=new|top|discussed)
	r.GET("/t/:id", threadHandler.Detail)             // thread detail with comment tree
	r.GET("/u/:username", userHandler.Profile)        // public profile
	r.GET("/announcements", announcementHandler.List) // site announcements
	r.GET("/img/:id", imageHandler.Proxy)             // uploaded image proxy

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/submit", threadHandler.ShowCreate)
		authorized.POST("/submit", threadHandler.Create)
		authorized.POST("/t/:id/delete", threadHandler.Delete)

		authorized.POST("/t/:id/comment", threadHandler.CreateComment)
		authorized.POST("/t/:id/comment/:cid/delete", threadHandler.DeleteComment)

		authorized.POST("/vote/:type/:id", voteHandler.Vote) // value=1|-1 form field

		authorized.GET("/settings", userHandler.ShowSettings)
		authorized.POST("/settings", userHandler.UpdateSettings)
	}

	// Admin Routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/user/:id/delete", adminHandler.DeleteUser)
		admin.POST("/user/:id/threads/delete", adminHandler.DeleteUserThreads)
		admin.POST("/users/delete", adminHandler.BulkDeleteUsers)

		admin.GET("/announcements/new", announcementHandler.ShowCreate)
		admin.POST("/announcements/new", announcementHandler.Create)
	}
}
