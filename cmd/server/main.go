package main

import (
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"burrow/internal/config"
	"burrow/internal/db"
	"burrow/internal/middleware"
	"burrow/internal/router"
	"burrow/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	// Initialize Database
	db.Init(cfg.DatabaseURL)

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("burrow_session", store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets
	r.Static("/static", "./web/static")

	// Middleware
	r.Use(middleware.LoadUser())

	// Routes
	router.RegisterRoutes(r, cfg)

	log.Printf("Burrow server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+1)
		files = append(files, layouts...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t interface{}) string {
			timeVal, ok := t.(time.Time)
			if !ok {
				return ""
			}

			seconds := int(time.Since(timeVal).Seconds())
			if seconds < 60 {
				return fmt.Sprintf("%ds ago", seconds)
			} else if seconds < 3600 {
				return fmt.Sprintf("%dm ago", seconds/60)
			} else if seconds < 86400 {
				return fmt.Sprintf("%dh ago", seconds/3600)
			} else if seconds < 2592000 {
				return fmt.Sprintf("%dd ago", seconds/86400)
			} else if seconds < 31536000 {
				return fmt.Sprintf("%dmo ago", seconds/2592000)
			}
			return fmt.Sprintf("%dy ago", seconds/31536000)
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"markdown": utils.RenderMarkdown,
	}

	// Manual registration to ensure keys match handler expectation
	views := []string{
		"auth/login.html",
		"auth/register.html",
		"thread/list.html",
		"thread/detail.html",
		"thread/create.html",
		"user/profile.html",
		"user/settings.html",
		"admin/users.html",
		"announcement/list.html",
		"announcement/create.html",
		"error.html",
	}
	for _, view := range views {
		r.AddFromFilesFuncs(view, funcMap, assemble(templatesDir+"/views/"+view)...)
	}

	return r
}
