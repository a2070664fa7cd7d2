package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	DatabaseURL   string
	Port          string
	SessionSecret string
	SiteURL       string
	ImgurClientID string
	// AdminUsernames is the allow-list of usernames promoted to admin on
	// login. Loaded once here and passed down, never read as a global.
	AdminUsernames map[string]bool
}

// Load reads the .env file (if present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           os.Getenv("PORT"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SiteURL:        os.Getenv("SITE_URL"),
		ImgurClientID:  os.Getenv("IMGUR_CLIENT_ID"),
		AdminUsernames: ParseAdminList(os.Getenv("ADMIN_USERNAMES")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "secret_key_change_me"
	}

	return cfg
}

// ParseAdminList turns a comma-separated ADMIN_USERNAMES value into a set.
// The fallback "admin" entry is always present.
func ParseAdminList(raw string) map[string]bool {
	admins := map[string]bool{"admin": true}
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			admins[name] = true
		}
	}
	return admins
}
