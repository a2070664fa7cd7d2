package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"burrow/internal/models"
	"burrow/internal/utils"

	"gorm.io/gorm"
)

// AccountService covers registration, login checks and profile settings.
type AccountService struct {
	db       *gorm.DB
	uploader Uploader
}

func NewAccountService(database *gorm.DB, uploader Uploader) *AccountService {
	return &AccountService{db: database, uploader: uploader}
}

// Register creates a user with a bcrypt password hash. Usernames are
// unique; the DB constraint backs up the pre-check.
func (s *AccountService) Register(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrEmptyContent
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate returns the user when the username/password pair checks out.
func (s *AccountService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrNotFound
	}
	return &user, nil
}

// GetByUsername loads a public profile.
func (s *AccountService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SettingsUpdate carries the optional profile fields from the settings form.
type SettingsUpdate struct {
	DisplayName string
	Age         *int
	Bio         string
	AvatarURL   string
	AvatarFile  *multipart.FileHeader
}

// UpdateSettings applies a settings form. Empty display name falls back to
// the username; with neither an avatar upload nor a URL, the identicon
// service provides a deterministic default.
func (s *AccountService) UpdateSettings(user *models.User, upd SettingsUpdate) error {
	user.DisplayName = strings.TrimSpace(upd.DisplayName)
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	user.Age = upd.Age
	user.Bio = strings.TrimSpace(upd.Bio)

	switch {
	case upd.AvatarFile != nil:
		// Avatars get the tighter 5MB cap.
		data, mime, err := ReadImageUpload(upd.AvatarFile, MaxAvatarBytes)
		if err != nil {
			return err
		}
		url, err := s.uploader.Upload(data, mime, "avatars")
		if err != nil {
			return err
		}
		user.AvatarURL = url
	case strings.TrimSpace(upd.AvatarURL) != "":
		user.AvatarURL = strings.TrimSpace(upd.AvatarURL)
	default:
		user.AvatarURL = fmt.Sprintf("https://api.dicebear.com/7.x/identicon/svg?seed=%s", user.Username)
	}

	return s.db.Save(user).Error
}
