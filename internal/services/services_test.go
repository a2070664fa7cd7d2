package services

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"burrow/internal/db"
	"burrow/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory SQLite database with the full schema.
// MaxOpenConns(1) keeps every query on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(database))
	return database
}

func createUser(t *testing.T, database *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, database.Create(user).Error)
	return user
}

func createAdmin(t *testing.T, database *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x", IsAdmin: true}
	require.NoError(t, database.Create(user).Error)
	return user
}

func createThread(t *testing.T, database *gorm.DB, userID uint, title string) *models.Thread {
	t.Helper()
	thread := &models.Thread{UserID: userID, Title: title, Content: "body of " + title}
	require.NoError(t, database.Create(thread).Error)
	return thread
}

func uintPtr(v uint) *uint { return &v }

// stubUploader satisfies Uploader without touching the network.
type stubUploader struct {
	url   string
	err   error
	calls int
}

func (u *stubUploader) Upload(data []byte, mime, folder string) (string, error) {
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

// multipartImage builds a real FileHeader the way an HTTP form parse would,
// so ReadImageUpload can open and read it.
func multipartImage(t *testing.T, contentType string, size int) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="pic.bin"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0xAB}, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["image"][0]
}
