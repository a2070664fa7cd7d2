package services

import (
	"strings"
	"testing"
	"time"

	"burrow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadCreateValidation(t *testing.T) {
	database := newTestDB(t)
	threads := NewThreadService(database, &stubUploader{})
	user := createUser(t, database, "poster")

	_, err := threads.Create(user.ID, "title", "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = threads.Create(user.ID, strings.Repeat("t", 101), "body", nil)
	assert.ErrorIs(t, err, ErrTitleTooLong)

	_, err = threads.Create(user.ID, "title", strings.Repeat("c", 2001), nil)
	assert.ErrorIs(t, err, ErrContentTooLong)

	// Empty title falls back instead of failing.
	thread, err := threads.Create(user.ID, "  ", "body", nil)
	require.NoError(t, err)
	assert.Equal(t, "Untitled", thread.Title)
}

func TestThreadLengthCapsCountCharacters(t *testing.T) {
	database := newTestDB(t)
	threads := NewThreadService(database, &stubUploader{})
	user := createUser(t, database, "poster")

	// 100 Cyrillic characters are 200 bytes but still within the cap.
	thread, err := threads.Create(user.ID, strings.Repeat("я", 100), "body", nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("я", 100), thread.Title)

	_, err = threads.Create(user.ID, strings.Repeat("я", 101), "body", nil)
	assert.ErrorIs(t, err, ErrTitleTooLong)

	_, err = threads.Create(user.ID, "t", strings.Repeat("ы", 2001), nil)
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestThreadCreateRateLimit(t *testing.T) {
	database := newTestDB(t)
	threads := NewThreadService(database, &stubUploader{})
	user := createUser(t, database, "poster")

	for i := 0; i < 5; i++ {
		_, err := threads.Create(user.ID, "t", "body", nil)
		require.NoError(t, err)
	}

	_, err := threads.Create(user.ID, "t", "body", nil)
	assert.ErrorIs(t, err, ErrRateLimited)

	// Other users are not affected.
	other := createUser(t, database, "other")
	_, err = threads.Create(other.ID, "t", "body", nil)
	assert.NoError(t, err)
}

func TestThreadCreateRateLimitWindowSlides(t *testing.T) {
	database := newTestDB(t)
	threads := NewThreadService(database, &stubUploader{})
	user := createUser(t, database, "poster")

	// Five old threads outside the trailing window do not count.
	old := time.Now().Add(-2 * time.Minute)
	for i := 0; i < 5; i++ {
		thread := &models.Thread{UserID: user.ID, Title: "old", Content: "body", CreatedAt: old}
		require.NoError(t, database.Create(thread).Error)
	}

	_, err := threads.Create(user.ID, "fresh", "body", nil)
	assert.NoError(t, err)
}

func TestThreadCreateWithImage(t *testing.T) {
	database := newTestDB(t)
	uploader := &stubUploader{url: "https://i.example/abc.png"}
	threads := NewThreadService(database, uploader)
	user := createUser(t, database, "poster")

	image := multipartImage(t, "image/png", 128)
	thread, err := threads.Create(user.ID, "pic", "body", image)
	require.NoError(t, err)
	assert.Equal(t, "https://i.example/abc.png", thread.ImageURL)
	assert.Equal(t, 1, uploader.calls)
}

func TestThreadCreateImageRejected(t *testing.T) {
	database := newTestDB(t)
	threads := NewThreadService(database, &stubUploader{})
	user := createUser(t, database, "poster")

	image := multipartImage(t, "text/plain", 16)
	_, err := threads.Create(user.ID, "pic", "body", image)
	assert.ErrorIs(t, err, ErrBadImageType)

	// A rejected image never leaves a thread behind.
	var count int64
	database.Model(&models.Thread{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestThreadCreateUploadFailure(t *testing.T) {
	database := newTestDB(t)
	threads := NewThreadService(database, &stubUploader{err: ErrUploadFailed})
	user := createUser(t, database, "poster")

	image := multipartImage(t, "image/jpeg", 64)
	_, err := threads.Create(user.ID, "pic", "body", image)
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestThreadDeletePermissions(t *testing.T) {
	database := newTestDB(t)
	threads := NewThreadService(database, &stubUploader{})
	owner := createUser(t, database, "owner")
	stranger := createUser(t, database, "stranger")
	admin := createAdmin(t, database, "admin")

	thread := createThread(t, database, owner.ID, "mine")

	assert.ErrorIs(t, threads.Delete(thread.ID, stranger.ID, false), ErrForbidden)
	assert.NoError(t, threads.Delete(thread.ID, owner.ID, false))
	assert.ErrorIs(t, threads.Delete(thread.ID, owner.ID, false), ErrNotFound)

	// Admins may delete threads they do not own.
	other := createThread(t, database, owner.ID, "also mine")
	assert.NoError(t, threads.Delete(other.ID, admin.ID, true))
}

func TestThreadDeleteCascades(t *testing.T) {
	database := newTestDB(t)
	threads := NewThreadService(database, &stubUploader{})
	comments := NewCommentService(database, &stubUploader{})
	votes := NewVoteService(database)
	owner := createUser(t, database, "owner")
	voter := createUser(t, database, "voter")

	thread := createThread(t, database, owner.ID, "doomed")
	top, err := comments.Create(thread.ID, voter.ID, "top", nil, nil, nil)
	require.NoError(t, err)
	_, err = comments.Create(thread.ID, owner.ID, "reply", uintPtr(top.ID), nil, nil)
	require.NoError(t, err)
	_, err = votes.VoteThread(thread.ID, voter.ID, 1)
	require.NoError(t, err)
	_, err = votes.VoteComment(top.ID, owner.ID, 1)
	require.NoError(t, err)

	require.NoError(t, threads.Delete(thread.ID, owner.ID, false))

	var n int64
	database.Model(&models.Comment{}).Count(&n)
	assert.EqualValues(t, 0, n)
	database.Model(&models.CommentVote{}).Count(&n)
	assert.EqualValues(t, 0, n)
	database.Model(&models.ThreadVote{}).Count(&n)
	assert.EqualValues(t, 0, n)
	database.Model(&models.Thread{}).Count(&n)
	assert.EqualValues(t, 0, n)
}

func TestThreadListByUser(t *testing.T) {
	database := newTestDB(t)
	threads := NewThreadService(database, &stubUploader{})
	a := createUser(t, database, "a")
	b := createUser(t, database, "b")

	createThread(t, database, a.ID, "one")
	createThread(t, database, a.ID, "two")
	createThread(t, database, b.ID, "theirs")

	mine, err := threads.ListByUser(a.ID, 50)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, th := range mine {
		assert.Equal(t, a.ID, th.UserID)
	}
}
