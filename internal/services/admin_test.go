package services

import (
	"testing"

	"burrow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminDeleteUserGuards(t *testing.T) {
	database := newTestDB(t)
	admins := NewAdminService(database)
	admin := createAdmin(t, database, "admin")
	user := createUser(t, database, "user")

	assert.ErrorIs(t, admins.DeleteUser(admin.ID, user.ID, false), ErrForbidden)
	assert.ErrorIs(t, admins.DeleteUser(admin.ID, admin.ID, true), ErrSelfDeleteBlocked)
	assert.ErrorIs(t, admins.DeleteUser(999, admin.ID, true), ErrNotFound)
}

func TestAdminDeleteUserPurgesContent(t *testing.T) {
	database := newTestDB(t)
	admins := NewAdminService(database)
	comments := NewCommentService(database, &stubUploader{})
	votes := NewVoteService(database)
	admin := createAdmin(t, database, "admin")
	target := createUser(t, database, "target")
	bystander := createUser(t, database, "bystander")

	// Target's own thread, with a bystander comment and vote on it.
	owned := createThread(t, database, target.ID, "owned")
	_, err := comments.Create(owned.ID, bystander.ID, "nice", nil, nil, nil)
	require.NoError(t, err)
	_, err = votes.VoteThread(owned.ID, bystander.ID, 1)
	require.NoError(t, err)

	// Target's vote and comment on the bystander's thread.
	survives := createThread(t, database, bystander.ID, "survives")
	_, err = votes.VoteThread(survives.ID, target.ID, 1)
	require.NoError(t, err)
	targetComment, err := comments.Create(survives.ID, target.ID, "mine", nil, nil, nil)
	require.NoError(t, err)
	reply, err := comments.Create(survives.ID, bystander.ID, "reply", uintPtr(targetComment.ID), nil, nil)
	require.NoError(t, err)
	_, err = votes.VoteComment(reply.ID, target.ID, -1)
	require.NoError(t, err)

	// An untouched bystander comment that must survive.
	kept, err := comments.Create(survives.ID, bystander.ID, "kept", nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, admins.DeleteUser(target.ID, admin.ID, true))

	var userCount int64
	database.Model(&models.User{}).Count(&userCount)
	assert.EqualValues(t, 2, userCount)

	// The owned thread and everything under it is gone.
	var threadCount int64
	database.Model(&models.Thread{}).Count(&threadCount)
	assert.EqualValues(t, 1, threadCount)

	// Target's votes are retracted with score fixups.
	var stored models.Thread
	require.NoError(t, database.First(&stored, survives.ID).Error)
	assert.Equal(t, 0, stored.Score)

	// Target's comment took the bystander's reply with it; the untouched
	// comment survives and the count matches what is left.
	var remaining []models.Comment
	require.NoError(t, database.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)
	assert.Equal(t, 1, stored.CommentCount)

	var voteCount int64
	database.Model(&models.ThreadVote{}).Count(&voteCount)
	assert.EqualValues(t, 0, voteCount)
	database.Model(&models.CommentVote{}).Count(&voteCount)
	assert.EqualValues(t, 0, voteCount)
}

func TestAdminDeleteUserCommentVoteFixup(t *testing.T) {
	database := newTestDB(t)
	admins := NewAdminService(database)
	comments := NewCommentService(database, &stubUploader{})
	votes := NewVoteService(database)
	admin := createAdmin(t, database, "admin")
	target := createUser(t, database, "target")
	author := createUser(t, database, "author")

	thread := createThread(t, database, author.ID, "topic")
	c, err := comments.Create(thread.ID, author.ID, "hello", nil, nil, nil)
	require.NoError(t, err)
	_, err = votes.VoteComment(c.ID, target.ID, 1)
	require.NoError(t, err)

	require.NoError(t, admins.DeleteUser(target.ID, admin.ID, true))

	var stored models.Comment
	require.NoError(t, database.First(&stored, c.ID).Error)
	assert.Equal(t, 0, stored.Score)
}

func TestAdminDeleteUserThreads(t *testing.T) {
	database := newTestDB(t)
	admins := NewAdminService(database)
	createAdmin(t, database, "admin")
	target := createUser(t, database, "target")

	createThread(t, database, target.ID, "one")
	createThread(t, database, target.ID, "two")

	_, err := admins.DeleteUserThreads(target.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	n, err := admins.DeleteUserThreads(target.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// The account itself stays.
	var user models.User
	assert.NoError(t, database.First(&user, target.ID).Error)

	n, err = admins.DeleteUserThreads(target.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAdminBulkDeleteUsers(t *testing.T) {
	database := newTestDB(t)
	admins := NewAdminService(database)
	admin := createAdmin(t, database, "admin")
	a := createUser(t, database, "a")
	b := createUser(t, database, "b")

	// Duplicates collapse and the acting admin is skipped.
	n, err := admins.BulkDeleteUsers([]uint{a.ID, a.ID, b.ID, admin.ID, 0}, admin.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var userCount int64
	database.Model(&models.User{}).Count(&userCount)
	assert.EqualValues(t, 1, userCount)

	// A selection of only the actor is effectively empty.
	_, err = admins.BulkDeleteUsers([]uint{admin.ID}, admin.ID, true)
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = admins.BulkDeleteUsers([]uint{a.ID}, a.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdminListUsers(t *testing.T) {
	database := newTestDB(t)
	admins := NewAdminService(database)
	createUser(t, database, "first")
	createUser(t, database, "second")

	users, err := admins.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "first", users[0].Username)
}

func TestEnsureAdminFlag(t *testing.T) {
	database := newTestDB(t)
	admins := NewAdminService(database)
	allow := map[string]bool{"root": true}

	user := createUser(t, database, "user")
	promoted, err := admins.EnsureAdminFlag(user, allow)
	require.NoError(t, err)
	assert.False(t, promoted)
	assert.False(t, user.IsAdmin)

	root := createUser(t, database, "root")
	promoted, err = admins.EnsureAdminFlag(root, allow)
	require.NoError(t, err)
	assert.True(t, promoted)
	assert.True(t, root.IsAdmin)

	var stored models.User
	require.NoError(t, database.First(&stored, root.ID).Error)
	assert.True(t, stored.IsAdmin)

	// Already-admin users are left alone.
	promoted, err = admins.EnsureAdminFlag(root, allow)
	require.NoError(t, err)
	assert.False(t, promoted)
}
