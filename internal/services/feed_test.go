package services

import (
	"testing"
	"time"

	"burrow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedSortModes(t *testing.T) {
	database := newTestDB(t)
	feed := NewFeedService(database)
	user := createUser(t, database, "user")

	base := time.Now().Add(-time.Hour)
	rows := []models.Thread{
		{UserID: user.ID, Title: "oldest", Content: "x", Score: 5, CommentCount: 0, CreatedAt: base},
		{UserID: user.ID, Title: "middle", Content: "x", Score: 1, CommentCount: 9, CreatedAt: base.Add(time.Minute)},
		{UserID: user.ID, Title: "newest", Content: "x", Score: 3, CommentCount: 2, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range rows {
		require.NoError(t, database.Create(&rows[i]).Error)
	}

	titles := func(page *FeedPage) []string {
		out := make([]string, len(page.Threads))
		for i, th := range page.Threads {
			out[i] = th.Title
		}
		return out
	}

	page, err := feed.Threads(1, 20, SortNew)
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "middle", "oldest"}, titles(page))

	page, err = feed.Threads(1, 20, SortTop)
	require.NoError(t, err)
	assert.Equal(t, []string{"oldest", "newest", "middle"}, titles(page))

	page, err = feed.Threads(1, 20, SortDiscussed)
	require.NoError(t, err)
	assert.Equal(t, []string{"middle", "newest", "oldest"}, titles(page))

	// Unknown sort falls back to recency and reports itself as "new".
	page, err = feed.Threads(1, 20, "bogus")
	require.NoError(t, err)
	assert.Equal(t, SortNew, page.Sort)
	assert.Equal(t, []string{"newest", "middle", "oldest"}, titles(page))
}

func TestFeedTieBreaksByRecency(t *testing.T) {
	database := newTestDB(t)
	feed := NewFeedService(database)
	user := createUser(t, database, "user")

	base := time.Now().Add(-time.Hour)
	older := models.Thread{UserID: user.ID, Title: "older", Content: "x", Score: 2, CreatedAt: base}
	newer := models.Thread{UserID: user.ID, Title: "newer", Content: "x", Score: 2, CreatedAt: base.Add(time.Minute)}
	require.NoError(t, database.Create(&older).Error)
	require.NoError(t, database.Create(&newer).Error)

	page, err := feed.Threads(1, 20, SortTop)
	require.NoError(t, err)
	require.Len(t, page.Threads, 2)
	assert.Equal(t, "newer", page.Threads[0].Title)
}

func TestFeedPaginationClamps(t *testing.T) {
	database := newTestDB(t)
	feed := NewFeedService(database)
	user := createUser(t, database, "user")
	for i := 0; i < 3; i++ {
		createThread(t, database, user.ID, "t")
	}

	// Page below one clamps to one.
	page, err := feed.Threads(0, 20, SortNew)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Threads, 3)

	// Per-page clamps to [1, 50].
	page, err = feed.Threads(1, 0, SortNew)
	require.NoError(t, err)
	assert.Equal(t, 1, page.PerPage)
	assert.Len(t, page.Threads, 1)
	assert.Equal(t, 3, page.TotalPages)

	page, err = feed.Threads(1, 500, SortNew)
	require.NoError(t, err)
	assert.Equal(t, 50, page.PerPage)

	// A page past the end is empty but valid.
	page, err = feed.Threads(99, 20, SortNew)
	require.NoError(t, err)
	assert.Empty(t, page.Threads)
	assert.EqualValues(t, 3, page.Total)
}

func TestFeedEmpty(t *testing.T) {
	database := newTestDB(t)
	feed := NewFeedService(database)

	page, err := feed.Threads(1, 20, SortNew)
	require.NoError(t, err)
	assert.Empty(t, page.Threads)
	assert.Equal(t, 1, page.TotalPages)
	assert.EqualValues(t, 0, page.Total)
}
