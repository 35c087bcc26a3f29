package db_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musicrank/musicrank/data"
	"github.com/musicrank/musicrank/db"
)

func backdateRatings(t *testing.T, database *db.DB, albumID string, to time.Time) {
	t.Helper()
	require.NoError(t, database.
		Exec("update ratings set created_at = ? where album_id = ?", to, albumID).
		Error)
}

func TestTrendingAlbumsCountsOnlyTheWindow(t *testing.T) {
	database := openTestDB(t)

	albumX := createTestAlbum(t, database, "X", "Album X")
	albumY := createTestAlbum(t, database, "Y", "Album Y")

	// X gets 3 in-window ratings, Y gets 1 in-window plus 5 stale ones
	for i := 0; i < 3; i++ {
		user := createTestUser(t, database, fmt.Sprintf("x-rater-%d", i))
		_, err := database.UpsertRating(user.ID, albumX.ID, data.RatingGood)
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		user := createTestUser(t, database, fmt.Sprintf("stale-rater-%d", i))
		_, err := database.UpsertRating(user.ID, albumY.ID, data.RatingGood)
		require.NoError(t, err)
	}
	backdateRatings(t, database, albumY.ID, time.Now().Add(-8*24*time.Hour))

	fresh := createTestUser(t, database, "fresh-rater")
	_, err := database.UpsertRating(fresh.ID, albumY.ID, data.RatingGood)
	require.NoError(t, err)

	trending, err := database.TrendingAlbums(7*24*time.Hour, 20)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, albumX.ID, trending[0].ID)
	assert.Equal(t, int64(3), trending[0].RecentRatingCount)
	assert.Equal(t, albumY.ID, trending[1].ID)
	assert.Equal(t, int64(1), trending[1].RecentRatingCount)
}

func TestTrendingAlbumsExcludesUnrated(t *testing.T) {
	database := openTestDB(t)

	createTestAlbum(t, database, "X", "Unrated")
	rated := createTestAlbum(t, database, "Y", "Rated")
	user := createTestUser(t, database, "alice")
	_, err := database.UpsertRating(user.ID, rated.ID, data.RatingTimepass)
	require.NoError(t, err)

	trending, err := database.TrendingAlbums(7*24*time.Hour, 20)
	require.NoError(t, err)
	require.Len(t, trending, 1)
	assert.Equal(t, rated.ID, trending[0].ID)
}

func TestTrendingAlbumsHonorsLimit(t *testing.T) {
	database := openTestDB(t)
	user := createTestUser(t, database, "alice")

	for i := 0; i < 3; i++ {
		album := createTestAlbum(t, database, fmt.Sprintf("sp-%d", i), fmt.Sprintf("Album %d", i))
		_, err := database.UpsertRating(user.ID, album.ID, data.RatingGood)
		require.NoError(t, err)
	}

	trending, err := database.TrendingAlbums(7*24*time.Hour, 2)
	require.NoError(t, err)
	assert.Len(t, trending, 2)
}

func TestFeedRatings(t *testing.T) {
	database := openTestDB(t)
	alice := createTestUser(t, database, "alice")
	bob := createTestUser(t, database, "bob")
	carol := createTestUser(t, database, "carol")
	album := createTestAlbum(t, database, "X", "Abbey Road")

	_, err := database.CreateFollow(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = database.UpsertRating(bob.ID, album.ID, data.RatingGood)
	require.NoError(t, err)
	_, err = database.UpsertRating(carol.ID, album.ID, data.RatingSkip)
	require.NoError(t, err)

	feed, err := database.FeedRatings(alice.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, bob.ID, feed[0].UserID)
	require.NotNil(t, feed[0].User)
	assert.Equal(t, "bob", feed[0].User.Username)
	require.NotNil(t, feed[0].Album)
	assert.Equal(t, "Abbey Road", feed[0].Album.Title)
}

func TestRecentRatings(t *testing.T) {
	database := openTestDB(t)
	alice := createTestUser(t, database, "alice")
	album := createTestAlbum(t, database, "X", "Abbey Road")

	_, err := database.UpsertRating(alice.ID, album.ID, data.RatingPerfection)
	require.NoError(t, err)

	recent, err := database.RecentRatings(20)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.NotNil(t, recent[0].Album)
	assert.Equal(t, album.ID, recent[0].Album.ID)
}
