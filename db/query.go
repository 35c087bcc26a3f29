package db

import (
	"fmt"
	"time"

	"github.com/musicrank/musicrank/data"
)

// TrendingAlbum is an album plus its rating count within the trending
// window.
type TrendingAlbum struct {
	data.Album
	RecentRatingCount int64 `json:"recentRatingCount"`
}

// TrendingAlbums counts ratings per album created within the trailing window
// and returns albums ordered by that count, descending. Albums with no
// in-window ratings are excluded implicitly by the counting join.
func (db *DB) TrendingAlbums(window time.Duration, limit int) ([]TrendingAlbum, error) {
	cutoff := time.Now().Add(-window)

	var rows []struct {
		AlbumID string
		Count   int64
	}
	if err := db.
		Table("ratings").
		Select("album_id, count(*) as count").
		Where("created_at >= ?", cutoff).
		Group("album_id").
		Order("count desc").
		Limit(limit).
		Scan(&rows).
		Error; err != nil {
		return nil, fmt.Errorf("error counting recent ratings: %w", err)
	}

	trending := make([]TrendingAlbum, len(rows))
	for i, row := range rows {
		album, err := db.GetAlbum(row.AlbumID)
		if err != nil {
			return nil, fmt.Errorf("error getting trending album %d: %w", i+1, err)
		}
		trending[i] = TrendingAlbum{Album: *album, RecentRatingCount: row.Count}
	}
	return trending, nil
}

// RatingCounts returns the number of ratings per label for an album. Every
// label is present in the result, zero-count labels included.
func (db *DB) RatingCounts(albumID string) (map[string]int64, error) {
	counts := map[string]int64{
		data.RatingSkip:       0,
		data.RatingTimepass:   0,
		data.RatingGood:       0,
		data.RatingPerfection: 0,
	}

	var rows []struct {
		Rating string
		Count  int64
	}
	if err := db.
		Table("ratings").
		Select("rating, count(*) as count").
		Where("album_id = ?", albumID).
		Group("rating").
		Scan(&rows).
		Error; err != nil {
		return nil, fmt.Errorf("error counting ratings for album '%s': %w", albumID, err)
	}

	for _, row := range rows {
		counts[row.Rating] = row.Count
	}
	return counts, nil
}

// AverageRating is the weighted mean over all ratings of an album, using
// weights SKIP=0, TIMEPASS=1, GOOD=2, PERFECTION=3. An album with no ratings
// averages 0, not NaN.
func (db *DB) AverageRating(albumID string) (float64, error) {
	counts, err := db.RatingCounts(albumID)
	if err != nil {
		return 0, err
	}

	var total, weighted int64
	for label, count := range counts {
		total += count
		weighted += int64(data.RatingWeights[label]) * count
	}
	if total == 0 {
		return 0, nil
	}
	return float64(weighted) / float64(total), nil
}
