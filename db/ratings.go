package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/musicrank/musicrank/data"
)

// UpsertRating creates or overwrites the user's rating of an album. The
// (user, album) key is unique, so rating the same album twice just replaces
// the label; two concurrent upserts resolve to last-write-wins at the store
// level.
func (db *DB) UpsertRating(userID, albumID, label string) (*data.Rating, error) {
	if !data.IsRatingLabel(label) {
		return nil, fmt.Errorf("unknown rating label '%s': %w", label, ErrValidation)
	}

	if _, err := db.GetAlbum(albumID); err != nil {
		return nil, err
	}

	rating := data.Rating{
		ID:      uuid.NewString(),
		UserID:  userID,
		AlbumID: albumID,
		Rating:  label,
	}
	if err := db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "album_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"rating":     label,
				"updated_at": time.Now(),
			}),
		}).
		Create(&rating).
		Error; err != nil {
		return nil, fmt.Errorf("error upserting rating for album '%s': %w", albumID, err)
	}

	var persisted data.Rating
	if err := db.
		Where("user_id = ? and album_id = ?", userID, albumID).
		First(&persisted).
		Error; err != nil {
		return nil, fmt.Errorf("error reading back rating for album '%s': %w", albumID, err)
	}
	return &persisted, nil
}

// DeleteRating removes the user's rating of an album.
func (db *DB) DeleteRating(userID, albumID string) error {
	res := db.
		Where("user_id = ? and album_id = ?", userID, albumID).
		Delete(&data.Rating{})
	if res.Error != nil {
		return fmt.Errorf("error deleting rating for album '%s': %w", albumID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rating for album '%s': %w", albumID, ErrNotFound)
	}
	return nil
}

// GetUserRating returns the label the user gave an album, or "" if the user
// hasn't rated it.
func (db *DB) GetUserRating(userID, albumID string) (string, error) {
	var rating data.Rating
	err := db.
		Where("user_id = ? and album_id = ?", userID, albumID).
		First(&rating).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("error getting rating for album '%s': %w", albumID, err)
	}
	return rating.Rating, nil
}

// RecentRatings returns the newest ratings site-wide, with their user and
// album attached.
func (db *DB) RecentRatings(limit int) ([]data.Rating, error) {
	var ratings []data.Rating
	if err := db.
		Order("created_at desc").
		Limit(limit).
		Find(&ratings).
		Error; err != nil {
		return nil, fmt.Errorf("error listing recent ratings: %w", err)
	}
	if err := db.attachRatingRelations(ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

// FeedRatings returns ratings by the users that userID follows, newest
// first.
func (db *DB) FeedRatings(userID string, limit, offset int) ([]data.Rating, error) {
	var followingIDs []string
	if err := db.
		Table("follows").
		Where("follower_id = ?", userID).
		Pluck("following_id", &followingIDs).
		Error; err != nil {
		return nil, fmt.Errorf("error listing follows for '%s': %w", userID, err)
	}
	if len(followingIDs) == 0 {
		return []data.Rating{}, nil
	}

	var ratings []data.Rating
	if err := db.
		Where("user_id in ?", followingIDs).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&ratings).
		Error; err != nil {
		return nil, fmt.Errorf("error listing feed for '%s': %w", userID, err)
	}
	if err := db.attachRatingRelations(ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (db *DB) attachRatingRelations(ratings []data.Rating) error {
	userCache := map[string]*data.User{}
	albumCache := map[string]*data.Album{}

	for i, rating := range ratings {
		user, has := userCache[rating.UserID]
		if !has {
			var err error
			user, err = db.GetUser(rating.UserID)
			if err != nil {
				return fmt.Errorf("error getting user for rating '%s': %w", rating.ID, err)
			}
			userCache[rating.UserID] = user
		}
		ratings[i].User = user

		album, has := albumCache[rating.AlbumID]
		if !has {
			var err error
			album, err = db.GetAlbum(rating.AlbumID)
			if err != nil {
				return fmt.Errorf("error getting album for rating '%s': %w", rating.ID, err)
			}
			albumCache[rating.AlbumID] = album
		}
		ratings[i].Album = album
	}

	return nil
}
