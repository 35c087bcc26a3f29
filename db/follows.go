package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/musicrank/musicrank/data"
)

// CreateFollow adds a follower -> following edge. Self-follows are rejected,
// the target must exist, and following the same user twice is a conflict.
func (db *DB) CreateFollow(followerID, followingID string) (*data.Follow, error) {
	if followingID == followerID {
		return nil, fmt.Errorf("cannot follow yourself: %w", ErrValidation)
	}

	if _, err := db.GetUser(followingID); err != nil {
		return nil, err
	}

	var existing data.Follow
	err := db.
		Where("follower_id = ? and following_id = ?", followerID, followingID).
		First(&existing).
		Error
	if err == nil {
		return nil, fmt.Errorf("follow of '%s': %w", followingID, ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error looking up follow of '%s': %w", followingID, err)
	}

	follow := data.Follow{
		ID:          uuid.NewString(),
		FollowerID:  followerID,
		FollowingID: followingID,
	}
	if err := db.Create(&follow).Error; err != nil {
		return nil, fmt.Errorf("error creating follow of '%s': %w", followingID, err)
	}
	return &follow, nil
}

// DeleteFollow removes a follower -> following edge.
func (db *DB) DeleteFollow(followerID, followingID string) error {
	res := db.
		Where("follower_id = ? and following_id = ?", followerID, followingID).
		Delete(&data.Follow{})
	if res.Error != nil {
		return fmt.Errorf("error deleting follow of '%s': %w", followingID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("follow of '%s': %w", followingID, ErrNotFound)
	}
	return nil
}

// Followers returns the users following userID, most recent first.
func (db *DB) Followers(userID string) ([]data.User, error) {
	return db.followEdgeUsers(userID, "following_id", "follower_id")
}

// Following returns the users userID follows, most recent first.
func (db *DB) Following(userID string) ([]data.User, error) {
	return db.followEdgeUsers(userID, "follower_id", "following_id")
}

func (db *DB) followEdgeUsers(userID, whereColumn, pluckColumn string) ([]data.User, error) {
	var ids []string
	if err := db.
		Table("follows").
		Where(whereColumn+" = ?", userID).
		Order("created_at desc").
		Pluck(pluckColumn, &ids).
		Error; err != nil {
		return nil, fmt.Errorf("error listing follows for '%s': %w", userID, err)
	}

	users := make([]data.User, len(ids))
	for i, id := range ids {
		user, err := db.GetUser(id)
		if err != nil {
			return nil, fmt.Errorf("error getting user %d ('%s'): %w", i+1, id, err)
		}
		users[i] = *user
	}
	return users, nil
}
