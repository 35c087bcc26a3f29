package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/musicrank/musicrank/data"
)

// CreateUser inserts a new user, assigning its id. Username and email are
// unique.
func (db *DB) CreateUser(user *data.User) error {
	var count int64
	if err := db.
		Model(&data.User{}).
		Where("username = ? or email = ?", user.Username, user.Email).
		Count(&count).
		Error; err != nil {
		return fmt.Errorf("error checking for existing user '%s': %w", user.Username, err)
	}
	if count > 0 {
		return fmt.Errorf("user '%s': %w", user.Username, ErrConflict)
	}

	user.ID = uuid.NewString()
	if err := db.Create(user).Error; err != nil {
		return fmt.Errorf("error creating user '%s': %w", user.Username, err)
	}
	return nil
}

// GetUser returns the user with the given id.
func (db *DB) GetUser(id string) (*data.User, error) {
	var user data.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user '%s': %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("error getting user '%s': %w", id, err)
	}
	return &user, nil
}

// GetUserByEmail returns the user with the given email.
func (db *DB) GetUserByEmail(email string) (*data.User, error) {
	var user data.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user '%s': %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("error getting user '%s': %w", email, err)
	}
	return &user, nil
}

// SearchUsers matches usernames and display names case-insensitively and
// returns profiles with follower/following/rating counts, newest accounts
// first.
func (db *DB) SearchUsers(query string, limit int) ([]data.UserProfile, error) {
	var users []data.User
	pattern := "%" + query + "%"
	if err := db.
		Where("username like ? or name like ?", pattern, pattern).
		Order("created_at desc").
		Limit(limit).
		Find(&users).
		Error; err != nil {
		return nil, fmt.Errorf("error searching users for '%s': %w", query, err)
	}

	profiles := make([]data.UserProfile, len(users))
	for i, user := range users {
		profile, err := db.profileFor(user)
		if err != nil {
			return nil, err
		}
		profiles[i] = profile
	}
	return profiles, nil
}

// GetUserProfile returns a user with their counts.
func (db *DB) GetUserProfile(id string) (*data.UserProfile, error) {
	user, err := db.GetUser(id)
	if err != nil {
		return nil, err
	}
	profile, err := db.profileFor(*user)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (db *DB) profileFor(user data.User) (data.UserProfile, error) {
	profile := data.UserProfile{User: user}

	if err := db.
		Model(&data.Follow{}).
		Where("following_id = ?", user.ID).
		Count(&profile.FollowerCount).
		Error; err != nil {
		return profile, fmt.Errorf("error counting followers for '%s': %w", user.ID, err)
	}
	if err := db.
		Model(&data.Follow{}).
		Where("follower_id = ?", user.ID).
		Count(&profile.FollowingCount).
		Error; err != nil {
		return profile, fmt.Errorf("error counting following for '%s': %w", user.ID, err)
	}
	if err := db.
		Model(&data.Rating{}).
		Where("user_id = ?", user.ID).
		Count(&profile.RatingCount).
		Error; err != nil {
		return profile, fmt.Errorf("error counting ratings for '%s': %w", user.ID, err)
	}

	return profile, nil
}
