package data

import "time"

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`

	// bcrypt hash; never serialized
	Password string `json:"-"`

	Bio   string `json:"bio"`
	Image string `json:"image"`

	CreatedAt time.Time `json:"createdAt"`
}

// UserProfile is a user plus the counts shown on profile and search results.
type UserProfile struct {
	User
	FollowerCount  int64 `json:"followerCount"`
	FollowingCount int64 `json:"followingCount"`
	RatingCount    int64 `json:"ratingCount"`
}
