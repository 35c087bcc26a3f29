package data

import "time"

// Follows are unique per (follower, following) pair. Self-follows are
// rejected before the row is written. There is no update; an edge is created
// once and either exists or doesn't.
type Follow struct {
	ID          string    `json:"id"`
	FollowerID  string    `json:"followerId"`
	FollowingID string    `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}
