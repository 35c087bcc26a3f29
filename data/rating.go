package data

import "time"

// The four rating labels, in ascending order of enthusiasm. The ordering is a
// domain policy used only for the weighted average, not a database
// constraint.
const (
	RatingSkip       = "SKIP"
	RatingTimepass   = "TIMEPASS"
	RatingGood       = "GOOD"
	RatingPerfection = "PERFECTION"
)

// RatingWeights maps each label to its weight in the four-bucket mean.
var RatingWeights = map[string]int{
	RatingSkip:       0,
	RatingTimepass:   1,
	RatingGood:       2,
	RatingPerfection: 3,
}

// IsRatingLabel reports whether s is one of the four rating labels.
func IsRatingLabel(s string) bool {
	_, ok := RatingWeights[s]
	return ok
}

// Ratings are unique per (user, album) pair and owned exclusively by the
// rating user. CreatedAt drives the trending window.
type Rating struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	AlbumID string `json:"albumId"`

	// one of SKIP, TIMEPASS, GOOD, PERFECTION
	Rating string `json:"rating"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User  *User  `json:"user,omitempty" gorm:"-"`
	Album *Album `json:"album,omitempty" gorm:"-"`
}
