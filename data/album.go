package data

import "time"

// Albums are fetched from Spotify and cached locally forever: ratings attach
// to the local ID, so an album row is never deleted even if the catalog drops
// the title. Catalog data is the source of truth; every sync overwrites
// title/artist/release date/cover/genres with the freshest values.
type Album struct {
	ID string `json:"id"`

	// like "0ETFjACtuP2ADo6LFhL6HN"; unique when non-null. Null is
	// structurally allowed for records added without a catalog match.
	SpotifyID *string `json:"spotifyId"`

	Title string `json:"title"`

	// display string; multiple artists joined by ", "
	Artist string `json:"artist"`

	// free-form, like "1969-09-26" or just "1969"; not a parsed date
	ReleaseDate string `json:"releaseDate"`

	CoverURL *string `json:"coverUrl"`

	// like ["rock", "psychedelic rock"]; empty for search and new-release
	// results, populated only by single-album fetches
	Genres []string `json:"genres" gorm:"serializer:json"`

	CreatedAt time.Time `json:"createdAt"`
}

// HasCover reports whether the album already carries artwork.
func (a Album) HasCover() bool {
	return a.CoverURL != nil && *a.CoverURL != ""
}
