package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/musicrank/musicrank/data"
)

// UpsertAlbum inserts or updates an album keyed by its spotify id, mutating
// the given album's ID and CreatedAt to the persisted values. On conflict the
// catalog's values win wholesale: title, artist, release date, cover, and
// genres are all overwritten, including overwriting a cover with null. The
// returned bool reports whether a new row was created.
func (db *DB) UpsertAlbum(album *data.Album) (bool, error) {
	if album.SpotifyID == nil || *album.SpotifyID == "" {
		return false, fmt.Errorf("album '%s' has no spotify id: %w", album.Title, ErrValidation)
	}

	var existing data.Album
	err := db.Where("spotify_id = ?", *album.SpotifyID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		album.ID = uuid.NewString()
		if err := db.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "spotify_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"title", "artist", "release_date", "cover_url", "genres",
				}),
			}).
			Create(album).
			Error; err != nil {
			return false, fmt.Errorf("error inserting album '%s': %w", album.Title, err)
		}
		return true, nil

	case err != nil:
		return false, fmt.Errorf("error looking up album '%s': %w", *album.SpotifyID, err)
	}

	album.ID = existing.ID
	album.CreatedAt = existing.CreatedAt
	if err := db.
		Model(&data.Album{}).
		Where("id = ?", existing.ID).
		Select("title", "artist", "release_date", "cover_url", "genres").
		Updates(data.Album{
			Title:       album.Title,
			Artist:      album.Artist,
			ReleaseDate: album.ReleaseDate,
			CoverURL:    album.CoverURL,
			Genres:      album.Genres,
		}).
		Error; err != nil {
		return false, fmt.Errorf("error updating album '%s': %w", existing.ID, err)
	}
	return false, nil
}

// GetAlbum returns the album with the given internal id.
func (db *DB) GetAlbum(id string) (*data.Album, error) {
	var album data.Album
	if err := db.Where("id = ?", id).First(&album).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("album '%s': %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("error getting album '%s': %w", id, err)
	}
	return &album, nil
}

// LatestAlbums returns the most recently created albums, newest first.
func (db *DB) LatestAlbums(limit int) ([]data.Album, error) {
	var albums []data.Album
	if err := db.
		Order("created_at desc").
		Limit(limit).
		Find(&albums).
		Error; err != nil {
		return nil, fmt.Errorf("error listing latest albums: %w", err)
	}
	return albums, nil
}

// SetAlbumArtwork records a cover URL discovered by backfill, refreshing the
// title and artist alongside since they came from the same catalog fetch.
func (db *DB) SetAlbumArtwork(id, title, artist, coverURL string) error {
	if err := db.
		Model(&data.Album{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"cover_url": coverURL,
			"title":     title,
			"artist":    artist,
		}).
		Error; err != nil {
		return fmt.Errorf("error setting artwork for album '%s': %w", id, err)
	}
	return nil
}

// SetAlbumGenres records genre tags discovered by backfill.
func (db *DB) SetAlbumGenres(id string, genres []string) error {
	if err := db.
		Model(&data.Album{}).
		Where("id = ?", id).
		Select("genres").
		Updates(data.Album{Genres: genres}).
		Error; err != nil {
		return fmt.Errorf("error setting genres for album '%s': %w", id, err)
	}
	return nil
}
