// Package syncer reconciles catalog results against locally persisted album
// records, and opportunistically completes fields the initial fetch omitted.
//
// Enrichment is deliberately decoupled from the batch upsert: a slow or
// failing backfill call never blocks the primary listing response. Callers
// render what they have and see enriched records at best, unchanged records
// at worst.
package syncer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/musicrank/musicrank/data"
	"github.com/musicrank/musicrank/db"
	"github.com/musicrank/musicrank/limiter"
)

// Catalog is the single-album lookup the backfills enrich from.
type Catalog interface {
	FetchAlbum(ctx context.Context, spotifyID string) (*data.Album, error)
}

const (
	// artworkConcurrency bounds parallel artwork fetches so a big batch
	// can't overwhelm the upstream provider.
	artworkConcurrency = 4

	// genreFetchDelay paces genre lookups, which hit the single-album
	// endpoint once per album.
	genreFetchDelay = 200 * time.Millisecond
)

type Syncer struct {
	db       *db.DB
	catalog  Catalog
	throttle *limiter.Limiter
}

func New(database *db.DB, catalog Catalog) *Syncer {
	return &Syncer{
		db:       database,
		catalog:  catalog,
		throttle: limiter.New(genreFetchDelay),
	}
}

// Stats reports how a batch sync resolved.
type Stats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Sync idempotently merges a batch of catalog results into local storage,
// upserting each album by its spotify id. It returns the persisted album for
// each input, preserving input order; an item that fails to persist is
// logged and dropped without aborting its siblings.
func (s *Syncer) Sync(ctx context.Context, batch []data.Album) ([]data.Album, Stats, error) {
	var stats Stats
	persisted := make([]data.Album, 0, len(batch))

	for _, album := range batch {
		if err := ctx.Err(); err != nil {
			return persisted, stats, err
		}

		created, err := s.db.UpsertAlbum(&album)
		if err != nil {
			log.Warn().Err(err).Msgf("error syncing album '%s'", album.Title)
			stats.Failed++
			continue
		}
		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
		persisted = append(persisted, album)
	}

	return persisted, stats, nil
}

// BackfillArtwork enriches albums that lack a cover image but hold a spotify
// id, fetching the full catalog record for each and persisting any cover it
// reports. Albums that already have artwork pass through untouched; a cover
// is never downgraded once set. Lookups run concurrently, bounded to avoid
// hammering the provider; a failed lookup is logged and its album passes
// through unchanged.
func (s *Syncer) BackfillArtwork(ctx context.Context, albums []data.Album) ([]data.Album, error) {
	out := make([]data.Album, len(albums))
	copy(out, albums)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(artworkConcurrency)

	for i, album := range albums {
		if album.HasCover() || album.SpotifyID == nil || *album.SpotifyID == "" {
			continue
		}

		i, album := i, album
		g.Go(func() error {
			fetched, err := s.catalog.FetchAlbum(gctx, *album.SpotifyID)
			if err != nil {
				log.Warn().Err(err).Msgf("error backfilling artwork for '%s'", *album.SpotifyID)
				return nil
			}
			if fetched.CoverURL == nil || *fetched.CoverURL == "" {
				return nil
			}

			title := album.Title
			if fetched.Title != "" {
				title = fetched.Title
			}
			artist := album.Artist
			if fetched.Artist != "" {
				artist = fetched.Artist
			}
			if err := s.db.SetAlbumArtwork(album.ID, title, artist, *fetched.CoverURL); err != nil {
				log.Warn().Err(err).Msgf("error saving artwork for '%s'", album.ID)
				return nil
			}

			out[i].CoverURL = fetched.CoverURL
			out[i].Title = title
			out[i].Artist = artist
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, ctx.Err()
}

// BackfillGenres enriches albums whose genre list is empty, pacing each
// single-album lookup to respect upstream rate limits. Like artwork
// backfill, it is best-effort: a failure leaves the album unchanged.
func (s *Syncer) BackfillGenres(ctx context.Context, albums []data.Album) ([]data.Album, error) {
	out := make([]data.Album, len(albums))
	copy(out, albums)

	for i, album := range albums {
		if len(album.Genres) > 0 || album.SpotifyID == nil || *album.SpotifyID == "" {
			continue
		}

		if err := s.throttle.Wait(ctx); err != nil {
			return out, err
		}

		fetched, err := s.catalog.FetchAlbum(ctx, *album.SpotifyID)
		s.throttle.Delay()
		if err != nil {
			log.Warn().Err(err).Msgf("error backfilling genres for '%s'", *album.SpotifyID)
			continue
		}
		if len(fetched.Genres) == 0 {
			continue
		}

		if err := s.db.SetAlbumGenres(album.ID, fetched.Genres); err != nil {
			log.Warn().Err(err).Msgf("error saving genres for '%s'", album.ID)
			continue
		}
		out[i].Genres = fetched.Genres
	}

	return out, ctx.Err()
}
