// Package server exposes the HTTP API: album search and discovery backed by
// the catalog sync pipeline, session-gated rating and follow CRUD, and the
// aggregation queries behind the home page.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/musicrank/musicrank/data"
	"github.com/musicrank/musicrank/db"
	"github.com/musicrank/musicrank/session"
	"github.com/musicrank/musicrank/syncer"
)

// Catalog is the slice of the Spotify client the handlers call directly;
// single-album lookups happen inside the syncer's backfills.
type Catalog interface {
	SearchAlbums(ctx context.Context, query string, limit int) ([]data.Album, error)
	FetchNewReleases(ctx context.Context, limit int) ([]data.Album, error)
}

const (
	trendingWindow = 7 * 24 * time.Hour
	trendingLimit  = 20

	defaultSearchLimit  = 20
	defaultFeedLimit    = 50
	refreshFetchLimit   = 50
	shutdownGracePeriod = 10 * time.Second
)

type Server struct {
	db       *db.DB
	catalog  Catalog
	sync     *syncer.Syncer
	sessions *session.Manager

	// optional shared secret gating the refresh trigger
	cronSecret string
}

func New(database *db.DB, catalog Catalog, sync *syncer.Syncer, sessions *session.Manager, cronSecret string) *Server {
	return &Server{
		db:         database,
		catalog:    catalog,
		sync:       sync,
		sessions:   sessions,
		cronSecret: cronSecret,
	}
}

// Router assembles the chi mux with the full route surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(requestMetrics)

	r.Get("/api/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/auth/signup", s.handleSignup)
	r.Post("/api/auth/signin", s.handleSignin)

	// refresh trigger for external cron; gated by its own shared secret
	r.Get("/api/cron/fetch-albums", s.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/api/albums/search", s.handleAlbumSearch)
		r.Get("/api/albums/new-releases", s.handleNewReleases)
		r.Get("/api/albums/trending", s.handleTrending)
		r.Get("/api/albums/latest", s.handleLatestAlbums)
		r.Get("/api/albums/{id}", s.handleAlbum)

		r.Post("/api/ratings", s.handleUpsertRating)
		r.Delete("/api/ratings", s.handleDeleteRating)
		r.Get("/api/ratings/recent", s.handleRecentRatings)

		r.Post("/api/user/follow", s.handleFollow)
		r.Delete("/api/user/follow", s.handleUnfollow)
		r.Get("/api/user/{id}", s.handleUserProfile)
		r.Get("/api/user/{id}/followers", s.handleFollowers)
		r.Get("/api/user/{id}/following", s.handleFollowing)
		r.Get("/api/users/search", s.handleUserSearch)

		r.Get("/api/feed", s.handleFeed)
	})

	return r
}

// Run serves the API until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := http.Server{Addr: addr, Handler: s.Router()}

	errs := make(chan error)
	go func() { errs <- srv.ListenAndServe() }()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errs
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
