package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/musicrank/musicrank/data"
	"github.com/musicrank/musicrank/genres"
)

// handleAlbumSearch proxies an album search to the catalog and syncs every
// hit into local storage, so ratings can attach to a stable internal id.
func (s *Server) handleAlbumSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	limit := intParam(r, "limit", defaultSearchLimit)

	results, err := s.catalog.SearchAlbums(r.Context(), query, limit)
	if err != nil {
		respondFailure(w, err)
		return
	}

	albums, _, err := s.sync.Sync(r.Context(), results)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, albums)
}

// handleNewReleases fetches the catalog's newest releases, syncs them, then
// best-effort enriches genres (the new-releases endpoint never reports them)
// before grouping for display.
func (s *Server) handleNewReleases(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", defaultSearchLimit)

	releases, err := s.catalog.FetchNewReleases(r.Context(), limit)
	if err != nil {
		respondFailure(w, err)
		return
	}

	albums, _, err := s.sync.Sync(r.Context(), releases)
	if err != nil {
		respondFailure(w, err)
		return
	}

	albums, err = s.sync.BackfillGenres(r.Context(), albums)
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, genres.GroupByGenre(albums))
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	trending, err := s.db.TrendingAlbums(trendingWindow, trendingLimit)
	if err != nil {
		respondFailure(w, err)
		return
	}

	albums := make([]data.Album, len(trending))
	for i, t := range trending {
		albums[i] = t.Album
	}
	albums, err = s.sync.BackfillArtwork(r.Context(), albums)
	if err != nil {
		respondFailure(w, err)
		return
	}
	for i := range trending {
		trending[i].Album = albums[i]
	}

	respondJSON(w, http.StatusOK, trending)
}

func (s *Server) handleLatestAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.db.LatestAlbums(defaultSearchLimit)
	if err != nil {
		respondFailure(w, err)
		return
	}

	albums, err = s.sync.BackfillArtwork(r.Context(), albums)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, albums)
}

func (s *Server) handleAlbum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	album, err := s.db.GetAlbum(id)
	if err != nil {
		respondFailure(w, err)
		return
	}

	counts, err := s.db.RatingCounts(id)
	if err != nil {
		respondFailure(w, err)
		return
	}
	average, err := s.db.AverageRating(id)
	if err != nil {
		respondFailure(w, err)
		return
	}
	userRating, err := s.db.GetUserRating(sessionUserID(r), id)
	if err != nil {
		respondFailure(w, err)
		return
	}

	var total int64
	for _, count := range counts {
		total += count
	}

	respondJSON(w, http.StatusOK, struct {
		data.Album
		RatingCounts  map[string]int64 `json:"ratingCounts"`
		TotalRatings  int64            `json:"totalRatings"`
		AverageRating float64          `json:"averageRating"`
		UserRating    string           `json:"userRating,omitempty"`
	}{*album, counts, total, average, userRating})
}

func (s *Server) handleUpsertRating(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AlbumID string `json:"albumId"`
		Rating  string `json:"rating"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.AlbumID == "" || body.Rating == "" {
		respondError(w, http.StatusBadRequest, "album ID and rating are required")
		return
	}

	rating, err := s.db.UpsertRating(sessionUserID(r), body.AlbumID, body.Rating)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rating)
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	albumID := r.URL.Query().Get("albumId")
	if albumID == "" {
		respondError(w, http.StatusBadRequest, "album ID is required")
		return
	}

	if err := s.db.DeleteRating(sessionUserID(r), albumID); err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleRecentRatings(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", defaultSearchLimit)

	ratings, err := s.db.RecentRatings(limit)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ratings)
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FollowingID string `json:"followingId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.FollowingID == "" {
		respondError(w, http.StatusBadRequest, "following ID is required")
		return
	}

	follow, err := s.db.CreateFollow(sessionUserID(r), body.FollowingID)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, follow)
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	followingID := r.URL.Query().Get("followingId")
	if followingID == "" {
		respondError(w, http.StatusBadRequest, "following ID is required")
		return
	}

	if err := s.db.DeleteFollow(sessionUserID(r), followingID); err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.db.GetUserProfile(chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	users, err := s.db.Followers(chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	users, err := s.db.Following(chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (s *Server) handleUserSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondJSON(w, http.StatusOK, []data.UserProfile{})
		return
	}

	profiles, err := s.db.SearchUsers(query, defaultSearchLimit)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", defaultFeedLimit)
	offset := intParam(r, "offset", 0)

	ratings, err := s.db.FeedRatings(sessionUserID(r), limit, offset)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ratings)
}

// handleRefresh is the externally-triggered refresh: it pulls the newest
// releases into local storage so that pages serve warm data. Gated by an
// optional shared secret rather than a session, since it is called by a cron
// service.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.cronSecret != "" && r.Header.Get("Authorization") != "Bearer "+s.cronSecret {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	releases, err := s.catalog.FetchNewReleases(r.Context(), refreshFetchLimit)
	if err != nil {
		respondFailure(w, err)
		return
	}

	_, stats, err := s.sync.Sync(r.Context(), releases)
	if err != nil {
		respondFailure(w, err)
		return
	}
	log.Info().Int("created", stats.Created).Int("updated", stats.Updated).
		Msg("refreshed new releases")

	respondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		Created int  `json:"created"`
		Updated int  `json:"updated"`
		Total   int  `json:"total"`
	}{true, stats.Created, stats.Updated, len(releases)})
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
