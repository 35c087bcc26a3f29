// Package spotify talks to the Spotify web API: it exchanges statically
// configured client credentials for a short-lived bearer token, and exposes
// the three read-only catalog operations the rest of the app needs.
//
// There is no retry policy here. A failed upstream call is reported once and
// the caller falls back to whatever data it already has.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/musicrank/musicrank/data"
	"github.com/musicrank/musicrank/request"
)

// ErrNotConfigured means the client id/secret are unset; catalog calls can
// never succeed and are not retried.
var ErrNotConfigured = errors.New("spotify credentials not configured")

// ErrUpstreamAuth means the credential exchange itself failed.
var ErrUpstreamAuth = errors.New("spotify token exchange failed")

// ErrUpstream means a catalog call failed; unknown-id lookups surface here
// too, since the provider reports them as a non-success status.
var ErrUpstream = errors.New("spotify request failed")

const (
	defaultAPIURL      = "https://api.spotify.com/v1"
	defaultAccountsURL = "https://accounts.spotify.com/api/token"
)

// New creates a new Spotify client with the given clientID and clientSecret.
// Empty credentials are allowed at construction; calls fail with
// ErrNotConfigured.
func New(clientID, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   http.DefaultClient,
		apiURL:       defaultAPIURL,
		accountsURL:  defaultAccountsURL,
		now:          time.Now,
	}
}

type Client struct {
	clientID     string
	clientSecret string

	httpClient  *http.Client
	apiURL      string
	accountsURL string

	token tokenCache

	// injectable clock so token expiry is testable
	now func() time.Time
}

// SearchAlbums queries the album search endpoint and maps each result to the
// local album shape. The search endpoint never reports genres, so results
// always carry an empty genre list; results missing a provider id are
// dropped.
func (spo *Client) SearchAlbums(ctx context.Context, query string, limit int) ([]data.Album, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "album")
	q.Set("limit", strconv.Itoa(limit))

	resp, err := spo.get(ctx, spo.apiURL+"/search", q)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	var results struct {
		Albums struct {
			Items []wireAlbum `json:"items"`
		} `json:"albums"`
	}
	if err := json.NewDecoder(resp).Decode(&results); err != nil {
		return nil, fmt.Errorf("search decode error: %w", err)
	}

	albums := make([]data.Album, 0, len(results.Albums.Items))
	for _, item := range results.Albums.Items {
		if item.ID == "" {
			continue
		}
		albums = append(albums, item.toAlbum(false))
	}
	return albums, nil
}

// FetchAlbum fetches a single album by its spotify id. Unlike search and
// new-release results, the single-album payload includes genre tags when the
// provider has them.
func (spo *Client) FetchAlbum(ctx context.Context, spotifyID string) (*data.Album, error) {
	resp, err := spo.get(ctx, fmt.Sprintf("%s/albums/%s", spo.apiURL, spotifyID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	var result wireAlbum
	if err := json.NewDecoder(resp).Decode(&result); err != nil {
		return nil, fmt.Errorf("album decode error: %w", err)
	}

	album := result.toAlbum(true)
	return &album, nil
}

// FetchNewReleases lists the provider's newest releases. Like search, this
// endpoint never reports genres.
func (spo *Client) FetchNewReleases(ctx context.Context, limit int) ([]data.Album, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	resp, err := spo.get(ctx, spo.apiURL+"/browse/new-releases", q)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	var results struct {
		Albums struct {
			Items []wireAlbum `json:"items"`
		} `json:"albums"`
	}
	if err := json.NewDecoder(resp).Decode(&results); err != nil {
		return nil, fmt.Errorf("new releases decode error: %w", err)
	}

	albums := make([]data.Album, 0, len(results.Albums.Items))
	for _, item := range results.Albums.Items {
		if item.ID == "" {
			continue
		}
		albums = append(albums, item.toAlbum(false))
	}
	return albums, nil
}

type wireAlbum struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Images []struct {
		URL    string `json:"url"`
		Width  int64  `json:"width"`
		Height int64  `json:"height"`
	} `json:"images"`
	ReleaseDate string   `json:"release_date"`
	Genres      []string `json:"genres"`
}

func (wa wireAlbum) toAlbum(withGenres bool) data.Album {
	spotifyID := wa.ID

	artist := ""
	for i, a := range wa.Artists {
		if i > 0 {
			artist += ", "
		}
		artist += a.Name
	}

	album := data.Album{
		SpotifyID:   &spotifyID,
		Title:       wa.Name,
		Artist:      artist,
		ReleaseDate: wa.ReleaseDate,
		CoverURL:    wa.coverURL(),
		Genres:      []string{},
	}
	if withGenres && len(wa.Genres) > 0 {
		album.Genres = wa.Genres
	}
	return album
}

// coverURL picks the highest-resolution image by reported width, ties going
// to the provider's original ordering. When no image reports dimensions, the
// first one wins.
func (wa wireAlbum) coverURL() *string {
	if len(wa.Images) == 0 {
		return nil
	}

	best := wa.Images[0].URL
	var maxWidth int64
	for _, image := range wa.Images {
		if image.Width > maxWidth {
			best = image.URL
			maxWidth = image.Width
		}
	}
	return &best
}

func (spo *Client) get(ctx context.Context, baseURL string, query url.Values) (io.ReadCloser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url '%s': %w", baseURL, err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}

	token, err := spo.bearerToken(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)

	resp, err := spo.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error for '%s': %w", u.Path, err)
	}
	if err := request.Error(resp); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch error for '%s': %v: %w", u.Path, err, ErrUpstream)
	}

	return resp.Body, nil
}
