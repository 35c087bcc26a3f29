package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeSpotify wires a client to two local servers, one playing the
// accounts host and one playing the API host. handler serves the API
// requests; the accounts server always grants a one-hour token and counts
// the exchanges it sees.
func newFakeSpotify(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int64) {
	t.Helper()

	var exchanges atomic.Int64
	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(accounts.Close)

	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)

	spo := New("id", "secret")
	spo.apiURL = api.URL
	spo.accountsURL = accounts.URL
	return spo, &exchanges
}

func TestSearchAlbums(t *testing.T) {
	spo, _ := newFakeSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Abbey Road", r.URL.Query().Get("q"))
		assert.Equal(t, "album", r.URL.Query().Get("type"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"albums":{"items":[
			{"id":"X","name":"Abbey Road",
			 "artists":[{"name":"The Beatles"}],
			 "images":[{"url":"u1","width":640,"height":640},{"url":"u2","width":300,"height":300}],
			 "release_date":"1969-09-26"},
			{"id":"","name":"No ID"}
		]}}`)
	})

	albums, err := spo.SearchAlbums(context.Background(), "Abbey Road", 20)
	require.NoError(t, err)
	require.Len(t, albums, 1)

	album := albums[0]
	require.NotNil(t, album.SpotifyID)
	assert.Equal(t, "X", *album.SpotifyID)
	assert.Equal(t, "Abbey Road", album.Title)
	assert.Equal(t, "The Beatles", album.Artist)
	assert.Equal(t, "1969-09-26", album.ReleaseDate)
	require.NotNil(t, album.CoverURL)
	assert.Equal(t, "u1", *album.CoverURL)
	// search results never carry genres
	assert.Equal(t, []string{}, album.Genres)
}

func TestSearchAlbumsJoinsArtists(t *testing.T) {
	spo, _ := newFakeSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"albums":{"items":[
			{"id":"X","name":"Watch the Throne",
			 "artists":[{"name":"JAY-Z"},{"name":"Kanye West"}]}
		]}}`)
	})

	albums, err := spo.SearchAlbums(context.Background(), "watch the throne", 20)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "JAY-Z, Kanye West", albums[0].Artist)
	assert.Nil(t, albums[0].CoverURL)
}

func TestFetchAlbumIncludesGenres(t *testing.T) {
	spo, _ := newFakeSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/albums/X", r.URL.Path)
		fmt.Fprint(w, `{"id":"X","name":"Abbey Road",
			"artists":[{"name":"The Beatles"}],
			"genres":["rock","british invasion"]}`)
	})

	album, err := spo.FetchAlbum(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, []string{"rock", "british invasion"}, album.Genres)
}

func TestFetchNewReleases(t *testing.T) {
	spo, _ := newFakeSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/browse/new-releases", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"albums":{"items":[
			{"id":"A","name":"First"},
			{"id":"B","name":"Second","genres":["pop"]}
		]}}`)
	})

	albums, err := spo.FetchNewReleases(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, albums, 2)
	assert.Equal(t, "First", albums[0].Title)
	// the list endpoint's genre field is ignored even when present
	assert.Equal(t, []string{}, albums[1].Genres)
}

func TestUpstreamErrors(t *testing.T) {
	spo, _ := newFakeSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	_, err := spo.FetchAlbum(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestNotConfigured(t *testing.T) {
	spo := New("", "")
	_, err := spo.SearchAlbums(context.Background(), "anything", 20)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTokenExchangeFailure(t *testing.T) {
	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	t.Cleanup(accounts.Close)

	spo := New("id", "wrong")
	spo.accountsURL = accounts.URL

	_, err := spo.SearchAlbums(context.Background(), "anything", 20)
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}

func TestTokenIsCachedUntilMarginBeforeExpiry(t *testing.T) {
	spo, exchanges := newFakeSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"albums":{"items":[]}}`)
	})

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	spo.now = func() time.Time { return clock }

	_, err := spo.SearchAlbums(context.Background(), "a", 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), exchanges.Load())

	// 58 minutes in, still inside lifetime minus the 60s margin
	clock = clock.Add(58 * time.Minute)
	_, err = spo.SearchAlbums(context.Background(), "b", 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), exchanges.Load())

	// 59m30s in, within the margin, so a fresh exchange happens
	clock = clock.Add(90 * time.Second)
	_, err = spo.SearchAlbums(context.Background(), "c", 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), exchanges.Load())
}

func TestCoverURLPicksHighestResolution(t *testing.T) {
	wa := wireAlbum{Images: []struct {
		URL    string `json:"url"`
		Width  int64  `json:"width"`
		Height int64  `json:"height"`
	}{
		{URL: "small", Width: 64, Height: 64},
		{URL: "large", Width: 640, Height: 640},
		{URL: "tied", Width: 640, Height: 640},
	}}
	require.NotNil(t, wa.coverURL())
	// ties go to the earlier image
	assert.Equal(t, "large", *wa.coverURL())

	noDimensions := wireAlbum{Images: []struct {
		URL    string `json:"url"`
		Width  int64  `json:"width"`
		Height int64  `json:"height"`
	}{
		{URL: "first"},
		{URL: "second"},
	}}
	require.NotNil(t, noDimensions.coverURL())
	assert.Equal(t, "first", *noDimensions.coverURL())

	assert.Nil(t, wireAlbum{}.coverURL())
}
