package genres_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musicrank/musicrank/data"
	"github.com/musicrank/musicrank/genres"
)

func album(title string, tags ...string) data.Album {
	return data.Album{ID: title, Title: title, Genres: tags}
}

func TestGroupByGenreMergesTagVariants(t *testing.T) {
	buckets := genres.GroupByGenre([]data.Album{
		album("a", "Jazz"),
		album("b", "jazz "),
		album("c", "  JAZZ"),
	})

	require.Len(t, buckets, 1)
	assert.Equal(t, "Jazz", buckets[0].Genre)
	assert.Len(t, buckets[0].Albums, 3)
}

func TestGroupByGenreLabelUsesFirstEncounteredTag(t *testing.T) {
	buckets := genres.GroupByGenre([]data.Album{
		album("a", "lo-fi beats"),
		album("b", "Lo-Fi Beats"),
	})

	require.Len(t, buckets, 1)
	assert.Equal(t, "Lo-fi beats", buckets[0].Genre)
}

func TestGroupByGenreMultiTagAlbums(t *testing.T) {
	buckets := genres.GroupByGenre([]data.Album{
		album("a", "rock", "pop"),
		album("b", "rock", "Rock"), // duplicate tags within one album count once
	})

	require.Len(t, buckets, 2)
	byName := map[string]int{}
	for _, b := range buckets {
		byName[b.Genre] = len(b.Albums)
	}
	assert.Equal(t, 2, byName["Rock"])
	assert.Equal(t, 1, byName["Pop"])
}

func TestGroupByGenreOtherBucket(t *testing.T) {
	buckets := genres.GroupByGenre([]data.Album{
		album("a"),
		album("b", "  ", ""),
		album("c", "pop"),
	})

	require.Len(t, buckets, 2)
	assert.Equal(t, "Other", buckets[0].Genre)
	assert.Len(t, buckets[0].Albums, 2)
	assert.Equal(t, "Pop", buckets[1].Genre)
}

func TestGroupByGenreTruncatesBucketsToTen(t *testing.T) {
	var albums []data.Album
	for i := 0; i < 15; i++ {
		albums = append(albums, album(fmt.Sprintf("a%d", i), "pop"))
	}

	buckets := genres.GroupByGenre(albums)
	require.Len(t, buckets, 1)
	assert.Len(t, buckets[0].Albums, 10)
}

func TestGroupByGenreSortsBySizeAndCapsAtSix(t *testing.T) {
	var albums []data.Album
	// eight genres with descending album counts 8..1
	for g := 0; g < 8; g++ {
		for i := 0; i <= g; i++ {
			albums = append(albums, album(fmt.Sprintf("g%d-a%d", g, i), fmt.Sprintf("genre-%d", g)))
		}
	}

	buckets := genres.GroupByGenre(albums)
	require.Len(t, buckets, 6)
	assert.Equal(t, "Genre-7", buckets[0].Genre)
	assert.Len(t, buckets[0].Albums, 8)
	for i := 1; i < len(buckets); i++ {
		assert.GreaterOrEqual(t, len(buckets[i-1].Albums), len(buckets[i].Albums))
	}
}

func TestGroupByGenreSizeSortOutranksPriority(t *testing.T) {
	buckets := genres.GroupByGenre([]data.Album{
		album("a", "pop"),
		album("b", "shoegaze"),
		album("c", "shoegaze"),
	})

	// pop is on the priority list but the bigger bucket still wins
	require.Len(t, buckets, 2)
	assert.Equal(t, "Shoegaze", buckets[0].Genre)
	assert.Equal(t, "Pop", buckets[1].Genre)
}
