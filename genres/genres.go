// Package genres buckets a batch of synchronized albums by genre tag for
// display.
package genres

import (
	"sort"
	"strings"
	"unicode"

	"github.com/musicrank/musicrank/data"
)

// popularGenres is the fixed priority list: buckets matching these names are
// emitted before the rest, in this order.
var popularGenres = []string{
	"pop",
	"rock",
	"hip hop",
	"rap",
	"r&b",
	"indie",
	"electronic",
	"dance",
	"jazz",
	"country",
	"metal",
	"folk",
	"soul",
	"classical",
}

const (
	maxAlbumsPerBucket = 10
	maxBuckets         = 6
)

// otherBucket collects albums with no genre tags at all.
const otherBucket = "Other"

// A Bucket is a named group of albums sharing a genre tag.
type Bucket struct {
	Genre  string       `json:"genre"`
	Albums []data.Album `json:"albums"`
}

// GroupByGenre partitions albums into display buckets. Bucket identity is
// the case-insensitive, whitespace-trimmed tag; an album with N distinct
// tags appears in N buckets, and an album with none lands in "Other".
//
// Buckets matching the popular-genre priority list come out first in the
// list's order, then the rest in encounter order, each truncated to 10
// albums. The whole result is then re-sorted by bucket size descending
// and cut to 6 buckets. The size re-sort effectively discards the priority
// ordering; that matches the shipped behavior and is kept deliberately
// pending a product decision.
func GroupByGenre(albums []data.Album) []Bucket {
	type group struct {
		label  string
		albums []data.Album
	}

	byKey := map[string]*group{}
	var keyOrder []string

	add := func(key, label string, album data.Album) {
		g, ok := byKey[key]
		if !ok {
			g = &group{label: label}
			byKey[key] = g
			keyOrder = append(keyOrder, key)
		}
		g.albums = append(g.albums, album)
	}

	for _, album := range albums {
		seen := map[string]struct{}{}
		for _, tag := range album.Genres {
			trimmed := strings.TrimSpace(tag)
			if trimmed == "" {
				continue
			}
			key := strings.ToLower(trimmed)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			add(key, displayLabel(trimmed), album)
		}
		if len(seen) == 0 {
			add(strings.ToLower(otherBucket), otherBucket, album)
		}
	}

	var buckets []Bucket
	emitted := map[string]struct{}{}

	emit := func(key string) {
		g := byKey[key]
		albums := g.albums
		if len(albums) > maxAlbumsPerBucket {
			albums = albums[:maxAlbumsPerBucket]
		}
		buckets = append(buckets, Bucket{Genre: g.label, Albums: albums})
		emitted[key] = struct{}{}
	}

	for _, name := range popularGenres {
		if _, ok := byKey[name]; ok {
			emit(name)
		}
	}
	for _, key := range keyOrder {
		if _, done := emitted[key]; !done {
			emit(key)
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return len(buckets[i].Albums) > len(buckets[j].Albums)
	})
	if len(buckets) > maxBuckets {
		buckets = buckets[:maxBuckets]
	}
	return buckets
}

func displayLabel(trimmed string) string {
	runes := []rune(trimmed)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
