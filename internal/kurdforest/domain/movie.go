package domain

import (
	"fmt"
	"strings"
	"time"
)

// MediaType selects the metadata provider endpoint a title lives under.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// ParseMediaType accepts "movie" or "tv" in any case.
func ParseMediaType(s string) (MediaType, error) {
	switch mt := MediaType(strings.ToLower(strings.TrimSpace(s))); mt {
	case MediaMovie, MediaTV:
		return mt, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// MaxCastMembers caps how many credits are cached per title.
const MaxCastMembers = 20

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

// Movie is the local cache of a provider title. ExternalID is unique and
// records are never updated once written.
type Movie struct {
	ID          string
	ExternalID  string
	MediaType   MediaType
	Title       string
	Overview    string
	PosterPath  string
	ReleaseDate string
	VoteAverage float64
	Genres      []Genre
	Cast        []CastMember
	CreatedAt   time.Time
}

// WatchlistEntry is a movie on a user's list and when it was added.
type WatchlistEntry struct {
	Movie   Movie
	AddedAt time.Time
}
