// Package tmdb is a small client for the TMDB v3 API covering the title and
// season lookups the watchlist needs.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

// Genre is a TMDB genre tag.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CastMember is one billed credit.
type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

// Credits holds the cast appended to a details response.
type Credits struct {
	Cast []CastMember `json:"cast"`
}

// Details is the movie or TV payload. Movies fill Title and ReleaseDate,
// shows fill Name and FirstAirDate.
type Details struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Genres       []Genre `json:"genres"`
	Credits      Credits `json:"credits"`
}

// DisplayTitle returns Title, falling back to Name for shows.
func (d Details) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// DisplayDate returns ReleaseDate, falling back to FirstAirDate for shows.
func (d Details) DisplayDate() string {
	if d.ReleaseDate != "" {
		return d.ReleaseDate
	}
	return d.FirstAirDate
}

// Episode describes a single TMDB episode entry.
type Episode struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	AirDate       string `json:"air_date"`
}

// Season captures the season payload with its episodes.
type Season struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SeasonNumber int       `json:"season_number"`
	Episodes     []Episode `json:"episodes"`
}

// StatusError reports a non-200 response.
type StatusError struct {
	StatusCode int
	Endpoint   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s returned %d", e.Endpoint, e.StatusCode)
}

// Temporary reports whether the request may succeed if repeated.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchDetails loads a movie or show by id with its credits appended.
// mediaType is the TMDB path segment, "movie" or "tv".
func (c *Client) FetchDetails(ctx context.Context, externalID, mediaType string) (*Details, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, errors.New("external id must not be empty")
	}
	if mediaType != "movie" && mediaType != "tv" {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}

	params := url.Values{}
	params.Set("append_to_response", "credits")

	var payload Details
	if err := c.get(ctx, "/"+mediaType+"/"+url.PathEscape(externalID), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchSeason loads one season of a show including its episodes.
func (c *Client) FetchSeason(ctx context.Context, showID string, seasonNumber int) (*Season, error) {
	showID = strings.TrimSpace(showID)
	if showID == "" {
		return nil, errors.New("show id must not be empty")
	}
	if seasonNumber < 0 {
		return nil, fmt.Errorf("invalid season number %d", seasonNumber)
	}

	var payload Season
	path := "/tv/" + url.PathEscape(showID) + "/season/" + strconv.Itoa(seasonNumber)
	if err := c.get(ctx, path, url.Values{}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Endpoint: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}
