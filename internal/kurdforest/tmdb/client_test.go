package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/tmdb"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := tmdb.New("", "https://example.com", "en-US")
	require.Error(t, err)

	_, err = tmdb.New("key", " ", "en-US")
	require.Error(t, err)
}

func TestFetchDetailsMovie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/movie/603", r.URL.Path)
		require.Equal(t, "key", r.URL.Query().Get("api_key"))
		require.Equal(t, "credits", r.URL.Query().Get("append_to_response"))
		require.Equal(t, "en-US", r.URL.Query().Get("language"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 603,
			"title": "The Matrix",
			"overview": "A hacker learns the truth.",
			"poster_path": "/m.jpg",
			"release_date": "1999-03-31",
			"vote_average": 8.2,
			"genres": [{"id": 28, "name": "Action"}],
			"credits": {"cast": [{"name": "Keanu Reeves", "character": "Neo", "profile_path": "/k.jpg"}]}
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL+"/", "en-US")
	require.NoError(t, err)

	d, err := client.FetchDetails(context.Background(), "603", "movie")
	require.NoError(t, err)
	require.Equal(t, "The Matrix", d.DisplayTitle())
	require.Equal(t, "1999-03-31", d.DisplayDate())
	require.Len(t, d.Credits.Cast, 1)
	require.Equal(t, "Neo", d.Credits.Cast[0].Character)
}

func TestFetchDetailsShowFallbacks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tv/1399", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 1399, "name": "Game of Thrones", "first_air_date": "2011-04-17"}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	require.NoError(t, err)

	d, err := client.FetchDetails(context.Background(), "1399", "tv")
	require.NoError(t, err)
	require.Equal(t, "Game of Thrones", d.DisplayTitle())
	require.Equal(t, "2011-04-17", d.DisplayDate())
	require.Empty(t, d.Credits.Cast)
}

func TestFetchDetailsHTTPError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		temporary bool
	}{
		{name: "not found", status: http.StatusNotFound},
		{name: "rate limited", status: http.StatusTooManyRequests, temporary: true},
		{name: "server error", status: http.StatusBadGateway, temporary: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			t.Cleanup(server.Close)

			client, err := tmdb.New("key", server.URL, "")
			require.NoError(t, err)

			_, err = client.FetchDetails(context.Background(), "1", "movie")
			var statusErr *tmdb.StatusError
			require.True(t, errors.As(err, &statusErr))
			require.Equal(t, tt.status, statusErr.StatusCode)
			require.Equal(t, tt.temporary, statusErr.Temporary())
		})
	}
}

func TestFetchDetailsRejectsBadInput(t *testing.T) {
	client, err := tmdb.New("key", "https://example.com", "")
	require.NoError(t, err)

	_, err = client.FetchDetails(context.Background(), "603", "person")
	require.Error(t, err)

	_, err = client.FetchDetails(context.Background(), "  ", "movie")
	require.Error(t, err)
}

func TestFetchSeason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tv/1399/season/1", r.URL.Path)
		_, _ = w.Write([]byte(`{"season_number": 1, "episodes": [
			{"episode_number": 1, "name": "Winter Is Coming", "overview": "Lord Stark is troubled."},
			{"episode_number": 2, "name": "The Kingsroad", "overview": ""}
		]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	require.NoError(t, err)

	season, err := client.FetchSeason(context.Background(), "1399", 1)
	require.NoError(t, err)
	require.Len(t, season.Episodes, 2)
	require.Equal(t, "The Kingsroad", season.Episodes[1].Name)

	_, err = client.FetchSeason(context.Background(), "1399", -1)
	require.Error(t, err)
}
