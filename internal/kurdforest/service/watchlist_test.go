package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/tmdb"
	"github.com/stretchr/testify/require"
)

func TestAddFetchesOnceAndRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, _ := f.signUp(t, "alice", "alice@x.com", "Secret1")

	require.NoError(t, f.watchlist.Add(ctx, &sess, "603", "movie"))
	require.EqualValues(t, 1, f.provider.calls.Load())

	movie, err := f.store.Movies().GetMovieByExternalID(ctx, "603")
	require.NoError(t, err)
	require.Equal(t, "The Matrix", movie.Title)
	require.Len(t, movie.Cast, domain.MaxCastMembers)

	err = f.watchlist.Add(ctx, &sess, "603", "movie")
	require.ErrorIs(t, err, ErrAlreadyInWatchlist)
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, "Item already in watchlist.", err.Error())
	require.EqualValues(t, 1, f.provider.calls.Load())

	in, err := f.watchlist.Check(ctx, &sess, "603")
	require.NoError(t, err)
	require.True(t, in)
}

func TestAddShowUsesNameAndFirstAirDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, _ := f.signUp(t, "alice", "alice@x.com", "Secret1")

	require.NoError(t, f.watchlist.Add(ctx, &sess, "1399", "TV"))

	movie, err := f.store.Movies().GetMovieByExternalID(ctx, "1399")
	require.NoError(t, err)
	require.Equal(t, "Game of Thrones", movie.Title)
	require.Equal(t, "2011-04-17", movie.ReleaseDate)
	require.Equal(t, domain.MediaTV, movie.MediaType)
}

func TestAddValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, _ := f.signUp(t, "alice", "alice@x.com", "Secret1")

	require.ErrorIs(t, f.watchlist.Add(ctx, nil, "603", "movie"), ErrNoSession)
	require.ErrorIs(t, f.watchlist.Add(ctx, &sess, "603", "person"), ErrInvalidMediaType)
	require.ErrorIs(t, f.watchlist.Add(ctx, &sess, " ", "movie"), ErrMissingExternalID)

	ghost := domain.Session{ID: "s", UserID: "ghost"}
	require.ErrorIs(t, f.watchlist.Add(ctx, &ghost, "603", "movie"), ErrUserNotFound)
	require.Zero(t, f.provider.calls.Load())
}

func TestAddProviderFailures(t *testing.T) {
	t.Run("unknown title is not retried", func(t *testing.T) {
		f := newFixture(t)
		sess, _ := f.signUp(t, "alice", "alice@x.com", "Secret1")

		err := f.watchlist.Add(context.Background(), &sess, "999", "movie")
		require.ErrorIs(t, err, ErrProvider)
		require.EqualValues(t, 1, f.provider.calls.Load())
	})

	t.Run("transient failures are retried", func(t *testing.T) {
		f := newFixture(t)
		sess, _ := f.signUp(t, "alice", "alice@x.com", "Secret1")
		f.provider.failN = 2
		f.provider.failErr = &tmdb.StatusError{StatusCode: 503}

		require.NoError(t, f.watchlist.Add(context.Background(), &sess, "603", "movie"))
		require.EqualValues(t, 3, f.provider.calls.Load())
	})

	t.Run("retry budget is bounded", func(t *testing.T) {
		f := newFixture(t)
		sess, _ := f.signUp(t, "alice", "alice@x.com", "Secret1")
		f.provider.failN = 10
		f.provider.failErr = errors.New("connection reset")

		err := f.watchlist.Add(context.Background(), &sess, "603", "movie")
		require.ErrorIs(t, err, ErrProvider)
		require.EqualValues(t, 3, f.provider.calls.Load())
	})
}

func TestResolveMovieConcurrentCreatesOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.provider.delay = 10 * time.Millisecond

	const n = 8
	var (
		wg   sync.WaitGroup
		ids  = make([]string, n)
		errs = make([]error, n)
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := f.watchlist.ResolveMovie(ctx, "603", domain.MediaMovie)
			ids[i], errs[i] = m.ID, err
		}()
	}
	wg.Wait()

	stored, err := f.store.Movies().GetMovieByExternalID(ctx, "603")
	require.NoError(t, err)
	for i := range n {
		require.NoError(t, errs[i])
		require.Equal(t, stored.ID, ids[i])
	}
}

func TestConcurrentAddInsertsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, _ := f.signUp(t, "alice", "alice@x.com", "Secret1")

	const n = 6
	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.watchlist.Add(ctx, &sess, "603", "movie")
		}()
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, ErrAlreadyInWatchlist)
	}
	require.Equal(t, 1, successes)

	entries, err := f.watchlist.List(ctx, &sess)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, _ := f.signUp(t, "alice", "alice@x.com", "Secret1")

	require.ErrorIs(t, f.watchlist.Remove(ctx, nil, "603"), ErrNoSession)
	require.ErrorIs(t, f.watchlist.Remove(ctx, &sess, "603"), ErrMovieNotFound)

	require.NoError(t, f.watchlist.Add(ctx, &sess, "603", "movie"))
	require.NoError(t, f.watchlist.Remove(ctx, &sess, "603"))
	require.NoError(t, f.watchlist.Remove(ctx, &sess, "603"))

	in, err := f.watchlist.Check(ctx, &sess, "603")
	require.NoError(t, err)
	require.False(t, in)

	// Re-adding after removal is allowed
	require.NoError(t, f.watchlist.Add(ctx, &sess, "603", "movie"))
}

func TestCheckWithoutSessionOrMovie(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, _ := f.signUp(t, "alice", "alice@x.com", "Secret1")

	in, err := f.watchlist.Check(ctx, nil, "603")
	require.NoError(t, err)
	require.False(t, in)

	in, err = f.watchlist.Check(ctx, &sess, "603")
	require.NoError(t, err)
	require.False(t, in)
}

func TestListOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, _ := f.signUp(t, "alice", "alice@x.com", "Secret1")

	require.NoError(t, f.watchlist.Add(ctx, &sess, "1399", "tv"))
	f.clock.Advance(time.Second)
	require.NoError(t, f.watchlist.Add(ctx, &sess, "603", "movie"))

	entries, err := f.watchlist.List(ctx, &sess)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "1399", entries[0].Movie.ExternalID)
	require.Equal(t, "603", entries[1].Movie.ExternalID)

	_, err = f.watchlist.List(ctx, nil)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestEpisodes(t *testing.T) {
	f := newFixture(t)
	f.provider.season = &tmdb.Season{Episodes: []tmdb.Episode{
		{EpisodeNumber: 1, Name: "Winter Is Coming"},
	}}

	eps, err := f.watchlist.Episodes(context.Background(), "1399", 1)
	require.NoError(t, err)
	require.Len(t, eps, 1)

	f.provider.season = nil
	_, err = f.watchlist.Episodes(context.Background(), "1399", 1)
	require.ErrorIs(t, err, ErrProvider)
}
