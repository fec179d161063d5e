package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/tmdb"
	"github.com/aussiebroadwan/kurdforest/pkg/idx"
	"github.com/aussiebroadwan/kurdforest/pkg/retryx"
	"github.com/aussiebroadwan/kurdforest/pkg/slogx"
)

// MetadataProvider looks titles up by external id. *tmdb.Client implements it.
type MetadataProvider interface {
	FetchDetails(ctx context.Context, externalID, mediaType string) (*tmdb.Details, error)
	FetchSeason(ctx context.Context, showID string, season int) (*tmdb.Season, error)
}

var _ MetadataProvider = (*tmdb.Client)(nil)

// WatchlistService maintains each user's list of cached titles.
type WatchlistService struct {
	Store    store.Store
	Provider MetadataProvider
	Retry    retryx.Policy
	Now      func() time.Time
}

func (s *WatchlistService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ResolveMovie returns the cached movie for externalID, fetching and caching
// it on first use. Concurrent first uses converge on a single row.
func (s *WatchlistService) ResolveMovie(ctx context.Context, externalID string, mediaType domain.MediaType) (domain.Movie, error) {
	log := slogx.FromContext(ctx)

	// 1. Cached copy
	movie, err := s.Store.Movies().GetMovieByExternalID(ctx, externalID)
	if err == nil {
		movieResolutionsTotal.WithLabelValues("hit").Inc()
		return movie, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Movie{}, storeError("MOVIE_LOOKUP_FAILED", err)
	}

	// 2. Fetch from the provider
	details, err := s.fetchDetails(ctx, externalID, mediaType)
	if err != nil {
		return domain.Movie{}, providerError(externalID, err)
	}
	movie = movieFromDetails(externalID, mediaType, details, s.now())

	// 3. Insert; losing a race to another creator means re-reading theirs
	err = s.Store.Movies().CreateMovie(ctx, movie)
	switch {
	case err == nil:
		movieResolutionsTotal.WithLabelValues("created").Inc()
		log.Debug("cached movie", slog.String("external_id", externalID), slog.String("movie_id", movie.ID))
		return movie, nil
	case errors.Is(err, store.ErrAlreadyExists):
		movieResolutionsTotal.WithLabelValues("raced").Inc()
		existing, err := s.Store.Movies().GetMovieByExternalID(ctx, externalID)
		if err != nil {
			return domain.Movie{}, storeError("MOVIE_REREAD_FAILED", err)
		}
		return existing, nil
	default:
		return domain.Movie{}, storeError("MOVIE_CREATE_FAILED", err)
	}
}

// Add puts the title on the session user's watchlist.
func (s *WatchlistService) Add(ctx context.Context, sess *domain.Session, externalID, mediaType string) error {
	log := slogx.FromContext(ctx)

	// 1. Validate
	if sess == nil {
		return ErrNoSession
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return ErrMissingExternalID
	}
	mt, err := domain.ParseMediaType(mediaType)
	if err != nil {
		return ErrInvalidMediaType
	}

	// 2. The user must still exist
	if _, err := s.Store.Users().GetUserByID(ctx, sess.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return storeError("USER_LOOKUP_FAILED", err)
	}

	// 3. Find or create the movie
	movie, err := s.ResolveMovie(ctx, externalID, mt)
	if err != nil {
		watchlistOpsTotal.WithLabelValues("add", "error").Inc()
		return err
	}

	// 4. Insert the membership if absent
	added, err := s.Store.Watchlist().AddToWatchlist(ctx, sess.UserID, movie.ID, s.now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrUserNotFound
	case err != nil:
		watchlistOpsTotal.WithLabelValues("add", "error").Inc()
		return storeError("WATCHLIST_ADD_FAILED", err)
	case !added:
		watchlistOpsTotal.WithLabelValues("add", "duplicate").Inc()
		return ErrAlreadyInWatchlist
	}

	watchlistOpsTotal.WithLabelValues("add", "success").Inc()
	log.Info("added to watchlist",
		slog.String("user_id", sess.UserID),
		slog.String("movie_id", movie.ID),
		slog.String("external_id", externalID),
	)
	return nil
}

// Remove takes the title off the session user's watchlist. Removing a title
// that is cached but not listed succeeds.
func (s *WatchlistService) Remove(ctx context.Context, sess *domain.Session, externalID string) error {
	if sess == nil {
		return ErrNoSession
	}

	movie, err := s.Store.Movies().GetMovieByExternalID(ctx, strings.TrimSpace(externalID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMovieNotFound
		}
		return storeError("MOVIE_LOOKUP_FAILED", err)
	}

	if err := s.Store.Watchlist().RemoveFromWatchlist(ctx, sess.UserID, movie.ID); err != nil {
		watchlistOpsTotal.WithLabelValues("remove", "error").Inc()
		return storeError("WATCHLIST_REMOVE_FAILED", err)
	}

	watchlistOpsTotal.WithLabelValues("remove", "success").Inc()
	slogx.FromContext(ctx).Info("removed from watchlist",
		slog.String("user_id", sess.UserID),
		slog.String("movie_id", movie.ID),
	)
	return nil
}

// Check reports whether the title is on the session user's watchlist.
// Anonymous callers and uncached titles are simply not listed.
func (s *WatchlistService) Check(ctx context.Context, sess *domain.Session, externalID string) (bool, error) {
	if sess == nil {
		return false, nil
	}

	movie, err := s.Store.Movies().GetMovieByExternalID(ctx, strings.TrimSpace(externalID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, storeError("MOVIE_LOOKUP_FAILED", err)
	}

	if _, err := s.Store.Users().GetUserByID(ctx, sess.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, storeError("USER_LOOKUP_FAILED", err)
	}

	in, err := s.Store.Watchlist().InWatchlist(ctx, sess.UserID, movie.ID)
	if err != nil {
		return false, storeError("WATCHLIST_CHECK_FAILED", err)
	}
	return in, nil
}

// List returns the session user's watchlist oldest first.
func (s *WatchlistService) List(ctx context.Context, sess *domain.Session) ([]domain.WatchlistEntry, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	entries, err := s.Store.Watchlist().ListWatchlist(ctx, sess.UserID)
	if err != nil {
		return nil, storeError("WATCHLIST_LIST_FAILED", err)
	}
	return entries, nil
}

// Episodes lists one season of a show straight from the provider.
func (s *WatchlistService) Episodes(ctx context.Context, showID string, season int) ([]tmdb.Episode, error) {
	var result *tmdb.Season
	err := retryx.Do(ctx, s.Retry, func(ctx context.Context) error {
		var err error
		result, err = s.Provider.FetchSeason(ctx, showID, season)
		return classifyProviderErr(err)
	})
	if err != nil {
		return nil, providerError(showID, err)
	}
	return result.Episodes, nil
}

func (s *WatchlistService) fetchDetails(ctx context.Context, externalID string, mediaType domain.MediaType) (*tmdb.Details, error) {
	var details *tmdb.Details
	err := retryx.Do(ctx, s.Retry, func(ctx context.Context) error {
		var err error
		details, err = s.Provider.FetchDetails(ctx, externalID, string(mediaType))
		return classifyProviderErr(err)
	})
	return details, err
}

// classifyProviderErr marks transport failures, 429 and 5xx as retryable.
func classifyProviderErr(err error) error {
	if err == nil {
		return nil
	}
	var statusErr *tmdb.StatusError
	if errors.As(err, &statusErr) && !statusErr.Temporary() {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return retryx.Transient(err)
}

func movieFromDetails(externalID string, mediaType domain.MediaType, d *tmdb.Details, now time.Time) domain.Movie {
	genres := make([]domain.Genre, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, domain.Genre{ID: g.ID, Name: g.Name})
	}

	cast := d.Credits.Cast
	if len(cast) > domain.MaxCastMembers {
		cast = cast[:domain.MaxCastMembers]
	}
	members := make([]domain.CastMember, 0, len(cast))
	for _, c := range cast {
		members = append(members, domain.CastMember{Name: c.Name, Character: c.Character, ProfilePath: c.ProfilePath})
	}

	return domain.Movie{
		ID:          idx.NewAt(now).String(),
		ExternalID:  externalID,
		MediaType:   mediaType,
		Title:       d.DisplayTitle(),
		Overview:    d.Overview,
		PosterPath:  d.PosterPath,
		ReleaseDate: d.DisplayDate(),
		VoteAverage: d.VoteAverage,
		Genres:      genres,
		Cast:        members,
		CreatedAt:   now,
	}
}
