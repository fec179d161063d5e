package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
)

type watchlistRepo struct {
	db dbtx
}

func (r *watchlistRepo) AddToWatchlist(ctx context.Context, userID, movieID string, addedAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO watchlist (user_id, movie_id, added_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, movie_id) DO NOTHING`,
		userID, movieID, addedAt,
	)
	if err != nil {
		return false, mapConstraint(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *watchlistRepo) RemoveFromWatchlist(ctx context.Context, userID, movieID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM watchlist WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	return err
}

func (r *watchlistRepo) InWatchlist(ctx context.Context, userID, movieID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM watchlist WHERE user_id = $1 AND movie_id = $2)`,
		userID, movieID,
	).Scan(&exists)
	return exists, err
}

func (r *watchlistRepo) ListWatchlist(ctx context.Context, userID string) ([]domain.WatchlistEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.external_id, m.media_type, m.title, m.overview, m.poster_path,
		        m.release_date, m.vote_average, m.genres, m.cast_members, m.created_at, w.added_at
		   FROM watchlist w
		   JOIN movies m ON m.id = w.movie_id
		  WHERE w.user_id = $1
		  ORDER BY w.added_at, w.seq`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.WatchlistEntry
	for rows.Next() {
		var addedAt time.Time
		movie, err := scanMovie(rows, &addedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.WatchlistEntry{Movie: movie, AddedAt: addedAt.UTC()})
	}
	return entries, rows.Err()
}
