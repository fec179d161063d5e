package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
)

type watchlistRepo struct {
	db dbtx
}

func (r *watchlistRepo) AddToWatchlist(ctx context.Context, userID, movieID string, addedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO watchlist (user_id, movie_id, added_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, movie_id) DO NOTHING`,
		userID, movieID, toMillis(addedAt),
	)
	if err != nil {
		return false, mapConstraint(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *watchlistRepo) RemoveFromWatchlist(ctx context.Context, userID, movieID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	return err
}

func (r *watchlistRepo) InWatchlist(ctx context.Context, userID, movieID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM watchlist WHERE user_id = ? AND movie_id = ?)`,
		userID, movieID,
	).Scan(&exists)
	return exists, err
}

func (r *watchlistRepo) ListWatchlist(ctx context.Context, userID string) ([]domain.WatchlistEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.external_id, m.media_type, m.title, m.overview, m.poster_path,
		        m.release_date, m.vote_average, m.genres, m.cast_members, m.created_at, w.added_at
		   FROM watchlist w
		   JOIN movies m ON m.id = w.movie_id
		  WHERE w.user_id = ?
		  ORDER BY w.added_at, w.rowid`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.WatchlistEntry
	for rows.Next() {
		var addedAt int64
		movie, err := scanMovie(scanFunc(func(dest ...any) error {
			return rows.Scan(append(dest, &addedAt)...)
		}))
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.WatchlistEntry{Movie: movie, AddedAt: fromMillis(addedAt)})
	}
	return entries, rows.Err()
}

// scanFunc adapts a closure to the Scan method used by the row mappers.
type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }
