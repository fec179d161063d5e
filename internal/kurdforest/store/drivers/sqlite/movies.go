package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
)

type moviesRepo struct {
	db dbtx
}

const movieColumns = `id, external_id, media_type, title, overview, poster_path, release_date, vote_average, genres, cast_members, created_at`

func scanMovie(row interface{ Scan(...any) error }) (domain.Movie, error) {
	var (
		m                domain.Movie
		mediaType        string
		genres, castJSON string
		createdAt        int64
	)
	if err := row.Scan(
		&m.ID,
		&m.ExternalID,
		&mediaType,
		&m.Title,
		&m.Overview,
		&m.PosterPath,
		&m.ReleaseDate,
		&m.VoteAverage,
		&genres,
		&castJSON,
		&createdAt,
	); err != nil {
		return domain.Movie{}, mapNotFound(err)
	}

	m.MediaType = domain.MediaType(mediaType)
	m.CreatedAt = fromMillis(createdAt)
	if err := json.Unmarshal([]byte(genres), &m.Genres); err != nil {
		return domain.Movie{}, fmt.Errorf("decode genres for movie %s: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(castJSON), &m.Cast); err != nil {
		return domain.Movie{}, fmt.Errorf("decode cast for movie %s: %w", m.ID, err)
	}
	return m, nil
}

func (r *moviesRepo) GetMovieByID(ctx context.Context, id string) (domain.Movie, error) {
	return scanMovie(r.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id))
}

func (r *moviesRepo) GetMovieByExternalID(ctx context.Context, externalID string) (domain.Movie, error) {
	return scanMovie(r.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE external_id = ?`, externalID))
}

func (r *moviesRepo) CreateMovie(ctx context.Context, m domain.Movie) error {
	genres, err := marshalList(m.Genres)
	if err != nil {
		return err
	}
	castJSON, err := marshalList(m.Cast)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO movies (`+movieColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.ExternalID,
		string(m.MediaType),
		m.Title,
		m.Overview,
		m.PosterPath,
		m.ReleaseDate,
		m.VoteAverage,
		genres,
		castJSON,
		toMillis(m.CreatedAt),
	)
	return mapConstraint(err)
}

// marshalList encodes a slice as JSON, writing [] rather than null for nil.
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
