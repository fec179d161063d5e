package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/jackc/pgx/v5"
)

type moviesRepo struct {
	db dbtx
}

const movieColumns = `id, external_id, media_type, title, overview, poster_path, release_date, vote_average, genres, cast_members, created_at`

func scanMovie(row pgx.Row, extra ...any) (domain.Movie, error) {
	var (
		m                domain.Movie
		mediaType        string
		genres, castJSON []byte
	)
	dest := append([]any{
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
		&m.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Movie{}, mapNotFound(err)
	}

	m.MediaType = domain.MediaType(mediaType)
	m.CreatedAt = m.CreatedAt.UTC()
	if err := json.Unmarshal(genres, &m.Genres); err != nil {
		return domain.Movie{}, fmt.Errorf("decode genres for movie %s: %w", m.ID, err)
	}
	if err := json.Unmarshal(castJSON, &m.Cast); err != nil {
		return domain.Movie{}, fmt.Errorf("decode cast for movie %s: %w", m.ID, err)
	}
	return m, nil
}

func (r *moviesRepo) GetMovieByID(ctx context.Context, id string) (domain.Movie, error) {
	return scanMovie(r.db.QueryRow(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = $1`, id))
}

func (r *moviesRepo) GetMovieByExternalID(ctx context.Context, externalID string) (domain.Movie, error) {
	return scanMovie(r.db.QueryRow(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE external_id = $1`, externalID))
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

	_, err = r.db.Exec(ctx,
		`INSERT INTO movies (`+movieColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
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
		m.CreatedAt,
	)
	return mapConstraint(err)
}

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
