package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (id, user_id, username, profile_picture, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.Username, s.ProfilePicture, s.CreatedAt, s.ExpiresAt,
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, username, profile_picture, created_at, expires_at
		   FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.Username, &s.ProfilePicture, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.ExpiresAt = s.ExpiresAt.UTC()
	return s, nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
