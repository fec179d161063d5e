package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, username, profile_picture, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Username, s.ProfilePicture, toMillis(s.CreatedAt), toMillis(s.ExpiresAt),
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var (
		s                    domain.Session
		createdAt, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, username, profile_picture, created_at, expires_at
		   FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.UserID, &s.Username, &s.ProfilePicture, &createdAt, &expiresAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.CreatedAt = fromMillis(createdAt)
	s.ExpiresAt = fromMillis(expiresAt)
	return s, nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
