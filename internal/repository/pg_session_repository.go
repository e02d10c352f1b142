package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momentumgaming/backend/internal/model"
)

type pgSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPgSessionRepository returns a PostgreSQL-backed SessionRepository.
func NewPgSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &pgSessionRepository{pool: pool}
}

func (r *pgSessionRepository) Create(ctx context.Context, s *model.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO admin_sessions (token, admin_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		s.Token, s.AdminID, s.CreatedAt, s.ExpiresAt)
	return err
}

func (r *pgSessionRepository) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	s := &model.Session{}
	err := r.pool.QueryRow(ctx,
		`SELECT token, admin_id, created_at, expires_at FROM admin_sessions WHERE token = $1`,
		token).Scan(&s.Token, &s.AdminID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE token = $1`, token)
	return err
}

func (r *pgSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
