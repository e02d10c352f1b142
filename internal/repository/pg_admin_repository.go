package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momentumgaming/backend/internal/model"
)

// ErrDuplicateEmail is returned by Create when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// PgAdminRepository は AdminRepository の PostgreSQL 実装
type PgAdminRepository struct {
	pool *pgxpool.Pool
}

// NewPgAdminRepository は PgAdminRepository を生成する
func NewPgAdminRepository(pool *pgxpool.Pool) *PgAdminRepository {
	return &PgAdminRepository{pool: pool}
}

var _ AdminRepository = (*PgAdminRepository)(nil)

const adminSelectCols = `id, email, password_hash, created_at`

func scanAdmin(scan func(...any) error) (*model.Admin, error) {
	var a model.Admin
	if err := scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindByEmail はメールアドレス（大文字小文字を区別しない）で管理者を取得する
func (r *PgAdminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+adminSelectCols+` FROM admins WHERE email = $1`, strings.ToLower(email))
	return scanAdmin(row.Scan)
}

// FindByID は ID で管理者を取得する
func (r *PgAdminRepository) FindByID(ctx context.Context, id string) (*model.Admin, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+adminSelectCols+` FROM admins WHERE id = $1`, id)
	return scanAdmin(row.Scan)
}

// Create は管理者を作成する
func (r *PgAdminRepository) Create(ctx context.Context, admin *model.Admin) error {
	admin.ID = uuid.NewString()
	admin.Email = strings.ToLower(admin.Email)
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admins (id, email, password_hash) VALUES ($1, $2, $3) RETURNING created_at`,
		admin.ID, admin.Email, admin.PasswordHash,
	).Scan(&admin.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	return err
}

// UpdatePassword はパスワードハッシュを差し替える
func (r *PgAdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE admins SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
