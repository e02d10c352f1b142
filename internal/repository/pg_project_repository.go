package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momentumgaming/backend/internal/model"
)

// PgProjectRepository は ProjectRepository の PostgreSQL 実装
type PgProjectRepository struct {
	pool *pgxpool.Pool
}

// NewPgProjectRepository は PgProjectRepository を生成する
func NewPgProjectRepository(pool *pgxpool.Pool) *PgProjectRepository {
	return &PgProjectRepository{pool: pool}
}

var _ ProjectRepository = (*PgProjectRepository)(nil)

const projectSelectCols = `id, title, COALESCE(sponsor, ''), COALESCE(banner_url, ''), COALESCE(summary, ''), services, results, created_at, updated_at`

func scanProject(scan func(...any) error) (*model.Project, error) {
	var p model.Project
	if err := scan(&p.ID, &p.Title, &p.Sponsor, &p.BannerURL, &p.Summary, &p.Services, &p.Results, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.Services == nil {
		p.Services = []string{}
	}
	if p.Results == nil {
		p.Results = []string{}
	}
	return &p, nil
}

// List は全案件を新しい順に返す
func (r *PgProjectRepository) List(ctx context.Context) ([]*model.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectSelectCols+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*model.Project{}
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Count は案件数を返す（ダッシュボード用）
func (r *PgProjectRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM projects`).Scan(&n)
	return n, err
}

// GetByID は ID で案件を取得する。存在しない場合は ErrNotFound を返す。
func (r *PgProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+projectSelectCols+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// Create は案件を作成し、ID とタイムスタンプを設定する
func (r *PgProjectRepository) Create(ctx context.Context, project *model.Project) error {
	project.ID = uuid.NewString()
	return r.pool.QueryRow(ctx,
		`INSERT INTO projects (id, title, sponsor, banner_url, summary, services, results)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		 RETURNING created_at, updated_at`,
		project.ID, project.Title, project.Sponsor, project.BannerURL, project.Summary, project.Services, project.Results,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
}

// Update は案件を更新する。存在しない場合は ErrNotFound を返す。
func (r *PgProjectRepository) Update(ctx context.Context, project *model.Project) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE projects
		 SET title = $1, sponsor = NULLIF($2, ''), banner_url = NULLIF($3, ''), summary = NULLIF($4, ''),
		     services = $5, results = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING created_at, updated_at`,
		project.Title, project.Sponsor, project.BannerURL, project.Summary, project.Services, project.Results, project.ID,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete は案件を物理削除する。対象が存在しない場合は ErrNotFound を返す。
func (r *PgProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateBannerURL はバナー URL だけを更新する。空文字は NULL として保存する。
func (r *PgProjectRepository) UpdateBannerURL(ctx context.Context, id, bannerURL string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET banner_url = NULLIF($1, ''), updated_at = NOW() WHERE id = $2`, bannerURL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
