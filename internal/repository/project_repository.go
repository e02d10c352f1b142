package repository

import (
	"context"

	"github.com/momentumgaming/backend/internal/model"
)

// ProjectRepository はポートフォリオ案件の永続化インターフェース
type ProjectRepository interface {
	List(ctx context.Context) ([]*model.Project, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id string) (*model.Project, error)
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
}
