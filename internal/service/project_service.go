package service

import (
	"context"

	"github.com/momentumgaming/backend/internal/model"
)

// ProjectService はポートフォリオ案件に関するビジネスロジックのインターフェース
type ProjectService interface {
	List(ctx context.Context) ([]*model.Project, error)
	GetByID(ctx context.Context, id string) (*model.Project, error)
	Create(ctx context.Context, in model.ProjectInput) (*model.Project, error)
	Update(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error)
	Delete(ctx context.Context, id string) error
}
