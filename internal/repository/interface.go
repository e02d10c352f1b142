package repository

import (
	"context"

	"github.com/momentumgaming/backend/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// AdminRepository は管理者アカウントの永続化インターフェース
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	FindByID(ctx context.Context, id string) (*model.Admin, error)
	Create(ctx context.Context, admin *model.Admin) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
