package service

import (
	"context"

	"github.com/momentumgaming/backend/internal/model"
)

// AuthService は管理者認証に関するビジネスロジックのインターフェース
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	CreateAdmin(ctx context.Context, email, password string) (*model.Admin, error)
	ChangePassword(ctx context.Context, email, password string) error
}
