package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcnijman/go-emailaddress"
	"golang.org/x/crypto/bcrypt"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/repository"
)

// MinPasswordLength is the shortest accepted admin password.
const MinPasswordLength = 12

// ErrInvalidCredentials is returned for an unknown email or wrong password.
var ErrInvalidCredentials = errors.New("invalid_credentials")

// AuthServiceImpl は AuthService の実装
type AuthServiceImpl struct {
	admins   repository.AdminRepository
	sessions *SessionService
	cost     int
}

// NewAuthService は AuthServiceImpl を生成する（DI: AdminRepository と SessionService を注入）
func NewAuthService(admins repository.AdminRepository, sessions *SessionService) *AuthServiceImpl {
	return &AuthServiceImpl{admins: admins, sessions: sessions, cost: bcrypt.DefaultCost}
}

var _ AuthService = (*AuthServiceImpl)(nil)

// Login はメールアドレスとパスワードを照合し、新しいセッションを発行する
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*model.Session, error) {
	admin, err := s.admins.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Info("login rejected: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		slog.Info("login rejected: wrong password", "admin_id", admin.ID)
		return nil, ErrInvalidCredentials
	}
	return s.sessions.CreateSession(ctx, admin.ID)
}

// CreateAdmin は管理者アカウントを作成する
func (s *AuthServiceImpl) CreateAdmin(ctx context.Context, email, password string) (*model.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := emailaddress.Parse(email); err != nil {
		return nil, &ValidationError{Field: "email", Reason: "invalid"}
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	admin := &model.Admin{Email: email, PasswordHash: hash}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	slog.Info("admin created", "admin_id", admin.ID)
	return admin, nil
}

// ChangePassword は管理者のパスワードを変更する
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, email, password string) error {
	admin, err := s.admins.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.admins.UpdatePassword(ctx, admin.ID, hash)
}

func (s *AuthServiceImpl) hash(password string) (string, error) {
	if len([]rune(password)) < MinPasswordLength {
		return "", &ValidationError{Field: "password", Reason: "too_short"}
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", &ValidationError{Field: "password", Reason: "too_long"}
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
