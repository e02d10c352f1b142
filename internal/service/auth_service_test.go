package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// Mock AdminRepository
// ---------------------------------------------------------------------------

type mockAdminRepository struct {
	findByEmailFunc    func(ctx context.Context, email string) (*model.Admin, error)
	findByIDFunc       func(ctx context.Context, id string) (*model.Admin, error)
	createFunc         func(ctx context.Context, admin *model.Admin) error
	updatePasswordFunc func(ctx context.Context, id, hash string) error
}

func (m *mockAdminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *mockAdminRepository) FindByID(ctx context.Context, id string) (*model.Admin, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockAdminRepository) Create(ctx context.Context, admin *model.Admin) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, admin)
	}
	return nil
}

func (m *mockAdminRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	if m.updatePasswordFunc != nil {
		return m.updatePasswordFunc(ctx, id, hash)
	}
	return nil
}

const testPassword = "correct horse battery"

func adminWithPassword(t *testing.T) *model.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &model.Admin{ID: "admin-1", Email: "ops@momentum.gg", PasswordHash: string(hash)}
}

func newTestAuthService(admins *mockAdminRepository) *AuthServiceImpl {
	svc := NewAuthService(admins, NewSessionService(&mockSessionRepository{}))
	svc.cost = bcrypt.MinCost
	return svc
}

func TestAuthService_Login_Success(t *testing.T) {
	admin := adminWithPassword(t)
	svc := newTestAuthService(&mockAdminRepository{
		findByEmailFunc: func(_ context.Context, email string) (*model.Admin, error) {
			if email != "ops@momentum.gg" {
				t.Errorf("expected trimmed email, got %q", email)
			}
			return admin, nil
		},
	})

	session, err := svc.Login(context.Background(), " ops@momentum.gg ", testPassword)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.AdminID != "admin-1" || session.Token == "" {
		t.Errorf("unexpected session: %+v", session)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	admin := adminWithPassword(t)
	svc := newTestAuthService(&mockAdminRepository{
		findByEmailFunc: func(context.Context, string) (*model.Admin, error) { return admin, nil },
	})

	if _, err := svc.Login(context.Background(), admin.Email, "wrong password!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := newTestAuthService(&mockAdminRepository{})
	if _, err := svc.Login(context.Background(), "nobody@momentum.gg", testPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_RepositoryError(t *testing.T) {
	dbErr := errors.New("db down")
	svc := newTestAuthService(&mockAdminRepository{
		findByEmailFunc: func(context.Context, string) (*model.Admin, error) { return nil, dbErr },
	})
	_, err := svc.Login(context.Background(), "ops@momentum.gg", testPassword)
	if !errors.Is(err, dbErr) || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected wrapped db error, got %v", err)
	}
}

func TestAuthService_CreateAdmin_HashesPassword(t *testing.T) {
	var created *model.Admin
	svc := newTestAuthService(&mockAdminRepository{
		createFunc: func(_ context.Context, a *model.Admin) error {
			created = a
			a.ID = "admin-2"
			return nil
		},
	})

	admin, err := svc.CreateAdmin(context.Background(), " New@Momentum.gg ", testPassword)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admin.Email != "new@momentum.gg" {
		t.Errorf("expected normalized email, got %q", admin.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(testPassword)); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_CreateAdmin_Validation(t *testing.T) {
	svc := newTestAuthService(&mockAdminRepository{
		createFunc: func(context.Context, *model.Admin) error {
			t.Error("Create should not be called")
			return nil
		},
	})

	if _, err := svc.CreateAdmin(context.Background(), "not-an-email", testPassword); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for email, got %v", err)
	}
	if _, err := svc.CreateAdmin(context.Background(), "ops@momentum.gg", "short"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for password, got %v", err)
	}
}

func TestAuthService_CreateAdmin_Duplicate(t *testing.T) {
	svc := newTestAuthService(&mockAdminRepository{
		createFunc: func(context.Context, *model.Admin) error { return repository.ErrDuplicateEmail },
	})
	if _, err := svc.CreateAdmin(context.Background(), "ops@momentum.gg", testPassword); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	admin := adminWithPassword(t)
	var gotID, gotHash string
	svc := newTestAuthService(&mockAdminRepository{
		findByEmailFunc: func(context.Context, string) (*model.Admin, error) { return admin, nil },
		updatePasswordFunc: func(_ context.Context, id, hash string) error {
			gotID, gotHash = id, hash
			return nil
		},
	})

	if err := svc.ChangePassword(context.Background(), admin.Email, "a brand new passphrase"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "admin-1" {
		t.Errorf("expected admin-1, got %q", gotID)
	}
	if bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("a brand new passphrase")) != nil {
		t.Error("hash does not match new password")
	}
}
