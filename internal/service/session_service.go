package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/repository"
	"github.com/momentumgaming/backend/pkg/auth"
)

var (
	ErrInvalidSession = errors.New("invalid_session")
	ErrSessionExpired = errors.New("session_expired")
)

// SessionService manages DB-backed admin sessions and tells listeners
// when one starts or ends.
// Implements auth.SessionValidator.
type SessionService struct {
	repo repository.SessionRepository
	now  func() time.Time

	mu        sync.Mutex
	listeners map[int]func(model.SessionChange)
	nextID    int
}

var _ auth.SessionValidator = (*SessionService)(nil)

// NewSessionService creates a SessionService.
func NewSessionService(repo repository.SessionRepository) *SessionService {
	return &SessionService{
		repo:      repo,
		now:       time.Now,
		listeners: make(map[int]func(model.SessionChange)),
	}
}

// OnSessionChange registers fn for session starts and ends. The returned
// function removes it.
func (s *SessionService) OnSessionChange(fn func(model.SessionChange)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *SessionService) emit(ev model.SessionChange) {
	s.mu.Lock()
	fns := make([]func(model.SessionChange), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// CreateSession generates a new opaque token, stores it in DB, and returns the session.
func (s *SessionService) CreateSession(ctx context.Context, adminID string) (*model.Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		slog.Error("create session: token generation failed", "error", err)
		return nil, err
	}
	now := s.now()
	session := &model.Session{
		Token:     token,
		AdminID:   adminID,
		CreatedAt: now,
		ExpiresAt: now.Add(auth.SessionDuration),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		slog.Error("create session: insert failed", "admin_id", adminID, "error", err)
		return nil, fmt.Errorf("create session: %w", err)
	}
	slog.Info("session created", "admin_id", adminID, "expires_at", session.ExpiresAt)
	s.emit(model.SessionChange{Token: token, AdminID: adminID})
	return session, nil
}

// Current returns the live session for token. An expired session is
// removed and reported as ErrSessionExpired.
func (s *SessionService) Current(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	session, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("session lookup failed", "error", err)
		}
		return nil, ErrInvalidSession
	}
	if session.Expired(s.now()) {
		if err := s.repo.DeleteByToken(ctx, token); err != nil {
			slog.Warn("delete expired session failed", "error", err)
		}
		s.emit(model.SessionChange{Token: token, AdminID: session.AdminID, Ended: true})
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Validate validates a session token and returns the admin ID.
func (s *SessionService) Validate(ctx context.Context, token string) (string, error) {
	session, err := s.Current(ctx, token)
	if err != nil {
		return "", err
	}
	return session.AdminID, nil
}

// Logout removes a session.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if err := s.repo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.emit(model.SessionChange{Token: token, Ended: true})
	return nil
}

// PurgeExpired deletes sessions past their expiry.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if n > 0 {
		slog.Info("expired sessions purged", "count", n)
	}
	return n, nil
}
