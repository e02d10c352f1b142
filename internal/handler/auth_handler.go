package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/service"
	"github.com/momentumgaming/backend/pkg/auth"
)

// SessionStore is the part of the session service the handlers use.
type SessionStore interface {
	Current(ctx context.Context, token string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler は管理者ログイン・ログアウトの HTTP ハンドラ
type AuthHandler struct {
	authService  service.AuthService
	sessions     SessionStore
	secureCookie bool
}

// NewAuthHandler は AuthHandler を生成する。secureCookie は本番環境で true にする
func NewAuthHandler(authService service.AuthService, sessions SessionStore, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, secureCookie: secureCookie}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AdminID   string `json:"admin_id"`
	ExpiresAt string `json:"expires_at"`
}

func newSessionResponse(s *model.Session) sessionResponse {
	return sessionResponse{AdminID: s.AdminID, ExpiresAt: s.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")}
}

// Login は POST /api/admin/login を処理する
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "credentials_required")
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		slog.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	http.SetCookie(w, auth.SessionCookie(session.Token, session.ExpiresAt, h.secureCookie))
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

// Logout は POST /api/admin/logout を処理する。セッションがなくても成功する
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := auth.TokenFromRequest(r); ok {
		if err := h.sessions.Logout(r.Context(), token); err != nil {
			slog.Error("logout failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal_error")
			return
		}
	}
	http.SetCookie(w, auth.ClearSessionCookie(h.secureCookie))
	w.WriteHeader(http.StatusNoContent)
}

// Session は GET /api/admin/session を処理する
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	session, err := h.sessions.Current(r.Context(), token)
	if err != nil {
		code := "invalid_session"
		if errors.Is(err, service.ErrSessionExpired) {
			code = "session_expired"
		}
		writeError(w, http.StatusUnauthorized, code)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}
