package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const (
	adminIDKey contextKey = "admin_id"
	tokenKey   contextKey = "session_token"
)

// SessionValidator はセッショントークンを検証して管理者IDを返す
type SessionValidator interface {
	Validate(ctx context.Context, token string) (adminID string, err error)
}

// AdminIDFromContext は context から adminID を取得する
func AdminIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(adminIDKey).(string)
	return v, ok
}

// TokenFromContext は context からセッショントークンを取得する
func TokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tokenKey).(string)
	return v, ok
}

// WithSession は context に adminID とトークンをセットする
func WithSession(ctx context.Context, adminID, token string) context.Context {
	ctx = context.WithValue(ctx, adminIDKey, adminID)
	return context.WithValue(ctx, tokenKey, token)
}

func unauthorized(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// RequireSession は認証必須ミドルウェア。セッションを検証し、adminID を context にセットする
func RequireSession(v SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := TokenFromRequest(r)
			if !ok {
				unauthorized(w, "unauthorized")
				return
			}
			adminID, err := v.Validate(r.Context(), token)
			if err != nil {
				unauthorized(w, "invalid_session")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), adminID, token)))
		})
	}
}

// DevAdminID と DevToken は AUTH_REQUIRED=false 時に使うダミー値
const (
	DevAdminID = "dev-admin-id"
	DevToken   = "dev-session"
)

// DevAuth は開発用ミドルウェア。ダミーの管理者セッションを context にセットする
func DevAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), DevAdminID, DevToken)))
	})
}
