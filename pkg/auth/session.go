package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

// SessionDuration は管理者セッションの有効期間
const SessionDuration = 7 * 24 * time.Hour

const sessionCookieName = "momentum_session"

const tokenBytes = 32

// SessionCookieName はセッションクッキー名
func SessionCookieName() string {
	return sessionCookieName
}

// GenerateSessionToken は 64 文字の不透明なセッショントークンを生成する
func GenerateSessionToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SessionCookie builds the cookie carrying token until expires.
func SessionCookie(token string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(secure bool) *http.Cookie {
	c := SessionCookie("", time.Unix(0, 0), secure)
	c.MaxAge = -1
	return c
}

// TokenFromRequest reads the session token from the cookie or, failing
// that, from an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request) (string, bool) {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):], true
	}
	return "", false
}
