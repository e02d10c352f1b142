package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/repository"
	"github.com/momentumgaming/backend/pkg/auth"
)

// AdminFinder looks up admin accounts by id.
type AdminFinder interface {
	FindByID(ctx context.Context, id string) (*model.Admin, error)
}

// MeHandler は現在の管理者情報を返すハンドラ
type MeHandler struct {
	admins AdminFinder
}

// NewMeHandler は MeHandler を生成する（DI: AdminFinder を注入）
func NewMeHandler(admins AdminFinder) *MeHandler {
	return &MeHandler{admins: admins}
}

// Me は GET /api/admin/me を処理する。RequireSession の内側で使う
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	adminID, ok := auth.AdminIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	admin, err := h.admins.FindByID(r.Context(), adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// アカウント削除後もセッションが残っている
			writeError(w, http.StatusUnauthorized, "invalid_session")
			return
		}
		slog.Error("me: find admin failed", "error", err, "admin_id", adminID)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, admin)
}
