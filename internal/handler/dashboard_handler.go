package handler

import (
	"log/slog"
	"net/http"

	"github.com/momentumgaming/backend/internal/service"
)

// DashboardHandler serves the admin landing summary.
type DashboardHandler struct {
	svc service.DashboardService
}

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Get は GET /api/admin/dashboard を処理する。DB 停止時は 503 で同じ形を返す
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context())
	if err != nil {
		slog.Error("dashboard failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	status := http.StatusOK
	if !d.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, d)
}
