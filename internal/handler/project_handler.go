package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/repository"
	"github.com/momentumgaming/backend/internal/service"
	"github.com/momentumgaming/backend/internal/storage"
)

// ProjectHandler はポートフォリオ案件の HTTP ハンドラ
type ProjectHandler struct {
	projectService service.ProjectService
	banners        storage.Storage
}

// ProjectHandlerOption configures a ProjectHandler.
type ProjectHandlerOption func(*ProjectHandler)

// WithBannerStorage makes Delete remove the project's stored banner file.
func WithBannerStorage(s storage.Storage) ProjectHandlerOption {
	return func(h *ProjectHandler) { h.banners = s }
}

// NewProjectHandler は ProjectHandler を生成する
func NewProjectHandler(projectService service.ProjectService, opts ...ProjectHandlerOption) *ProjectHandler {
	h := &ProjectHandler{projectService: projectService}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// List は GET /api/projects と GET /api/admin/projects を処理する
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.List(r.Context())
	if err != nil {
		slog.Error("list projects failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// Get は GET /api/projects/{id} を処理する
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "get project", err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Create は POST /api/admin/projects を処理する（認証必須）
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	project, err := h.projectService.Create(r.Context(), req)
	if err != nil {
		h.fail(w, "create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// Update は PUT /api/admin/projects/{id} を処理する（認証必須）
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	project, err := h.projectService.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		h.fail(w, "update project", err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Delete は DELETE /api/admin/projects/{id} を処理する（認証必須）
// バナーはレコード削除が成功した後にだけ消す
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var bannerURL string
	if h.banners != nil {
		p, err := h.projectService.GetByID(r.Context(), id)
		if err != nil {
			h.fail(w, "delete project", err)
			return
		}
		bannerURL = p.BannerURL
	}
	if err := h.projectService.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete project", err)
		return
	}
	if h.banners != nil {
		removeBanner(r.Context(), h.banners, bannerURL)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) fail(w http.ResponseWriter, op string, err error) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, validationCode(ve))
	default:
		slog.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
