package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"path"

	"github.com/momentumgaming/backend/internal/repository"
	"github.com/momentumgaming/backend/internal/service"
	"github.com/momentumgaming/backend/internal/storage"
)

const maxBannerSize = 2 << 20 // 2 MB

var bannerContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// BannerRepo はプロジェクトの banner_url を更新するためのリポジトリインターフェース
type BannerRepo interface {
	UpdateBannerURL(ctx context.Context, projectID, bannerURL string) error
}

// BannerHandler はプロジェクトのバナー画像のアップロード・削除を処理する
type BannerHandler struct {
	storage  storage.Storage
	projects service.ProjectService
	repo     BannerRepo
}

// NewBannerHandler は BannerHandler を生成する
func NewBannerHandler(store storage.Storage, projects service.ProjectService, repo BannerRepo) *BannerHandler {
	return &BannerHandler{storage: store, projects: projects, repo: repo}
}

func (h *BannerHandler) project(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	id := r.PathValue("id")
	p, err := h.projects.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
		} else {
			slog.Error("banner: load project failed", "error", err, "project_id", id)
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return "", "", false
	}
	return p.ID, p.BannerURL, true
}

// removeBanner deletes a banner file that store issued. Failures only leave
// an orphaned file behind.
func removeBanner(ctx context.Context, store storage.Storage, url string) {
	if url == "" {
		return
	}
	key, ok := store.KeyFromURL(url)
	if !ok {
		return
	}
	if err := store.Delete(ctx, key); err != nil {
		slog.Warn("banner: remove file failed", "error", err, "key", key)
	}
}

// Upload は POST /api/admin/projects/{id}/banner を処理する
func (h *BannerHandler) Upload(w http.ResponseWriter, r *http.Request) {
	projectID, oldURL, ok := h.project(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBannerSize+(64<<10))
	if err := r.ParseMultipartForm(maxBannerSize); err != nil {
		writeError(w, http.StatusBadRequest, "file_too_large")
		return
	}
	file, header, err := r.FormFile("banner")
	if err != nil {
		writeError(w, http.StatusBadRequest, "banner_required")
		return
	}
	defer file.Close()

	if header.Size > maxBannerSize {
		writeError(w, http.StatusBadRequest, "file_too_large")
		return
	}
	ct := header.Header.Get("Content-Type")
	ext, ok := bannerContentTypes[ct]
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_content_type")
		return
	}

	b := make([]byte, 16)
	_, _ = rand.Read(b)
	key := path.Join("banners", projectID, hex.EncodeToString(b)+ext)
	url, err := h.storage.Save(r.Context(), key, file, ct)
	if err != nil {
		slog.Error("banner upload failed", "error", err, "project_id", projectID)
		writeError(w, http.StatusInternalServerError, "upload_failed")
		return
	}
	if err := h.repo.UpdateBannerURL(r.Context(), projectID, url); err != nil {
		slog.Error("banner url update failed", "error", err, "project_id", projectID)
		_ = h.storage.Delete(r.Context(), key)
		writeError(w, http.StatusInternalServerError, "update_failed")
		return
	}
	removeBanner(r.Context(), h.storage, oldURL)

	writeJSON(w, http.StatusOK, map[string]string{"banner_url": url})
}

// Delete は DELETE /api/admin/projects/{id}/banner を処理する
func (h *BannerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, oldURL, ok := h.project(w, r)
	if !ok {
		return
	}
	if err := h.repo.UpdateBannerURL(r.Context(), projectID, ""); err != nil {
		slog.Error("banner url clear failed", "error", err, "project_id", projectID)
		writeError(w, http.StatusInternalServerError, "update_failed")
		return
	}
	removeBanner(r.Context(), h.storage, oldURL)
	w.WriteHeader(http.StatusNoContent)
}
