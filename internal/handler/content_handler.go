package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/momentumgaming/backend/internal/content"
	"github.com/momentumgaming/backend/internal/model"
)

// Catalog is the read side of the content service.
type Catalog interface {
	Services() []model.Service
	Tournaments(status string) []model.Tournament
	Tournament(id string) (*model.Tournament, error)
}

// ContentHandler serves the public services and tournaments pages.
type ContentHandler struct {
	catalog Catalog
}

func NewContentHandler(catalog Catalog) *ContentHandler {
	return &ContentHandler{catalog: catalog}
}

// Services は GET /api/services を処理する
func (h *ContentHandler) Services(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Services())
}

// Tournaments は GET /api/tournaments?status= を処理する
func (h *ContentHandler) Tournaments(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !knownTournamentStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.Tournaments(status))
}

func knownTournamentStatus(s string) bool {
	for _, known := range []string{model.TournamentLive, model.TournamentUpcoming, model.TournamentCompleted} {
		if strings.EqualFold(s, known) {
			return true
		}
	}
	return false
}

// Tournament は GET /api/tournaments/{id} を処理する
func (h *ContentHandler) Tournament(w http.ResponseWriter, r *http.Request) {
	t, err := h.catalog.Tournament(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, t)
}
