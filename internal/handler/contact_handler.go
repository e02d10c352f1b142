package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/service"
)

// maxContactBody bounds the contact form payload.
const maxContactBody = 64 << 10

// ContactHandler handles the public contact form.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

type submitResponse struct {
	ID     string                 `json:"id"`
	Status model.SubmissionStatus `json:"status"`
}

// Submit handles POST /api/contact.
// name, email and message are required; message max 5000 chars.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.ContactInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	sub, err := h.contactService.Submit(r.Context(), req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, validationCode(ve))
			return
		}
		slog.Error("contact submit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "submit_failed")
		return
	}

	writeJSON(w, http.StatusCreated, submitResponse{ID: sub.ID, Status: sub.Status})
}

// validationCode turns a field error into codes like "email_required".
func validationCode(ve *service.ValidationError) string {
	return ve.Field + "_" + ve.Reason
}
