package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/momentumgaming/backend/internal/inbox"
	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/repository"
	"github.com/momentumgaming/backend/pkg/auth"
)

// InboxProvider hands out the inbox of an admin session.
type InboxProvider interface {
	Open(ctx context.Context, token string) (*inbox.Inbox, error)
}

// InboxHandler exposes the admin inbox. Every mutating call answers with
// the resulting view.
type InboxHandler struct {
	inboxes   InboxProvider
	keepAlive time.Duration
}

func NewInboxHandler(inboxes InboxProvider) *InboxHandler {
	return &InboxHandler{inboxes: inboxes, keepAlive: 25 * time.Second}
}

// open resolves the caller's inbox, writing the error response itself.
func (h *InboxHandler) open(w http.ResponseWriter, r *http.Request) (*inbox.Inbox, bool) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	ib, err := h.inboxes.Open(r.Context(), token)
	if err != nil {
		if errors.Is(err, inbox.ErrManagerClosed) {
			writeError(w, http.StatusServiceUnavailable, "shutting_down")
			return nil, false
		}
		slog.Error("open inbox failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return nil, false
	}
	return ib, true
}

// respond writes the view, or maps err to a status. Store failures still
// return the view so the alert reaches the client.
func (h *InboxHandler) respond(w http.ResponseWriter, ib *inbox.Inbox, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ib.View())
	case errors.Is(err, inbox.ErrUnknownSubmission):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, repository.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status")
	default:
		writeJSON(w, http.StatusBadGateway, ib.View())
	}
}

// View は GET /api/admin/inbox?status=&q= を処理する。指定されたパラメータだけ更新する
func (h *InboxHandler) View(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter inbox.Filter
	if q.Has("status") {
		f, err := inbox.ParseFilter(q.Get("status"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_filter")
			return
		}
		filter = f
	}

	ib, ok := h.open(w, r)
	if !ok {
		return
	}
	if filter != "" {
		ib.SetFilter(filter)
	}
	if q.Has("q") {
		ib.SetSearch(q.Get("q"))
	}
	writeJSON(w, http.StatusOK, ib.View())
}

// Refresh は POST /api/admin/inbox/refresh を処理する
func (h *InboxHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ib, ok := h.open(w, r)
	if !ok {
		return
	}
	h.respond(w, ib, ib.Refresh(r.Context()))
}

// Select は POST /api/admin/inbox/{id}/select を処理する
func (h *InboxHandler) Select(w http.ResponseWriter, r *http.Request) {
	ib, ok := h.open(w, r)
	if !ok {
		return
	}
	h.respond(w, ib, ib.Select(r.Context(), r.PathValue("id")))
}

// Deselect は POST /api/admin/inbox/deselect を処理する
func (h *InboxHandler) Deselect(w http.ResponseWriter, r *http.Request) {
	ib, ok := h.open(w, r)
	if !ok {
		return
	}
	ib.Deselect()
	h.respond(w, ib, nil)
}

type statusRequest struct {
	Status model.SubmissionStatus `json:"status"`
}

// SetStatus は PATCH /api/admin/inbox/{id}/status を処理する
func (h *InboxHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}
	ib, ok := h.open(w, r)
	if !ok {
		return
	}
	h.respond(w, ib, ib.SetStatus(r.Context(), r.PathValue("id"), req.Status))
}

// ToggleReplied は POST /api/admin/inbox/{id}/toggle-replied を処理する
func (h *InboxHandler) ToggleReplied(w http.ResponseWriter, r *http.Request) {
	ib, ok := h.open(w, r)
	if !ok {
		return
	}
	h.respond(w, ib, ib.ToggleReplied(r.Context(), r.PathValue("id")))
}

// Delete は DELETE /api/admin/inbox/{id} を処理する。削除は猶予期間後に確定する
func (h *InboxHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ib, ok := h.open(w, r)
	if !ok {
		return
	}
	if !ib.RequestDelete(r.Context(), r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusAccepted, ib.View())
}

// Undo は POST /api/admin/inbox/undo を処理する
func (h *InboxHandler) Undo(w http.ResponseWriter, r *http.Request) {
	ib, ok := h.open(w, r)
	if !ok {
		return
	}
	if !ib.Undo() {
		writeError(w, http.StatusConflict, "nothing_to_undo")
		return
	}
	h.respond(w, ib, nil)
}

// DismissAlert は DELETE /api/admin/inbox/alert を処理する
func (h *InboxHandler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	ib, ok := h.open(w, r)
	if !ok {
		return
	}
	ib.DismissAlert()
	h.respond(w, ib, nil)
}

type unreadResponse struct {
	Count int64 `json:"count"`
	Known bool  `json:"known"`
}

// Unread は GET /api/admin/unread を処理する
func (h *InboxHandler) Unread(w http.ResponseWriter, r *http.Request) {
	ib, ok := h.open(w, r)
	if !ok {
		return
	}
	n, known := ib.Badge().Count()
	writeJSON(w, http.StatusOK, unreadResponse{Count: n, Known: known})
}

// UnreadStream は GET /api/admin/unread/stream を処理する。
// 未読件数が変わるたびに "unread" イベントを送る
func (h *InboxHandler) UnreadStream(w http.ResponseWriter, r *http.Request) {
	ib, ok := h.open(w, r)
	if !ok {
		return
	}

	// 接続中はアイドル扱いにしない
	release := ib.Watch()
	defer release()

	updates := make(chan int64, 1)
	stop := ib.Badge().OnChange(func(n int64) {
		select {
		case updates <- n:
		default:
			// drop the stale value and keep the newest
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- n:
			default:
			}
		}
	})
	defer stop()

	rc := http.NewResponseController(w)
	// the server's write timeout would end the stream
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if n, known := ib.Badge().Count(); known {
		writeUnreadEvent(w, n)
	}
	if err := rc.Flush(); err != nil {
		slog.Warn("unread stream: flush unsupported", "error", err)
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ib.Done():
			// the client reconnects and gets a fresh inbox
			return
		case n := <-updates:
			writeUnreadEvent(w, n)
			_ = rc.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			_ = rc.Flush()
		}
	}
}

func writeUnreadEvent(w http.ResponseWriter, n int64) {
	fmt.Fprintf(w, "event: unread\ndata: {\"count\":%d}\n\n", n)
}
