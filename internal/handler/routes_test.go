package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/momentumgaming/backend/internal/content"
	"github.com/momentumgaming/backend/internal/inbox"
	"github.com/momentumgaming/backend/internal/metrics"
	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/pkg/auth"
)

type stubValidator struct{}

func (stubValidator) Validate(_ context.Context, token string) (string, error) {
	if token == "good-token" {
		return "admin-1", nil
	}
	return "", errors.New("unknown session")
}

func newTestRouter(t *testing.T, authRequired bool) http.Handler {
	t.Helper()
	catalog, err := content.Load("")
	if err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	store := newFakeSubmissionStore(testSubmission("s1", time.Hour, model.StatusNew, "Aoi"))
	m := inbox.NewManager(store, store, nil,
		inbox.WithGracePeriod(time.Hour),
		inbox.WithMetrics(metrics.NewInbox(reg)),
		inbox.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	t.Cleanup(func() { m.Shutdown(context.Background()) })

	return Routes{
		Base:         New(&mockDB{}, "http://localhost:5173"),
		Auth:         NewAuthHandler(&mockAuthService{}, &mockSessionStore{}, false),
		Contact:      NewContactHandler(&mockContactService{}),
		Content:      NewContentHandler(content.NewService(catalog)),
		Projects:     NewProjectHandler(&mockProjectService{}),
		Dashboard:    NewDashboardHandler(&mockDashboardService{getFunc: func(context.Context) (*model.Dashboard, error) { return &model.Dashboard{Database: "ok"}, nil }}),
		Inbox:        NewInboxHandler(m),
		Sessions:     stubValidator{},
		AuthRequired: authRequired,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}.Router()
}

func serve(router http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName(), Value: token})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := newTestRouter(t, true)

	rec := serve(router, "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("request id missing")
	}

	rec = serve(router, "GET", "/api/tournaments/spring-clash-2024", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Grand final") {
		t.Errorf("tournament: got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AdminRoutesNeedSession(t *testing.T) {
	router := newTestRouter(t, true)

	if rec := serve(router, "GET", "/api/admin/inbox", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: expected 401, got %d", rec.Code)
	}
	if rec := serve(router, "GET", "/api/admin/inbox", "bad-token"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad cookie: expected 401, got %d", rec.Code)
	}
	rec := serve(router, "GET", "/api/admin/inbox", "good-token")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"s1"`) {
		t.Errorf("good cookie: got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_DevAuth(t *testing.T) {
	router := newTestRouter(t, false)
	if rec := serve(router, "GET", "/api/admin/dashboard", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 without auth, got %d", rec.Code)
	}
}

func TestRouter_AlertRouteIsNotADelete(t *testing.T) {
	router := newTestRouter(t, false)
	rec := serve(router, "DELETE", "/api/admin/inbox/alert", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"pending":`) {
		t.Error("dismissing the alert must not start a delete")
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, false)
	serve(router, "GET", "/api/admin/inbox", "")

	rec := serve(router, "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "inbox_open_sessions 1") {
		t.Errorf("expected open inbox gauge, got:\n%s", rec.Body.String())
	}
}
