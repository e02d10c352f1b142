package handler

import (
	"net/http"

	"github.com/momentumgaming/backend/pkg/auth"
)

// Routes は API のハンドラ一式。Router で ServeMux に登録する
type Routes struct {
	Base      *Handler
	Auth      *AuthHandler
	Contact   *ContactHandler
	Content   *ContentHandler
	Projects  *ProjectHandler
	Dashboard *DashboardHandler
	Inbox     *InboxHandler
	Banners   *BannerHandler
	Me        *MeHandler

	// Uploads serves stored banners under /uploads/.
	Uploads http.Handler

	// Sessions validates admin sessions when AuthRequired is set.
	Sessions     auth.SessionValidator
	AuthRequired bool

	ContactLimiter *RateLimiter
	Metrics        http.Handler
}

// Router builds the full middleware chain around the API routes.
func (rt Routes) Router() http.Handler {
	return rt.Base.CORS(SecurityHeaders(RequestLogger(rt.Mux())))
}

// Mux registers every route on a new ServeMux.
func (rt Routes) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", rt.Base.Health)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	// 公開 API
	mux.HandleFunc("GET /api/services", rt.Content.Services)
	mux.HandleFunc("GET /api/tournaments", rt.Content.Tournaments)
	mux.HandleFunc("GET /api/tournaments/{id}", rt.Content.Tournament)
	mux.HandleFunc("GET /api/projects", rt.Projects.List)
	mux.HandleFunc("GET /api/projects/{id}", rt.Projects.Get)
	if rt.Uploads != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", rt.Uploads))
	}

	var submit http.Handler = http.HandlerFunc(rt.Contact.Submit)
	if rt.ContactLimiter != nil {
		submit = rt.ContactLimiter.Middleware(submit)
	}
	mux.Handle("POST /api/contact", submit)

	mux.HandleFunc("POST /api/admin/login", rt.Auth.Login)
	mux.HandleFunc("POST /api/admin/logout", rt.Auth.Logout)
	mux.HandleFunc("GET /api/admin/session", rt.Auth.Session)

	// 管理者 API（認証必須）
	wrapAuth := func(fn http.HandlerFunc) http.Handler {
		if rt.AuthRequired {
			return auth.RequireSession(rt.Sessions)(fn)
		}
		return auth.DevAuth(fn)
	}
	mux.Handle("GET /api/admin/dashboard", wrapAuth(rt.Dashboard.Get))
	if rt.Me != nil {
		mux.Handle("GET /api/admin/me", wrapAuth(rt.Me.Me))
	}

	mux.Handle("GET /api/admin/projects", wrapAuth(rt.Projects.List))
	mux.Handle("POST /api/admin/projects", wrapAuth(rt.Projects.Create))
	mux.Handle("GET /api/admin/projects/{id}", wrapAuth(rt.Projects.Get))
	mux.Handle("PUT /api/admin/projects/{id}", wrapAuth(rt.Projects.Update))
	mux.Handle("DELETE /api/admin/projects/{id}", wrapAuth(rt.Projects.Delete))
	if rt.Banners != nil {
		mux.Handle("POST /api/admin/projects/{id}/banner", wrapAuth(rt.Banners.Upload))
		mux.Handle("DELETE /api/admin/projects/{id}/banner", wrapAuth(rt.Banners.Delete))
	}

	mux.Handle("GET /api/admin/inbox", wrapAuth(rt.Inbox.View))
	mux.Handle("POST /api/admin/inbox/refresh", wrapAuth(rt.Inbox.Refresh))
	mux.Handle("POST /api/admin/inbox/deselect", wrapAuth(rt.Inbox.Deselect))
	mux.Handle("POST /api/admin/inbox/undo", wrapAuth(rt.Inbox.Undo))
	mux.Handle("DELETE /api/admin/inbox/alert", wrapAuth(rt.Inbox.DismissAlert))
	mux.Handle("POST /api/admin/inbox/{id}/select", wrapAuth(rt.Inbox.Select))
	mux.Handle("PATCH /api/admin/inbox/{id}/status", wrapAuth(rt.Inbox.SetStatus))
	mux.Handle("POST /api/admin/inbox/{id}/toggle-replied", wrapAuth(rt.Inbox.ToggleReplied))
	mux.Handle("DELETE /api/admin/inbox/{id}", wrapAuth(rt.Inbox.Delete))
	mux.Handle("GET /api/admin/unread", wrapAuth(rt.Inbox.Unread))
	mux.Handle("GET /api/admin/unread/stream", wrapAuth(rt.Inbox.UnreadStream))

	return mux
}
