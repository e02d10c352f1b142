package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/repository"
	"github.com/momentumgaming/backend/internal/service"
	"github.com/momentumgaming/backend/internal/storage"
)

// mockProjectService は ProjectService のモック
type mockProjectService struct {
	listFunc    func(ctx context.Context) ([]*model.Project, error)
	getByIDFunc func(ctx context.Context, id string) (*model.Project, error)
	createFunc  func(ctx context.Context, in model.ProjectInput) (*model.Project, error)
	updateFunc  func(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error)
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockProjectService) List(ctx context.Context) ([]*model.Project, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockProjectService) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockProjectService) Create(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, in)
	}
	return &model.Project{ID: "new", Title: in.Title}, nil
}

func (m *mockProjectService) Update(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, in)
	}
	return &model.Project{ID: id, Title: in.Title}, nil
}

func (m *mockProjectService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func TestProjectHandler_List_EmptyIsArray(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest("GET", "/api/projects", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected [], got %s", got)
	}
}

func TestProjectHandler_List_Error(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{
		listFunc: func(context.Context) ([]*model.Project, error) { return nil, errors.New("db") },
	})
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest("GET", "/api/projects", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestProjectHandler_Get(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{
		getByIDFunc: func(_ context.Context, id string) (*model.Project, error) {
			if id == "p1" {
				return &model.Project{ID: "p1", Title: "Summer Cup"}, nil
			}
			return nil, repository.ErrNotFound
		},
	})

	req := httptest.NewRequest("GET", "/api/projects/p1", nil)
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var p model.Project
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Title != "Summer Cup" {
		t.Errorf("expected Summer Cup, got %q", p.Title)
	}

	req = httptest.NewRequest("GET", "/api/projects/missing", nil)
	req.SetPathValue("id", "missing")
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestProjectHandler_Create(t *testing.T) {
	var got model.ProjectInput
	h := NewProjectHandler(&mockProjectService{
		createFunc: func(_ context.Context, in model.ProjectInput) (*model.Project, error) {
			got = in
			return &model.Project{ID: "p2", Title: in.Title}, nil
		},
	})

	body := `{"title":"Winter Invitational","sponsor":"Redline","services":["Broadcast"]}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest("POST", "/api/admin/projects", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Sponsor != "Redline" || len(got.Services) != 1 {
		t.Errorf("unexpected input: %+v", got)
	}
}

func TestProjectHandler_Create_ValidationError(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{
		createFunc: func(context.Context, model.ProjectInput) (*model.Project, error) {
			return nil, &service.ValidationError{Field: "title", Reason: "required"}
		},
	})
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest("POST", "/api/admin/projects", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "title_required") {
		t.Errorf("expected title_required, got %s", rec.Body.String())
	}
}

func TestProjectHandler_Update_NotFound(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{
		updateFunc: func(context.Context, string, model.ProjectInput) (*model.Project, error) {
			return nil, repository.ErrNotFound
		},
	})
	req := httptest.NewRequest("PUT", "/api/admin/projects/x", strings.NewReader(`{"title":"X"}`))
	req.SetPathValue("id", "x")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestProjectHandler_Update_InvalidJSON(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})
	req := httptest.NewRequest("PUT", "/api/admin/projects/x", strings.NewReader(`nope`))
	req.SetPathValue("id", "x")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestProjectHandler_Delete(t *testing.T) {
	var deleted string
	h := NewProjectHandler(&mockProjectService{
		deleteFunc: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	})
	req := httptest.NewRequest("DELETE", "/api/admin/projects/p3", nil)
	req.SetPathValue("id", "p3")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if deleted != "p3" {
		t.Errorf("expected p3, got %q", deleted)
	}
}

func TestProjectHandler_DeleteRemovesStoredBanner(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "banners", "p4", "b.png")
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		deleteErr error
		wantCode  int
		wantFile  bool
	}{
		{"delete fails", errors.New("db down"), http.StatusInternalServerError, true},
		{"delete succeeds", nil, http.StatusNoContent, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProjectHandler(&mockProjectService{
				getByIDFunc: func(_ context.Context, id string) (*model.Project, error) {
					return &model.Project{ID: id, BannerURL: "/uploads/banners/p4/b.png"}, nil
				},
				deleteFunc: func(context.Context, string) error { return tt.deleteErr },
			}, WithBannerStorage(storage.NewLocalStorage(dir, "/uploads")))

			req := httptest.NewRequest("DELETE", "/api/admin/projects/p4", nil)
			req.SetPathValue("id", "p4")
			rec := httptest.NewRecorder()
			h.Delete(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			_, err := os.Stat(file)
			if exists := err == nil; exists != tt.wantFile {
				t.Errorf("banner file exists = %v, want %v", exists, tt.wantFile)
			}
		})
	}
}

func TestProjectHandler_DeleteWithStorageUnknownProject(t *testing.T) {
	deleted := false
	h := NewProjectHandler(&mockProjectService{
		deleteFunc: func(context.Context, string) error {
			deleted = true
			return nil
		},
	}, WithBannerStorage(storage.NewLocalStorage(t.TempDir(), "/uploads")))

	req := httptest.NewRequest("DELETE", "/api/admin/projects/ghost", nil)
	req.SetPathValue("id", "ghost")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if deleted {
		t.Error("Delete should not run for an unknown project")
	}
}
