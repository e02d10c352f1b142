package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/repository"
)

// mockProjectRepository は ProjectRepository のモック
type mockProjectRepository struct {
	listFunc    func(ctx context.Context) ([]*model.Project, error)
	countFunc   func(ctx context.Context) (int, error)
	getByIDFunc func(ctx context.Context, id string) (*model.Project, error)
	createFunc  func(ctx context.Context, project *model.Project) error
	updateFunc  func(ctx context.Context, project *model.Project) error
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockProjectRepository) List(ctx context.Context) ([]*model.Project, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockProjectRepository) Count(ctx context.Context) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, project)
	}
	return nil
}

func (m *mockProjectRepository) Update(ctx context.Context, project *model.Project) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, project)
	}
	return nil
}

func (m *mockProjectRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func TestProjectService_List(t *testing.T) {
	want := []*model.Project{{ID: "1", Title: "P1"}}
	mock := &mockProjectRepository{
		listFunc: func(context.Context) ([]*model.Project, error) { return want, nil },
	}

	got, err := NewProjectService(mock).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("List: got %+v", got)
	}
}

func TestProjectService_GetByID_NotFound(t *testing.T) {
	_, err := NewProjectService(&mockProjectRepository{}).GetByID(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectService_Create_CleansInput(t *testing.T) {
	var saved *model.Project
	mock := &mockProjectRepository{
		createFunc: func(_ context.Context, p *model.Project) error {
			saved = p
			p.ID = "new-id"
			return nil
		},
	}

	got, err := NewProjectService(mock).Create(context.Background(), model.ProjectInput{
		Title:    "  Summer Cup Broadcast ",
		Sponsor:  "Redline",
		Services: []string{" Broadcast ", "", "  "},
		Results:  nil,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "new-id" || saved.Title != "Summer Cup Broadcast" {
		t.Errorf("Create: got %+v", saved)
	}
	if !reflect.DeepEqual(saved.Services, []string{"Broadcast"}) {
		t.Errorf("Services: got %q", saved.Services)
	}
	if saved.Results == nil || len(saved.Results) != 0 {
		t.Errorf("Results: expected empty non-nil slice, got %#v", saved.Results)
	}
}

func TestProjectService_Create_RequiresTitle(t *testing.T) {
	mock := &mockProjectRepository{
		createFunc: func(context.Context, *model.Project) error {
			t.Error("Create should not be called")
			return nil
		},
	}
	_, err := NewProjectService(mock).Create(context.Background(), model.ProjectInput{Title: "   "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProjectService_Update_SetsID(t *testing.T) {
	var updated *model.Project
	mock := &mockProjectRepository{
		updateFunc: func(_ context.Context, p *model.Project) error {
			updated = p
			return nil
		},
	}
	if _, err := NewProjectService(mock).Update(context.Background(), "p-9", model.ProjectInput{Title: "X"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != "p-9" {
		t.Errorf("expected id p-9, got %q", updated.ID)
	}
}

func TestProjectService_Delete_PropagatesError(t *testing.T) {
	mock := &mockProjectRepository{
		deleteFunc: func(context.Context, string) error { return repository.ErrNotFound },
	}
	if err := NewProjectService(mock).Delete(context.Background(), "x"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
