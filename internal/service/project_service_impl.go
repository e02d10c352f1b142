package service

import (
	"context"
	"strings"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/repository"
)

// ProjectServiceImpl は ProjectService の実装
type ProjectServiceImpl struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService は ProjectServiceImpl を生成する（DI: ProjectRepository を注入）
func NewProjectService(projectRepo repository.ProjectRepository) ProjectService {
	return &ProjectServiceImpl{projectRepo: projectRepo}
}

// List はプロジェクト一覧を新しい順に取得する
func (s *ProjectServiceImpl) List(ctx context.Context) ([]*model.Project, error) {
	return s.projectRepo.List(ctx)
}

// GetByID は ID でプロジェクトを取得する
func (s *ProjectServiceImpl) GetByID(ctx context.Context, id string) (*model.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

// Create はプロジェクトを作成する
func (s *ProjectServiceImpl) Create(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	p, err := projectFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update はプロジェクトを更新する
func (s *ProjectServiceImpl) Update(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error) {
	p, err := projectFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete はプロジェクトを削除する
func (s *ProjectServiceImpl) Delete(ctx context.Context, id string) error {
	return s.projectRepo.Delete(ctx, id)
}

func projectFromInput(in model.ProjectInput) (*model.Project, error) {
	p := &model.Project{
		Title:     strings.TrimSpace(in.Title),
		Sponsor:   strings.TrimSpace(in.Sponsor),
		BannerURL: strings.TrimSpace(in.BannerURL),
		Summary:   strings.TrimSpace(in.Summary),
		Services:  cleanList(in.Services),
		Results:   cleanList(in.Results),
	}
	if p.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "required"}
	}
	return p, nil
}

// cleanList trims each entry and drops the blank ones.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
