package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/momentumgaming/backend/internal/model"
	"github.com/momentumgaming/backend/internal/repository"
)

// UnreadCounter counts submissions that still need attention.
type UnreadCounter interface {
	CountUnread(ctx context.Context) (int64, error)
}

// DashboardService builds the admin landing summary.
type DashboardService interface {
	Get(ctx context.Context) (*model.Dashboard, error)
}

type dashboardService struct {
	db       repository.DB
	projects repository.ProjectRepository
	unread   UnreadCounter
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(db repository.DB, projects repository.ProjectRepository, unread UnreadCounter) DashboardService {
	return &dashboardService{db: db, projects: projects, unread: unread}
}

// Get は DB の状態と件数をまとめて返す。DB が応答しない場合は件数を取得しない
func (s *dashboardService) Get(ctx context.Context) (*model.Dashboard, error) {
	d := &model.Dashboard{Database: "ok"}
	if err := s.db.Ping(ctx); err != nil {
		slog.Warn("dashboard: database ping failed", "error", err)
		d.Database = "unavailable"
		return d, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.projects.Count(gctx)
		if err != nil {
			return fmt.Errorf("count projects: %w", err)
		}
		d.ProjectCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.unread.CountUnread(gctx)
		if err != nil {
			return fmt.Errorf("count unread: %w", err)
		}
		d.UnreadCount = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
