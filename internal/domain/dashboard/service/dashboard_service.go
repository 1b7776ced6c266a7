package service

import (
	"context"
	"thywilluche/internal/domain/dashboard/repository"

	"golang.org/x/sync/errgroup"
)

// Overview 管理后台首页数据
type Overview struct {
	repository.Counters
	PostsByStatus  map[string]int64 `json:"postsByStatus"`
	OrdersByStatus map[string]int64 `json:"ordersByStatus"`
}

type DashboardService interface {
	Overview(ctx context.Context) (*Overview, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
}

func NewDashboardService(repo repository.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// Overview 三个查询并发执行
func (s *dashboardService) Overview(ctx context.Context) (*Overview, error) {
	var (
		out      Overview
		counters *repository.Counters
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counters, err = s.repo.Counters(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.PostsByStatus, err = s.repo.CountByStatus(ctx, "posts")
		return err
	})
	g.Go(func() (err error) {
		out.OrdersByStatus, err = s.repo.CountByStatus(ctx, "orders")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.Counters = *counters
	return &out, nil
}
