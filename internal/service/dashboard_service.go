package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"time"
)

// DashboardService builds the owner's overview.
type DashboardService interface {
	Summary(ctx context.Context) (*domain.DashboardSummary, error)
}

type dashboardService struct {
	clock
	userRepo    repository.UserRepository
	subRepo     repository.SubscriptionRepository
	visitRepo   repository.VisitRepository
	sessionRepo repository.SessionRepository
}

func NewDashboardService(
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	visitRepo repository.VisitRepository,
	sessionRepo repository.SessionRepository,
	loc *time.Location,
) DashboardService {
	return &dashboardService{
		clock:       newClock(loc),
		userRepo:    userRepo,
		subRepo:     subRepo,
		visitRepo:   visitRepo,
		sessionRepo: sessionRepo,
	}
}

func (s *dashboardService) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	now := s.Now()
	var (
		sum domain.DashboardSummary
		err error
	)
	if sum.Members, err = s.userRepo.Count(ctx, domain.RoleMember); err != nil {
		return nil, err
	}
	if sum.ActiveSubscriptions, err = s.subRepo.CountActive(ctx, now); err != nil {
		return nil, err
	}
	day := s.startOfDay(now)
	if sum.CheckInsToday, err = s.visitRepo.CountBetween(ctx, day, day.AddDate(0, 0, 1)); err != nil {
		return nil, err
	}
	month := s.startOfMonth(now)
	if sum.RevenueThisMonth, err = s.subRepo.RevenueConfirmedBetween(ctx, month, month.AddDate(0, 1, 0)); err != nil {
		return nil, err
	}
	if sum.SessionsByStatus, err = s.sessionRepo.CountByStatus(ctx); err != nil {
		return nil, err
	}
	return &sum, nil
}
