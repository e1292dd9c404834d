package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/metrics"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionService handles member registrations (chi tiết gói tập).
type SubscriptionService interface {
	Register(ctx context.Context, memberID, packageID primitive.ObjectID) (*domain.Subscription, error)
	// Confirm records payment and starts the validity window.
	Confirm(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error)
	Cancel(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.Subscription, error)
	ListForMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Subscription, error)
	List(ctx context.Context, status domain.SubscriptionStatus) ([]domain.Subscription, error)
	// ExpireEnded moves active registrations past their end date to HET_HAN.
	ExpireEnded(ctx context.Context) (int64, error)
}

type subscriptionService struct {
	clock
	subRepo     repository.SubscriptionRepository
	packageRepo repository.PackageRepository
	userRepo    repository.UserRepository
	metrics     *metrics.Metrics
	log         logrus.FieldLogger
}

func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	packageRepo repository.PackageRepository,
	userRepo repository.UserRepository,
	m *metrics.Metrics,
	loc *time.Location,
	log logrus.FieldLogger,
) SubscriptionService {
	return &subscriptionService{
		clock:       newClock(loc),
		subRepo:     subRepo,
		packageRepo: packageRepo,
		userRepo:    userRepo,
		metrics:     m,
		log:         log,
	}
}

func (s *subscriptionService) Register(ctx context.Context, memberID, packageID primitive.ObjectID) (*domain.Subscription, error) {
	if _, err := getMember(ctx, s.userRepo, memberID); err != nil {
		return nil, err
	}
	pkg, err := s.packageRepo.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if !pkg.OnSale() {
		return nil, ErrPackageNotOnSale
	}

	current, err := s.subRepo.FindCurrent(ctx, memberID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	// An active registration whose end date passed but that the expiry job
	// has not reached yet does not block a renewal.
	if current != nil && (current.Status == domain.SubscriptionPending || current.ActiveAt(s.Now())) {
		return nil, ErrSubscriptionExists
	}

	sub := &domain.Subscription{
		MemberID:        memberID,
		PackageID:       pkg.ID,
		PackageName:     pkg.Name,
		Price:           pkg.Price,
		Status:          domain.SubscriptionPending,
		TrainerSessions: pkg.TrainerSessions,
	}
	id, err := s.subRepo.Create(ctx, sub)
	if err != nil {
		// A concurrent registration won the race.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSubscriptionExists
		}
		return nil, err
	}
	sub.ID = id
	return sub, nil
}

func (s *subscriptionService) get(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error) {
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) Confirm(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error) {
	sub, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionPending {
		return nil, ErrSubscriptionState
	}
	pkg, err := s.packageRepo.GetByID(ctx, sub.PackageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}

	now := s.Now()
	end := now.AddDate(0, 0, pkg.DurationDays)
	sub.Status = domain.SubscriptionActive
	sub.StartDate = &now
	sub.EndDate = &end
	sub.ConfirmedAt = &now
	sub.SessionsRemaining = sub.TrainerSessions
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	s.metrics.SubscriptionConfirmed()
	s.log.WithFields(logrus.Fields{"subscription": sub.ID.Hex(), "member": sub.MemberID.Hex()}).Info("registration confirmed")
	return sub, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.Subscription, error) {
	sub, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.Is(domain.RoleOwner):
		if sub.Status != domain.SubscriptionPending && sub.Status != domain.SubscriptionActive {
			return nil, ErrSubscriptionState
		}
	case actor.Is(domain.RoleMember) && actor.ID == sub.MemberID:
		if sub.Status != domain.SubscriptionPending {
			return nil, ErrSubscriptionState
		}
	default:
		return nil, ErrAccessDenied
	}
	sub.Status = domain.SubscriptionCancelled
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) ListForMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Subscription, error) {
	return s.subRepo.List(ctx, domain.SubscriptionFilter{MemberID: &memberID})
}

func (s *subscriptionService) List(ctx context.Context, status domain.SubscriptionStatus) ([]domain.Subscription, error) {
	filter := domain.SubscriptionFilter{}
	if status != "" {
		filter.Statuses = []domain.SubscriptionStatus{status}
	}
	return s.subRepo.List(ctx, filter)
}

func (s *subscriptionService) ExpireEnded(ctx context.Context) (int64, error) {
	return s.subRepo.ExpireEndedBefore(ctx, s.Now())
}
