package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/search"
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TrainerInput is filled in by the owner when hiring a PT.
type TrainerInput struct {
	FullName        string
	Email           string
	Phone           string
	Password        string
	Specialty       string
	ExperienceYears int
	Bio             string
}

// TrainerProfile is a PT with their rating summary.
type TrainerProfile struct {
	Trainer domain.User
	Rating  domain.RatingSummary
}

// UserService manages members and staff accounts.
type UserService interface {
	ListMembers(ctx context.Context, query string, page, limit int) ([]domain.User, int64, error)
	GetMember(ctx context.Context, actor Actor, memberID primitive.ObjectID) (*domain.User, error)
	SetMemberStatus(ctx context.Context, memberID primitive.ObjectID, status domain.AccountStatus) (*domain.User, error)
	CreateTrainer(ctx context.Context, in TrainerInput) (*domain.User, error)
	ListTrainers(ctx context.Context) ([]TrainerProfile, error)
	GetTrainer(ctx context.Context, trainerID primitive.ObjectID) (*TrainerProfile, error)
}

type userService struct {
	userRepo   repository.UserRepository
	reviewRepo repository.ReviewRepository
	log        logrus.FieldLogger
}

func NewUserService(userRepo repository.UserRepository, reviewRepo repository.ReviewRepository, log logrus.FieldLogger) UserService {
	return &userService{userRepo: userRepo, reviewRepo: reviewRepo, log: log}
}

// ListMembers searches members by name, email or phone, ignoring accents.
func (s *userService) ListMembers(ctx context.Context, query string, page, limit int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	users, total, err := s.userRepo.List(ctx, domain.UserFilter{
		Role:  domain.RoleMember,
		Query: search.Normalize(query),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

func (s *userService) GetMember(ctx context.Context, actor Actor, memberID primitive.ObjectID) (*domain.User, error) {
	// PTs may look up any member, e.g. before booking a first session.
	if actor.Is(domain.RoleMember) && actor.ID != memberID {
		return nil, ErrAccessDenied
	}
	u, err := getMember(ctx, s.userRepo, memberID)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *userService) SetMemberStatus(ctx context.Context, memberID primitive.ObjectID, status domain.AccountStatus) (*domain.User, error) {
	if status != domain.AccountActive && status != domain.AccountLocked {
		return nil, validationError("trangThai must be %s or %s", domain.AccountActive, domain.AccountLocked)
	}
	u, err := getMember(ctx, s.userRepo, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetStatus(ctx, memberID, status); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"member": memberID.Hex(), "status": status}).Info("member status changed")
	u.Status = status
	u.PasswordHash = ""
	return u, nil
}

func (s *userService) CreateTrainer(ctx context.Context, in TrainerInput) (*domain.User, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return nil, validationError("hoTen is required")
	}
	if in.ExperienceYears < 0 {
		return nil, validationError("kinhNghiem cannot be negative")
	}
	trainer := &domain.User{
		FullName:        strings.TrimSpace(in.FullName),
		Email:           in.Email,
		Phone:           strings.TrimSpace(in.Phone),
		Role:            domain.RoleTrainer,
		Specialty:       in.Specialty,
		ExperienceYears: in.ExperienceYears,
		Bio:             in.Bio,
	}
	if err := createAccount(ctx, s.userRepo, trainer, in.Password); err != nil {
		return nil, err
	}
	s.log.WithField("trainer", trainer.ID.Hex()).Info("PT account created")
	return trainer, nil
}

// ListTrainers returns active PTs, each with their rating.
func (s *userService) ListTrainers(ctx context.Context) ([]TrainerProfile, error) {
	trainers, _, err := s.userRepo.List(ctx, domain.UserFilter{Role: domain.RoleTrainer, Status: domain.AccountActive})
	if err != nil {
		return nil, err
	}
	out := make([]TrainerProfile, 0, len(trainers))
	for _, t := range trainers {
		reviews, err := s.reviewRepo.ListByTrainer(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.PasswordHash = ""
		out = append(out, TrainerProfile{Trainer: t, Rating: domain.Summarize(reviews)})
	}
	return out, nil
}

func (s *userService) GetTrainer(ctx context.Context, trainerID primitive.ObjectID) (*TrainerProfile, error) {
	t, err := getTrainer(ctx, s.userRepo, trainerID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.ListByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	t.PasswordHash = ""
	return &TrainerProfile{Trainer: *t, Rating: domain.Summarize(reviews)}, nil
}

func getTrainer(ctx context.Context, users repository.UserRepository, id primitive.ObjectID) (*domain.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !u.IsTrainer() {
		return nil, ErrUserNotFound
	}
	return u, nil
}
