package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerReviews is a PT's review list with its summary.
type TrainerReviews struct {
	Reviews []domain.Review
	Summary domain.RatingSummary
}

type ReviewService interface {
	Create(ctx context.Context, memberID, sessionID primitive.ObjectID, score int, comment string) (*domain.Review, error)
	ListForTrainer(ctx context.Context, trainerID primitive.ObjectID) (*TrainerReviews, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, sessionRepo repository.SessionRepository, userRepo repository.UserRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, sessionRepo: sessionRepo, userRepo: userRepo}
}

// Create rates the PT of one of the member's completed sessions.
func (s *reviewService) Create(ctx context.Context, memberID, sessionID primitive.ObjectID, score int, comment string) (*domain.Review, error) {
	if score < 1 || score > 5 {
		return nil, validationError("diem must be between 1 and 5")
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.MemberID != memberID {
		return nil, ErrAccessDenied
	}
	if session.Status != domain.SessionCompleted {
		return nil, ErrSessionNotCompleted
	}

	review := &domain.Review{
		SessionID: sessionID,
		TrainerID: session.TrainerID,
		MemberID:  memberID,
		Score:     score,
		Comment:   strings.TrimSpace(comment),
	}
	id, err := s.reviewRepo.Create(ctx, review)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrReviewExists
		}
		return nil, err
	}
	review.ID = id
	return review, nil
}

func (s *reviewService) ListForTrainer(ctx context.Context, trainerID primitive.ObjectID) (*TrainerReviews, error) {
	if _, err := getTrainer(ctx, s.userRepo, trainerID); err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.ListByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	return &TrainerReviews{Reviews: reviews, Summary: domain.Summarize(reviews)}, nil
}
