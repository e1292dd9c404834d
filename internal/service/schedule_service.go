package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleService manages PT weekly work schedules.
type ScheduleService interface {
	Replace(ctx context.Context, trainerID primitive.ObjectID, slots []domain.ScheduleSlot) (*domain.WorkSchedule, error)
	// Get returns the PT's schedule, empty if they never set one.
	Get(ctx context.Context, trainerID primitive.ObjectID) (*domain.WorkSchedule, error)
}

type scheduleService struct {
	scheduleRepo repository.WorkScheduleRepository
	userRepo     repository.UserRepository
}

func NewScheduleService(scheduleRepo repository.WorkScheduleRepository, userRepo repository.UserRepository) ScheduleService {
	return &scheduleService{scheduleRepo: scheduleRepo, userRepo: userRepo}
}

func (s *scheduleService) Replace(ctx context.Context, trainerID primitive.ObjectID, slots []domain.ScheduleSlot) (*domain.WorkSchedule, error) {
	normalized, err := domain.NormalizeSlots(slots)
	if err != nil {
		return nil, validationError("%v", err)
	}
	schedule := &domain.WorkSchedule{TrainerID: trainerID, Slots: normalized}
	if err := s.scheduleRepo.Upsert(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) Get(ctx context.Context, trainerID primitive.ObjectID) (*domain.WorkSchedule, error) {
	if _, err := getTrainer(ctx, s.userRepo, trainerID); err != nil {
		return nil, err
	}
	schedule, err := s.scheduleRepo.GetByTrainer(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.WorkSchedule{TrainerID: trainerID, Slots: []domain.ScheduleSlot{}}, nil
		}
		return nil, err
	}
	return schedule, nil
}
