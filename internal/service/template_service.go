package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateInput is the editable part of a workout template.
type TemplateInput struct {
	Name        string
	Description string
	Goal        string
	Exercises   []domain.TemplateExercise
}

// TemplateService manages a PT's reusable workout templates.
type TemplateService interface {
	Create(ctx context.Context, trainerID primitive.ObjectID, in TemplateInput) (*domain.Template, error)
	List(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error)
	Update(ctx context.Context, trainerID, id primitive.ObjectID, in TemplateInput) (*domain.Template, error)
	Delete(ctx context.Context, trainerID, id primitive.ObjectID) error
}

type templateService struct {
	templateRepo repository.TemplateRepository
}

func NewTemplateService(templateRepo repository.TemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

func (s *templateService) Create(ctx context.Context, trainerID primitive.ObjectID, in TemplateInput) (*domain.Template, error) {
	if err := validateTemplate(in); err != nil {
		return nil, err
	}
	tpl := &domain.Template{
		TrainerID:   trainerID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Goal:        in.Goal,
		Exercises:   in.Exercises,
	}
	id, err := s.templateRepo.Create(ctx, tpl)
	if err != nil {
		return nil, err
	}
	tpl.ID = id
	return tpl, nil
}

func (s *templateService) List(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error) {
	return s.templateRepo.ListByTrainer(ctx, trainerID)
}

func (s *templateService) Update(ctx context.Context, trainerID, id primitive.ObjectID, in TemplateInput) (*domain.Template, error) {
	if err := validateTemplate(in); err != nil {
		return nil, err
	}
	tpl, err := s.owned(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}
	tpl.Name = strings.TrimSpace(in.Name)
	tpl.Description = in.Description
	tpl.Goal = in.Goal
	tpl.Exercises = in.Exercises
	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return tpl, nil
}

func (s *templateService) Delete(ctx context.Context, trainerID, id primitive.ObjectID) error {
	if _, err := s.owned(ctx, trainerID, id); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(ctx, id, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

// owned loads a template and checks the PT owns it.
func (s *templateService) owned(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.Template, error) {
	tpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.TrainerID != trainerID {
		return nil, ErrAccessDenied
	}
	return tpl, nil
}

func validateTemplate(in TemplateInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return validationError("tenTemplate is required")
	}
	for _, ex := range in.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return validationError("every exercise needs tenBaiTap")
		}
		if ex.Sets < 0 || ex.Reps < 0 || ex.RestSeconds < 0 {
			return validationError("exercise %q has negative values", ex.Name)
		}
	}
	return nil
}
