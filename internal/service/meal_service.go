package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/search"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxMealSuggestions = 5

// MealInput is the editable part of a dish.
type MealInput struct {
	Name        string
	Type        domain.MealType
	Calories    int
	Protein     float64
	Carbs       float64
	Fat         float64
	Description string
	ImageKey    string
}

// MealSearchResult carries suggestions when the query matched nothing.
type MealSearchResult struct {
	Meals       []domain.Meal
	Suggestions []string
}

// MealPlanInput is what a PT enters to build a thực đơn.
type MealPlanInput struct {
	MemberID       primitive.ObjectID
	Name           string
	StartDate      string // YYYY-MM-DD
	EndDate        string // YYYY-MM-DD
	TargetCalories int
	Days           []domain.MealPlanDay
}

// MealPlanDayView is one weekday of a plan with its dishes and totals.
type MealPlanDayView struct {
	Weekday int
	Meals   []domain.Meal
	Total   domain.Nutrition
}

// MealPlanView is a plan expanded for display.
type MealPlanView struct {
	Plan domain.MealPlan
	Days []MealPlanDayView
}

// MealService covers the dish catalogue and PT meal plans.
type MealService interface {
	Search(ctx context.Context, query string, mealType domain.MealType) (*MealSearchResult, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error)
	Create(ctx context.Context, actor Actor, in MealInput) (*domain.Meal, error)
	Update(ctx context.Context, id primitive.ObjectID, in MealInput) (*domain.Meal, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	CreatePlan(ctx context.Context, trainerID primitive.ObjectID, in MealPlanInput) (*domain.MealPlan, error)
	PlansForMember(ctx context.Context, memberID primitive.ObjectID) ([]MealPlanView, error)
	PlansForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.MealPlan, error)
}

type mealService struct {
	clock
	mealRepo    repository.MealRepository
	planRepo    repository.MealPlanRepository
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
}

func NewMealService(
	mealRepo repository.MealRepository,
	planRepo repository.MealPlanRepository,
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	loc *time.Location,
) MealService {
	return &mealService{
		clock:       newClock(loc),
		mealRepo:    mealRepo,
		planRepo:    planRepo,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
	}
}

// Search matches dishes by name without accents. If a non-empty query finds
// nothing, the closest dish names are suggested instead.
func (s *mealService) Search(ctx context.Context, query string, mealType domain.MealType) (*MealSearchResult, error) {
	if mealType != "" && !domain.ValidMealType(mealType) {
		return nil, validationError("unknown loaiBua %q", mealType)
	}
	q := search.Normalize(query)
	meals, err := s.mealRepo.Search(ctx, domain.MealFilter{Query: q, Type: mealType})
	if err != nil {
		return nil, err
	}
	result := &MealSearchResult{Meals: meals, Suggestions: []string{}}
	if len(meals) > 0 || q == "" {
		return result, nil
	}

	all, err := s.mealRepo.Search(ctx, domain.MealFilter{Type: mealType})
	if err != nil {
		return nil, err
	}
	names := make([]string, len(all))
	for i, m := range all {
		names[i] = m.Name
	}
	result.Suggestions = search.Suggest(query, names, maxMealSuggestions)
	return result, nil
}

func (s *mealService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error) {
	meal, err := s.mealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return meal, nil
}

func (s *mealService) Create(ctx context.Context, actor Actor, in MealInput) (*domain.Meal, error) {
	if err := validateMeal(in); err != nil {
		return nil, err
	}
	meal := &domain.Meal{CreatedBy: actor.ID}
	applyMealInput(meal, in)
	id, err := s.mealRepo.Create(ctx, meal)
	if err != nil {
		return nil, err
	}
	meal.ID = id
	return meal, nil
}

func (s *mealService) Update(ctx context.Context, id primitive.ObjectID, in MealInput) (*domain.Meal, error) {
	if err := validateMeal(in); err != nil {
		return nil, err
	}
	meal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyMealInput(meal, in)
	if err := s.mealRepo.Update(ctx, meal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return meal, nil
}

func (s *mealService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.mealRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMealNotFound
		}
		return err
	}
	return nil
}

func validateMeal(in MealInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return validationError("tenMon is required")
	case !domain.ValidMealType(in.Type):
		return validationError("unknown loaiBua %q", in.Type)
	case in.Calories < 0 || in.Protein < 0 || in.Carbs < 0 || in.Fat < 0:
		return validationError("nutrition values cannot be negative")
	}
	return nil
}

func applyMealInput(meal *domain.Meal, in MealInput) {
	meal.Name = strings.TrimSpace(in.Name)
	meal.Type = in.Type
	meal.Calories = in.Calories
	meal.Protein = in.Protein
	meal.Carbs = in.Carbs
	meal.Fat = in.Fat
	meal.Description = in.Description
	meal.ImageKey = in.ImageKey
	meal.SearchText = search.Normalize(meal.Name)
}

func (s *mealService) CreatePlan(ctx context.Context, trainerID primitive.ObjectID, in MealPlanInput) (*domain.MealPlan, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationError("tenThucDon is required")
	}
	start, err := s.parseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := s.parseDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, validationError("ngayKetThuc must not be before ngayBatDau")
	}
	if in.TargetCalories < 0 {
		return nil, validationError("mucTieuCalo cannot be negative")
	}

	if _, err := getMember(ctx, s.userRepo, in.MemberID); err != nil {
		return nil, err
	}
	trains, err := s.sessionRepo.HasTrainerMember(ctx, trainerID, in.MemberID)
	if err != nil {
		return nil, err
	}
	if !trains {
		return nil, ErrAccessDenied
	}

	seen := map[int]bool{}
	ids := []primitive.ObjectID{}
	for _, d := range in.Days {
		if d.Weekday < 0 || d.Weekday > 6 {
			return nil, validationError("%v", domain.ErrInvalidWeekday)
		}
		if seen[d.Weekday] {
			return nil, validationError("weekday %d listed twice", d.Weekday)
		}
		seen[d.Weekday] = true
		ids = append(ids, d.MealIDs...)
	}
	if len(ids) > 0 {
		found, err := s.mealRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		known := make(map[primitive.ObjectID]bool, len(found))
		for _, m := range found {
			known[m.ID] = true
		}
		for _, id := range ids {
			if !known[id] {
				return nil, ErrMealNotFound
			}
		}
	}

	plan := &domain.MealPlan{
		MemberID:       in.MemberID,
		TrainerID:      trainerID,
		Name:           strings.TrimSpace(in.Name),
		StartDate:      start,
		EndDate:        end,
		TargetCalories: in.TargetCalories,
		Days:           in.Days,
	}
	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	return plan, nil
}

// PlansForMember expands each plan with its dishes and per-day totals.
func (s *mealService) PlansForMember(ctx context.Context, memberID primitive.ObjectID) ([]MealPlanView, error) {
	plans, err := s.planRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	ids := []primitive.ObjectID{}
	for _, p := range plans {
		for _, d := range p.Days {
			ids = append(ids, d.MealIDs...)
		}
	}
	meals := map[primitive.ObjectID]domain.Meal{}
	if len(ids) > 0 {
		found, err := s.mealRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, m := range found {
			meals[m.ID] = m
		}
	}

	views := make([]MealPlanView, 0, len(plans))
	for _, p := range plans {
		view := MealPlanView{Plan: p, Days: make([]MealPlanDayView, 0, len(p.Days))}
		for _, d := range p.Days {
			dv := MealPlanDayView{Weekday: d.Weekday, Meals: []domain.Meal{}}
			for _, id := range d.MealIDs {
				// dishes deleted from the catalogue drop out of the plan
				m, ok := meals[id]
				if !ok {
					continue
				}
				dv.Meals = append(dv.Meals, m)
				dv.Total.Add(&m)
			}
			view.Days = append(view.Days, dv)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *mealService) PlansForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.MealPlan, error) {
	return s.planRepo.ListByTrainer(ctx, trainerID)
}
