package memory

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type templateRepo struct{ s *Store }

func (r *templateRepo) Create(ctx context.Context, tpl *domain.Template) (primitive.ObjectID, error) {
	if tpl.Name == "" || tpl.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template name and PT ID are required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	r.s.templates[tpl.ID] = *tpl
	return tpl.ID, nil
}

func (r *templateRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Template, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tpl, ok := r.s.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &tpl, nil
}

func (r *templateRepo) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Template{}
	for _, tpl := range r.s.templates {
		if tpl.TrainerID == trainerID {
			out = append(out, tpl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() > out[j].ID.Hex() })
	return out, nil
}

func (r *templateRepo) Update(ctx context.Context, tpl *domain.Template) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.templates[tpl.ID]
	if !ok || existing.TrainerID != tpl.TrainerID {
		return repository.ErrNotFound
	}
	existing.Name = tpl.Name
	existing.Description = tpl.Description
	existing.Goal = tpl.Goal
	existing.Exercises = tpl.Exercises
	existing.UpdatedAt = time.Now().UTC()
	r.s.templates[tpl.ID] = existing
	return nil
}

func (r *templateRepo) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.templates[id]
	if !ok || existing.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.s.templates, id)
	return nil
}

type scheduleRepo struct{ s *Store }

func (r *scheduleRepo) Upsert(ctx context.Context, schedule *domain.WorkSchedule) error {
	if schedule.TrainerID == primitive.NilObjectID {
		return errors.New("work schedule requires maPT")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.schedules[schedule.TrainerID]
	if ok {
		schedule.ID = existing.ID
	} else {
		schedule.ID = primitive.NewObjectID()
	}
	schedule.UpdatedAt = time.Now().UTC()
	r.s.schedules[schedule.TrainerID] = *schedule
	return nil
}

func (r *scheduleRepo) GetByTrainer(ctx context.Context, trainerID primitive.ObjectID) (*domain.WorkSchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	schedule, ok := r.s.schedules[trainerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &schedule, nil
}

type mealRepo struct{ s *Store }

func (r *mealRepo) Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error) {
	if meal.Name == "" {
		return primitive.NilObjectID, errors.New("meal requires tenMon")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	meal.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now
	r.s.meals[meal.ID] = *meal
	return meal.ID, nil
}

func (r *mealRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	meal, ok := r.s.meals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &meal, nil
}

func (r *mealRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Meal, error) {
	return r.filter(func(m *domain.Meal) bool { return containsID(ids, m.ID) }), nil
}

func (r *mealRepo) Search(ctx context.Context, filter domain.MealFilter) ([]domain.Meal, error) {
	return r.filter(func(m *domain.Meal) bool {
		if filter.Type != "" && m.Type != filter.Type {
			return false
		}
		return filter.Query == "" || strings.Contains(m.SearchText, filter.Query)
	}), nil
}

func (r *mealRepo) filter(keep func(*domain.Meal) bool) []domain.Meal {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Meal{}
	for _, m := range r.s.meals {
		if keep(&m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SearchText < out[j].SearchText })
	return out
}

func (r *mealRepo) Update(ctx context.Context, meal *domain.Meal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.meals[meal.ID]
	if !ok {
		return repository.ErrNotFound
	}
	meal.CreatedAt = existing.CreatedAt
	meal.CreatedBy = existing.CreatedBy
	meal.UpdatedAt = time.Now().UTC()
	r.s.meals[meal.ID] = *meal
	return nil
}

func (r *mealRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.meals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.meals, id)
	return nil
}

type mealPlanRepo struct{ s *Store }

func (r *mealPlanRepo) Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error) {
	if plan.MemberID == primitive.NilObjectID || plan.TrainerID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("meal plan requires maHoiVien, maPT, and tenThucDon")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	r.s.mealPlans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *mealPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	plan, ok := r.s.mealPlans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &plan, nil
}

func (r *mealPlanRepo) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.MealPlan, error) {
	return r.filter(func(p *domain.MealPlan) bool { return p.MemberID == memberID }), nil
}

func (r *mealPlanRepo) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.MealPlan, error) {
	return r.filter(func(p *domain.MealPlan) bool { return p.TrainerID == trainerID }), nil
}

func (r *mealPlanRepo) filter(keep func(*domain.MealPlan) bool) []domain.MealPlan {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.MealPlan{}
	for _, p := range r.s.mealPlans {
		if keep(&p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out
}
