package service

import (
	"alcyxob/gym-app/internal/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mealSetup struct {
	*sessionSetup
	meals *mealService
	pho   *domain.Meal
	com   *domain.Meal
	banh  *domain.Meal
}

func newMealSetup(t *testing.T) *mealSetup {
	s := newSessionSetup(t, 4)
	svc := NewMealService(s.store.Meals(), s.store.MealPlans(), s.store.Sessions(), s.store.Users(), gymZone).(*mealService)
	svc.now = s.clock()
	m := &mealSetup{sessionSetup: s, meals: svc}

	chef := Actor{ID: s.trainer.ID, Role: domain.RoleTrainer}
	ctx := context.Background()
	var err error
	m.pho, err = svc.Create(ctx, chef, MealInput{Name: "Phở bò", Type: domain.MealLunch, Calories: 450, Protein: 25, Carbs: 60, Fat: 12})
	require.NoError(t, err)
	m.com, err = svc.Create(ctx, chef, MealInput{Name: "Cơm gà", Type: domain.MealLunch, Calories: 600, Protein: 35, Carbs: 80, Fat: 15})
	require.NoError(t, err)
	m.banh, err = svc.Create(ctx, chef, MealInput{Name: "Bánh mì trứng", Type: domain.MealBreakfast, Calories: 350, Protein: 14, Carbs: 45, Fat: 13})
	require.NoError(t, err)
	return m
}

func TestMealSearch(t *testing.T) {
	m := newMealSetup(t)
	ctx := context.Background()

	res, err := m.meals.Search(ctx, "PHO", "")
	require.NoError(t, err)
	require.Len(t, res.Meals, 1)
	assert.Equal(t, "Phở bò", res.Meals[0].Name)
	assert.Empty(t, res.Suggestions)

	res, err = m.meals.Search(ctx, "", domain.MealLunch)
	require.NoError(t, err)
	assert.Len(t, res.Meals, 2)

	res, err = m.meals.Search(ctx, "trung", domain.MealLunch)
	require.NoError(t, err)
	assert.Empty(t, res.Meals)

	res, err = m.meals.Search(ctx, "pho bo tai", "")
	require.NoError(t, err)
	assert.Empty(t, res.Meals)
	assert.Contains(t, res.Suggestions, "Phở bò")

	_, err = m.meals.Search(ctx, "pho", "BUA_KHUYA")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMealCRUD(t *testing.T) {
	m := newMealSetup(t)
	ctx := context.Background()
	owner := Actor{ID: primitive.NewObjectID(), Role: domain.RoleOwner}

	_, err := m.meals.Create(ctx, owner, MealInput{Name: "Salad", Type: domain.MealDinner, Calories: -1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = m.meals.Create(ctx, owner, MealInput{Name: "Salad", Type: "KHUYA"})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := m.meals.Update(ctx, m.pho.ID, MealInput{Name: "Phở gà", Type: domain.MealBreakfast, Calories: 400})
	require.NoError(t, err)
	assert.Equal(t, "Phở gà", updated.Name)

	res, err := m.meals.Search(ctx, "pho ga", "")
	require.NoError(t, err)
	assert.Len(t, res.Meals, 1)

	require.NoError(t, m.meals.Delete(ctx, m.pho.ID))
	_, err = m.meals.Get(ctx, m.pho.ID)
	assert.ErrorIs(t, err, ErrMealNotFound)
	assert.ErrorIs(t, m.meals.Delete(ctx, m.pho.ID), ErrMealNotFound)
	_, err = m.meals.Update(ctx, m.pho.ID, MealInput{Name: "Phở", Type: domain.MealLunch})
	assert.ErrorIs(t, err, ErrMealNotFound)
}

func TestMealPlans(t *testing.T) {
	m := newMealSetup(t)
	ctx := context.Background()
	m.book(t, "2026-03-03", "08:00", "09:00")

	plan, err := m.meals.CreatePlan(ctx, m.trainer.ID, MealPlanInput{
		MemberID:       m.member.ID,
		Name:           "Giảm cân tháng 3",
		StartDate:      "2026-03-02",
		EndDate:        "2026-03-29",
		TargetCalories: 1800,
		Days: []domain.MealPlanDay{
			{Weekday: 1, MealIDs: []primitive.ObjectID{m.banh.ID, m.pho.ID}},
			{Weekday: 3, MealIDs: []primitive.ObjectID{m.com.ID}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, m.trainer.ID, plan.TrainerID)

	views, err := m.meals.PlansForMember(ctx, m.member.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Days, 2)
	monday := views[0].Days[0]
	assert.Equal(t, 1, monday.Weekday)
	assert.Len(t, monday.Meals, 2)
	assert.Equal(t, 800, monday.Total.Calories)
	assert.Equal(t, 39.0, monday.Total.Protein)

	// Deleted dishes drop out of the plan.
	require.NoError(t, m.meals.Delete(ctx, m.pho.ID))
	views, err = m.meals.PlansForMember(ctx, m.member.ID)
	require.NoError(t, err)
	assert.Equal(t, 350, views[0].Days[0].Total.Calories)

	mine, err := m.meals.PlansForTrainer(ctx, m.trainer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestMealPlanRejects(t *testing.T) {
	m := newMealSetup(t)
	ctx := context.Background()
	m.book(t, "2026-03-03", "08:00", "09:00")
	valid := func() MealPlanInput {
		return MealPlanInput{MemberID: m.member.ID, Name: "Thực đơn", StartDate: "2026-03-02", EndDate: "2026-03-08"}
	}

	in := valid()
	in.EndDate = "2026-03-01"
	_, err := m.meals.CreatePlan(ctx, m.trainer.ID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = valid()
	in.Name = ""
	_, err = m.meals.CreatePlan(ctx, m.trainer.ID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = valid()
	in.Days = []domain.MealPlanDay{{Weekday: 2}, {Weekday: 2}}
	_, err = m.meals.CreatePlan(ctx, m.trainer.ID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = valid()
	in.Days = []domain.MealPlanDay{{Weekday: 7}}
	_, err = m.meals.CreatePlan(ctx, m.trainer.ID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = valid()
	in.Days = []domain.MealPlanDay{{Weekday: 2, MealIDs: []primitive.ObjectID{primitive.NewObjectID()}}}
	_, err = m.meals.CreatePlan(ctx, m.trainer.ID, in)
	assert.ErrorIs(t, err, ErrMealNotFound)

	_, err = m.meals.CreatePlan(ctx, m.trainer2(t), valid())
	assert.ErrorIs(t, err, ErrAccessDenied, "only a PT who trains the member")

	in = valid()
	in.MemberID = m.trainer.ID
	_, err = m.meals.CreatePlan(ctx, m.trainer.ID, in)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
