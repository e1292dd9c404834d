// Package memory keeps every repository in process memory. It backs the
// "memory" database driver for local runs and the service and API tests.
package memory

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds all collections behind one lock.
type Store struct {
	mu sync.RWMutex

	users         map[primitive.ObjectID]domain.User
	packages      map[primitive.ObjectID]domain.Package
	subscriptions map[primitive.ObjectID]domain.Subscription
	sessions      map[primitive.ObjectID]domain.Session
	history       map[primitive.ObjectID]domain.WorkoutHistory
	reviews       map[primitive.ObjectID]domain.Review
	templates     map[primitive.ObjectID]domain.Template
	schedules     map[primitive.ObjectID]domain.WorkSchedule // keyed by PT
	meals         map[primitive.ObjectID]domain.Meal
	mealPlans     map[primitive.ObjectID]domain.MealPlan
	visits        map[primitive.ObjectID]domain.Visit
	uploads       map[primitive.ObjectID]domain.Upload
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:         make(map[primitive.ObjectID]domain.User),
		packages:      make(map[primitive.ObjectID]domain.Package),
		subscriptions: make(map[primitive.ObjectID]domain.Subscription),
		sessions:      make(map[primitive.ObjectID]domain.Session),
		history:       make(map[primitive.ObjectID]domain.WorkoutHistory),
		reviews:       make(map[primitive.ObjectID]domain.Review),
		templates:     make(map[primitive.ObjectID]domain.Template),
		schedules:     make(map[primitive.ObjectID]domain.WorkSchedule),
		meals:         make(map[primitive.ObjectID]domain.Meal),
		mealPlans:     make(map[primitive.ObjectID]domain.MealPlan),
		visits:        make(map[primitive.ObjectID]domain.Visit),
		uploads:       make(map[primitive.ObjectID]domain.Upload),
	}
}

func (s *Store) Users() repository.UserRepository                   { return &userRepo{s} }
func (s *Store) Packages() repository.PackageRepository             { return &packageRepo{s} }
func (s *Store) Subscriptions() repository.SubscriptionRepository   { return &subscriptionRepo{s} }
func (s *Store) Sessions() repository.SessionRepository             { return &sessionRepo{s} }
func (s *Store) History() repository.WorkoutHistoryRepository       { return &historyRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository               { return &reviewRepo{s} }
func (s *Store) Templates() repository.TemplateRepository           { return &templateRepo{s} }
func (s *Store) Schedules() repository.WorkScheduleRepository       { return &scheduleRepo{s} }
func (s *Store) Meals() repository.MealRepository                   { return &mealRepo{s} }
func (s *Store) MealPlans() repository.MealPlanRepository           { return &mealPlanRepo{s} }
func (s *Store) Visits() repository.VisitRepository                 { return &visitRepo{s} }
func (s *Store) Uploads() repository.UploadRepository               { return &uploadRepo{s} }

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
