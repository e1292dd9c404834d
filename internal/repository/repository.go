package repository

import (
	"alcyxob/gym-app/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
	ErrConflict  = RepositoryError("document changed concurrently")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int64, error)
	Count(ctx context.Context, role domain.Role) (int64, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.AccountStatus) error
}

// PackageRepository defines the interface for gói tập data.
type PackageRepository interface {
	Create(ctx context.Context, pkg *domain.Package) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Package, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Package, error)
	List(ctx context.Context, onlyOnSale bool) ([]domain.Package, error)
	Update(ctx context.Context, pkg *domain.Package) error
}

// SubscriptionRepository defines the interface for member registrations.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error)
	List(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error)
	// FindCurrent returns the member's pending or active registration, if any.
	FindCurrent(ctx context.Context, memberID primitive.ObjectID) (*domain.Subscription, error)
	Update(ctx context.Context, sub *domain.Subscription) error
	// DecrementSessions takes one PT session off the registration; ErrConflict when none are left.
	DecrementSessions(ctx context.Context, id primitive.ObjectID) error
	// ExpireEndedBefore moves active registrations that ended before t to HET_HAN.
	ExpireEndedBefore(ctx context.Context, t time.Time) (int64, error)
	CountActive(ctx context.Context, at time.Time) (int64, error)
	// RevenueConfirmedBetween sums the price of registrations confirmed in [from, to).
	RevenueConfirmedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// SessionRepository defines the interface for buổi tập data.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	List(ctx context.Context, filter domain.SessionFilter) ([]domain.Session, error)
	// UpdateStatus moves the session from one status to another; ErrConflict if it is no longer in `from`.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.SessionStatus) error
	// ListDue returns sessions in status whose start (or end, when byEnd) is at or before t.
	ListDue(ctx context.Context, status domain.SessionStatus, t time.Time, byEnd bool) ([]domain.Session, error)
	HasTrainerMember(ctx context.Context, trainerID, memberID primitive.ObjectID) (bool, error)
	CountByStatus(ctx context.Context) ([]domain.SessionCount, error)
}

// WorkoutHistoryRepository defines the interface for lịch sử tập data.
type WorkoutHistoryRepository interface {
	Create(ctx context.Context, entry *domain.WorkoutHistory) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutHistory, error)
	ListByMember(ctx context.Context, memberID primitive.ObjectID, filter domain.HistoryFilter) ([]domain.WorkoutHistory, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ReviewRepository defines the interface for PT reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (primitive.ObjectID, error)
	GetBySession(ctx context.Context, sessionID primitive.ObjectID) (*domain.Review, error)
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Review, error)
}

// TemplateRepository defines the interface for PT workout templates.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.Template) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Template, error)
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error)
	Update(ctx context.Context, tpl *domain.Template) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error // Ensure PT owns the template
}

// WorkScheduleRepository stores one weekly schedule per PT.
type WorkScheduleRepository interface {
	Upsert(ctx context.Context, schedule *domain.WorkSchedule) error
	GetByTrainer(ctx context.Context, trainerID primitive.ObjectID) (*domain.WorkSchedule, error)
}

// MealRepository defines the interface for the meal catalogue.
type MealRepository interface {
	Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Meal, error)
	Search(ctx context.Context, filter domain.MealFilter) ([]domain.Meal, error)
	Update(ctx context.Context, meal *domain.Meal) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MealPlanRepository defines the interface for thực đơn data.
type MealPlanRepository interface {
	Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error)
	ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.MealPlan, error)
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.MealPlan, error)
}

// VisitRepository defines the interface for check-in/out visits.
type VisitRepository interface {
	Create(ctx context.Context, visit *domain.Visit) (primitive.ObjectID, error)
	GetOpen(ctx context.Context, memberID primitive.ObjectID) (*domain.Visit, error)
	// Close stores the check-out of an open visit; ErrConflict if it was already closed.
	Close(ctx context.Context, visit *domain.Visit) error
	ListByMember(ctx context.Context, memberID primitive.ObjectID, limit int) ([]domain.Visit, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Visit, error)
	ListOpen(ctx context.Context) ([]domain.Visit, error)
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByKey(ctx context.Context, objectKey string) (*domain.Upload, error)
}
