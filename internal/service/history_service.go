package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// statsWeeks is how many weeks the per-week chart covers.
const statsWeeks = 8

// HistoryInput is one workout to record.
type HistoryInput struct {
	MemberID        primitive.ObjectID
	SessionID       *primitive.ObjectID
	WorkoutDate     *time.Time // defaults to now
	DurationMinutes int
	Exercises       []domain.ExerciseLog
	CaloriesBurned  int
	Notes           string
}

// HistoryService records and reports lịch sử tập.
type HistoryService interface {
	Record(ctx context.Context, actor Actor, in HistoryInput) (*domain.WorkoutHistory, error)
	ListForMember(ctx context.Context, actor Actor, memberID primitive.ObjectID, from, to string) ([]domain.WorkoutHistory, error)
	Stats(ctx context.Context, actor Actor, memberID primitive.ObjectID) (*domain.HistoryStats, error)
	Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error
}

type historyService struct {
	clock
	historyRepo repository.WorkoutHistoryRepository
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
}

func NewHistoryService(historyRepo repository.WorkoutHistoryRepository, sessionRepo repository.SessionRepository, userRepo repository.UserRepository, loc *time.Location) HistoryService {
	return &historyService{
		clock:       newClock(loc),
		historyRepo: historyRepo,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
	}
}

func (s *historyService) Record(ctx context.Context, actor Actor, in HistoryInput) (*domain.WorkoutHistory, error) {
	// Members record their own workouts; a PT records for a member they train.
	switch actor.Role {
	case domain.RoleMember:
		if in.MemberID == primitive.NilObjectID {
			in.MemberID = actor.ID
		}
		if in.MemberID != actor.ID {
			return nil, ErrAccessDenied
		}
	case domain.RoleTrainer:
		ok, err := s.sessionRepo.HasTrainerMember(ctx, actor.ID, in.MemberID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAccessDenied
		}
	default:
		return nil, ErrAccessDenied
	}

	if in.DurationMinutes <= 0 {
		return nil, validationError("thoiLuong must be positive")
	}
	if in.CaloriesBurned < 0 {
		return nil, validationError("caloTieuHao cannot be negative")
	}
	for _, ex := range in.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return nil, validationError("every exercise needs tenBaiTap")
		}
		if ex.Sets < 0 || ex.Reps < 0 || ex.Weight < 0 {
			return nil, validationError("exercise %q has negative values", ex.Name)
		}
	}
	if _, err := getMember(ctx, s.userRepo, in.MemberID); err != nil {
		return nil, err
	}

	date := s.Now()
	if in.WorkoutDate != nil {
		date = *in.WorkoutDate
	}
	if date.After(s.Now().Add(time.Minute)) {
		return nil, validationError("ngayTap cannot be in the future")
	}

	if in.SessionID != nil {
		session, err := s.sessionRepo.GetByID(ctx, *in.SessionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrSessionNotFound
			}
			return nil, err
		}
		if session.MemberID != in.MemberID {
			return nil, validationError("maBuoiTap belongs to another member")
		}
	}

	entry := &domain.WorkoutHistory{
		MemberID:        in.MemberID,
		SessionID:       in.SessionID,
		RecordedBy:      actor.ID,
		WorkoutDate:     date,
		DurationMinutes: in.DurationMinutes,
		Exercises:       in.Exercises,
		CaloriesBurned:  in.CaloriesBurned,
		Notes:           in.Notes,
	}
	id, err := s.historyRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id
	return entry, nil
}

func (s *historyService) ListForMember(ctx context.Context, actor Actor, memberID primitive.ObjectID, from, to string) ([]domain.WorkoutHistory, error) {
	if err := s.checkAccess(ctx, actor, memberID); err != nil {
		return nil, err
	}
	filter := domain.HistoryFilter{}
	if from != "" {
		d, err := s.parseDate(from)
		if err != nil {
			return nil, err
		}
		filter.From = &d
	}
	if to != "" {
		d, err := s.parseDate(to)
		if err != nil {
			return nil, err
		}
		d = d.AddDate(0, 0, 1)
		filter.To = &d
	}
	return s.historyRepo.ListByMember(ctx, memberID, filter)
}

// Stats totals the whole history and counts workouts per week for the last
// statsWeeks weeks, oldest week first. Weeks start on Monday.
func (s *historyService) Stats(ctx context.Context, actor Actor, memberID primitive.ObjectID) (*domain.HistoryStats, error) {
	if err := s.checkAccess(ctx, actor, memberID); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByMember(ctx, memberID, domain.HistoryFilter{})
	if err != nil {
		return nil, err
	}

	first := s.startOfWeek(s.Now()).AddDate(0, 0, -7*(statsWeeks-1))
	stats := &domain.HistoryStats{Weekly: make([]domain.WeeklyCount, statsWeeks)}
	for i := range stats.Weekly {
		stats.Weekly[i].WeekStart = first.AddDate(0, 0, 7*i)
	}
	for _, e := range entries {
		stats.TotalWorkouts++
		stats.TotalMinutes += e.DurationMinutes
		stats.TotalCalories += e.CaloriesBurned

		week := s.startOfWeek(e.WorkoutDate)
		if week.Before(first) {
			continue
		}
		idx := int(week.Sub(first).Hours()+12) / (24 * 7) // +12h absorbs DST shifts
		if idx < statsWeeks {
			stats.Weekly[idx].Count++
		}
	}
	return stats, nil
}

func (s *historyService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	entry, err := s.historyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHistoryNotFound
		}
		return err
	}
	owner := actor.Is(domain.RoleMember) && entry.MemberID == actor.ID
	recorder := actor.Is(domain.RoleTrainer) && entry.RecordedBy == actor.ID
	if !owner && !recorder {
		return ErrAccessDenied
	}
	if err := s.historyRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHistoryNotFound
		}
		return err
	}
	return nil
}

func (s *historyService) checkAccess(ctx context.Context, actor Actor, memberID primitive.ObjectID) error {
	ok, err := canSeeMember(ctx, s.sessionRepo, actor, memberID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}
