package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionInput is what a PT enters to book a session.
type SessionInput struct {
	MemberID   primitive.ObjectID
	TemplateID *primitive.ObjectID
	Date       string // YYYY-MM-DD in the gym's time zone
	StartTime  string // HH:MM
	EndTime    string // HH:MM
	Notes      string
}

// SessionQuery filters a PT's session list.
type SessionQuery struct {
	Status domain.SessionStatus
	From   string // YYYY-MM-DD, inclusive
	To     string // YYYY-MM-DD, inclusive
}

type SessionService interface {
	Create(ctx context.Context, trainerID primitive.ObjectID, in SessionInput) (*domain.Session, error)
	ListForTrainer(ctx context.Context, trainerID primitive.ObjectID, q SessionQuery) ([]domain.Session, error)
	ListForMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Session, error)
	UpdateStatus(ctx context.Context, trainerID, sessionID primitive.ObjectID, to domain.SessionStatus) (*domain.Session, error)
	// Advance moves sessions along by wall clock: started ones to DANG_DIEN_RA,
	// finished ones to HOAN_THANH.
	Advance(ctx context.Context) (started, completed int, err error)
}

type sessionService struct {
	clock
	sessionRepo  repository.SessionRepository
	subRepo      repository.SubscriptionRepository
	scheduleRepo repository.WorkScheduleRepository
	templateRepo repository.TemplateRepository
	userRepo     repository.UserRepository
	log          logrus.FieldLogger
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	subRepo repository.SubscriptionRepository,
	scheduleRepo repository.WorkScheduleRepository,
	templateRepo repository.TemplateRepository,
	userRepo repository.UserRepository,
	loc *time.Location,
	log logrus.FieldLogger,
) SessionService {
	return &sessionService{
		clock:        newClock(loc),
		sessionRepo:  sessionRepo,
		subRepo:      subRepo,
		scheduleRepo: scheduleRepo,
		templateRepo: templateRepo,
		userRepo:     userRepo,
		log:          log,
	}
}

func (s *sessionService) Create(ctx context.Context, trainerID primitive.ObjectID, in SessionInput) (*domain.Session, error) {
	// 1. Validate date and times
	day, err := s.parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	from, to, err := domain.ClockRange(in.StartTime, in.EndTime)
	if err != nil {
		return nil, validationError("%v", err)
	}
	startsAt := day.Add(time.Duration(from) * time.Minute)
	endsAt := day.Add(time.Duration(to) * time.Minute)
	if startsAt.Before(s.Now()) {
		return nil, validationError("cannot book a session in the past")
	}

	// 2. The member needs an active registration with unbooked PT sessions left
	if _, err := getMember(ctx, s.userRepo, in.MemberID); err != nil {
		return nil, err
	}
	sub, err := activeSubscription(ctx, s.subRepo, in.MemberID, startsAt)
	if err != nil {
		return nil, err
	}
	// Sessions already booked but not yet completed hold a PT session each.
	booked, err := s.sessionRepo.List(ctx, domain.SessionFilter{
		MemberID: &in.MemberID,
		Statuses: []domain.SessionStatus{domain.SessionPreparing, domain.SessionInProgress},
	})
	if err != nil {
		return nil, err
	}
	if sub.SessionsRemaining <= len(booked) {
		return nil, ErrNoSessionsLeft
	}

	// 3. Template, if any, must belong to this PT
	if in.TemplateID != nil {
		tpl, err := s.templateRepo.GetByID(ctx, *in.TemplateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTemplateNotFound
			}
			return nil, err
		}
		if tpl.TrainerID != trainerID {
			return nil, ErrAccessDenied
		}
	}

	// 4. The slot must be inside the PT's work schedule
	schedule, err := s.scheduleRepo.GetByTrainer(ctx, trainerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if !schedule.Covers(int(day.Weekday()), from, to) {
		return nil, ErrOutsideSchedule
	}

	// 5. No overlap with the PT's or the member's other sessions that day
	dayEnd := day.AddDate(0, 0, 1)
	live := []domain.SessionStatus{domain.SessionPreparing, domain.SessionInProgress, domain.SessionCompleted}
	for _, f := range []domain.SessionFilter{
		{TrainerID: &trainerID, Statuses: live, From: &day, To: &dayEnd},
		{MemberID: &in.MemberID, Statuses: live, From: &day, To: &dayEnd},
	} {
		existing, err := s.sessionRepo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		for i := range existing {
			if existing[i].Overlaps(startsAt, endsAt) {
				return nil, ErrSessionOverlap
			}
		}
	}

	// 6. Save
	session := &domain.Session{
		TrainerID:  trainerID,
		MemberID:   in.MemberID,
		TemplateID: in.TemplateID,
		Date:       day,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		Notes:      in.Notes,
		Status:     domain.SessionPreparing,
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id
	return session, nil
}

func (s *sessionService) ListForTrainer(ctx context.Context, trainerID primitive.ObjectID, q SessionQuery) ([]domain.Session, error) {
	filter := domain.SessionFilter{TrainerID: &trainerID}
	if q.Status != "" {
		if !domain.ValidSessionStatus(q.Status) {
			return nil, validationError("unknown trangThai %q", q.Status)
		}
		filter.Statuses = []domain.SessionStatus{q.Status}
	}
	if q.From != "" {
		from, err := s.parseDate(q.From)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := s.parseDate(q.To)
		if err != nil {
			return nil, err
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	return s.sessionRepo.List(ctx, filter)
}

func (s *sessionService) ListForMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Session, error) {
	return s.sessionRepo.List(ctx, domain.SessionFilter{MemberID: &memberID})
}

func (s *sessionService) UpdateStatus(ctx context.Context, trainerID, sessionID primitive.ObjectID, to domain.SessionStatus) (*domain.Session, error) {
	if !domain.ValidSessionStatus(to) {
		return nil, validationError("unknown trangThai %q", to)
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.TrainerID != trainerID {
		return nil, ErrAccessDenied
	}
	if !domain.CanTransition(session.Status, to) {
		return nil, ErrInvalidTransition
	}
	if err := s.transition(ctx, session, to); err != nil {
		return nil, err
	}
	return session, nil
}

// transition stores the new status and, on completion, uses up one PT
// session of the member's registration.
func (s *sessionService) transition(ctx context.Context, session *domain.Session, to domain.SessionStatus) error {
	if err := s.sessionRepo.UpdateStatus(ctx, session.ID, session.Status, to); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrSessionChanged
		}
		return err
	}
	session.Status = to
	if to != domain.SessionCompleted {
		return nil
	}

	entry := s.log.WithFields(logrus.Fields{"session": session.ID.Hex(), "member": session.MemberID.Hex()})
	sub, err := activeSubscription(ctx, s.subRepo, session.MemberID, session.StartsAt)
	if err != nil {
		entry.WithError(err).Warn("completed session has no registration to charge")
		return nil
	}
	if err := s.subRepo.DecrementSessions(ctx, sub.ID); err != nil {
		entry.WithError(err).Warn("could not decrement PT sessions")
	}
	return nil
}

func (s *sessionService) Advance(ctx context.Context) (started, completed int, err error) {
	now := s.Now()

	due, err := s.sessionRepo.ListDue(ctx, domain.SessionPreparing, now, false)
	if err != nil {
		return 0, 0, err
	}
	for i := range due {
		if err := s.transition(ctx, &due[i], domain.SessionInProgress); err != nil {
			if errors.Is(err, ErrSessionChanged) {
				continue
			}
			return started, completed, err
		}
		started++
	}

	finished, err := s.sessionRepo.ListDue(ctx, domain.SessionInProgress, now, true)
	if err != nil {
		return started, completed, err
	}
	for i := range finished {
		if err := s.transition(ctx, &finished[i], domain.SessionCompleted); err != nil {
			if errors.Is(err, ErrSessionChanged) {
				continue
			}
			return started, completed, err
		}
		completed++
	}
	return started, completed, nil
}
