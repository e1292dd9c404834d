package memory

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if session.TrainerID == primitive.NilObjectID || session.MemberID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session requires maPT and maHoiVien")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = domain.SessionPreparing
	}
	r.s.sessions[session.ID] = *session
	return session.ID, nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	session, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (r *sessionRepo) List(ctx context.Context, filter domain.SessionFilter) ([]domain.Session, error) {
	return r.filter(func(s *domain.Session) bool {
		if filter.TrainerID != nil && s.TrainerID != *filter.TrainerID {
			return false
		}
		if filter.MemberID != nil && s.MemberID != *filter.MemberID {
			return false
		}
		if len(filter.Statuses) > 0 && !hasSessionStatus(filter.Statuses, s.Status) {
			return false
		}
		if filter.From != nil && s.StartsAt.Before(*filter.From) {
			return false
		}
		if filter.To != nil && !s.StartsAt.Before(*filter.To) {
			return false
		}
		return true
	}), nil
}

func (r *sessionRepo) filter(keep func(*domain.Session) bool) []domain.Session {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Session{}
	for _, s := range r.s.sessions {
		if keep(&s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.SessionStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if session.Status != from {
		return repository.ErrConflict
	}
	session.Status = to
	session.UpdatedAt = time.Now().UTC()
	r.s.sessions[id] = session
	return nil
}

func (r *sessionRepo) ListDue(ctx context.Context, status domain.SessionStatus, t time.Time, byEnd bool) ([]domain.Session, error) {
	return r.filter(func(s *domain.Session) bool {
		if s.Status != status {
			return false
		}
		if byEnd {
			return !s.EndsAt.After(t)
		}
		return !s.StartsAt.After(t)
	}), nil
}

func (r *sessionRepo) HasTrainerMember(ctx context.Context, trainerID, memberID primitive.ObjectID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, s := range r.s.sessions {
		if s.TrainerID == trainerID && s.MemberID == memberID {
			return true, nil
		}
	}
	return false, nil
}

func (r *sessionRepo) CountByStatus(ctx context.Context) ([]domain.SessionCount, error) {
	r.s.mu.RLock()
	counts := map[domain.SessionStatus]int64{}
	for _, s := range r.s.sessions {
		counts[s.Status]++
	}
	r.s.mu.RUnlock()

	out := []domain.SessionCount{}
	for status, n := range counts {
		out = append(out, domain.SessionCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func hasSessionStatus(statuses []domain.SessionStatus, s domain.SessionStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

type historyRepo struct{ s *Store }

func (r *historyRepo) Create(ctx context.Context, entry *domain.WorkoutHistory) (primitive.ObjectID, error) {
	if entry.MemberID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout history requires maHoiVien")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()
	r.s.history[entry.ID] = *entry
	return entry.ID, nil
}

func (r *historyRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entry, ok := r.s.history[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entry, nil
}

func (r *historyRepo) ListByMember(ctx context.Context, memberID primitive.ObjectID, filter domain.HistoryFilter) ([]domain.WorkoutHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.WorkoutHistory{}
	for _, e := range r.s.history {
		if e.MemberID != memberID {
			continue
		}
		if filter.From != nil && e.WorkoutDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !e.WorkoutDate.Before(*filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WorkoutDate.Equal(out[j].WorkoutDate) {
			return out[i].WorkoutDate.After(out[j].WorkoutDate)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *historyRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.history[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.history, id)
	return nil
}

type reviewRepo struct{ s *Store }

func (r *reviewRepo) Create(ctx context.Context, review *domain.Review) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reviews {
		if existing.SessionID == review.SessionID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now().UTC()
	r.s.reviews[review.ID] = *review
	return review.ID, nil
}

func (r *reviewRepo) GetBySession(ctx context.Context, sessionID primitive.ObjectID) (*domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, review := range r.s.reviews {
		if review.SessionID == sessionID {
			return &review, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *reviewRepo) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Review{}
	for _, review := range r.s.reviews {
		if review.TrainerID == trainerID {
			out = append(out, review)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() > out[j].ID.Hex() })
	return out, nil
}
