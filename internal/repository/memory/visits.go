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

type visitRepo struct{ s *Store }

func (r *visitRepo) Create(ctx context.Context, visit *domain.Visit) (primitive.ObjectID, error) {
	if visit.MemberID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("visit requires maHoiVien")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.visits {
		if v.MemberID == visit.MemberID && v.Open() {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	visit.ID = primitive.NewObjectID()
	visit.InGym = visit.CheckOutAt == nil
	if visit.CheckInAt.IsZero() {
		visit.CheckInAt = time.Now().UTC()
	}
	r.s.visits[visit.ID] = *visit
	return visit.ID, nil
}

func (r *visitRepo) GetOpen(ctx context.Context, memberID primitive.ObjectID) (*domain.Visit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, v := range r.s.visits {
		if v.MemberID == memberID && v.Open() {
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *visitRepo) Close(ctx context.Context, visit *domain.Visit) error {
	if visit.CheckOutAt == nil {
		return errors.New("visit has no check-out time")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.visits[visit.ID]
	if !ok || !existing.Open() {
		return repository.ErrConflict
	}
	existing.CheckOutAt = visit.CheckOutAt
	existing.DurationMinutes = visit.DurationMinutes
	existing.AutoCheckOut = visit.AutoCheckOut
	existing.InGym = false
	r.s.visits[visit.ID] = existing
	return nil
}

func (r *visitRepo) ListByMember(ctx context.Context, memberID primitive.ObjectID, limit int) ([]domain.Visit, error) {
	out := r.filter(func(v *domain.Visit) bool { return v.MemberID == memberID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *visitRepo) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Visit, error) {
	return r.filter(func(v *domain.Visit) bool {
		return !v.CheckInAt.Before(from) && v.CheckInAt.Before(to)
	}), nil
}

func (r *visitRepo) ListOpen(ctx context.Context) ([]domain.Visit, error) {
	return r.filter(func(v *domain.Visit) bool { return v.Open() }), nil
}

func (r *visitRepo) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	visits, err := r.ListBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return int64(len(visits)), nil
}

// filter returns matching visits, latest check-in first.
func (r *visitRepo) filter(keep func(*domain.Visit) bool) []domain.Visit {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Visit{}
	for _, v := range r.s.visits {
		if keep(&v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckInAt.Equal(out[j].CheckInAt) {
			return out[i].CheckInAt.After(out[j].CheckInAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}
