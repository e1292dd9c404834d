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

type packageRepo struct{ s *Store }

func (r *packageRepo) Create(ctx context.Context, pkg *domain.Package) (primitive.ObjectID, error) {
	if pkg.Name == "" {
		return primitive.NilObjectID, errors.New("package requires a name")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pkg.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	if pkg.Status == "" {
		pkg.Status = domain.PackageOnSale
	}
	r.s.packages[pkg.ID] = *pkg
	return pkg.ID, nil
}

func (r *packageRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Package, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.packages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *packageRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Package, error) {
	return r.filter(func(p *domain.Package) bool { return containsID(ids, p.ID) }), nil
}

func (r *packageRepo) List(ctx context.Context, onlyOnSale bool) ([]domain.Package, error) {
	return r.filter(func(p *domain.Package) bool { return !onlyOnSale || p.OnSale() }), nil
}

func (r *packageRepo) filter(keep func(*domain.Package) bool) []domain.Package {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Package{}
	for _, p := range r.s.packages {
		if keep(&p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

func (r *packageRepo) Update(ctx context.Context, pkg *domain.Package) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.packages[pkg.ID]
	if !ok {
		return repository.ErrNotFound
	}
	pkg.CreatedAt = existing.CreatedAt
	pkg.UpdatedAt = time.Now().UTC()
	r.s.packages[pkg.ID] = *pkg
	return nil
}

type subscriptionRepo struct{ s *Store }

func (r *subscriptionRepo) Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error) {
	if sub.MemberID == primitive.NilObjectID || sub.PackageID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("subscription requires maHoiVien and maGoiTap")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sub.Status == "" || sub.Status == domain.SubscriptionPending {
		for _, existing := range r.s.subscriptions {
			if existing.MemberID == sub.MemberID && existing.Status == domain.SubscriptionPending {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	sub.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = domain.SubscriptionPending
	}
	r.s.subscriptions[sub.ID] = *sub
	return sub.ID, nil
}

func (r *subscriptionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sub, ok := r.s.subscriptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sub, nil
}

func (r *subscriptionRepo) List(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Subscription{}
	for _, sub := range r.s.subscriptions {
		if filter.MemberID != nil && sub.MemberID != *filter.MemberID {
			continue
		}
		if len(filter.Statuses) > 0 && !hasSubscriptionStatus(filter.Statuses, sub.Status) {
			continue
		}
		out = append(out, sub)
	}
	sortNewestSubscriptions(out)
	return out, nil
}

func (r *subscriptionRepo) FindCurrent(ctx context.Context, memberID primitive.ObjectID) (*domain.Subscription, error) {
	subs, err := r.List(ctx, domain.SubscriptionFilter{
		MemberID: &memberID,
		Statuses: []domain.SubscriptionStatus{domain.SubscriptionPending, domain.SubscriptionActive},
	})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, repository.ErrNotFound
	}
	return &subs[0], nil
}

func (r *subscriptionRepo) Update(ctx context.Context, sub *domain.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.subscriptions[sub.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Status = sub.Status
	existing.StartDate = sub.StartDate
	existing.EndDate = sub.EndDate
	existing.ConfirmedAt = sub.ConfirmedAt
	existing.SessionsRemaining = sub.SessionsRemaining
	existing.UpdatedAt = time.Now().UTC()
	sub.UpdatedAt = existing.UpdatedAt
	r.s.subscriptions[sub.ID] = existing
	return nil
}

func (r *subscriptionRepo) DecrementSessions(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.subscriptions[id]
	if !ok || sub.SessionsRemaining <= 0 {
		return repository.ErrConflict
	}
	sub.SessionsRemaining--
	sub.UpdatedAt = time.Now().UTC()
	r.s.subscriptions[id] = sub
	return nil
}

func (r *subscriptionRepo) ExpireEndedBefore(ctx context.Context, t time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, sub := range r.s.subscriptions {
		if sub.Status == domain.SubscriptionActive && sub.EndDate != nil && !sub.EndDate.After(t) {
			sub.Status = domain.SubscriptionExpired
			sub.UpdatedAt = time.Now().UTC()
			r.s.subscriptions[id] = sub
			n++
		}
	}
	return n, nil
}

func (r *subscriptionRepo) CountActive(ctx context.Context, at time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, sub := range r.s.subscriptions {
		if sub.ActiveAt(at) {
			n++
		}
	}
	return n, nil
}

func (r *subscriptionRepo) RevenueConfirmedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var total int64
	for _, sub := range r.s.subscriptions {
		if sub.ConfirmedAt == nil || sub.Status == domain.SubscriptionCancelled {
			continue
		}
		if !sub.ConfirmedAt.Before(from) && sub.ConfirmedAt.Before(to) {
			total += sub.Price
		}
	}
	return total, nil
}

func hasSubscriptionStatus(statuses []domain.SubscriptionStatus, s domain.SubscriptionStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func sortNewestSubscriptions(subs []domain.Subscription) {
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].CreatedAt.After(subs[j].CreatedAt)
		}
		return subs[i].ID.Hex() > subs[j].ID.Hex()
	})
}
