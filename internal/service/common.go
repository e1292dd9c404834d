package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller of a service method.
type Actor struct {
	ID   primitive.ObjectID
	Role domain.Role
}

func (a Actor) Is(role domain.Role) bool { return a.Role == role }

// clock gives services the current time in the gym's time zone.
type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(loc *time.Location) clock {
	if loc == nil {
		loc = time.UTC
	}
	return clock{now: time.Now, loc: loc}
}

func (c clock) Now() time.Time {
	return c.now().In(c.loc)
}

// startOfDay is local midnight of t's day.
func (c clock) startOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// startOfWeek is local midnight of the Monday on or before t.
func (c clock) startOfWeek(t time.Time) time.Time {
	day := c.startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func (c clock) startOfMonth(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc)
}

// parseDate reads a YYYY-MM-DD date as local midnight.
func (c clock) parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", s, c.loc)
	if err != nil {
		return time.Time{}, validationError("date %q must be YYYY-MM-DD", s)
	}
	return d, nil
}

// activeSubscription returns the member's registration that is active at t.
func activeSubscription(ctx context.Context, subs repository.SubscriptionRepository, memberID primitive.ObjectID, t time.Time) (*domain.Subscription, error) {
	sub, err := subs.FindCurrent(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}
	if !sub.ActiveAt(t) {
		return nil, ErrNoActiveSubscription
	}
	return sub, nil
}

// getMember loads a user and checks it is a member.
func getMember(ctx context.Context, users repository.UserRepository, id primitive.ObjectID) (*domain.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !u.IsMember() {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// canSeeMember reports whether the actor may read a member's records:
// the member, the owner, or a PT who has sessions with them.
func canSeeMember(ctx context.Context, sessions repository.SessionRepository, actor Actor, memberID primitive.ObjectID) (bool, error) {
	switch actor.Role {
	case domain.RoleOwner:
		return true, nil
	case domain.RoleMember:
		return actor.ID == memberID, nil
	case domain.RoleTrainer:
		return sessions.HasTrainerMember(ctx, actor.ID, memberID)
	}
	return false, nil
}
