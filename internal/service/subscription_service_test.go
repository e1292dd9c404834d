package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newSubscriptionService(f *fixture) *subscriptionService {
	svc := NewSubscriptionService(f.store.Subscriptions(), f.store.Packages(), f.store.Users(), nil, gymZone, f.log).(*subscriptionService)
	svc.now = f.clock()
	return svc
}

func createPackage(t *testing.T, f *fixture, in PackageInput) *domain.Package {
	t.Helper()
	pkg, err := NewPackageService(f.store.Packages(), f.cache, f.log).Create(context.Background(), in)
	require.NoError(t, err)
	return pkg
}

func TestSubscriptionLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := newSubscriptionService(f)
	ctx := context.Background()
	member := f.member(t, "an@gym.vn")
	pkg := createPackage(t, f, PackageInput{Name: "3 tháng", Price: 1800000, DurationDays: 90, TrainerSessions: 8})

	sub, err := svc.Register(ctx, member.ID, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionPending, sub.Status)
	assert.Equal(t, "3 tháng", sub.PackageName)
	assert.Equal(t, int64(1800000), sub.Price)
	assert.Nil(t, sub.StartDate)

	_, err = svc.Register(ctx, member.ID, pkg.ID)
	assert.ErrorIs(t, err, ErrSubscriptionExists, "a pending registration blocks another")

	confirmed, err := svc.Confirm(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, confirmed.Status)
	require.NotNil(t, confirmed.StartDate)
	assert.Equal(t, f.now, *confirmed.StartDate)
	assert.Equal(t, f.now.AddDate(0, 0, 90), *confirmed.EndDate)
	assert.Equal(t, 8, confirmed.SessionsRemaining)

	_, err = svc.Confirm(ctx, sub.ID)
	assert.ErrorIs(t, err, ErrSubscriptionState)

	_, err = svc.Register(ctx, member.ID, pkg.ID)
	assert.ErrorIs(t, err, ErrSubscriptionExists, "an active registration blocks another")

	// After the end date a renewal is allowed even before the expiry job runs.
	f.now = f.now.AddDate(0, 0, 91)
	renewal, err := svc.Register(ctx, member.ID, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionPending, renewal.Status)

	n, err := svc.ExpireEnded(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	expired, err := f.store.Subscriptions().GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionExpired, expired.Status)

	mine, err := svc.ListForMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pending, err := svc.List(ctx, domain.SubscriptionPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, renewal.ID, pending[0].ID)
}

func TestSubscriptionRegisterRejects(t *testing.T) {
	f := newFixture(t)
	svc := newSubscriptionService(f)
	ctx := context.Background()
	member := f.member(t, "an@gym.vn")
	trainer := f.trainer(t, "pt@gym.vn")
	pkg := createPackage(t, f, PackageInput{Name: "1 tháng", Price: 500000, DurationDays: 30})

	_, err := svc.Register(ctx, trainer.ID, pkg.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Register(ctx, member.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPackageNotFound)

	require.NoError(t, NewPackageService(f.store.Packages(), f.cache, f.log).StopSale(ctx, pkg.ID))
	_, err = svc.Register(ctx, member.ID, pkg.ID)
	assert.ErrorIs(t, err, ErrPackageNotOnSale)
}

// staleSubscriptions hides existing registrations from FindCurrent, as when
// two registrations for one member race past the lookup.
type staleSubscriptions struct {
	repository.SubscriptionRepository
}

func (staleSubscriptions) FindCurrent(context.Context, primitive.ObjectID) (*domain.Subscription, error) {
	return nil, repository.ErrNotFound
}

func TestSubscriptionRegisterRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.member(t, "an@gym.vn")
	pkg := createPackage(t, f, PackageInput{Name: "1 tháng", Price: 500000, DurationDays: 30})

	svc := NewSubscriptionService(staleSubscriptions{f.store.Subscriptions()}, f.store.Packages(), f.store.Users(), nil, gymZone, f.log)
	first, err := svc.Register(ctx, member.ID, pkg.ID)
	require.NoError(t, err)

	_, err = svc.Register(ctx, member.ID, pkg.ID)
	assert.ErrorIs(t, err, ErrSubscriptionExists)

	subs, err := f.store.Subscriptions().List(ctx, domain.SubscriptionFilter{MemberID: &member.ID})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, first.ID, subs[0].ID)
}

func TestSubscriptionCancel(t *testing.T) {
	f := newFixture(t)
	svc := newSubscriptionService(f)
	ctx := context.Background()
	an := f.member(t, "an@gym.vn")
	binh := f.member(t, "binh@gym.vn")
	owner := Actor{ID: primitive.NewObjectID(), Role: domain.RoleOwner}
	pkg := createPackage(t, f, PackageInput{Name: "1 tháng", Price: 500000, DurationDays: 30})

	sub, err := svc.Register(ctx, an.ID, pkg.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, Actor{ID: binh.ID, Role: domain.RoleMember}, sub.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	cancelled, err := svc.Cancel(ctx, Actor{ID: an.ID, Role: domain.RoleMember}, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, owner, sub.ID)
	assert.ErrorIs(t, err, ErrSubscriptionState)

	// Members cannot cancel once paid; the owner can.
	sub, err = svc.Register(ctx, an.ID, pkg.ID)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, sub.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, Actor{ID: an.ID, Role: domain.RoleMember}, sub.ID)
	assert.ErrorIs(t, err, ErrSubscriptionState)

	cancelled, err = svc.Cancel(ctx, owner, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, owner, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}
