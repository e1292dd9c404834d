package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/metrics"
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newCheckinFixture runs on the real clock because QR tokens are verified
// against it.
func newCheckinFixture(t *testing.T) (*fixture, *checkinService, *metrics.Metrics) {
	f := newFixture(t)
	f.now = time.Now().In(gymZone).Truncate(time.Second)
	m := metrics.New()
	svc := NewCheckinService(f.store.Visits(), f.store.Subscriptions(), f.cache, m, "qr-secret", 5*time.Minute, 128, gymZone, f.log).(*checkinService)
	svc.now = f.clock()
	return f, svc, m
}

func releaseScanLock(t *testing.T, f *fixture, memberID primitive.ObjectID) {
	t.Helper()
	require.NoError(t, f.cache.Delete(context.Background(), "checkin:lock:"+memberID.Hex()))
}

func TestIssueQR(t *testing.T) {
	f, svc, _ := newCheckinFixture(t)

	qr, err := svc.IssueQR(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, qr.Token)
	assert.Equal(t, f.now.Add(5*time.Minute), qr.ExpiresAt)

	png, err := base64.StdEncoding.DecodeString(qr.PNGBase64)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestScanTogglesCheckInAndOut(t *testing.T) {
	f, svc, m := newCheckinFixture(t)
	ctx := context.Background()
	member := f.member(t, "an@gym.vn")

	qr, err := svc.IssueQR(ctx)
	require.NoError(t, err)
	// The code is checked against the real clock, the visit against f.now.
	f.now = time.Date(2026, 3, 2, 10, 0, 0, 0, gymZone)
	sub := f.activeSubscription(t, member.ID, 0)

	in, err := svc.Scan(ctx, member.ID, qr.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanCheckIn, in.Action)
	assert.Equal(t, sub.ID, in.Visit.SubscriptionID)
	assert.True(t, in.Visit.Open())

	// A second scan right away is a double tap.
	_, err = svc.Scan(ctx, member.ID, qr.Token)
	assert.ErrorIs(t, err, ErrScanInProgress)

	releaseScanLock(t, f, member.ID)
	f.now = f.now.Add(90 * time.Minute)
	out, err := svc.Scan(ctx, member.ID, qr.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanCheckOut, out.Action)
	assert.Equal(t, in.Visit.ID, out.Visit.ID)
	assert.Equal(t, 90, out.Visit.DurationMinutes)
	assert.False(t, out.Visit.AutoCheckOut)

	visits, err := svc.ListForMember(ctx, member.ID, 0)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.False(t, visits[0].Open())

	expected := `
# HELP gym_checkin_checkins_total Members checked in by QR scan.
# TYPE gym_checkin_checkins_total counter
gym_checkin_checkins_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "gym_checkin_checkins_total"))
}

func TestScanRejectsBadTokens(t *testing.T) {
	f, svc, _ := newCheckinFixture(t)
	ctx := context.Background()
	member := f.member(t, "an@gym.vn")
	f.activeSubscription(t, member.ID, 0)

	_, err := svc.Scan(ctx, member.ID, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidQRToken)

	other := NewCheckinService(f.store.Visits(), f.store.Subscriptions(), f.cache, nil, "other-secret", time.Minute, 0, gymZone, f.log)
	foreign, err := other.IssueQR(ctx)
	require.NoError(t, err)
	_, err = svc.Scan(ctx, member.ID, foreign.Token)
	assert.ErrorIs(t, err, ErrInvalidQRToken)

	// A login token is not a check-in code even when signed with the same key.
	auth := NewAuthService(f.store.Users(), f.store.Uploads(), f.files, "qr-secret", time.Hour, f.log)
	_, err = auth.Register(ctx, RegisterInput{FullName: "Bình", Email: "binh@gym.vn", Password: "secret1"})
	require.NoError(t, err)
	login, _, err := auth.Login(ctx, "binh@gym.vn", "secret1")
	require.NoError(t, err)
	_, err = svc.Scan(ctx, member.ID, login)
	assert.ErrorIs(t, err, ErrInvalidQRToken)

	svc.now = func() time.Time { return time.Now().Add(-10 * time.Minute) }
	stale, err := svc.IssueQR(ctx)
	require.NoError(t, err)
	svc.now = f.clock()
	_, err = svc.Scan(ctx, member.ID, stale.Token)
	assert.ErrorIs(t, err, ErrInvalidQRToken)

	visits, err := svc.ListForMember(ctx, member.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, visits)
}

func TestScanWithoutRegistrationReleasesLock(t *testing.T) {
	f, svc, _ := newCheckinFixture(t)
	ctx := context.Background()
	member := f.member(t, "an@gym.vn")

	qr, err := svc.IssueQR(ctx)
	require.NoError(t, err)

	_, err = svc.Scan(ctx, member.ID, qr.Token)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)

	// The failed scan does not hold the lock, so buying a package and
	// scanning again works at once.
	f.activeSubscription(t, member.ID, 0)
	res, err := svc.Scan(ctx, member.ID, qr.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanCheckIn, res.Action)
}

func TestAutoCheckOutAndToday(t *testing.T) {
	f, svc, m := newCheckinFixture(t)
	ctx := context.Background()
	an := f.member(t, "an@gym.vn")
	binh := f.member(t, "binh@gym.vn")

	qr, err := svc.IssueQR(ctx)
	require.NoError(t, err)
	f.now = time.Date(2026, 3, 2, 18, 0, 0, 0, gymZone)
	f.activeSubscription(t, an.ID, 0)
	f.activeSubscription(t, binh.ID, 0)
	for _, id := range []primitive.ObjectID{an.ID, binh.ID} {
		_, err := svc.Scan(ctx, id, qr.Token)
		require.NoError(t, err)
	}

	today, err := svc.Today(ctx)
	require.NoError(t, err)
	assert.Len(t, today, 2)

	f.now = f.now.Add(2 * time.Hour)
	closed, err := svc.AutoCheckOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, closed)

	visits, err := svc.ListForMember(ctx, an.ID, 0)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.True(t, visits[0].AutoCheckOut)
	assert.Equal(t, 120, visits[0].DurationMinutes)

	closed, err = svc.AutoCheckOut(ctx)
	require.NoError(t, err)
	assert.Zero(t, closed)

	count, err := testutil.GatherAndCount(m.Registry, "gym_checkin_checkouts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "only the auto=true series exists")
}

func TestVisitLeftOpenIsClosedAtEndOfItsDay(t *testing.T) {
	f, svc, _ := newCheckinFixture(t)
	ctx := context.Background()
	an := f.member(t, "an@gym.vn")
	binh := f.member(t, "binh@gym.vn")

	qr, err := svc.IssueQR(ctx)
	require.NoError(t, err)
	f.now = time.Date(2026, 3, 2, 18, 0, 0, 0, gymZone)
	f.activeSubscription(t, an.ID, 0)
	f.activeSubscription(t, binh.ID, 0)
	first := map[primitive.ObjectID]primitive.ObjectID{}
	for _, id := range []primitive.ObjectID{an.ID, binh.ID} {
		res, err := svc.Scan(ctx, id, qr.Token)
		require.NoError(t, err)
		first[id] = res.Visit.ID
	}

	// The closing job did not run for two days.
	dayEnd := time.Date(2026, 3, 3, 0, 0, 0, 0, gymZone)
	f.now = time.Date(2026, 3, 4, 9, 0, 0, 0, gymZone)
	releaseScanLock(t, f, an.ID)
	res, err := svc.Scan(ctx, an.ID, qr.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanCheckIn, res.Action)
	assert.NotEqual(t, first[an.ID], res.Visit.ID)
	assert.True(t, res.Visit.Open())
	assert.Equal(t, f.now, res.Visit.CheckInAt)

	visits, err := svc.ListForMember(ctx, an.ID, 0)
	require.NoError(t, err)
	require.Len(t, visits, 2)
	for _, v := range visits {
		if v.ID != first[an.ID] {
			continue
		}
		require.NotNil(t, v.CheckOutAt)
		assert.True(t, v.CheckOutAt.Equal(dayEnd))
		assert.Equal(t, 360, v.DurationMinutes)
		assert.True(t, v.AutoCheckOut)
	}

	// The job closes the other stale visit at the same cap.
	f.now = time.Date(2026, 3, 4, 23, 59, 0, 0, gymZone)
	closed, err := svc.AutoCheckOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, closed)

	visits, err = svc.ListForMember(ctx, binh.ID, 0)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	require.NotNil(t, visits[0].CheckOutAt)
	assert.True(t, visits[0].CheckOutAt.Equal(dayEnd))
	assert.Equal(t, 360, visits[0].DurationMinutes)

	// Today's visit for An closes at the time the job runs.
	visits, err = svc.ListForMember(ctx, an.ID, 1)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, 899, visits[0].DurationMinutes)
}
