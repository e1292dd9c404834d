package service

import (
	"alcyxob/gym-app/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionSetup struct {
	*fixture
	svc     *sessionService
	trainer domain.User
	member  domain.User
	sub     domain.Subscription
}

func newSessionSetup(t *testing.T, sessions int) *sessionSetup {
	f := newFixture(t)
	s := &sessionSetup{fixture: f, svc: f.sessionService()}
	s.trainer = f.trainer(t, "pt@gym.vn")
	s.member = f.member(t, "an@gym.vn")
	s.sub = f.activeSubscription(t, s.member.ID, sessions)
	f.schedule(t, s.trainer.ID)
	return s
}

func (s *sessionSetup) book(t *testing.T, date, start, end string) *domain.Session {
	t.Helper()
	session, err := s.svc.Create(context.Background(), s.trainer.ID, SessionInput{
		MemberID: s.member.ID, Date: date, StartTime: start, EndTime: end,
	})
	require.NoError(t, err)
	return session
}

func TestCreateSession(t *testing.T) {
	s := newSessionSetup(t, 4)

	session := s.book(t, "2026-03-03", "08:00", "09:00")
	assert.Equal(t, domain.SessionPreparing, session.Status)
	assert.Equal(t, time.Date(2026, 3, 3, 8, 0, 0, 0, gymZone), session.StartsAt)
	assert.Equal(t, time.Date(2026, 3, 3, 9, 0, 0, 0, gymZone), session.EndsAt)

	// Back to back is fine.
	s.book(t, "2026-03-03", "09:00", "10:00")

	mine, err := s.svc.ListForMember(context.Background(), s.member.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestCreateSessionRejects(t *testing.T) {
	s := newSessionSetup(t, 4)
	ctx := context.Background()
	s.book(t, "2026-03-03", "08:00", "09:00")

	other := s.trainer2(t)
	stranger := s.member2(t)

	tests := []struct {
		name    string
		trainer primitive.ObjectID
		in      SessionInput
		want    error
	}{
		{"bad date", s.trainer.ID, SessionInput{MemberID: s.member.ID, Date: "03/03/2026", StartTime: "08:00", EndTime: "09:00"}, ErrValidation},
		{"bad clock", s.trainer.ID, SessionInput{MemberID: s.member.ID, Date: "2026-03-04", StartTime: "8h", EndTime: "09:00"}, ErrValidation},
		{"end before start", s.trainer.ID, SessionInput{MemberID: s.member.ID, Date: "2026-03-04", StartTime: "09:00", EndTime: "08:00"}, ErrValidation},
		{"in the past", s.trainer.ID, SessionInput{MemberID: s.member.ID, Date: "2026-03-01", StartTime: "08:00", EndTime: "09:00"}, ErrValidation},
		{"outside schedule", s.trainer.ID, SessionInput{MemberID: s.member.ID, Date: "2026-03-04", StartTime: "12:00", EndTime: "13:00"}, ErrOutsideSchedule},
		{"straddles slot end", s.trainer.ID, SessionInput{MemberID: s.member.ID, Date: "2026-03-04", StartTime: "10:30", EndTime: "11:30"}, ErrOutsideSchedule},
		{"overlaps own session", s.trainer.ID, SessionInput{MemberID: s.member.ID, Date: "2026-03-03", StartTime: "08:30", EndTime: "09:30"}, ErrSessionOverlap},
		{"member busy with another PT", other, SessionInput{MemberID: s.member.ID, Date: "2026-03-03", StartTime: "08:30", EndTime: "09:30"}, ErrSessionOverlap},
		{"member without registration", s.trainer.ID, SessionInput{MemberID: stranger, Date: "2026-03-04", StartTime: "08:00", EndTime: "09:00"}, ErrNoActiveSubscription},
		{"not a member", s.trainer.ID, SessionInput{MemberID: other, Date: "2026-03-04", StartTime: "08:00", EndTime: "09:00"}, ErrUserNotFound},
		{"unknown template", s.trainer.ID, SessionInput{MemberID: s.member.ID, TemplateID: ptrID(primitive.NewObjectID()), Date: "2026-03-04", StartTime: "08:00", EndTime: "09:00"}, ErrTemplateNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.svc.Create(ctx, tt.trainer, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateSessionWithForeignTemplate(t *testing.T) {
	s := newSessionSetup(t, 4)
	ctx := context.Background()
	other := s.trainer2(t)

	tpl, err := NewTemplateService(s.store.Templates()).Create(ctx, other, TemplateInput{Name: "Full body", Exercises: []domain.TemplateExercise{{Name: "Squat"}}})
	require.NoError(t, err)

	_, err = s.svc.Create(ctx, s.trainer.ID, SessionInput{MemberID: s.member.ID, TemplateID: &tpl.ID, Date: "2026-03-04", StartTime: "08:00", EndTime: "09:00"})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCreateSessionNeedsSessionsLeft(t *testing.T) {
	s := newSessionSetup(t, 0)
	_, err := s.svc.Create(context.Background(), s.trainer.ID, SessionInput{
		MemberID: s.member.ID, Date: "2026-03-03", StartTime: "08:00", EndTime: "09:00",
	})
	assert.ErrorIs(t, err, ErrNoSessionsLeft)
}

func TestCreateSessionCountsBookedSessions(t *testing.T) {
	s := newSessionSetup(t, 2)
	ctx := context.Background()
	first := s.book(t, "2026-03-03", "08:00", "09:00")
	s.book(t, "2026-03-03", "09:00", "10:00")

	// Both PT sessions are held by bookings, even though none is completed.
	_, err := s.svc.Create(ctx, s.trainer.ID, SessionInput{
		MemberID: s.member.ID, Date: "2026-03-03", StartTime: "15:00", EndTime: "16:00",
	})
	assert.ErrorIs(t, err, ErrNoSessionsLeft)

	// Cancelling one gives the session back.
	_, err = s.svc.UpdateStatus(ctx, s.trainer.ID, first.ID, domain.SessionCancelled)
	require.NoError(t, err)
	third := s.book(t, "2026-03-03", "15:00", "16:00")

	_, err = s.svc.UpdateStatus(ctx, s.trainer.ID, third.ID, domain.SessionInProgress)
	require.NoError(t, err)
	_, err = s.svc.UpdateStatus(ctx, s.trainer.ID, third.ID, domain.SessionCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1, s.remaining(t), "completion uses up one PT session")

	// One session left and one booking still open: no room for another.
	_, err = s.svc.Create(ctx, s.trainer.ID, SessionInput{
		MemberID: s.member.ID, Date: "2026-03-04", StartTime: "08:00", EndTime: "09:00",
	})
	assert.ErrorIs(t, err, ErrNoSessionsLeft)
}

func TestUpdateSessionStatus(t *testing.T) {
	s := newSessionSetup(t, 4)
	ctx := context.Background()
	session := s.book(t, "2026-03-03", "08:00", "09:00")

	_, err := s.svc.UpdateStatus(ctx, s.trainer.ID, session.ID, domain.SessionCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.svc.UpdateStatus(ctx, s.trainer2(t), session.ID, domain.SessionInProgress)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = s.svc.UpdateStatus(ctx, s.trainer.ID, session.ID, "XONG")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.svc.UpdateStatus(ctx, s.trainer.ID, primitive.NewObjectID(), domain.SessionInProgress)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	updated, err := s.svc.UpdateStatus(ctx, s.trainer.ID, session.ID, domain.SessionInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionInProgress, updated.Status)

	updated, err = s.svc.UpdateStatus(ctx, s.trainer.ID, session.ID, domain.SessionCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, updated.Status)
	assert.Equal(t, 3, s.remaining(t), "completion uses up one PT session")

	_, err = s.svc.UpdateStatus(ctx, s.trainer.ID, session.ID, domain.SessionCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelledSessionFreesTheSlot(t *testing.T) {
	s := newSessionSetup(t, 4)
	ctx := context.Background()
	session := s.book(t, "2026-03-03", "08:00", "09:00")

	_, err := s.svc.UpdateStatus(ctx, s.trainer.ID, session.ID, domain.SessionCancelled)
	require.NoError(t, err)
	assert.Equal(t, 4, s.remaining(t))

	s.book(t, "2026-03-03", "08:00", "09:00")
}

func TestAdvanceSessions(t *testing.T) {
	s := newSessionSetup(t, 4)
	ctx := context.Background()
	finished := s.book(t, "2026-03-02", "08:00", "09:00")
	running := s.book(t, "2026-03-02", "09:30", "10:30")
	later := s.book(t, "2026-03-02", "15:00", "16:00")

	s.now = time.Date(2026, 3, 2, 10, 0, 0, 0, gymZone)
	started, completed, err := s.svc.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, started)
	assert.Equal(t, 1, completed)

	assert.Equal(t, domain.SessionCompleted, s.status(t, finished.ID))
	assert.Equal(t, domain.SessionInProgress, s.status(t, running.ID))
	assert.Equal(t, domain.SessionPreparing, s.status(t, later.ID))
	assert.Equal(t, 3, s.remaining(t))

	started, completed, err = s.svc.Advance(ctx)
	require.NoError(t, err)
	assert.Zero(t, started)
	assert.Zero(t, completed)
}

func TestListTrainerSessions(t *testing.T) {
	s := newSessionSetup(t, 4)
	ctx := context.Background()
	s.book(t, "2026-03-03", "08:00", "09:00")
	s.book(t, "2026-03-05", "08:00", "09:00")
	third := s.book(t, "2026-03-06", "08:00", "09:00")
	_, err := s.svc.UpdateStatus(ctx, s.trainer.ID, third.ID, domain.SessionCancelled)
	require.NoError(t, err)

	all, err := s.svc.ListForTrainer(ctx, s.trainer.ID, SessionQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ranged, err := s.svc.ListForTrainer(ctx, s.trainer.ID, SessionQuery{From: "2026-03-04", To: "2026-03-06"})
	require.NoError(t, err)
	assert.Len(t, ranged, 2, "the end date is inclusive")

	cancelled, err := s.svc.ListForTrainer(ctx, s.trainer.ID, SessionQuery{Status: domain.SessionCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, third.ID, cancelled[0].ID)

	_, err = s.svc.ListForTrainer(ctx, s.trainer.ID, SessionQuery{Status: "BAD"})
	assert.ErrorIs(t, err, ErrValidation)
}

func (s *sessionSetup) trainer2(t *testing.T) primitive.ObjectID {
	t.Helper()
	if u, err := s.store.Users().GetByEmail(context.Background(), "pt2@gym.vn"); err == nil {
		return u.ID
	}
	u := s.fixture.trainer(t, "pt2@gym.vn")
	s.schedule(t, u.ID)
	return u.ID
}

func (s *sessionSetup) member2(t *testing.T) primitive.ObjectID {
	t.Helper()
	return s.fixture.member(t, "binh@gym.vn").ID
}

func (s *sessionSetup) remaining(t *testing.T) int {
	t.Helper()
	sub, err := s.store.Subscriptions().GetByID(context.Background(), s.sub.ID)
	require.NoError(t, err)
	return sub.SessionsRemaining
}

func (s *sessionSetup) status(t *testing.T, id primitive.ObjectID) domain.SessionStatus {
	t.Helper()
	session, err := s.store.Sessions().GetByID(context.Background(), id)
	require.NoError(t, err)
	return session.Status
}

func ptrID(id primitive.ObjectID) *primitive.ObjectID { return &id }
