package service

import (
	"alcyxob/gym-app/internal/cache"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository/memory"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// gymZone stands in for Asia/Ho_Chi_Minh without needing tzdata.
var gymZone = time.FixedZone("ICT", 7*60*60)

// fixture is an in-memory gym with a clock frozen on Monday 2 March 2026, 07:00.
type fixture struct {
	store *memory.Store
	cache cache.Cache
	files *fakeStorage
	log   logrus.FieldLogger
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &fixture{
		store: memory.NewStore(),
		cache: cache.NewMemoryCache(),
		files: &fakeStorage{},
		log:   log,
		now:   time.Date(2026, 3, 2, 7, 0, 0, 0, gymZone),
	}
}

func (f *fixture) clock() func() time.Time {
	return func() time.Time { return f.now }
}

func (f *fixture) user(t *testing.T, role domain.Role, email string) domain.User {
	t.Helper()
	u := domain.User{FullName: "Người dùng " + email, Email: email, PasswordHash: "x", Role: role}
	_, err := f.store.Users().Create(context.Background(), &u)
	require.NoError(t, err)
	return u
}

func (f *fixture) member(t *testing.T, email string) domain.User {
	return f.user(t, domain.RoleMember, email)
}

func (f *fixture) trainer(t *testing.T, email string) domain.User {
	return f.user(t, domain.RoleTrainer, email)
}

// activeSubscription gives the member a paid registration valid for 30 days
// from yesterday, with the given number of PT sessions left.
func (f *fixture) activeSubscription(t *testing.T, memberID primitive.ObjectID, sessions int) domain.Subscription {
	t.Helper()
	ctx := context.Background()
	pkg := domain.Package{Name: "Gói 1 tháng", Price: 1500000, DurationDays: 30, TrainerSessions: sessions}
	_, err := f.store.Packages().Create(ctx, &pkg)
	require.NoError(t, err)

	start := f.now.AddDate(0, 0, -1)
	end := start.AddDate(0, 0, 30)
	sub := domain.Subscription{
		MemberID:          memberID,
		PackageID:         pkg.ID,
		PackageName:       pkg.Name,
		Price:             pkg.Price,
		Status:            domain.SubscriptionActive,
		StartDate:         &start,
		EndDate:           &end,
		ConfirmedAt:       &start,
		TrainerSessions:   sessions,
		SessionsRemaining: sessions,
	}
	_, err = f.store.Subscriptions().Create(ctx, &sub)
	require.NoError(t, err)
	return sub
}

// schedule lets the PT work 06:00-11:00 and 14:00-20:00 every day.
func (f *fixture) schedule(t *testing.T, trainerID primitive.ObjectID) {
	t.Helper()
	slots := []domain.ScheduleSlot{}
	for d := 0; d < 7; d++ {
		slots = append(slots,
			domain.ScheduleSlot{Weekday: d, Start: "06:00", End: "11:00"},
			domain.ScheduleSlot{Weekday: d, Start: "14:00", End: "20:00"},
		)
	}
	require.NoError(t, f.store.Schedules().Upsert(context.Background(), &domain.WorkSchedule{TrainerID: trainerID, Slots: slots}))
}

func (f *fixture) sessionService() *sessionService {
	svc := NewSessionService(f.store.Sessions(), f.store.Subscriptions(), f.store.Schedules(), f.store.Templates(), f.store.Users(), gymZone, f.log).(*sessionService)
	svc.now = f.clock()
	return svc
}

func (f *fixture) authService() AuthService {
	return NewAuthService(f.store.Users(), f.store.Uploads(), f.files, "test-secret", time.Hour, f.log)
}

// fakeStorage records the keys it is asked about instead of talking to S3.
type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (s *fakeStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://bucket.example/upload/" + objectKey, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://bucket.example/download/" + objectKey, nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectKey)
	return s.err
}
