package service

import (
	"alcyxob/gym-app/internal/cache"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/metrics"
	"alcyxob/gym-app/internal/repository"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	checkinIssuer  = "gym-checkin"
	checkinPurpose = "checkin"
	scanLockTTL    = 10 * time.Second
	defaultQRSize  = 256
	maxVisitList   = 100
)

// CheckinQR is the code displayed at the gym entrance.
type CheckinQR struct {
	Token     string
	ExpiresAt time.Time
	PNGBase64 string
}

// ScanResult tells the member whether the scan checked them in or out.
type ScanResult struct {
	Action domain.ScanAction
	Visit  domain.Visit
}

// CheckinService runs QR check-in and check-out.
type CheckinService interface {
	IssueQR(ctx context.Context) (*CheckinQR, error)
	// Scan checks the member in, or out if they are already inside. A visit
	// left open from an earlier day is closed at the end of that day and the
	// scan counts as a fresh check-in.
	Scan(ctx context.Context, memberID primitive.ObjectID, token string) (*ScanResult, error)
	ListForMember(ctx context.Context, memberID primitive.ObjectID, limit int) ([]domain.Visit, error)
	Today(ctx context.Context) ([]domain.Visit, error)
	// AutoCheckOut closes every visit still open, e.g. at closing time.
	AutoCheckOut(ctx context.Context) (int, error)
}

type checkinService struct {
	clock
	visitRepo repository.VisitRepository
	subRepo   repository.SubscriptionRepository
	cache     cache.Cache
	metrics   *metrics.Metrics
	secret    []byte
	ttl       time.Duration
	qrSize    int
	log       logrus.FieldLogger
}

// qrClaims is the payload of the gym QR token. It is signed with a different
// secret and issuer than login tokens so one cannot stand in for the other.
type qrClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func NewCheckinService(
	visitRepo repository.VisitRepository,
	subRepo repository.SubscriptionRepository,
	c cache.Cache,
	m *metrics.Metrics,
	secret string,
	ttl time.Duration,
	qrSize int,
	loc *time.Location,
	log logrus.FieldLogger,
) CheckinService {
	if secret == "" {
		panic("QR secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if qrSize <= 0 {
		qrSize = defaultQRSize
	}
	return &checkinService{
		clock:     newClock(loc),
		visitRepo: visitRepo,
		subRepo:   subRepo,
		cache:     c,
		metrics:   m,
		secret:    []byte(secret),
		ttl:       ttl,
		qrSize:    qrSize,
		log:       log,
	}
}

func (s *checkinService) IssueQR(ctx context.Context) (*CheckinQR, error) {
	now := s.Now()
	exp := now.Add(s.ttl)
	claims := qrClaims{
		Purpose: checkinPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    checkinIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, ErrTokenGeneration
	}
	png, err := qrcode.Encode(token, qrcode.Medium, s.qrSize)
	if err != nil {
		return nil, fmt.Errorf("render QR code: %w", err)
	}
	return &CheckinQR{Token: token, ExpiresAt: exp, PNGBase64: base64.StdEncoding.EncodeToString(png)}, nil
}

func (s *checkinService) verify(token string) error {
	claims := &qrClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidQRToken
	}
	if claims.Issuer != checkinIssuer || claims.Purpose != checkinPurpose {
		return ErrInvalidQRToken
	}
	return nil
}

func (s *checkinService) Scan(ctx context.Context, memberID primitive.ObjectID, token string) (*ScanResult, error) {
	if err := s.verify(token); err != nil {
		return nil, err
	}

	// The lock outlives the request so a double tap within scanLockTTL does
	// not immediately undo the first scan. It is released only on failure.
	lockKey := "checkin:lock:" + memberID.Hex()
	locked, err := s.cache.SetNX(ctx, lockKey, []byte("1"), scanLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrScanInProgress
	}
	result, err := s.toggle(ctx, memberID)
	if err != nil {
		if delErr := s.cache.Delete(ctx, lockKey); delErr != nil {
			s.log.WithError(delErr).Warn("failed to release scan lock")
		}
		return nil, err
	}
	return result, nil
}

func (s *checkinService) toggle(ctx context.Context, memberID primitive.ObjectID) (*ScanResult, error) {
	now := s.Now()
	open, err := s.visitRepo.GetOpen(ctx, memberID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if open != nil {
		at, stale := s.closeTime(open, now)
		open.Close(at, stale)
		if err := s.visitRepo.Close(ctx, open); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, ErrScanInProgress
			}
			return nil, err
		}
		s.metrics.CheckOut(stale)
		if !stale {
			return &ScanResult{Action: domain.ScanCheckOut, Visit: *open}, nil
		}
		s.log.WithFields(logrus.Fields{
			"member":  memberID.Hex(),
			"visit":   open.ID.Hex(),
			"checkIn": open.CheckInAt,
		}).Warn("closed visit left open from a previous day")
	}

	sub, err := activeSubscription(ctx, s.subRepo, memberID, now)
	if err != nil {
		return nil, err
	}
	visit := &domain.Visit{MemberID: memberID, SubscriptionID: sub.ID, CheckInAt: now}
	id, err := s.visitRepo.Create(ctx, visit)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrScanInProgress
		}
		return nil, err
	}
	visit.ID = id
	s.metrics.CheckIn()
	return &ScanResult{Action: domain.ScanCheckIn, Visit: *visit}, nil
}

// closeTime is the check-out time for an open visit at now. A visit cannot
// run past the end of its check-in day; stale reports that it did.
func (s *checkinService) closeTime(v *domain.Visit, now time.Time) (at time.Time, stale bool) {
	dayEnd := s.startOfDay(v.CheckInAt).AddDate(0, 0, 1)
	if now.After(dayEnd) {
		return dayEnd, true
	}
	return now, false
}

func (s *checkinService) ListForMember(ctx context.Context, memberID primitive.ObjectID, limit int) ([]domain.Visit, error) {
	if limit <= 0 || limit > maxVisitList {
		limit = maxVisitList
	}
	return s.visitRepo.ListByMember(ctx, memberID, limit)
}

func (s *checkinService) Today(ctx context.Context) ([]domain.Visit, error) {
	start := s.startOfDay(s.Now())
	return s.visitRepo.ListBetween(ctx, start, start.AddDate(0, 0, 1))
}

func (s *checkinService) AutoCheckOut(ctx context.Context) (int, error) {
	open, err := s.visitRepo.ListOpen(ctx)
	if err != nil {
		return 0, err
	}
	now := s.Now()
	closed := 0
	for i := range open {
		at, _ := s.closeTime(&open[i], now)
		open[i].Close(at, true)
		if err := s.visitRepo.Close(ctx, &open[i]); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				continue // member scanned out meanwhile
			}
			return closed, err
		}
		s.metrics.CheckOut(true)
		closed++
	}
	return closed, nil
}
