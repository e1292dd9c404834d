package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/search"
	"alcyxob/gym-app/internal/storage"
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// RegisterInput is what a member fills in on the sign-up screen.
type RegisterInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

// ProfileInput holds editable profile fields. Nil fields are left unchanged.
type ProfileInput struct {
	FullName        *string
	Phone           *string
	BirthDate       *time.Time
	Gender          *string
	AvatarKey       *string
	Specialty       *string
	ExperienceYears *int
	Bio             *string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error
	// EnsureOwner creates the gym owner account on first start.
	EnsureOwner(ctx context.Context, fullName, email, password string) error
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	uploadRepo    repository.UploadRepository
	files         storage.FileStorage
	jwtSecret     string
	jwtExpiration time.Duration
	log           logrus.FieldLogger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, uploadRepo repository.UploadRepository, files storage.FileStorage, jwtSecret string, jwtExpiration time.Duration, log logrus.FieldLogger) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		uploadRepo:    uploadRepo,
		files:         files,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		log:           log,
	}
}

// Register signs up a new member. Members are the only self-registering role.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	user := &domain.User{
		FullName: strings.TrimSpace(in.FullName),
		Email:    in.Email,
		Phone:    strings.TrimSpace(in.Phone),
		Role:     domain.RoleMember,
	}
	if user.FullName == "" {
		return nil, validationError("hoTen is required")
	}
	if err := createAccount(ctx, s.userRepo, user, in.Password); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user": user.ID.Hex(), "role": user.Role}).Info("member registered")
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, validationError("email and password cannot be empty")
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}
	if user.IsLocked() {
		return "", nil, ErrAccountLocked
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}
	user.PasswordHash = ""
	return token, user, nil
}

func (s *authService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileInput) (*domain.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, validationError("hoTen cannot be empty")
		}
		u.FullName = name
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.BirthDate != nil {
		if in.BirthDate.After(time.Now()) {
			return nil, validationError("ngaySinh cannot be in the future")
		}
		u.BirthDate = in.BirthDate
	}
	if in.Gender != nil {
		u.Gender = *in.Gender
	}
	oldAvatar := ""
	if in.AvatarKey != nil && *in.AvatarKey != u.AvatarKey {
		if *in.AvatarKey != "" {
			if err := s.checkUploadOwner(ctx, *in.AvatarKey, userID); err != nil {
				return nil, err
			}
		}
		oldAvatar = u.AvatarKey
		u.AvatarKey = *in.AvatarKey
	}
	// PT profile fields only make sense on PT accounts.
	if u.IsTrainer() {
		if in.Specialty != nil {
			u.Specialty = *in.Specialty
		}
		if in.ExperienceYears != nil {
			if *in.ExperienceYears < 0 {
				return nil, validationError("kinhNghiem cannot be negative")
			}
			u.ExperienceYears = *in.ExperienceYears
		}
		if in.Bio != nil {
			u.Bio = *in.Bio
		}
	}
	u.SearchText = search.Text(u.FullName, u.Email, u.Phone)

	if err := s.userRepo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	if oldAvatar != "" && s.files != nil {
		if err := s.files.DeleteObject(ctx, oldAvatar); err != nil {
			s.log.WithError(err).WithField("key", oldAvatar).Warn("failed to delete replaced avatar")
		}
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *authService) checkUploadOwner(ctx context.Context, key string, owner primitive.ObjectID) error {
	up, err := s.uploadRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUploadNotFound
		}
		return err
	}
	if up.OwnerID != owner {
		return ErrAccessDenied
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return validationError("matKhauMoi must be at least %d characters", minPasswordLength)
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hashed))
}

func (s *authService) EnsureOwner(ctx context.Context, fullName, email, password string) error {
	n, err := s.userRepo.Count(ctx, domain.RoleOwner)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	owner := &domain.User{FullName: fullName, Email: email, Role: domain.RoleOwner}
	if err := createAccount(ctx, s.userRepo, owner, password); err != nil {
		return err
	}
	s.log.WithField("email", owner.Email).Info("owner account created")
	return nil
}

// createAccount validates, hashes and stores a new user of any role.
// The user's ID is set and its password hash cleared on success.
func createAccount(ctx context.Context, users repository.UserRepository, user *domain.User, password string) error {
	user.Email = normalizeEmail(user.Email)
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return validationError("email %q is not valid", user.Email)
	}
	if len(password) < minPasswordLength {
		return validationError("matKhau must be at least %d characters", minPasswordLength)
	}

	_, err := users.GetByEmail(ctx, user.Email)
	if err == nil {
		return ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	user.PasswordHash = string(hashed)
	user.Status = domain.AccountActive
	user.SearchText = search.Text(user.FullName, user.Email, user.Phone)

	id, err := users.Create(ctx, user)
	if err != nil {
		// the unique index catches a concurrent sign-up with the same email
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrUserAlreadyExists
		}
		return err
	}
	user.ID = id
	user.PasswordHash = ""
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gym-app",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
