package memory

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = domain.AccountActive
	}
	r.s.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := []domain.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *userRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int64, error) {
	r.s.mu.RLock()
	matched := []domain.User{}
	for _, u := range r.s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Query != "" && !strings.Contains(u.SearchText, filter.Query) {
			continue
		}
		matched = append(matched, u)
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})
	total := int64(len(matched))
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.Limit
		if start >= len(matched) {
			return []domain.User{}, total, nil
		}
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *userRepo) Count(ctx context.Context, role domain.Role) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	return r.update(user.ID, func(u *domain.User) {
		u.FullName = user.FullName
		u.Phone = user.Phone
		u.BirthDate = user.BirthDate
		u.Gender = user.Gender
		u.AvatarKey = user.AvatarKey
		u.Specialty = user.Specialty
		u.ExperienceYears = user.ExperienceYears
		u.Bio = user.Bio
		u.SearchText = user.SearchText
	})
}

func (r *userRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.update(id, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (r *userRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.AccountStatus) error {
	return r.update(id, func(u *domain.User) { u.Status = status })
}

func (r *userRepo) update(id primitive.ObjectID, apply func(*domain.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	apply(&u)
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return nil
}

type uploadRepo struct{ s *Store }

func (r *uploadRepo) Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	if upload.OwnerID == primitive.NilObjectID || upload.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("upload requires owner and objectKey")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.uploads {
		if u.ObjectKey == upload.ObjectKey {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	upload.ID = primitive.NewObjectID()
	upload.CreatedAt = time.Now().UTC()
	r.s.uploads[upload.ID] = *upload
	return upload.ID, nil
}

func (r *uploadRepo) GetByKey(ctx context.Context, objectKey string) (*domain.Upload, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.uploads {
		if u.ObjectKey == objectKey {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}
