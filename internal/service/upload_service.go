package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// imageExtensions lists the accepted content types and the key suffix for each.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// UploadTicket is what a client needs to PUT an image into the bucket.
type UploadTicket struct {
	UploadURL string
	ObjectKey string
	ExpiresAt time.Time
}

type UploadService interface {
	RequestUpload(ctx context.Context, ownerID primitive.ObjectID, kind domain.UploadKind, contentType string) (*UploadTicket, error)
	DownloadURL(ctx context.Context, objectKey string) (string, time.Time, error)
}

type uploadService struct {
	uploadRepo  repository.UploadRepository
	fileStorage storage.FileStorage
	expiry      time.Duration
}

func NewUploadService(uploadRepo repository.UploadRepository, fileStorage storage.FileStorage) UploadService {
	return &uploadService{
		uploadRepo:  uploadRepo,
		fileStorage: fileStorage,
		expiry:      storage.DefaultPresignedURLExpiry,
	}
}

func (s *uploadService) RequestUpload(ctx context.Context, ownerID primitive.ObjectID, kind domain.UploadKind, contentType string) (*UploadTicket, error) {
	if !domain.ValidUploadKind(kind) {
		return nil, validationError("unknown loai %q", kind)
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedContentType
	}

	// <kind>/<owner>/<uuid>.<ext>
	key := fmt.Sprintf("%s/%s/%s%s", kind, ownerID.Hex(), uuid.NewString(), ext)
	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, key, contentType, s.expiry)
	if err != nil {
		return nil, err
	}
	if _, err := s.uploadRepo.Create(ctx, &domain.Upload{
		OwnerID:     ownerID,
		Kind:        kind,
		ObjectKey:   key,
		ContentType: contentType,
	}); err != nil {
		return nil, err
	}
	return &UploadTicket{UploadURL: url, ObjectKey: key, ExpiresAt: time.Now().Add(s.expiry)}, nil
}

func (s *uploadService) DownloadURL(ctx context.Context, objectKey string) (string, time.Time, error) {
	if objectKey == "" {
		return "", time.Time{}, validationError("key is required")
	}
	if _, err := s.uploadRepo.GetByKey(ctx, objectKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", time.Time{}, ErrUploadNotFound
		}
		return "", time.Time{}, err
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, s.expiry)
	if err != nil {
		return "", time.Time{}, err
	}
	return url, time.Now().Add(s.expiry), nil
}
