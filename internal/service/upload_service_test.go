package service

import (
	"alcyxob/gym-app/internal/domain"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRequestUpload(t *testing.T) {
	f := newFixture(t)
	svc := NewUploadService(f.store.Uploads(), f.files)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	ticket, err := svc.RequestUpload(ctx, owner, domain.UploadAvatar, " Image/PNG ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.ObjectKey, "avatar/"+owner.Hex()+"/"))
	assert.True(t, strings.HasSuffix(ticket.ObjectKey, ".png"))
	assert.Equal(t, "https://bucket.example/upload/"+ticket.ObjectKey, ticket.UploadURL)
	assert.False(t, ticket.ExpiresAt.IsZero())

	stored, err := f.store.Uploads().GetByKey(ctx, ticket.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, owner, stored.OwnerID)
	assert.Equal(t, "image/png", stored.ContentType)

	url, _, err := svc.DownloadURL(ctx, ticket.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/download/"+ticket.ObjectKey, url)
}

func TestRequestUploadRejects(t *testing.T) {
	f := newFixture(t)
	svc := NewUploadService(f.store.Uploads(), f.files)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	_, err := svc.RequestUpload(ctx, owner, domain.UploadMeal, "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)

	_, err = svc.RequestUpload(ctx, owner, "video", "image/jpeg")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.DownloadURL(ctx, "avatar/nobody/x.jpg")
	assert.ErrorIs(t, err, ErrUploadNotFound)

	_, _, err = svc.DownloadURL(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)

	f.files.err = errors.New("s3 down")
	_, err = svc.RequestUpload(ctx, owner, domain.UploadMeal, "image/jpeg")
	assert.EqualError(t, err, "s3 down")
}
