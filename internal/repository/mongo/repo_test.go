package mongo

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "gym_app." + userCollectionName

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &domain.User{FullName: "An", Email: "an@gym.vn", PasswordHash: "hash", Role: domain.RoleMember}
		id, err := repo.Create(context.Background(), user)
		require.NoError(mt, err)
		assert.Equal(mt, user.ID, id)
		assert.Equal(mt, domain.AccountActive, user.Status)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		_, err := repo.Create(context.Background(), &domain.User{Email: "an@gym.vn", PasswordHash: "hash", Role: domain.RoleMember})
		assert.ErrorIs(mt, err, repository.ErrDuplicate)
	})

	mt.Run("create rejects incomplete user", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		_, err := repo.Create(context.Background(), &domain.User{Email: "an@gym.vn"})
		assert.Error(mt, err)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "hoTen", Value: "Nguyễn Văn An"},
			{Key: "email", Value: "an@gym.vn"},
			{Key: "vaiTro", Value: string(domain.RoleMember)},
			{Key: "trangThai", Value: string(domain.AccountActive)},
		}))

		user, err := repo.GetByEmail(context.Background(), "an@gym.vn")
		require.NoError(mt, err)
		assert.Equal(mt, id, user.ID)
		assert.Equal(mt, "Nguyễn Văn An", user.FullName)
		assert.True(mt, user.IsMember())
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestSessionRepositoryUpdateStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "gym_app." + sessionCollectionName

	mt.Run("matched", func(mt *mtest.T) {
		repo := NewMongoSessionRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := repo.UpdateStatus(context.Background(), primitive.NewObjectID(), domain.SessionPreparing, domain.SessionInProgress)
		assert.NoError(mt, err)
	})

	mt.Run("status moved on", func(mt *mtest.T) {
		repo := NewMongoSessionRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		err := repo.UpdateStatus(context.Background(), primitive.NewObjectID(), domain.SessionPreparing, domain.SessionInProgress)
		assert.ErrorIs(mt, err, repository.ErrConflict)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewMongoSessionRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		err := repo.UpdateStatus(context.Background(), primitive.NewObjectID(), domain.SessionPreparing, domain.SessionInProgress)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestSubscriptionRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "gym_app." + subscriptionCollectionName

	mt.Run("create defaults to pending", func(mt *mtest.T) {
		repo := NewMongoSubscriptionRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		sub := &domain.Subscription{MemberID: primitive.NewObjectID(), PackageID: primitive.NewObjectID()}
		id, err := repo.Create(context.Background(), sub)
		require.NoError(mt, err)
		assert.Equal(mt, sub.ID, id)
		assert.Equal(mt, domain.SubscriptionPending, sub.Status)
	})

	mt.Run("second pending registration", func(mt *mtest.T) {
		repo := NewMongoSubscriptionRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error index: pending_subscription_per_member",
		}))

		_, err := repo.Create(context.Background(), &domain.Subscription{MemberID: primitive.NewObjectID(), PackageID: primitive.NewObjectID()})
		assert.ErrorIs(mt, err, repository.ErrDuplicate)
	})

	mt.Run("decrement sessions", func(mt *mtest.T) {
		repo := NewMongoSubscriptionRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(mt, repo.DecrementSessions(context.Background(), primitive.NewObjectID()))
	})

	mt.Run("decrement with no sessions left", func(mt *mtest.T) {
		repo := NewMongoSubscriptionRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.DecrementSessions(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrConflict)
	})

	mt.Run("revenue", func(mt *mtest.T) {
		repo := NewMongoSubscriptionRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: int64(3500000)},
		}))

		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		total, err := repo.RevenueConfirmedBetween(context.Background(), from, from.AddDate(0, 1, 0))
		require.NoError(mt, err)
		assert.Equal(mt, int64(3500000), total)
	})

	mt.Run("revenue with nothing confirmed", func(mt *mtest.T) {
		repo := NewMongoSubscriptionRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		total, err := repo.RevenueConfirmedBetween(context.Background(), from, from.AddDate(0, 1, 0))
		require.NoError(mt, err)
		assert.Zero(mt, total)
	})
}

func TestVisitRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create opens visit", func(mt *mtest.T) {
		repo := NewMongoVisitRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		visit := &domain.Visit{MemberID: primitive.NewObjectID()}
		id, err := repo.Create(context.Background(), visit)
		require.NoError(mt, err)
		assert.Equal(mt, visit.ID, id)
		assert.True(mt, visit.InGym)
		assert.False(mt, visit.CheckInAt.IsZero())
	})

	mt.Run("second open visit", func(mt *mtest.T) {
		repo := NewMongoVisitRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error index: open_visit_per_member",
		}))

		_, err := repo.Create(context.Background(), &domain.Visit{MemberID: primitive.NewObjectID()})
		assert.ErrorIs(mt, err, repository.ErrDuplicate)
	})

	mt.Run("close", func(mt *mtest.T) {
		repo := NewMongoVisitRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		visit := &domain.Visit{ID: primitive.NewObjectID(), CheckInAt: time.Now().Add(-time.Hour)}
		visit.Close(time.Now(), false)
		assert.NoError(mt, repo.Close(context.Background(), visit))
	})

	mt.Run("close already closed", func(mt *mtest.T) {
		repo := NewMongoVisitRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		visit := &domain.Visit{ID: primitive.NewObjectID(), CheckInAt: time.Now().Add(-time.Hour)}
		visit.Close(time.Now(), true)
		assert.ErrorIs(mt, repo.Close(context.Background(), visit), repository.ErrConflict)
	})

	mt.Run("close without check-out time", func(mt *mtest.T) {
		repo := NewMongoVisitRepository(mt.DB)
		assert.Error(mt, repo.Close(context.Background(), &domain.Visit{ID: primitive.NewObjectID()}))
	})
}
