package mongo

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reviewCollectionName = "danhgia"

// mongoReviewRepository implements repository.ReviewRepository
type mongoReviewRepository struct {
	collection *mongo.Collection
}

// NewMongoReviewRepository creates a new PT review repository backed by MongoDB.
func NewMongoReviewRepository(db *mongo.Database) repository.ReviewRepository {
	return &mongoReviewRepository{
		collection: db.Collection(reviewCollectionName),
	}
}

// Create inserts a review. The unique index on maBuoiTap turns a second review into ErrDuplicate.
func (r *mongoReviewRepository) Create(ctx context.Context, review *domain.Review) (primitive.ObjectID, error) {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted review ID")
	}
	return insertedID, nil
}

func (r *mongoReviewRepository) GetBySession(ctx context.Context, sessionID primitive.ObjectID) (*domain.Review, error) {
	var review domain.Review
	err := r.collection.FindOne(ctx, bson.M{"maBuoiTap": sessionID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// ListByTrainer returns a PT's reviews newest first.
func (r *mongoReviewRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Review, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"maPT": trainerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []domain.Review{}
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// EnsureReviewIndexes creates necessary indexes. Call during startup.
func EnsureReviewIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "maBuoiTap", Value: 1}},
			Options: options.Index().SetUnique(true), // one review per session
		},
		{
			Keys: bson.D{{Key: "maPT", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
