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

const uploadCollectionName = "uploads"

// mongoUploadRepository implements repository.UploadRepository
type mongoUploadRepository struct {
	collection *mongo.Collection
}

// NewMongoUploadRepository creates a new Upload repository backed by MongoDB.
func NewMongoUploadRepository(db *mongo.Database) repository.UploadRepository {
	return &mongoUploadRepository{
		collection: db.Collection(uploadCollectionName),
	}
}

// Create inserts new upload metadata into the database.
func (r *mongoUploadRepository) Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	if upload.OwnerID == primitive.NilObjectID || upload.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("upload requires owner and objectKey")
	}

	upload.ID = primitive.NewObjectID()
	upload.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, upload)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByKey retrieves upload metadata by its object key.
func (r *mongoUploadRepository) GetByKey(ctx context.Context, objectKey string) (*domain.Upload, error) {
	var upload domain.Upload
	err := r.collection.FindOne(ctx, bson.M{"objectKey": objectKey}).Decode(&upload)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &upload, nil
}

// EnsureUploadIndexes creates necessary indexes for the uploads collection.
func EnsureUploadIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "objectKey", Value: 1}},
			Options: options.Index().SetUnique(true), // S3 keys are unique within the bucket
		},
		{
			Keys: bson.D{{Key: "nguoiTai", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
