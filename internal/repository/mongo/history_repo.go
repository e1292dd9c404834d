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

const historyCollectionName = "lichsutap"

// mongoHistoryRepository implements repository.WorkoutHistoryRepository
type mongoHistoryRepository struct {
	collection *mongo.Collection
}

// NewMongoHistoryRepository creates a new workout history repository backed by MongoDB.
func NewMongoHistoryRepository(db *mongo.Database) repository.WorkoutHistoryRepository {
	return &mongoHistoryRepository{
		collection: db.Collection(historyCollectionName),
	}
}

func (r *mongoHistoryRepository) Create(ctx context.Context, entry *domain.WorkoutHistory) (primitive.ObjectID, error) {
	if entry.MemberID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout history requires maHoiVien")
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted history ID")
	}
	return insertedID, nil
}

func (r *mongoHistoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutHistory, error) {
	var entry domain.WorkoutHistory
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListByMember returns the member's history newest first.
func (r *mongoHistoryRepository) ListByMember(ctx context.Context, memberID primitive.ObjectID, filter domain.HistoryFilter) ([]domain.WorkoutHistory, error) {
	query := bson.M{"maHoiVien": memberID}
	if filter.From != nil || filter.To != nil {
		rng := bson.M{}
		if filter.From != nil {
			rng["$gte"] = *filter.From
		}
		if filter.To != nil {
			rng["$lt"] = *filter.To
		}
		query["ngayTap"] = rng
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "ngayTap", Value: -1}, {Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []domain.WorkoutHistory{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *mongoHistoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureHistoryIndexes creates necessary indexes. Call during startup.
func EnsureHistoryIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "maHoiVien", Value: 1}, {Key: "ngayTap", Value: -1}},
	})
	return err
}
