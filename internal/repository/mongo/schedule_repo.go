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

const scheduleCollectionName = "lichlamviec"

// mongoScheduleRepository implements repository.WorkScheduleRepository
type mongoScheduleRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleRepository creates a new work schedule repository backed by MongoDB.
func NewMongoScheduleRepository(db *mongo.Database) repository.WorkScheduleRepository {
	return &mongoScheduleRepository{
		collection: db.Collection(scheduleCollectionName),
	}
}

// Upsert replaces the PT's weekly schedule, creating it on first save.
func (r *mongoScheduleRepository) Upsert(ctx context.Context, schedule *domain.WorkSchedule) error {
	if schedule.TrainerID == primitive.NilObjectID {
		return errors.New("work schedule requires maPT")
	}
	schedule.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"lichLamViec": schedule.Slots,
			"updatedAt":   schedule.UpdatedAt,
		},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"maPT": schedule.TrainerID}, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoScheduleRepository) GetByTrainer(ctx context.Context, trainerID primitive.ObjectID) (*domain.WorkSchedule, error) {
	var schedule domain.WorkSchedule
	err := r.collection.FindOne(ctx, bson.M{"maPT": trainerID}).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// EnsureScheduleIndexes creates necessary indexes. Call during startup.
func EnsureScheduleIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "maPT", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
