// internal/repository/mongo/meal_plan_repo.go
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

const mealPlanCollectionName = "thucdon"

// mongoMealPlanRepository implements repository.MealPlanRepository
type mongoMealPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoMealPlanRepository creates a new meal plan repository.
func NewMongoMealPlanRepository(db *mongo.Database) repository.MealPlanRepository {
	return &mongoMealPlanRepository{
		collection: db.Collection(mealPlanCollectionName),
	}
}

// Create inserts a new meal plan.
func (r *mongoMealPlanRepository) Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error) {
	if plan.MemberID == primitive.NilObjectID || plan.TrainerID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("meal plan requires maHoiVien, maPT, and tenThucDon")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single meal plan by its ID.
func (r *mongoMealPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	var plan domain.MealPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *mongoMealPlanRepository) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.MealPlan, error) {
	return r.find(ctx, bson.M{"maHoiVien": memberID})
}

func (r *mongoMealPlanRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.MealPlan, error) {
	return r.find(ctx, bson.M{"maPT": trainerID})
}

func (r *mongoMealPlanRepository) find(ctx context.Context, filter bson.M) ([]domain.MealPlan, error) {
	// Newest plans first
	findOptions := options.Find().SetSort(bson.D{{Key: "ngayBatDau", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []domain.MealPlan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// EnsureMealPlanIndexes creates necessary indexes. Call during startup.
func EnsureMealPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "maHoiVien", Value: 1}, {Key: "ngayBatDau", Value: -1}}},
		{Keys: bson.D{{Key: "maPT", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
