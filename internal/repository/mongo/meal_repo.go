package mongo

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mealCollectionName = "monan"

// mongoMealRepository implements repository.MealRepository
type mongoMealRepository struct {
	collection *mongo.Collection
}

// NewMongoMealRepository creates a new meal repository backed by MongoDB.
func NewMongoMealRepository(db *mongo.Database) repository.MealRepository {
	return &mongoMealRepository{
		collection: db.Collection(mealCollectionName),
	}
}

func (r *mongoMealRepository) Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error) {
	if meal.Name == "" {
		return primitive.NilObjectID, errors.New("meal requires tenMon")
	}
	meal.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, meal)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted meal ID")
	}
	return insertedID, nil
}

func (r *mongoMealRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error) {
	var meal domain.Meal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&meal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &meal, nil
}

func (r *mongoMealRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Meal, error) {
	if len(ids) == 0 {
		return []domain.Meal{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// Search matches the normalised query against searchText, sorted by name.
func (r *mongoMealRepository) Search(ctx context.Context, filter domain.MealFilter) ([]domain.Meal, error) {
	query := bson.M{}
	if filter.Query != "" {
		query["searchText"] = bson.M{"$regex": regexp.QuoteMeta(filter.Query)}
	}
	if filter.Type != "" {
		query["loaiBua"] = filter.Type
	}
	return r.find(ctx, query)
}

func (r *mongoMealRepository) find(ctx context.Context, query bson.M) ([]domain.Meal, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "searchText", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	meals := []domain.Meal{}
	if err = cursor.All(ctx, &meals); err != nil {
		return nil, err
	}
	return meals, nil
}

func (r *mongoMealRepository) Update(ctx context.Context, meal *domain.Meal) error {
	if meal.ID == primitive.NilObjectID {
		return errors.New("meal ID is required for update")
	}
	meal.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"tenMon":     meal.Name,
			"loaiBua":    meal.Type,
			"calo":       meal.Calories,
			"protein":    meal.Protein,
			"carb":       meal.Carbs,
			"fat":        meal.Fat,
			"moTa":       meal.Description,
			"hinhAnh":    meal.ImageKey,
			"searchText": meal.SearchText,
			"updatedAt":  meal.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": meal.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoMealRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMealIndexes creates necessary indexes. Call during startup.
func EnsureMealIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "searchText", Value: 1}}},
		{Keys: bson.D{{Key: "loaiBua", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
