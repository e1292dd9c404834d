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

const templateCollectionName = "templates"

// mongoTemplateRepository implements repository.TemplateRepository
type mongoTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoTemplateRepository creates a new Template repository backed by MongoDB.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		collection: db.Collection(templateCollectionName),
	}
}

// Create inserts a new template into the database.
func (r *mongoTemplateRepository) Create(ctx context.Context, tpl *domain.Template) (primitive.ObjectID, error) {
	if tpl.Name == "" || tpl.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template name and PT ID are required")
	}

	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a template by its ID.
func (r *mongoTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Template, error) {
	var tpl domain.Template
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// ListByTrainer retrieves all templates created by a PT, newest first.
func (r *mongoTemplateRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"maPT": trainerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []domain.Template{}
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update modifies an existing template. The owner cannot change.
func (r *mongoTemplateRepository) Update(ctx context.Context, tpl *domain.Template) error {
	if tpl.ID == primitive.NilObjectID {
		return errors.New("template ID is required for update")
	}
	tpl.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"tenTemplate": tpl.Name,
			"moTa":        tpl.Description,
			"mucTieu":     tpl.Goal,
			"baiTap":      tpl.Exercises,
			"updatedAt":   tpl.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": tpl.ID, "maPT": tpl.TrainerID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a template, only if it belongs to the specified PT.
func (r *mongoTemplateRepository) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "maPT": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Not found OR not owned by this PT.
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTemplateIndexes creates necessary indexes for the templates collection.
func EnsureTemplateIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "maPT", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}
