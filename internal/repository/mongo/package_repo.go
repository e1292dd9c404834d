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

const packageCollectionName = "goitap"

// mongoPackageRepository implements repository.PackageRepository
type mongoPackageRepository struct {
	collection *mongo.Collection
}

// NewMongoPackageRepository creates a new package repository backed by MongoDB.
func NewMongoPackageRepository(db *mongo.Database) repository.PackageRepository {
	return &mongoPackageRepository{
		collection: db.Collection(packageCollectionName),
	}
}

func (r *mongoPackageRepository) Create(ctx context.Context, pkg *domain.Package) (primitive.ObjectID, error) {
	if pkg.Name == "" {
		return primitive.NilObjectID, errors.New("package requires a name")
	}
	pkg.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	if pkg.Status == "" {
		pkg.Status = domain.PackageOnSale
	}

	result, err := r.collection.InsertOne(ctx, pkg)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted package ID")
	}
	return insertedID, nil
}

func (r *mongoPackageRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Package, error) {
	var pkg domain.Package
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pkg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *mongoPackageRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Package, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// List returns packages cheapest first.
func (r *mongoPackageRepository) List(ctx context.Context, onlyOnSale bool) ([]domain.Package, error) {
	filter := bson.M{}
	if onlyOnSale {
		filter["trangThai"] = domain.PackageOnSale
	}
	return r.find(ctx, filter)
}

func (r *mongoPackageRepository) find(ctx context.Context, filter bson.M) ([]domain.Package, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "gia", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	packages := []domain.Package{}
	if err = cursor.All(ctx, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *mongoPackageRepository) Update(ctx context.Context, pkg *domain.Package) error {
	if pkg.ID == primitive.NilObjectID {
		return errors.New("package ID is required for update")
	}
	pkg.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"tenGoiTap": pkg.Name,
			"moTa":      pkg.Description,
			"gia":       pkg.Price,
			"thoiHan":   pkg.DurationDays,
			"soBuoiPT":  pkg.TrainerSessions,
			"quyenLoi":  pkg.Benefits,
			"hinhAnh":   pkg.ImageKey,
			"trangThai": pkg.Status,
			"updatedAt": pkg.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": pkg.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePackageIndexes creates necessary indexes. Call during startup.
func EnsurePackageIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "trangThai", Value: 1}, {Key: "gia", Value: 1}},
	})
	return err
}
