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

const visitCollectionName = "checkins"

// mongoVisitRepository implements repository.VisitRepository
type mongoVisitRepository struct {
	collection *mongo.Collection
}

// NewMongoVisitRepository creates a new check-in repository backed by MongoDB.
func NewMongoVisitRepository(db *mongo.Database) repository.VisitRepository {
	return &mongoVisitRepository{
		collection: db.Collection(visitCollectionName),
	}
}

// Create opens a visit. The partial unique index on open visits turns a
// second concurrent check-in of the same member into ErrDuplicate.
func (r *mongoVisitRepository) Create(ctx context.Context, visit *domain.Visit) (primitive.ObjectID, error) {
	if visit.MemberID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("visit requires maHoiVien")
	}
	visit.ID = primitive.NewObjectID()
	visit.InGym = visit.CheckOutAt == nil
	if visit.CheckInAt.IsZero() {
		visit.CheckInAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, visit)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted visit ID")
	}
	return insertedID, nil
}

func (r *mongoVisitRepository) GetOpen(ctx context.Context, memberID primitive.ObjectID) (*domain.Visit, error) {
	var visit domain.Visit
	filter := bson.M{"maHoiVien": memberID, "dangMo": true}
	err := r.collection.FindOne(ctx, filter).Decode(&visit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &visit, nil
}

func (r *mongoVisitRepository) Close(ctx context.Context, visit *domain.Visit) error {
	if visit.CheckOutAt == nil {
		return errors.New("visit has no check-out time")
	}
	filter := bson.M{"_id": visit.ID, "dangMo": true}
	update := bson.M{
		"$set": bson.M{
			"checkOut":       *visit.CheckOutAt,
			"thoiLuong":      visit.DurationMinutes,
			"tuDongCheckOut": visit.AutoCheckOut,
		},
		"$unset": bson.M{"dangMo": ""},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (r *mongoVisitRepository) ListByMember(ctx context.Context, memberID primitive.ObjectID, limit int) ([]domain.Visit, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "checkIn", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"maHoiVien": memberID}, findOptions)
}

func (r *mongoVisitRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Visit, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "checkIn", Value: -1}})
	return r.find(ctx, bson.M{"checkIn": bson.M{"$gte": from, "$lt": to}}, findOptions)
}

func (r *mongoVisitRepository) ListOpen(ctx context.Context) ([]domain.Visit, error) {
	return r.find(ctx, bson.M{"dangMo": true}, options.Find())
}

func (r *mongoVisitRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"checkIn": bson.M{"$gte": from, "$lt": to}})
}

func (r *mongoVisitRepository) find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]domain.Visit, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	visits := []domain.Visit{}
	if err = cursor.All(ctx, &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// EnsureVisitIndexes creates necessary indexes. Call during startup.
func EnsureVisitIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// at most one open visit per member
			Keys: bson.D{{Key: "maHoiVien", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"dangMo": true}).
				SetName("open_visit_per_member"),
		},
		{Keys: bson.D{{Key: "maHoiVien", Value: 1}, {Key: "checkIn", Value: -1}}},
		{Keys: bson.D{{Key: "checkIn", Value: -1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
