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

const subscriptionCollectionName = "chitietgoitap"

// mongoSubscriptionRepository implements repository.SubscriptionRepository
type mongoSubscriptionRepository struct {
	collection *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new registration repository backed by MongoDB.
func NewMongoSubscriptionRepository(db *mongo.Database) repository.SubscriptionRepository {
	return &mongoSubscriptionRepository{
		collection: db.Collection(subscriptionCollectionName),
	}
}

// Create inserts a registration. The partial unique index on pending
// registrations turns a second concurrent one for the same member into ErrDuplicate.
func (r *mongoSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error) {
	if sub.MemberID == primitive.NilObjectID || sub.PackageID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("subscription requires maHoiVien and maGoiTap")
	}
	sub.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = domain.SubscriptionPending
	}

	result, err := r.collection.InsertOne(ctx, sub)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted subscription ID")
	}
	return insertedID, nil
}

func (r *mongoSubscriptionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil)
}

func (r *mongoSubscriptionRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Subscription, error) {
	var sub domain.Subscription
	if opts == nil {
		opts = options.FindOne()
	}
	err := r.collection.FindOne(ctx, filter, opts).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// List returns registrations newest first.
func (r *mongoSubscriptionRepository) List(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	query := bson.M{}
	if filter.MemberID != nil {
		query["maHoiVien"] = *filter.MemberID
	}
	if len(filter.Statuses) > 0 {
		query["trangThai"] = bson.M{"$in": filter.Statuses}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	subs := []domain.Subscription{}
	if err = cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *mongoSubscriptionRepository) FindCurrent(ctx context.Context, memberID primitive.ObjectID) (*domain.Subscription, error) {
	filter := bson.M{
		"maHoiVien": memberID,
		"trangThai": bson.M{"$in": []domain.SubscriptionStatus{domain.SubscriptionPending, domain.SubscriptionActive}},
	}
	return r.findOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *mongoSubscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	if sub.ID == primitive.NilObjectID {
		return errors.New("subscription ID is required for update")
	}
	sub.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"trangThai":      sub.Status,
			"ngayBatDau":     sub.StartDate,
			"ngayKetThuc":    sub.EndDate,
			"ngayXacNhan":    sub.ConfirmedAt,
			"soBuoiPTConLai": sub.SessionsRemaining,
			"updatedAt":      sub.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": sub.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoSubscriptionRepository) DecrementSessions(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "soBuoiPTConLai": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"soBuoiPTConLai": -1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
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

func (r *mongoSubscriptionRepository) ExpireEndedBefore(ctx context.Context, t time.Time) (int64, error) {
	filter := bson.M{
		"trangThai":   domain.SubscriptionActive,
		"ngayKetThuc": bson.M{"$lte": t},
	}
	update := bson.M{"$set": bson.M{"trangThai": domain.SubscriptionExpired, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoSubscriptionRepository) CountActive(ctx context.Context, at time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"trangThai":   domain.SubscriptionActive,
		"ngayBatDau":  bson.M{"$lte": at},
		"ngayKetThuc": bson.M{"$gt": at},
	})
}

func (r *mongoSubscriptionRepository) RevenueConfirmedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"ngayXacNhan": bson.M{"$gte": from, "$lt": to},
			"trangThai":   bson.M{"$ne": domain.SubscriptionCancelled},
		}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$gia"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// EnsureSubscriptionIndexes creates necessary indexes. Call during startup.
func EnsureSubscriptionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// at most one pending registration per member
			Keys: bson.D{{Key: "maHoiVien", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"trangThai": domain.SubscriptionPending}).
				SetName("pending_subscription_per_member"),
		},
		{Keys: bson.D{{Key: "maHoiVien", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "trangThai", Value: 1}, {Key: "ngayKetThuc", Value: 1}}},
		{Keys: bson.D{{Key: "ngayXacNhan", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
