// internal/repository/mongo/session_repo.go
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

const sessionCollectionName = "buoitap"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new session repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if session.TrainerID == primitive.NilObjectID || session.MemberID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session requires maPT and maHoiVien")
	}
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = domain.SessionPreparing
	}

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// List returns sessions matching the filter, earliest first.
func (r *mongoSessionRepository) List(ctx context.Context, filter domain.SessionFilter) ([]domain.Session, error) {
	query := bson.M{}
	if filter.TrainerID != nil {
		query["maPT"] = *filter.TrainerID
	}
	if filter.MemberID != nil {
		query["maHoiVien"] = *filter.MemberID
	}
	if len(filter.Statuses) > 0 {
		query["trangThai"] = bson.M{"$in": filter.Statuses}
	}
	if filter.From != nil || filter.To != nil {
		rng := bson.M{}
		if filter.From != nil {
			rng["$gte"] = *filter.From
		}
		if filter.To != nil {
			rng["$lt"] = *filter.To
		}
		query["batDauLuc"] = rng
	}
	return r.find(ctx, query)
}

func (r *mongoSessionRepository) find(ctx context.Context, query bson.M) ([]domain.Session, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "batDauLuc", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []domain.Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateStatus is a compare-and-set on trangThai.
func (r *mongoSessionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.SessionStatus) error {
	filter := bson.M{"_id": id, "trangThai": from}
	update := bson.M{"$set": bson.M{"trangThai": to, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	return nil
}

func (r *mongoSessionRepository) ListDue(ctx context.Context, status domain.SessionStatus, t time.Time, byEnd bool) ([]domain.Session, error) {
	field := "batDauLuc"
	if byEnd {
		field = "ketThucLuc"
	}
	return r.find(ctx, bson.M{"trangThai": status, field: bson.M{"$lte": t}})
}

func (r *mongoSessionRepository) HasTrainerMember(ctx context.Context, trainerID, memberID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx,
		bson.M{"maPT": trainerID, "maHoiVien": memberID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoSessionRepository) CountByStatus(ctx context.Context) ([]domain.SessionCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$trangThai", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := []domain.SessionCount{}
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// EnsureSessionIndexes creates necessary indexes. Call during startup.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// PT calendar and overlap checks
			Keys: bson.D{{Key: "maPT", Value: 1}, {Key: "batDauLuc", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "maHoiVien", Value: 1}, {Key: "batDauLuc", Value: -1}},
		},
		{
			// status ticker
			Keys: bson.D{{Key: "trangThai", Value: 1}, {Key: "batDauLuc", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
