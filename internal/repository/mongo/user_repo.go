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

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = domain.AccountActive
	}

	result, err := r.collection.InsertOne(ctx, user)
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

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDs retrieves all users whose ID is in ids. Missing IDs are skipped.
func (r *mongoUserRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []domain.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// List returns one page of users matching the filter plus the total match count.
func (r *mongoUserRepository) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int64, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["vaiTro"] = filter.Role
	}
	if filter.Status != "" {
		query["trangThai"] = filter.Status
	}
	if filter.Query != "" {
		// searchText is already lower-case and accent-free, so a plain escaped regex is enough
		query["searchText"] = bson.M{"$regex": regexp.QuoteMeta(filter.Query)}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		findOptions.SetSkip(int64((page - 1) * filter.Limit)).SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := []domain.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Count returns how many users have the given role.
func (r *mongoUserRepository) Count(ctx context.Context, role domain.Role) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"vaiTro": role})
}

// UpdateProfile writes the editable profile fields of a user.
func (r *mongoUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	if user.ID == primitive.NilObjectID {
		return errors.New("user ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"hoTen":       user.FullName,
			"soDienThoai": user.Phone,
			"ngaySinh":    user.BirthDate,
			"gioiTinh":    user.Gender,
			"anhDaiDien":  user.AvatarKey,
			"chuyenMon":   user.Specialty,
			"kinhNghiem":  user.ExperienceYears,
			"moTa":        user.Bio,
			"searchText":  user.SearchText,
			"updatedAt":   time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, user.ID, update)
}

// UpdatePassword replaces the stored password hash.
func (r *mongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	update := bson.M{"$set": bson.M{"matKhau": passwordHash, "updatedAt": time.Now().UTC()}}
	return r.updateOne(ctx, id, update)
}

// SetStatus locks or unlocks an account.
func (r *mongoUserRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.AccountStatus) error {
	update := bson.M{"$set": bson.M{"trangThai": status, "updatedAt": time.Now().UTC()}}
	return r.updateOne(ctx, id, update)
}

func (r *mongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "vaiTro", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
