package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/anonto42/pressroom/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserFilter narrows the admin user listing. Zero values mean "all".
type UserFilter struct {
	Search     string
	Role       string // admin, publisher, user
	Status     string // active, banned
	Verified   string // true, false
	StartIndex int64
	Limit      int64
	SortAsc    bool
}

// ProfileUpdate holds the profile fields to $set; nil fields are left untouched.
type ProfileUpdate struct {
	Username       *string
	Email          *string
	ProfilePicture *string
	PasswordHash   *string
	DateOfBirth    *time.Time
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	GetAdmins(ctx context.Context) ([]models.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	CountUsersSince(ctx context.Context, filter UserFilter, since time.Time) (int64, error)
	SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error)
	SetFirebaseUID(ctx context.Context, id primitive.ObjectID, uid string) error
	SetPublisher(ctx context.Context, id primitive.ObjectID, isPublisher bool) (*models.User, error)
	SetBan(ctx context.Context, id primitive.ObjectID, expiresAt time.Time, reason string) (*models.User, error)
	ClearBan(ctx context.Context, id primitive.ObjectID) error
	LinkFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	UnlinkFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection(usersCollection)}
}

// CreateUser inserts a new user document
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.Followers = idsOrEmpty(user.Followers)
	user.Following = idsOrEmpty(user.Following)
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, user)
	return translate(err)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUsersByIDs retrieves every user whose ID is in ids
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebaseUid": uid})
}

// GetAdmins retrieves all users holding the admin flag
func (r *MongoUserRepository) GetAdmins(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{"isAdmin": true})
}

func userFilterDocument(f UserFilter) bson.M {
	filter := bson.M{}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"username": pattern},
			bson.M{"email": pattern},
		}
	}
	switch f.Role {
	case "admin":
		filter["isAdmin"] = true
	case "publisher":
		filter["isPublisher"] = true
		filter["isAdmin"] = bson.M{"$ne": true}
	case "user":
		filter["isPublisher"] = false
		filter["isAdmin"] = false
	}
	switch f.Status {
	case "active":
		filter["isBanned"] = false
	case "banned":
		filter["isBanned"] = true
	}
	switch f.Verified {
	case "true":
		filter["verified"] = true
	case "false":
		filter["verified"] = false
	}
	return filter
}

// ListUsers returns one page of users matching the filter plus the total match count
func (r *MongoUserRepository) ListUsers(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	filter := userFilterDocument(f)
	sort := -1
	if f.SortAsc {
		sort = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: sort}}).
		SetSkip(f.StartIndex).
		SetLimit(f.Limit)
	users, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CountUsersSince counts filter matches created at or after since
func (r *MongoUserRepository) CountUsersSince(ctx context.Context, f UserFilter, since time.Time) (int64, error) {
	filter := userFilterDocument(f)
	filter["createdAt"] = bson.M{"$gte": since}
	return r.collection.CountDocuments(ctx, filter)
}

// SearchUsers finds users whose username contains query (case-insensitive)
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	filter := bson.M{"username": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}}
	return r.find(ctx, filter, options.Find().SetLimit(limit))
}

func (r *MongoUserRepository) updateAndReturn(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UpdateProfile sets the non-nil fields of update and returns the new document
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, u ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if u.Username != nil {
		set["username"] = *u.Username
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.ProfilePicture != nil {
		set["profilePicture"] = *u.ProfilePicture
	}
	if u.PasswordHash != nil {
		set["password"] = *u.PasswordHash
	}
	if u.DateOfBirth != nil {
		set["dateOfBirth"] = *u.DateOfBirth
	}
	return r.updateAndReturn(ctx, id, bson.M{"$set": set})
}

func (r *MongoUserRepository) SetFirebaseUID(ctx context.Context, id primitive.ObjectID, uid string) error {
	_, err := r.updateAndReturn(ctx, id, bson.M{"$set": bson.M{"firebaseUid": uid, "updatedAt": time.Now()}})
	return err
}

// SetPublisher sets the publisher role flag and returns the updated user
func (r *MongoUserRepository) SetPublisher(ctx context.Context, id primitive.ObjectID, isPublisher bool) (*models.User, error) {
	return r.updateAndReturn(ctx, id, bson.M{"$set": bson.M{"isPublisher": isPublisher, "updatedAt": time.Now()}})
}

// SetBan marks the user banned until expiresAt
func (r *MongoUserRepository) SetBan(ctx context.Context, id primitive.ObjectID, expiresAt time.Time, reason string) (*models.User, error) {
	return r.updateAndReturn(ctx, id, bson.M{"$set": bson.M{
		"isBanned":     true,
		"banExpiresAt": expiresAt,
		"banReason":    reason,
		"updatedAt":    time.Now(),
	}})
}

// ClearBan lifts a ban and removes its expiry and reason
func (r *MongoUserRepository) ClearBan(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.updateAndReturn(ctx, id, bson.M{
		"$set":   bson.M{"isBanned": false, "banExpiresAt": nil, "updatedAt": time.Now()},
		"$unset": bson.M{"banReason": ""},
	})
	return err
}

// LinkFollow adds targetID to the follower's following set and followerID to the target's followers set.
// The two writes are independent; callers wrap them in a transaction.
func (r *MongoUserRepository) LinkFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	if err := r.updateSet(ctx, followerID, "$addToSet", "following", targetID); err != nil {
		return fmt.Errorf("add following: %w", err)
	}
	if err := r.updateSet(ctx, targetID, "$addToSet", "followers", followerID); err != nil {
		return fmt.Errorf("add follower: %w", err)
	}
	return nil
}

// UnlinkFollow is the symmetric removal of LinkFollow
func (r *MongoUserRepository) UnlinkFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	if err := r.updateSet(ctx, followerID, "$pull", "following", targetID); err != nil {
		return fmt.Errorf("remove following: %w", err)
	}
	if err := r.updateSet(ctx, targetID, "$pull", "followers", followerID); err != nil {
		return fmt.Errorf("remove follower: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) updateSet(ctx context.Context, id primitive.ObjectID, op, field string, value primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{op: bson.M{field: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user document
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
