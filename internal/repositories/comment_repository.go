package repositories

import (
	"context"
	"time"

	"github.com/anonto42/pressroom/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	ListComments(ctx context.Context, startIndex, limit int64, sortAsc bool) ([]models.Comment, int64, error)
	CountCommentsSince(ctx context.Context, since time.Time) (int64, error)
	CountByUserAndPost(ctx context.Context, userID primitive.ObjectID, postID string, from, to time.Time) (int64, error)
	AddLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Comment, error)
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Comment, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection(commentsCollection)}
}

// CreateComment inserts a comment with an empty like-set
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.Likes = idsOrEmpty(comment.Likes)
	comment.NumberOfLikes = len(comment.Likes)
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	comment.UpdatedAt = comment.CreatedAt
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by ID
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *MongoCommentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Comment, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// GetCommentsByPostID retrieves all comments for a post, newest first
func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	return r.find(ctx, bson.M{"postId": postID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoCommentRepository) ListComments(ctx context.Context, startIndex, limit int64, sortAsc bool) ([]models.Comment, int64, error) {
	sort := -1
	if sortAsc {
		sort = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: sort}}).SetSkip(startIndex).SetLimit(limit)
	comments, err := r.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *MongoCommentRepository) CountCommentsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

// CountByUserAndPost counts the user's comments on a post created within [from, to]
func (r *MongoCommentRepository) CountByUserAndPost(ctx context.Context, userID primitive.ObjectID, postID string, from, to time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"userId":    userID,
		"postId":    postID,
		"createdAt": bson.M{"$gte": from, "$lte": to},
	})
}

// AddLike adds userID to the like-set and increments the count in one atomic
// update. It returns ErrNotFound if the comment is missing or already liked by userID.
func (r *MongoCommentRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Comment, error) {
	filter := bson.M{"_id": id, "likes": bson.M{"$ne": userID}}
	update := bson.M{
		"$push": bson.M{"likes": userID},
		"$inc":  bson.M{"numberOfLikes": 1},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return r.updateAndReturn(ctx, filter, update)
}

// RemoveLike is the inverse of AddLike; it only matches when userID is in the like-set.
func (r *MongoCommentRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Comment, error) {
	filter := bson.M{"_id": id, "likes": userID}
	update := bson.M{
		"$pull": bson.M{"likes": userID},
		"$inc":  bson.M{"numberOfLikes": -1},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return r.updateAndReturn(ctx, filter, update)
}

// UpdateContent replaces the comment content
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now()}}
	return r.updateAndReturn(ctx, bson.M{"_id": id}, update)
}

func (r *MongoCommentRepository) updateAndReturn(ctx context.Context, filter, update bson.M) (*models.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var comment models.Comment
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&comment); err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// DeleteComment permanently removes a comment
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
