package repositories

import (
	"context"
	"regexp"
	"time"

	"github.com/anonto42/pressroom/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostFilter narrows a post listing. Zero values mean "all".
type PostFilter struct {
	UserID     primitive.ObjectID
	PostID     primitive.ObjectID
	Category   string
	Slug       string
	Search     string
	StartIndex int64
	Limit      int64
	SortAsc    bool
}

// PostUpdate holds the post fields to $set; nil fields are left untouched.
type PostUpdate struct {
	Title    *string
	Content  *string
	Image    *string
	Category *string
	Slug     *string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	CountPostsSince(ctx context.Context, since time.Time) (int64, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, update PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection(postsCollection)}
}

// CreatePost inserts a post; a taken slug yields ErrDuplicate
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.UpdatedAt = post.CreatedAt
	_, err := r.collection.InsertOne(ctx, post)
	return translate(err)
}

// GetPostByID retrieves a post by ID
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func postFilterDocument(f PostFilter) bson.M {
	filter := bson.M{}
	if !f.UserID.IsZero() {
		filter["userId"] = f.UserID
	}
	if !f.PostID.IsZero() {
		filter["_id"] = f.PostID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Slug != "" {
		filter["slug"] = f.Slug
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		}
	}
	return filter
}

// ListPosts returns one page of posts, newest updated first unless SortAsc, plus the total match count
func (r *MongoPostRepository) ListPosts(ctx context.Context, f PostFilter) ([]models.Post, int64, error) {
	filter := postFilterDocument(f)
	sort := -1
	if f.SortAsc {
		sort = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: sort}}).SetSkip(f.StartIndex).SetLimit(f.Limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *MongoPostRepository) CountPostsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

// UpdatePost sets the non-nil fields of update and returns the new document
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id primitive.ObjectID, u PostUpdate) (*models.Post, error) {
	set := bson.M{"updatedAt": time.Now()}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.Image != nil {
		set["image"] = *u.Image
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Slug != nil {
		set["slug"] = *u.Slug
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// DeletePost deletes a post by ID
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
