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

// StoryFilter narrows a story listing. Zero values mean "all".
type StoryFilter struct {
	UserID     primitive.ObjectID
	Status     models.StoryStatus
	Category   string
	StartIndex int64
	Limit      int64
	SortAsc    bool
}

// StoryUpdate holds the story fields to $set; nil fields are left untouched.
type StoryUpdate struct {
	Title    *string
	Content  *string
	Image    *string
	Category *string
	Country  *string
	Slug     *string
	Status   *models.StoryStatus
}

type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	ListStories(ctx context.Context, filter StoryFilter) ([]models.Story, int64, error)
	UpdateStory(ctx context.Context, id primitive.ObjectID, update StoryUpdate) (*models.Story, error)
	SetStoryStatus(ctx context.Context, id primitive.ObjectID, status models.StoryStatus, reason string) (*models.Story, error)
	// ViewApprovedStory increments the view count of the approved story with slug and returns it.
	ViewApprovedStory(ctx context.Context, slug string) (*models.Story, error)
	DeleteStory(ctx context.Context, id primitive.ObjectID) error
}

// MongoStoryRepository implements StoryRepository for MongoDB
type MongoStoryRepository struct {
	collection *mongo.Collection
}

func NewMongoStoryRepository(db *mongo.Database) *MongoStoryRepository {
	return &MongoStoryRepository{collection: db.Collection(storiesCollection)}
}

func (r *MongoStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}
	story.UpdatedAt = story.CreatedAt
	_, err := r.collection.InsertOne(ctx, story)
	return translate(err)
}

func (r *MongoStoryRepository) GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	var story models.Story
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&story); err != nil {
		return nil, translate(err)
	}
	return &story, nil
}

func (r *MongoStoryRepository) ListStories(ctx context.Context, f StoryFilter) ([]models.Story, int64, error) {
	filter := bson.M{}
	if !f.UserID.IsZero() {
		filter["userId"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	sort := -1
	if f.SortAsc {
		sort = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: sort}}).SetSkip(f.StartIndex).SetLimit(f.Limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	stories := []models.Story{}
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, 0, err
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return stories, total, nil
}

func (r *MongoStoryRepository) updateAndReturn(ctx context.Context, filter, update bson.M) (*models.Story, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var story models.Story
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&story); err != nil {
		return nil, translate(err)
	}
	return &story, nil
}

func (r *MongoStoryRepository) UpdateStory(ctx context.Context, id primitive.ObjectID, u StoryUpdate) (*models.Story, error) {
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
	if u.Country != nil {
		set["country"] = *u.Country
	}
	if u.Slug != nil {
		set["slug"] = *u.Slug
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	return r.updateAndReturn(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

// SetStoryStatus records a review decision; the reason is kept only for rejections
func (r *MongoStoryRepository) SetStoryStatus(ctx context.Context, id primitive.ObjectID, status models.StoryStatus, reason string) (*models.Story, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	if status == models.StoryRejected {
		update["$set"].(bson.M)["rejectionReason"] = reason
	} else {
		update["$unset"] = bson.M{"rejectionReason": ""}
	}
	return r.updateAndReturn(ctx, bson.M{"_id": id}, update)
}

func (r *MongoStoryRepository) ViewApprovedStory(ctx context.Context, slug string) (*models.Story, error) {
	filter := bson.M{"slug": slug, "status": models.StoryApproved}
	return r.updateAndReturn(ctx, filter, bson.M{"$inc": bson.M{"views": 1}})
}

func (r *MongoStoryRepository) DeleteStory(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
