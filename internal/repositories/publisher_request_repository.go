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

// PublisherRequestRepository defines the interface for the publisher request ledger
type PublisherRequestRepository interface {
	CreateRequest(ctx context.Context, req *models.PublisherRequest) error
	GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.PublisherRequest, error)
	FindPendingByUser(ctx context.Context, userID primitive.ObjectID) (*models.PublisherRequest, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.PublisherRequestStatus) error
	ListByStatus(ctx context.Context, status models.PublisherRequestStatus, startIndex, limit int64, sortAsc bool) ([]models.PublisherRequest, int64, error)
}

// MongoPublisherRequestRepository implements PublisherRequestRepository for MongoDB
type MongoPublisherRequestRepository struct {
	collection *mongo.Collection
}

func NewMongoPublisherRequestRepository(db *mongo.Database) *MongoPublisherRequestRepository {
	return &MongoPublisherRequestRepository{collection: db.Collection(publisherRequestsCollection)}
}

// CreateRequest inserts a request. A second pending request for the same user
// violates the partial unique index and yields ErrDuplicate.
func (r *MongoPublisherRequestRepository) CreateRequest(ctx context.Context, req *models.PublisherRequest) error {
	now := time.Now()
	req.ID = primitive.NewObjectID()
	req.CreatedAt = now
	req.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, req)
	return translate(err)
}

func (r *MongoPublisherRequestRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.PublisherRequest, error) {
	var req models.PublisherRequest
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *MongoPublisherRequestRepository) FindPendingByUser(ctx context.Context, userID primitive.ObjectID) (*models.PublisherRequest, error) {
	var req models.PublisherRequest
	filter := bson.M{"userId": userID, "status": models.RequestPending}
	if err := r.collection.FindOne(ctx, filter).Decode(&req); err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *MongoPublisherRequestRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.PublisherRequestStatus) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStatus returns one page of requests in the given status and the total count
func (r *MongoPublisherRequestRepository) ListByStatus(ctx context.Context, status models.PublisherRequestStatus, startIndex, limit int64, sortAsc bool) ([]models.PublisherRequest, int64, error) {
	filter := bson.M{"status": status}
	sort := -1
	if sortAsc {
		sort = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: sort}}).SetSkip(startIndex).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	requests := []models.PublisherRequest{}
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, 0, err
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}
