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

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id, recipientID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) error
}

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection(notificationsCollection)}
}

func (r *mongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

func (r *mongoNotificationRepository) GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error) {
	filter := bson.M{"recipient": recipientID}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *mongoNotificationRepository) GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient": recipientID, "read": false})
}

func (r *mongoNotificationRepository) MarkAsRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "recipient": recipientID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"recipient": recipientID, "read": false}, bson.M{"$set": bson.M{"read": true}})
	return err
}
