package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationFollow            NotificationType = "follow"
	NotificationPublisherRequest  NotificationType = "publisher_request"
	NotificationPublisherApproved NotificationType = "publisher_approved"
	NotificationPublisherRejected NotificationType = "publisher_rejected"
	NotificationRoleChanged       NotificationType = "role_changed"
	NotificationBanned            NotificationType = "banned"
	NotificationUnbanned          NotificationType = "unbanned"
	NotificationStoryApproved     NotificationType = "story_approved"
	NotificationStoryRejected     NotificationType = "story_rejected"
)

// Notification is a message recorded against a recipient (MongoDB)
type Notification struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Recipient   primitive.ObjectID `json:"recipient" bson:"recipient"`
	Title       string             `json:"title" bson:"title"`
	Message     string             `json:"message" bson:"message"`
	Type        NotificationType   `json:"type" bson:"type"`
	TriggeredBy primitive.ObjectID `json:"triggeredBy" bson:"triggeredBy"`
	Read        bool               `json:"read" bson:"read"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}
