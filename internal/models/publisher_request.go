package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PublisherRequestStatus string

const (
	RequestPending  PublisherRequestStatus = "pending"
	RequestApproved PublisherRequestStatus = "approved"
	RequestRejected PublisherRequestStatus = "rejected"
)

func (s PublisherRequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// PublisherRequest is a user's application for the publisher role. Requests are never deleted.
type PublisherRequest struct {
	ID        primitive.ObjectID     `json:"_id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID     `json:"userId" bson:"userId"`
	Reason    string                 `json:"reason" bson:"reason"`
	Status    PublisherRequestStatus `json:"status" bson:"status"`
	CreatedAt time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// PublisherRequestView is a request with its requester populated for the admin dashboard
type PublisherRequestView struct {
	PublisherRequest
	User *UserCompact `json:"user,omitempty"`
}

type CreatePublisherRequest struct {
	UserID string `json:"userId" validate:"required"`
	Reason string `json:"reason"`
}

type DecidePublisherRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}
