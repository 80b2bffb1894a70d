package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StoryStatus string

const (
	StoryPending  StoryStatus = "pending"
	StoryApproved StoryStatus = "approved"
	StoryRejected StoryStatus = "rejected"
)

func (s StoryStatus) Valid() bool {
	return s == StoryPending || s == StoryApproved || s == StoryRejected
}

// Story is a long-form narrative that only becomes public after an admin approves it (MongoDB)
type Story struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	Title           string             `json:"title" bson:"title"`
	Content         string             `json:"content" bson:"content"`
	Image           string             `json:"image" bson:"image"`
	Category        string             `json:"category" bson:"category"`
	Country         string             `json:"country" bson:"country"`
	Slug            string             `json:"slug" bson:"slug"`
	Status          StoryStatus        `json:"status" bson:"status"`
	RejectionReason string             `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	Views           int64              `json:"views" bson:"views"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreateStoryRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	Image    string `json:"image" validate:"omitempty,url"`
	Category string `json:"category" validate:"omitempty,max=50"`
	Country  string `json:"country" validate:"omitempty,max=60"`
}

// UpdateStoryRequest carries a partial story edit; nil fields are left untouched.
type UpdateStoryRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Content  *string `json:"content,omitempty"`
	Image    *string `json:"image,omitempty" validate:"omitempty,url"`
	Category *string `json:"category,omitempty" validate:"omitempty,max=50"`
	Country  *string `json:"country,omitempty" validate:"omitempty,max=60"`
}

type ReviewStoryRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Reason string `json:"reason"`
}
