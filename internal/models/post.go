package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is an article written by a publisher or admin (MongoDB)
type Post struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	Image     string             `json:"image" bson:"image"`
	Category  string             `json:"category" bson:"category"`
	Slug      string             `json:"slug" bson:"slug"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

const DefaultPostCategory = "uncategorized"

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	Image    string `json:"image" validate:"omitempty,url"`
	Category string `json:"category" validate:"omitempty,max=50"`
}

// UpdatePostRequest defines the request body for editing a post; nil fields are left untouched
type UpdatePostRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Content  *string `json:"content,omitempty"`
	Image    *string `json:"image,omitempty" validate:"omitempty,url"`
	Category *string `json:"category,omitempty" validate:"omitempty,max=50"`
}
