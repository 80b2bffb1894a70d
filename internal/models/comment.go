package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post. NumberOfLikes always equals len(Likes).
type Comment struct {
	ID            primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Content       string               `json:"content" bson:"content"`
	PostID        string               `json:"postId" bson:"postId"`
	UserID        primitive.ObjectID   `json:"userId" bson:"userId"`
	Likes         []primitive.ObjectID `json:"likes" bson:"likes"`
	NumberOfLikes int                  `json:"numberOfLikes" bson:"numberOfLikes"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

func (c *Comment) LikedBy(userID primitive.ObjectID) bool {
	return containsID(c.Likes, userID)
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content"`
	PostID  string `json:"postId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
}

// UpdateCommentRequest defines the request body for editing a comment
type UpdateCommentRequest struct {
	Content string `json:"content"`
}
