package models

import (
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsernamePattern is the accepted username shape: lowercase letters and digits, 3 to 20 characters.
var UsernamePattern = regexp.MustCompile(`^[a-z0-9]{3,20}$`)

// User is the identity document stored in the users collection (MongoDB)
type User struct {
	ID             primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Username       string               `json:"username" bson:"username"`
	Email          string               `json:"email" bson:"email"`
	Password       string               `json:"-" bson:"password"`
	FirebaseUID    string               `json:"-" bson:"firebaseUid,omitempty"`
	ProfilePicture string               `json:"profilePicture" bson:"profilePicture"`
	DateOfBirth    *time.Time           `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	IsAdmin        bool                 `json:"isAdmin" bson:"isAdmin"`
	IsPublisher    bool                 `json:"isPublisher" bson:"isPublisher"`
	IsBanned       bool                 `json:"isBanned" bson:"isBanned"`
	BanExpiresAt   *time.Time           `json:"banExpiresAt" bson:"banExpiresAt"`
	BanReason      string               `json:"banReason,omitempty" bson:"banReason,omitempty"`
	Verified       bool                 `json:"verified" bson:"verified"`
	Followers      []primitive.ObjectID `json:"followers" bson:"followers"`
	Following      []primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UserCompact is the public subset of a user embedded in lists
type UserCompact struct {
	ID             primitive.ObjectID `json:"_id"`
	Username       string             `json:"username"`
	ProfilePicture string             `json:"profilePicture"`
	IsAdmin        bool               `json:"isAdmin"`
	IsPublisher    bool               `json:"isPublisher"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		IsAdmin:        u.IsAdmin,
		IsPublisher:    u.IsPublisher,
	}
}

// Actor returns the authorization identity carried in this user's session token.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, IsAdmin: u.IsAdmin, IsPublisher: u.IsPublisher}
}

// CanBeFollowed reports whether the user holds a role that others may follow.
func (u *User) CanBeFollowed() bool {
	return u.IsAdmin || u.IsPublisher
}

func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

func (u *User) HasFollower(id primitive.ObjectID) bool {
	return containsID(u.Followers, id)
}

// BanActive reports whether the ban window still covers now.
func (u *User) BanActive(now time.Time) bool {
	if !u.IsBanned {
		return false
	}
	return u.BanExpiresAt == nil || now.Before(*u.BanExpiresAt)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ExternalIdentity is a user identity asserted by a third-party provider (Firebase)
type ExternalIdentity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

type SignUpRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateUserRequest carries a partial profile update; nil fields are left untouched.
type UpdateUserRequest struct {
	Username       *string    `json:"username,omitempty"`
	Email          *string    `json:"email,omitempty" validate:"omitempty,email"`
	ProfilePicture *string    `json:"profilePicture,omitempty" validate:"omitempty,url"`
	Password       *string    `json:"password,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
}

type UpdateRoleRequest struct {
	UserID      string `json:"userId" validate:"required"`
	IsPublisher bool   `json:"isPublisher"`
}

type BanUserRequest struct {
	UserID   string `json:"userId"`
	Duration string `json:"duration"`
	Reason   string `json:"reason"`
}

// JwtCustomClaims are the session token claims: {id, isAdmin, isPublisher}
type JwtCustomClaims struct {
	ID          string `json:"id"`
	IsAdmin     bool   `json:"isAdmin"`
	IsPublisher bool   `json:"isPublisher"`
	jwt.RegisteredClaims
}
