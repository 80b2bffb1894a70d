package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionTTL is the lifetime of a session token and of its cookie.
const SessionTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// JWTIssuer signs and verifies HS256 session tokens.
type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewJWTIssuer(secret string) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), now: time.Now}
}

// Issue signs a token carrying the user's id and role flags.
func (j *JWTIssuer) Issue(user *models.User) (string, error) {
	now := j.now()
	claims := &models.JwtCustomClaims{
		ID:          user.ID.Hex(),
		IsAdmin:     user.IsAdmin,
		IsPublisher: user.IsPublisher,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// Parse verifies tokenString and returns its claims.
func (j *JWTIssuer) Parse(tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ActorFromClaims converts verified claims into a workflow actor.
func ActorFromClaims(claims *models.JwtCustomClaims) (models.Actor, error) {
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return models.Actor{ID: id, IsAdmin: claims.IsAdmin, IsPublisher: claims.IsPublisher}, nil
}
